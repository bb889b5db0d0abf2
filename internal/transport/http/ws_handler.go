package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peerwire/sigrelay/internal/config"
	"github.com/peerwire/sigrelay/internal/core"
)

// WSHandler upgrades HTTP connections and bridges them to a core.Session.
type WSHandler struct {
	clients *core.ClientRegistry
	router  *core.Router
	cfg     config.Config
	log     *zerolog.Logger
}

// NewWSHandler builds the signaling endpoint handler.
func NewWSHandler(clients *core.ClientRegistry, router *core.Router, cfg config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{clients: clients, router: router, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	conn.SetReadLimit(h.cfg.MaxMessageBytes)

	client := newWSClient(h.cfg.SendBuffer)
	session := core.NewSession(uuid.NewString(), client, h.clients, h.router, *h.log)
	// Teardown must fire exactly once whether the read side errored, the peer
	// closed, or the context died; Session.Close is idempotent.
	defer session.Close()

	h.log.Debug().Str("client_id", session.ID()).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	session.Close()

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", session.ID()).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session, client *wsClient) error {
	limiter := newRateLimiter(h.cfg.MessageRateLimit)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		if !limiter.allow() {
			// Over-budget frames are answered but never dispatched.
			_ = client.Send(core.Encode(core.ErrorReply{Error: core.ErrReasonRateLimited}))
			continue
		}
		session.HandleMessage(data)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *wsClient) error {
	for {
		select {
		case payload := <-client.send:
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				h.log.Error().Err(err).Msg("write ws frame")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var errSlowConsumer = errors.New("send queue full")

// wsClient is the delivery handle for one connection. Frames are queued on a
// buffered channel drained by the write loop; a full queue drops the frame.
type wsClient struct {
	send chan []byte
}

func newWSClient(buffer int) *wsClient {
	return &wsClient{send: make(chan []byte, buffer)}
}

func (c *wsClient) Send(payload []byte) error {
	select {
	case c.send <- payload:
		return nil
	default:
		return errSlowConsumer
	}
}
