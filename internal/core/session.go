package core

import (
	"sync"

	"github.com/rs/zerolog"
)

// Session is the server-side state of one live connection: its immutable
// client id and the room it currently occupies. All registry traffic for the
// connection flows through it, in arrival order.
type Session struct {
	id      string
	out     Sender
	clients *ClientRegistry
	router  *Router
	log     zerolog.Logger

	mu     sync.Mutex
	room   string
	closed bool
}

// NewSession registers the connection in the client registry and returns the
// session in its initial no-room state.
func NewSession(id string, out Sender, clients *ClientRegistry, router *Router, logger zerolog.Logger) *Session {
	s := &Session{
		id:      id,
		out:     out,
		clients: clients,
		router:  router,
		log:     logger.With().Str("client_id", id).Logger(),
	}
	clients.Register(id, out)
	return s
}

// ID returns the session's client id.
func (s *Session) ID() string { return s.id }

// Room returns the currently occupied room, or "" when not in any.
func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// HandleMessage processes one inbound frame. Malformed frames are answered
// with an error reply and change nothing.
func (s *Session) HandleMessage(raw []byte) {
	sig, parseErr := ParseSignal(raw)
	if parseErr != nil {
		s.log.Debug().Str("reason", parseErr.Detail).Msg("rejecting malformed signal")
		s.send(Delivery{To: s.id, Payload: Encode(parseErr)})
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	deliveries, room := s.router.Route(sig, s.id, s.room)
	s.room = room
	s.mu.Unlock()

	for _, d := range deliveries {
		s.send(d)
	}
}

// Close tears the session down: departs the current room, notifies the
// remaining members and unregisters the client. Runs at most once no matter
// how the connection ended.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	room := s.room
	s.room = ""
	s.mu.Unlock()

	deliveries := s.router.Depart(s.id, room)
	s.clients.Unregister(s.id)
	for _, d := range deliveries {
		s.send(d)
	}
	s.log.Debug().Msg("session closed")
}

// send resolves the recipient at delivery time. A recipient that vanished
// between routing and delivery is a silent drop, never an error upstream.
func (s *Session) send(d Delivery) {
	if d.To == s.id {
		if err := s.out.Send(d.Payload); err != nil {
			s.log.Debug().Err(err).Msg("dropping frame to self")
		}
		return
	}
	handle, ok := s.clients.Lookup(d.To)
	if !ok {
		s.log.Debug().Str("recipient", d.To).Msg("recipient gone, dropping frame")
		return
	}
	if err := handle.Send(d.Payload); err != nil {
		s.log.Debug().Err(err).Str("recipient", d.To).Msg("dropping frame")
	}
}
