package core

import "encoding/json"

// Actions accepted from clients.
const (
	ActionJoin         = "join"
	ActionLeave        = "leave"
	ActionOffer        = "offer"
	ActionAnswer       = "answer"
	ActionICECandidate = "ice-candidate"
)

// Actions emitted by the relay.
const (
	ActionJoined     = "joined"
	ActionLeft       = "left"
	ActionUserJoined = "user-joined"
	ActionUserLeft   = "user-left"
)

// Signal is the wire envelope exchanged with clients. Data is an opaque
// negotiation payload and is relayed unmodified.
type Signal struct {
	Action string          `json:"action"`
	RoomID string          `json:"room_id,omitempty"`
	Target string          `json:"target,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Sender string          `json:"sender,omitempty"`
}

// ParseSignal decodes a raw inbound frame. A frame rejected here never
// reaches the dispatch table; the caller answers with the returned reply.
func ParseSignal(raw []byte) (Signal, *ErrorReply) {
	var sig Signal
	if err := json.Unmarshal(raw, &sig); err != nil {
		return Signal{}, &ErrorReply{Error: ErrReasonBadPayload, Detail: err.Error()}
	}
	if sig.Action == "" {
		return Signal{}, &ErrorReply{Error: ErrReasonBadPayload, Detail: "action is required"}
	}
	if sig.Action == ActionJoin && sig.RoomID == "" {
		return Signal{}, &ErrorReply{Error: ErrReasonBadPayload, Detail: "room_id is required for join"}
	}
	return sig, nil
}

// JoinAck confirms a join to the initiating client.
type JoinAck struct {
	Action   string `json:"action"`
	RoomID   string `json:"room_id"`
	ClientID string `json:"client_id"`
	Success  bool   `json:"success"`
}

// LeaveAck confirms a leave to the initiating client.
type LeaveAck struct {
	Action   string `json:"action"`
	ClientID string `json:"client_id"`
	Success  bool   `json:"success"`
}

// Presence announces a member joining or leaving to the rest of a room.
type Presence struct {
	Action   string `json:"action"`
	RoomID   string `json:"room_id"`
	ClientID string `json:"client_id"`
}

// Encode marshals an outbound frame. All outbound shapes are plain structs,
// so marshaling cannot fail.
func Encode(v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return payload
}
