package core

// Error reasons reported back to the originating client. No error in this
// subsystem is fatal to the process or visible to other clients.
const (
	ErrReasonBadPayload    = "malformed payload"
	ErrReasonUnknownAction = "unrecognized action"
	ErrReasonRateLimited   = "rate limited"
)

// ErrorReply is the structured error frame sent to the sender of a rejected
// signal. Action and Detail carry context about what was rejected.
type ErrorReply struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Detail string `json:"detail,omitempty"`
}
