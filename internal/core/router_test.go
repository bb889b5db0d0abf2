package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame is the decoded shape of any outbound payload.
type frame struct {
	Action   string          `json:"action"`
	RoomID   string          `json:"room_id"`
	ClientID string          `json:"client_id"`
	Target   string          `json:"target"`
	Sender   string          `json:"sender"`
	Success  bool            `json:"success"`
	Error    string          `json:"error"`
	Data     json.RawMessage `json:"data"`
}

func decodeFrame(t *testing.T, payload []byte) frame {
	t.Helper()
	var f frame
	require.NoError(t, json.Unmarshal(payload, &f))
	return f
}

// byRecipient indexes deliveries; duplicate recipients keep the last frame.
func byRecipient(t *testing.T, deliveries []Delivery) map[string]frame {
	t.Helper()
	out := make(map[string]frame, len(deliveries))
	for _, d := range deliveries {
		out[d.To] = decodeFrame(t, d.Payload)
	}
	return out
}

func newTestRouter() (*Router, *RoomRegistry) {
	rooms := NewRoomRegistry()
	return NewRouter(rooms), rooms
}

func TestRouter_JoinAcksAndAnnounces(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("r1", "a")

	deliveries, room := router.Route(Signal{Action: ActionJoin, RoomID: "r1"}, "b", "")

	assert.Equal(t, "r1", room)
	require.Len(t, deliveries, 2)

	got := byRecipient(t, deliveries)
	ack := got["b"]
	assert.Equal(t, ActionJoined, ack.Action)
	assert.Equal(t, "r1", ack.RoomID)
	assert.Equal(t, "b", ack.ClientID)
	assert.True(t, ack.Success)

	announce := got["a"]
	assert.Equal(t, ActionUserJoined, announce.Action)
	assert.Equal(t, "b", announce.ClientID)

	members, ok := rooms.Members("r1")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "b"}, members)
}

func TestRouter_JoinSwitchesRoomWithImplicitLeave(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("old", "a")
	rooms.Join("old", "witness")

	deliveries, room := router.Route(Signal{Action: ActionJoin, RoomID: "new"}, "a", "old")

	assert.Equal(t, "new", room)

	got := byRecipient(t, deliveries)
	assert.Equal(t, ActionUserLeft, got["witness"].Action)
	assert.Equal(t, "old", got["witness"].RoomID)
	assert.Equal(t, ActionJoined, got["a"].Action)

	oldMembers, ok := rooms.Members("old")
	require.True(t, ok)
	assert.Equal(t, []string{"witness"}, oldMembers, "old room must not keep the switcher")

	newMembers, ok := rooms.Members("new")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, newMembers)
}

func TestRouter_RejoinSameRoomOnlyReacks(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("r1", "a")
	rooms.Join("r1", "b")

	deliveries, room := router.Route(Signal{Action: ActionJoin, RoomID: "r1"}, "a", "r1")

	assert.Equal(t, "r1", room)
	require.Len(t, deliveries, 1, "re-join must not re-announce to the room")
	assert.Equal(t, "a", deliveries[0].To)

	ack := decodeFrame(t, deliveries[0].Payload)
	assert.Equal(t, ActionJoined, ack.Action)
	assert.True(t, ack.Success)

	members, ok := rooms.Members("r1")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "b"}, members)
}

func TestRouter_LeaveAcksEvenWhenNotInRoom(t *testing.T) {
	router, rooms := newTestRouter()

	deliveries, room := router.Route(Signal{Action: ActionLeave}, "a", "")

	assert.Empty(t, room)
	require.Len(t, deliveries, 1)

	ack := decodeFrame(t, deliveries[0].Payload)
	assert.Equal(t, ActionLeft, ack.Action)
	assert.Equal(t, "a", ack.ClientID)
	assert.True(t, ack.Success)
	assert.Equal(t, 0, rooms.Len(), "idempotent leave must not touch registry state")
}

func TestRouter_LeaveNotifiesRemainingMembers(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("r1", "a")
	rooms.Join("r1", "b")

	deliveries, room := router.Route(Signal{Action: ActionLeave}, "a", "r1")

	assert.Empty(t, room)
	got := byRecipient(t, deliveries)
	assert.Equal(t, ActionUserLeft, got["b"].Action)
	assert.Equal(t, "a", got["b"].ClientID)
	assert.Equal(t, ActionLeft, got["a"].Action)
}

func TestRouter_RelayBroadcastExcludesSender(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("r1", "a")
	rooms.Join("r1", "b")
	rooms.Join("r1", "c")

	data := json.RawMessage(`{"sdp":"v=0"}`)
	deliveries, room := router.Route(Signal{Action: ActionOffer, Data: data, Sender: "spoofed"}, "a", "r1")

	assert.Equal(t, "r1", room)
	require.Len(t, deliveries, 2)

	recipients := make([]string, 0, len(deliveries))
	for _, d := range deliveries {
		recipients = append(recipients, d.To)
		f := decodeFrame(t, d.Payload)
		assert.Equal(t, ActionOffer, f.Action)
		assert.Equal(t, "a", f.Sender, "sender must come from the connection, not the envelope")
		assert.JSONEq(t, string(data), string(f.Data))
	}
	assert.ElementsMatch(t, []string{"b", "c"}, recipients)
}

func TestRouter_RelayTargetedGoesToSingleRecipient(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("r1", "a")
	rooms.Join("r1", "b")
	rooms.Join("r1", "c")

	deliveries, _ := router.Route(Signal{Action: ActionICECandidate, Target: "b"}, "a", "r1")

	require.Len(t, deliveries, 1)
	assert.Equal(t, "b", deliveries[0].To)

	f := decodeFrame(t, deliveries[0].Payload)
	assert.Equal(t, ActionICECandidate, f.Action)
	assert.Equal(t, "b", f.Target)
	assert.Equal(t, "a", f.Sender)
}

func TestRouter_RelayWithoutRoomOrTargetIsNoop(t *testing.T) {
	router, _ := newTestRouter()

	deliveries, room := router.Route(Signal{Action: ActionAnswer}, "a", "")

	assert.Empty(t, deliveries)
	assert.Empty(t, room)
}

func TestRouter_UnknownActionErrorsToSenderOnly(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("r1", "a")
	rooms.Join("r1", "b")

	deliveries, room := router.Route(Signal{Action: "dance"}, "a", "r1")

	assert.Equal(t, "r1", room, "state must be unchanged")
	require.Len(t, deliveries, 1)
	assert.Equal(t, "a", deliveries[0].To)

	f := decodeFrame(t, deliveries[0].Payload)
	assert.Equal(t, ErrReasonUnknownAction, f.Error)
	assert.Equal(t, "dance", f.Action)
}

func TestRouter_DepartLastMemberDeletesRoom(t *testing.T) {
	router, rooms := newTestRouter()
	rooms.Join("r1", "a")

	deliveries := router.Depart("a", "r1")

	assert.Empty(t, deliveries)
	_, ok := rooms.Members("r1")
	assert.False(t, ok)
}
