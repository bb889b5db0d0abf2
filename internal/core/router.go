package core

// Delivery pairs an outbound frame with its recipient.
type Delivery struct {
	To      string
	Payload []byte
}

// Router turns one inbound signal into registry mutations and a set of
// deliveries. It holds no per-connection state; the caller owns the current
// room and applies the one returned by Route.
type Router struct {
	rooms *RoomRegistry
}

// NewRouter builds a router over the shared room registry.
func NewRouter(rooms *RoomRegistry) *Router {
	return &Router{rooms: rooms}
}

// Route executes sig for the client identified by clientID whose current
// room is room (empty when not in any). It returns the deliveries to perform
// and the client's room after the action.
func (r *Router) Route(sig Signal, clientID, room string) ([]Delivery, string) {
	switch sig.Action {
	case ActionJoin:
		return r.join(sig.RoomID, clientID, room)
	case ActionLeave:
		// Leaving while not in a room still acks, changing nothing.
		deliveries := r.Depart(clientID, room)
		deliveries = append(deliveries, Delivery{
			To:      clientID,
			Payload: Encode(LeaveAck{Action: ActionLeft, ClientID: clientID, Success: true}),
		})
		return deliveries, ""
	case ActionOffer, ActionAnswer, ActionICECandidate:
		return r.relay(sig, clientID, room), room
	default:
		reply := ErrorReply{Error: ErrReasonUnknownAction, Action: sig.Action}
		return []Delivery{{To: clientID, Payload: Encode(reply)}}, room
	}
}

func (r *Router) join(target, clientID, room string) ([]Delivery, string) {
	var deliveries []Delivery

	// Switching rooms departs the old one first so the registries and the
	// session never disagree about membership. Re-joining the current room
	// skips the departure and the announce: the members already saw one.
	rejoin := room == target
	if room != "" && !rejoin {
		deliveries = r.Depart(clientID, room)
	}

	r.rooms.Join(target, clientID)
	deliveries = append(deliveries, Delivery{
		To:      clientID,
		Payload: Encode(JoinAck{Action: ActionJoined, RoomID: target, ClientID: clientID, Success: true}),
	})
	if rejoin {
		return deliveries, target
	}

	announce := Encode(Presence{Action: ActionUserJoined, RoomID: target, ClientID: clientID})
	members, _ := r.rooms.Members(target)
	for _, id := range members {
		if id == clientID {
			continue
		}
		deliveries = append(deliveries, Delivery{To: id, Payload: announce})
	}
	return deliveries, target
}

// Depart removes clientID from room and returns the user-left notices for
// the remaining members. Shared by explicit leave and teardown. Safe to call
// with an empty room.
func (r *Router) Depart(clientID, room string) []Delivery {
	if room == "" {
		return nil
	}
	r.rooms.Leave(room, clientID)

	members, ok := r.rooms.Members(room)
	if !ok {
		return nil
	}
	notice := Encode(Presence{Action: ActionUserLeft, RoomID: room, ClientID: clientID})
	deliveries := make([]Delivery, 0, len(members))
	for _, id := range members {
		deliveries = append(deliveries, Delivery{To: id, Payload: notice})
	}
	return deliveries
}

func (r *Router) relay(sig Signal, clientID, room string) []Delivery {
	// Routing trusts the connection, not the envelope: the sender field is
	// always the session's own id. The rest is forwarded untouched.
	sig.Sender = clientID
	payload := Encode(sig)

	if sig.Target != "" {
		return []Delivery{{To: sig.Target, Payload: payload}}
	}
	if room == "" {
		// Relaying with no target and no room is a silent no-op.
		return nil
	}
	members, ok := r.rooms.Members(room)
	if !ok {
		return nil
	}
	deliveries := make([]Delivery, 0, len(members)-1)
	for _, id := range members {
		if id == clientID {
			continue
		}
		deliveries = append(deliveries, Delivery{To: id, Payload: payload})
	}
	return deliveries
}
