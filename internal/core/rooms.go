package core

import "sync"

// RoomRegistry maps room ids to their member sets. A room is created by its
// first joiner and deleted when the last member leaves; an empty room is
// never retained.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

// NewRoomRegistry constructs an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]map[string]struct{})}
}

// Join adds id to room, creating the room if needed. Joining twice has the
// same effect as once.
func (r *RoomRegistry) Join(room, id string) {
	r.mu.Lock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[id] = struct{}{}
	r.mu.Unlock()
}

// Leave removes id from room and deletes the room once emptied. No-op if
// the room or the member is absent.
func (r *RoomRegistry) Leave(room, id string) {
	r.mu.Lock()
	if members, ok := r.rooms[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	r.mu.Unlock()
}

// Members returns a snapshot of the room's membership, or false if the room
// does not exist.
func (r *RoomRegistry) Members(room string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[room]
	if !ok {
		return nil, false
	}
	snapshot := make([]string, 0, len(members))
	for id := range members {
		snapshot = append(snapshot, id)
	}
	return snapshot, true
}

// Len returns the number of non-empty rooms.
func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
