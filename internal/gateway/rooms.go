package gateway

import "sync"

// roomSet tracks which clients are subscribed to which session and
// fans frames out to them.
type roomSet struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func newRoomSet() *roomSet {
	return &roomSet{rooms: make(map[string]map[*client]struct{})}
}

func (r *roomSet) join(room string, c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
}

// leave removes c from the room. Empty rooms are deleted outright so
// the set never accumulates dead entries.
func (r *roomSet) leave(room string, c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// broadcast enqueues the frame to every member of the room, skipping
// exclude when it is non-nil.
func (r *roomSet) broadcast(room string, msg []byte, exclude *client) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for member := range r.rooms[room] {
		if member == exclude {
			continue
		}
		member.enqueue(msg)
	}
}
