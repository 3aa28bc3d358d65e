package presence

import (
	"sync"
	"time"

	"codepair/internal/models"
)

const shortIDLen = 8

type entry struct {
	isActive bool
	joinedAt time.Time
}

// Tracker owns the per-session presence maps. The gateway only ever
// creates, removes, or updates entries through it.
type Tracker struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*entry
}

func NewTracker() *Tracker {
	return &Tracker{rooms: make(map[string]map[string]*entry)}
}

// Join records connID as an active member of the session and returns
// the recomputed snapshot. The session's map is created on first join.
func (t *Tracker) Join(sessionID, connID string) models.PresenceSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	room, ok := t.rooms[sessionID]
	if !ok {
		room = make(map[string]*entry)
		t.rooms[sessionID] = room
	}
	room[connID] = &entry{isActive: true, joinedAt: time.Now()}
	return t.snapshotLocked(sessionID)
}

// Leave removes connID from the session. The second return is false
// when no broadcast is needed: the session had no map, or this was the
// last member and the map itself was deleted.
func (t *Tracker) Leave(sessionID, connID string) (models.PresenceSnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	room, ok := t.rooms[sessionID]
	if !ok {
		return models.PresenceSnapshot{}, false
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(t.rooms, sessionID)
		return models.PresenceSnapshot{}, false
	}
	return t.snapshotLocked(sessionID), true
}

// SetActive flips the activity flag for connID in the session. It is a
// no-op (false) when the session or the entry does not exist.
func (t *Tracker) SetActive(sessionID, connID string, active bool) (models.PresenceSnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	room, ok := t.rooms[sessionID]
	if !ok {
		return models.PresenceSnapshot{}, false
	}
	e, ok := room[connID]
	if !ok {
		return models.PresenceSnapshot{}, false
	}
	e.isActive = active
	return t.snapshotLocked(sessionID), true
}

// Snapshot returns the current aggregate for the session. A session
// with no members yields the zero-count snapshot.
func (t *Tracker) Snapshot(sessionID string) models.PresenceSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked(sessionID)
}

func (t *Tracker) snapshotLocked(sessionID string) models.PresenceSnapshot {
	room := t.rooms[sessionID]
	snap := models.PresenceSnapshot{Users: make([]models.PresenceUser, 0, len(room))}
	for connID, e := range room {
		snap.UserCount++
		if e.isActive {
			snap.ActiveCount++
		}
		snap.Users = append(snap.Users, models.PresenceUser{
			ID:       ShortID(connID),
			IsActive: e.isActive,
			JoinedAt: e.joinedAt,
		})
	}
	return snap
}

// ShortID is the truncated display form of a connection identifier
// shown to other clients.
func ShortID(connID string) string {
	if len(connID) <= shortIDLen {
		return connID
	}
	return connID[:shortIDLen]
}
