package models

import "time"

// PresenceUser is one room member as shown to clients. ID is the
// truncated display form of the connection identifier, not the full id.
type PresenceUser struct {
	ID       string    `json:"id"`
	IsActive bool      `json:"isActive"`
	JoinedAt time.Time `json:"joinedAt"`
}

// PresenceSnapshot aggregates who is in a room right now.
type PresenceSnapshot struct {
	UserCount   int            `json:"userCount"`
	ActiveCount int            `json:"activeCount"`
	Users       []PresenceUser `json:"users"`
}
