package types

import "time"

// UserEventType names a user lifecycle transition.
type UserEventType string

const (
	UserRegistered UserEventType = "user.registered"
	UserUpdated    UserEventType = "user.updated"
	UserDeleted    UserEventType = "user.deleted"
)

// UserEvent is published on the user events channel after a successful write.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     string        `json:"user_id"`
	OccurredAt time.Time     `json:"occurred_at"`
}
