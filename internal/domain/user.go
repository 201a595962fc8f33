package domain

import "time"

const MaxUsernameLen = 36

type UserID string

// User is a persisted account. The username doubles as the identity
// claimed on the control channel.
type User struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidIdentity checks the shape of an identity string before it is
// allowed anywhere near the admission state machine.
func ValidIdentity(identity string) bool {
	return len(identity) > 0 && len(identity) <= MaxUsernameLen
}
