package domain

import "errors"

var (
	// ErrValidation covers malformed input (missing roomId/identity);
	// it never changes admission state.
	ErrValidation = errors.New("validation failed")

	// ErrStore means the persistent backing store failed. Callers must
	// treat it as "deny admission, report failure", never as approval.
	ErrStore = errors.New("store unavailable")

	// ErrUnknownConnection is returned for grant/deny on a connection
	// that already left the registry. Logged, never fatal.
	ErrUnknownConnection = errors.New("unknown connection")

	ErrRoomTaken = errors.New("room id already taken")
	ErrNotFound  = errors.New("not found")
)
