// Package core defines the types shared between the session manager and
// the transport adapters: connection identity, the outbound endpoint
// abstraction, and the control-channel wire events.
package core

// ConnID identifies one live control-channel connection.
type ConnID string

// Frame is a raw payload relayed without inspection.
type Frame []byte

// Sender is the outbound side of a control-channel connection.
// Send marshals and enqueues without blocking; a full send buffer drops
// the event (best-effort fanout). Owned by the adapter; the adapter
// must Close() it.
type Sender interface {
	Send(v any) error
	Close()
}
