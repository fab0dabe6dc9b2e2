package core

// Frame is a raw payload for the signal transport.
type Frame []byte

// SessionID identifies one transport connection (client token).
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
