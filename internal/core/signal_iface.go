package core

// Frame is a raw encoded signaling payload.
type Frame []byte

// SignalConnection abstracts the messaging transport of one channel.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues f without blocking.
	TrySend(f Frame) error
	Close()
}
