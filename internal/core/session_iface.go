package core

// SessionID identifies one connected channel for its lifetime.
type SessionID string

// ChannelState is the presence state of a channel.
type ChannelState int

const (
	StateConnected ChannelState = iota
	StateJoined
	StateClosed
)

func (s ChannelState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
