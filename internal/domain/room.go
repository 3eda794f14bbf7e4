package domain

import (
	"strings"

	"github.com/google/uuid"
)

const (
	MaxRoomIDLen = 128
	MaxPeerIDLen = 128
)

type (
	RoomID string
	PeerID string
)

// ParseRoomID checks a client-supplied room token. Tokens are taken byte for
// byte: "abc " and "abc" are different rooms. Unknown tokens are fine; rooms
// are created lazily on first join.
//
// The tokens healthz, ws and favicon.ico are valid here but have no entry
// page, since those paths are served by fixed routes.
func ParseRoomID(raw string) (RoomID, error) {
	if raw == "" || len(raw) > MaxRoomIDLen || strings.ContainsAny(raw, "/?#") {
		return "", ErrInvalidRoom
	}
	return RoomID(raw), nil
}

func ParsePeerID(raw string) (PeerID, error) {
	if raw == "" || len(raw) > MaxPeerIDLen {
		return "", ErrInvalidPeerID
	}
	return PeerID(raw), nil
}

// TokenIssuer hands out room tokens for fresh sessions.
type TokenIssuer interface {
	NewRoomToken() RoomID
}

type UUIDIssuer struct{}

func (UUIDIssuer) NewRoomToken() RoomID {
	return RoomID(uuid.NewString())
}
