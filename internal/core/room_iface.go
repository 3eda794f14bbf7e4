package core

import (
	"time"

	"github.com/dkeye/Huddle/internal/domain"
)

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	PeerID   domain.PeerID `json:"peer_id"`
	Name     string        `json:"name,omitempty"`
	JoinedAt time.Time     `json:"joined_at"`
}

type RoomInfo struct {
	Name        domain.RoomID `json:"name"`
	MemberCount int           `json:"client_count"`
}

// Notice is an outbound presence event.
type Notice struct {
	Type   string        `json:"type"`
	PeerID domain.PeerID `json:"peerId"`
}

const (
	NoticeUserConnected    = "user-connected"
	NoticeUserDisconnected = "user-disconnected"
)
