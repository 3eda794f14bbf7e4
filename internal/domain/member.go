package domain

import (
	"time"
	"unicode/utf8"
)

const MaxDisplayNameLen = 64

// Member is a participant's registration within a room.
// No transport or lifecycle logic here.
type Member struct {
	PeerID   PeerID
	Name     string
	JoinedAt time.Time
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(peer PeerID, name string) (*Member, error) {
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return nil, ErrNameTooLong
	}
	return &Member{PeerID: peer, Name: name, JoinedAt: time.Now()}, nil
}
