// Package domain contains entities without transport logic, just meta-data
package domain

import "errors"

var (
	ErrInvalidRoom    = errors.New("invalid room token")
	ErrInvalidPeerID  = errors.New("invalid peer id")
	ErrNameTooLong    = errors.New("display name too long")
	ErrDuplicateJoin  = errors.New("channel already joined a room")
	ErrPeerIDInUse    = errors.New("peer id already in use in room")
	ErrUnknownChannel = errors.New("unknown channel")
	ErrChannelExists  = errors.New("channel already connected")
)
