package app

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	CloseChannel
)

// Policy decides what happens to a recipient whose channel rejected a notice.
// It never affects registry state directly.
type Policy interface {
	OnDeliveryFailure(room domain.RoomID, member MemberRef, err error) BackpressureAction
}

// IgnorePolicy leaves slow recipients alone.
type IgnorePolicy struct{}

func (IgnorePolicy) OnDeliveryFailure(domain.RoomID, MemberRef, error) BackpressureAction {
	return NoAction
}

// ClosePolicy closes the transport of a recipient that failed delivery.
// The transport closure then produces the member's own disconnect.
type ClosePolicy struct{}

func (ClosePolicy) OnDeliveryFailure(domain.RoomID, MemberRef, error) BackpressureAction {
	return CloseChannel
}

// PolicyByName maps the config value to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "ignore":
		return IgnorePolicy{}, nil
	case "close":
		return ClosePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
