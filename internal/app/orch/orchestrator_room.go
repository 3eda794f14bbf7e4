package orch

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleConnect(e Connect) error {
	if _, ok := o.channels[e.SID]; ok {
		return fmt.Errorf("connect %s: %w", e.SID, domain.ErrChannelExists)
	}
	o.channels[e.SID] = &channel{state: core.StateConnected, conn: e.Conn}
	log.Info().Str("module", "orch").Str("sid", string(e.SID)).Msg("channel connected")
	return nil
}

func (o *Orchestrator) handleJoin(e Join) error {
	ch, ok := o.channels[e.SID]
	if !ok {
		return fmt.Errorf("join %s: %w", e.SID, domain.ErrUnknownChannel)
	}
	if ch.state == core.StateJoined {
		log.Warn().
			Str("module", "orch").
			Str("sid", string(e.SID)).
			Str("room", string(ch.room)).
			Str("requested_room", string(e.Room)).
			Msg("duplicate join rejected")
		return fmt.Errorf("join %s: %w", e.Room, domain.ErrDuplicateJoin)
	}
	if e.Room == "" {
		return domain.ErrInvalidRoom
	}
	if e.PeerID == "" {
		return domain.ErrInvalidPeerID
	}
	if o.Registry.PeerInUse(e.Room, e.PeerID) {
		log.Warn().Str("module", "orch").Str("sid", string(e.SID)).Str("room", string(e.Room)).Str("peer", string(e.PeerID)).Msg("peer id in use")
		return fmt.Errorf("join %s as %s: %w", e.Room, e.PeerID, domain.ErrPeerIDInUse)
	}
	member, err := domain.NewMember(e.PeerID, e.Name)
	if err != nil {
		return fmt.Errorf("join %s: %w", e.Room, err)
	}

	if !o.Registry.AddMember(e.Room, app.MemberRef{SID: e.SID, Member: member, Conn: ch.conn}) {
		log.Error().Str("module", "orch").Str("sid", string(e.SID)).Str("room", string(e.Room)).Msg("channel already registered")
		return fmt.Errorf("join %s: %w", e.Room, domain.ErrDuplicateJoin)
	}
	ch.state = core.StateJoined
	ch.room = e.Room
	log.Info().Str("module", "orch").Str("sid", string(e.SID)).Str("room", string(e.Room)).Str("peer", string(e.PeerID)).Msg("joined room")

	res := o.fanout(e.Room, e.SID, core.Notice{Type: core.NoticeUserConnected, PeerID: e.PeerID}, nil)
	for _, m := range res.Dropped {
		if dst, ok := o.channels[m.SID]; ok {
			if dst.unannounced == nil {
				dst.unannounced = make(map[core.SessionID]struct{})
			}
			dst.unannounced[e.SID] = struct{}{}
		}
	}
	return nil
}

func (o *Orchestrator) handleDisconnect(e Disconnect) {
	ch, ok := o.channels[e.SID]
	if !ok {
		return
	}
	delete(o.channels, e.SID)
	if ch.state != core.StateJoined {
		log.Info().Str("module", "orch").Str("sid", string(e.SID)).Msg("channel closed before join")
		return
	}

	room, ref, ok := o.Registry.RemoveMember(e.SID)
	if !ok {
		log.Error().Str("module", "orch").Str("sid", string(e.SID)).Str("room", string(ch.room)).Msg("joined channel missing from registry")
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(e.SID)).Str("room", string(room)).Str("peer", string(ref.Member.PeerID)).Msg("left room")

	// A member that never learned about this peer must not hear it leave.
	o.fanout(room, e.SID, core.Notice{Type: core.NoticeUserDisconnected, PeerID: ref.Member.PeerID}, func(m app.MemberRef) bool {
		dst, ok := o.channels[m.SID]
		if !ok {
			return false
		}
		if _, missed := dst.unannounced[e.SID]; missed {
			delete(dst.unannounced, e.SID)
			return true
		}
		return false
	})
}
