package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	Type   string `json:"type"`
	Room   string `json:"room"`
	PeerID string `json:"peerId"`
	Name   string `json:"name,omitempty"`
}

// handleJoin forwards a join request. Rejections are logged only; the client
// learns about its partners solely through presence notices.
func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	room, err := domain.ParseRoomID(p.Room)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join rejected")
		return
	}
	peer, err := domain.ParsePeerID(p.PeerID)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join rejected")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Str("peer", string(peer)).Msg("join")
	if err := ctl.Orch.Join(sid, room, peer, p.Name); err != nil {
		ev := log.Warn()
		if !errors.Is(err, domain.ErrDuplicateJoin) && !errors.Is(err, domain.ErrPeerIDInUse) {
			ev = log.Error()
		}
		ev.Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join rejected")
	}
}
