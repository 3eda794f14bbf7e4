// Package orch holds the presence protocol: channel lifecycle events mutate
// the room registry and fan presence notices out to the other members.
package orch

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Event is a channel lifecycle event handled by the orchestrator.
type Event interface {
	Session() core.SessionID
}

// Connect registers a freshly opened channel.
type Connect struct {
	SID  core.SessionID
	Conn core.SignalConnection
}

// Join asks to place a channel in a room under the given peer id.
type Join struct {
	SID    core.SessionID
	Room   domain.RoomID
	PeerID domain.PeerID
	Name   string
}

// Disconnect reports transport closure of a channel.
type Disconnect struct {
	SID core.SessionID
}

func (e Connect) Session() core.SessionID    { return e.SID }
func (e Join) Session() core.SessionID       { return e.SID }
func (e Disconnect) Session() core.SessionID { return e.SID }

type channel struct {
	state core.ChannelState
	conn  core.SignalConnection
	room  domain.RoomID
	// unannounced holds joiners whose user-connected this channel never got.
	unannounced map[core.SessionID]struct{}
}

// PublishResult reports delivery stats of one fanout.
type PublishResult struct {
	SentTo  int
	Dropped []app.MemberRef
}

// Orchestrator is the presence coordinator. Every event handler runs to
// completion under mu, so no handler observes a partial registry mutation.
type Orchestrator struct {
	Registry *app.Registry
	Policy   app.Policy

	mu       sync.Mutex
	channels map[core.SessionID]*channel
}

func New(reg *app.Registry, policy app.Policy) *Orchestrator {
	if policy == nil {
		policy = app.IgnorePolicy{}
	}
	return &Orchestrator{
		Registry: reg,
		Policy:   policy,
		channels: make(map[core.SessionID]*channel),
	}
}

// Dispatch applies ev. Returned errors are informational: the registry is
// never left inconsistent by a rejected event.
func (o *Orchestrator) Dispatch(ev Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch e := ev.(type) {
	case Connect:
		return o.handleConnect(e)
	case Join:
		return o.handleJoin(e)
	case Disconnect:
		o.handleDisconnect(e)
		return nil
	default:
		log.Warn().Str("module", "orch").Str("sid", string(ev.Session())).Msgf("unknown event %T", ev)
		return nil
	}
}

func (o *Orchestrator) Connect(sid core.SessionID, conn core.SignalConnection) error {
	return o.Dispatch(Connect{SID: sid, Conn: conn})
}

func (o *Orchestrator) Join(sid core.SessionID, room domain.RoomID, peer domain.PeerID, name string) error {
	return o.Dispatch(Join{SID: sid, Room: room, PeerID: peer, Name: name})
}

func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	_ = o.Dispatch(Disconnect{SID: sid})
}

// State returns the presence state of sid. Unknown channels read as closed.
func (o *Orchestrator) State(sid core.SessionID) core.ChannelState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ch, ok := o.channels[sid]; ok {
		return ch.state
	}
	return core.StateClosed
}

func (o *Orchestrator) Rooms() []core.RoomInfo {
	return o.Registry.List()
}

func (o *Orchestrator) Members(room domain.RoomID) []core.MemberDTO {
	return o.Registry.Snapshot(room)
}

// fanout delivers n to every member of room except from and those skip
// rejects. A failed send only affects its own recipient.
func (o *Orchestrator) fanout(room domain.RoomID, from core.SessionID, n core.Notice, skip func(app.MemberRef) bool) PublishResult {
	res := PublishResult{}
	targets := o.Registry.MembersOf(room, from)
	if len(targets) == 0 {
		return res
	}
	frame, err := json.Marshal(n)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode notice")
		return res
	}
	for _, m := range targets {
		if m.Conn == nil || (skip != nil && skip(m)) {
			continue
		}
		if err := m.Conn.TrySend(frame); err != nil {
			log.Warn().Err(err).
				Str("module", "orch").
				Str("room", string(room)).
				Str("dst_sid", string(m.SID)).
				Str("notice", n.Type).
				Msg("delivery failed")
			res.Dropped = append(res.Dropped, m)
			if o.Policy.OnDeliveryFailure(room, m, err) == app.CloseChannel {
				m.Conn.Close()
			}
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "orch").Str("room", string(room)).Str("from", string(from)).Str("notice", n.Type).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("fanout result")
	return res
}
