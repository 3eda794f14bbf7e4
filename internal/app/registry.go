package app

import (
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// MemberRef pairs a member with the channel that owns it.
// Conn is a weak reference: the registry never closes it.
type MemberRef struct {
	SID    core.SessionID
	Member *domain.Member
	Conn   core.SignalConnection
}

type roomEntry struct {
	members []*MemberRef // join order
}

func (e *roomEntry) index(sid core.SessionID) int {
	for i, m := range e.members {
		if m.SID == sid {
			return i
		}
	}
	return -1
}

// Registry maps room tokens to their ordered member sets.
// It is only mutated by the presence orchestrator.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[domain.RoomID]*roomEntry
	byChannel map[core.SessionID]domain.RoomID
	prune     bool
}

// NewRegistry builds an empty registry. With pruneEmpty set, a room entry is
// dropped as soon as its last member leaves.
func NewRegistry(pruneEmpty bool) *Registry {
	return &Registry{
		rooms:     make(map[domain.RoomID]*roomEntry),
		byChannel: make(map[core.SessionID]domain.RoomID),
		prune:     pruneEmpty,
	}
}

// AddMember inserts ref into room. It reports false, changing nothing, when
// the channel is already a member of any room.
func (r *Registry) AddMember(room domain.RoomID, ref MemberRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byChannel[ref.SID]; ok {
		return false
	}
	e, ok := r.rooms[room]
	if !ok {
		e = &roomEntry{}
		r.rooms[room] = e
		log.Info().Str("module", "app.registry").Str("room", string(room)).Msg("room created")
	}
	m := ref
	e.members = append(e.members, &m)
	r.byChannel[ref.SID] = room
	log.Info().Str("module", "app.registry").Str("sid", string(ref.SID)).Str("room", string(room)).Str("peer", string(ref.Member.PeerID)).Msg("member added")
	return true
}

// RemoveMember drops the member owned by sid, wherever it is.
func (r *Registry) RemoveMember(sid core.SessionID) (domain.RoomID, MemberRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.byChannel[sid]
	if !ok {
		return "", MemberRef{}, false
	}
	delete(r.byChannel, sid)
	e := r.rooms[room]
	i := e.index(sid)
	if i < 0 {
		return room, MemberRef{}, false
	}
	ref := *e.members[i]
	e.members = append(e.members[:i], e.members[i+1:]...)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("member removed")
	if len(e.members) == 0 && r.prune {
		delete(r.rooms, room)
		log.Info().Str("module", "app.registry").Str("room", string(room)).Msg("room pruned")
	}
	return room, ref, true
}

// MembersOf returns the members of room except exclude, in join order.
func (r *Registry) MembersOf(room domain.RoomID, exclude core.SessionID) []MemberRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]MemberRef, 0, len(e.members))
	for _, m := range e.members {
		if m.SID == exclude {
			continue
		}
		out = append(out, *m)
	}
	return out
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.byChannel[sid]
	return room, ok
}

// PeerInUse reports whether another channel in room already answers to peer.
func (r *Registry) PeerInUse(room domain.RoomID, peer domain.PeerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[room]
	if !ok {
		return false
	}
	for _, m := range e.members {
		if m.Member.PeerID == peer {
			return true
		}
	}
	return false
}

func (r *Registry) MemberCount(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.rooms[room]; ok {
		return len(e.members)
	}
	return 0
}

// HasRoom reports whether room has an entry, empty or not.
func (r *Registry) HasRoom(room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room]
	return ok
}

func (r *Registry) List() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for name, e := range r.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: len(e.members)})
	}
	return out
}

// Snapshot is a transport-free view of room for APIs.
func (r *Registry) Snapshot(room domain.RoomID) []core.MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[room]
	if !ok {
		return []core.MemberDTO{}
	}
	out := make([]core.MemberDTO, 0, len(e.members))
	for _, m := range e.members {
		out = append(out, core.MemberDTO{
			PeerID:   m.Member.PeerID,
			Name:     m.Member.Name,
			JoinedAt: m.Member.JoinedAt,
		})
	}
	return out
}
