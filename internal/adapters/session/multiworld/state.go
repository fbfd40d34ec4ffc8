package multiworld

import (
	"maps"
	"slices"

	"github.com/bnema/ff1c/internal/domain"
)

// sessionState is immutable once published; the reader goroutine replaces
// it wholesale and other goroutines read it without locking.
type sessionState struct {
	ready   bool
	slot    int
	players map[int]string
	missing []domain.LocationID
	checked []domain.LocationID
	items   []domain.Item
}

func (s *sessionState) clone() *sessionState {
	return &sessionState{
		ready:   s.ready,
		slot:    s.slot,
		players: maps.Clone(s.players),
		missing: slices.Clone(s.missing),
		checked: slices.Clone(s.checked),
		items:   slices.Clone(s.items),
	}
}

func (s *sessionState) bind(p connectedPacket) {
	s.ready = true
	s.slot = p.Slot
	s.players = make(map[int]string, len(p.Players))
	for _, player := range p.Players {
		s.players[player.Slot] = player.displayName()
	}
	s.missing = sortedLocations(slices.DeleteFunc(slices.Clone(p.MissingLocations), func(id domain.LocationID) bool {
		return !id.Trackable()
	}))
	s.checked = sortedLocations(p.CheckedLocations)
}

func (s *sessionState) update(p roomUpdatePacket) {
	if len(p.Players) > 0 {
		if s.players == nil {
			s.players = make(map[int]string, len(p.Players))
		}
		for _, player := range p.Players {
			s.players[player.Slot] = player.displayName()
		}
	}

	if len(p.CheckedLocations) == 0 {
		return
	}
	done := make(map[domain.LocationID]struct{}, len(p.CheckedLocations))
	for _, id := range p.CheckedLocations {
		done[id] = struct{}{}
	}
	s.missing = slices.DeleteFunc(s.missing, func(id domain.LocationID) bool {
		_, ok := done[id]
		return ok
	})
	for _, id := range p.CheckedLocations {
		if !slices.Contains(s.checked, id) {
			s.checked = append(s.checked, id)
		}
	}
	slices.Sort(s.checked)
}

// receive applies a ReceivedItems packet. It reports false when the index
// does not line up with what is already known and a resync is needed.
func (s *sessionState) receive(p receivedItemsPacket) bool {
	switch {
	case p.Index == 0:
		s.items = s.items[:0]
	case p.Index != len(s.items):
		return false
	}

	for _, item := range p.Items {
		s.items = append(s.items, item.toDomain())
	}
	return true
}

func sortedLocations(ids []domain.LocationID) []domain.LocationID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}
