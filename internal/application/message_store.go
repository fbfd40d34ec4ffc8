package application

import (
	"sync/atomic"
	"time"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/ports"
)

// messageRetention bounds how long entries are kept after they stop being visible.
const messageRetention = 10 * time.Minute

// MessageStore holds display messages for the bridge. Writers append by
// swapping in a new slice and readers take the current slice without
// blocking, so the session reader and the sync loop never wait on each other.
type MessageStore struct {
	clock   ports.Clock
	entries atomic.Pointer[[]domain.PendingMessage]
}

func NewMessageStore(clock ports.Clock) *MessageStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	s := &MessageStore{clock: clock}
	s.entries.Store(&[]domain.PendingMessage{})
	return s
}

// Add records text under the current time and returns the stored message.
func (s *MessageStore) Add(text string, discriminator int64) domain.PendingMessage {
	msg := domain.PendingMessage{
		Key:  domain.MessageKey{At: s.clock.Now(), Discriminator: discriminator},
		Text: text,
	}
	s.Put(msg)
	return msg
}

func (s *MessageStore) Put(msg domain.PendingMessage) {
	for {
		current := s.entries.Load()
		next := make([]domain.PendingMessage, 0, len(*current)+1)
		for _, existing := range *current {
			if msg.Key.At.Sub(existing.Key.At) < messageRetention {
				next = append(next, existing)
			}
		}
		next = append(next, msg)

		if s.entries.CompareAndSwap(current, &next) {
			return
		}
	}
}

// Snapshot returns every retained message in arrival order. The returned
// slice is never mutated by the store.
func (s *MessageStore) Snapshot() []domain.PendingMessage {
	return *s.entries.Load()
}

// Visible returns the messages still inside the display window at now.
func (s *MessageStore) Visible(now time.Time) []domain.PendingMessage {
	var visible []domain.PendingMessage
	for _, msg := range s.Snapshot() {
		if msg.VisibleAt(now) {
			visible = append(visible, msg)
		}
	}
	return visible
}
