package application

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
)

type steppedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMessageStoreAddUsesClock(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(now).Once()

	store := NewMessageStore(clock)
	msg := store.Add("Received Sword", domain.SystemDiscriminator)

	assert.Equal(t, now, msg.Key.At)
	assert.Equal(t, []domain.PendingMessage{msg}, store.Snapshot())
}

func TestMessageStoreVisibleWindow(t *testing.T) {
	clock := &steppedClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)}
	store := NewMessageStore(clock)
	created := store.Add("hello", domain.SystemDiscriminator)

	assert.Len(t, store.Visible(created.Key.At.Add(9*time.Second)), 1)
	assert.Empty(t, store.Visible(created.Key.At.Add(10*time.Second)))

	// still retained, only filtered at read time
	assert.Len(t, store.Snapshot(), 1)
}

func TestMessageStorePrunesLongExpiredEntries(t *testing.T) {
	clock := &steppedClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)}
	store := NewMessageStore(clock)
	store.Add("old", domain.SystemDiscriminator)

	clock.Advance(messageRetention + time.Second)
	fresh := store.Add("new", 7)

	assert.Equal(t, []domain.PendingMessage{fresh}, store.Snapshot())
}

func TestMessageStoreConcurrentAppendAndRead(t *testing.T) {
	clock := &steppedClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)}
	store := NewMessageStore(clock)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			store.Add(fmt.Sprintf("msg-%d", i), int64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			snapshot := store.Snapshot()
			for j := 1; j < len(snapshot); j++ {
				assert.Less(t, snapshot[j-1].Key.Discriminator, snapshot[j].Key.Discriminator)
			}
		}
	}()
	wg.Wait()

	assert.Len(t, store.Snapshot(), 200)
}
