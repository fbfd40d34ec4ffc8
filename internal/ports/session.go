package ports

import (
	"context"

	"github.com/bnema/ff1c/internal/domain"
)

// Session is the multiworld session as seen by the sync loop.
type Session interface {
	SendMessages(ctx context.Context, commands ...domain.Command) error
	MissingLocations() []domain.LocationID
	ItemsReceived() []domain.Item
	Ready() bool
}

type PlayerDirectory interface {
	Slot() int
	PlayerName(slot int) string
}
