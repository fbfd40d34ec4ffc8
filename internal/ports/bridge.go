package ports

import (
	"context"

	"github.com/bnema/ff1c/internal/domain"
)

type Bridge interface {
	Connected() bool
	Connect(ctx context.Context) error
	RoundTrip(ctx context.Context, payload domain.BridgePayload) (domain.BridgeFrame, error)
	Status() domain.BridgeStatus
	Close() error
}
