package ports

import (
	"context"

	"github.com/bnema/ff1c/internal/domain"
)

type StatusSink interface {
	SaveStatus(ctx context.Context, status domain.BridgeStatus) error
}

type StatusRepository interface {
	StatusSink
	LoadStatus(ctx context.Context) (domain.BridgeStatus, error)
}
