package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/bnema/ff1c/internal/domain"
)

var (
	ErrNotConnected    = errors.New("bridge not connected")
	ErrConnectTimeout  = errors.New("bridge connect timed out")
	ErrConnectRefused  = errors.New("bridge connect refused")
	ErrDrainTimeout    = errors.New("bridge write timed out")
	ErrReadTimeout     = errors.New("bridge read timed out")
	ErrConnectionReset = errors.New("bridge connection reset")
	ErrDecode          = errors.New("decode bridge frame")
	ErrShortSnapshot   = fmt.Errorf("%w: snapshot too short", ErrDecode)
)

// stateFor maps a classified bridge error to the status it should leave behind.
func stateFor(err error) domain.ConnectionState {
	switch {
	case errors.Is(err, ErrConnectTimeout), errors.Is(err, ErrDrainTimeout), errors.Is(err, ErrReadTimeout):
		return domain.ConnectionErrorTimingOut
	case errors.Is(err, ErrConnectRefused):
		return domain.ConnectionErrorRefused
	default:
		return domain.ConnectionErrorReset
	}
}

func classifyDial(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %w", ErrConnectTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrConnectRefused, err)
}

func classifyIO(err error, timeoutKind error) error {
	switch {
	case errors.Is(err, ErrDecode):
		return fmt.Errorf("%w: %w", ErrConnectionReset, err)
	case isTimeout(err):
		return fmt.Errorf("%w: %w", timeoutKind, err)
	default:
		return fmt.Errorf("%w: %w", ErrConnectionReset, err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
