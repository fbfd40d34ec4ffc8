package bridge

import (
	"context"
	"net"
	"time"

	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

const (
	DefaultAddress        = "localhost:52980"
	DefaultConnectTimeout = 10 * time.Second
	DefaultDrainTimeout   = 1500 * time.Millisecond
	DefaultReadTimeout    = 5 * time.Second

	statusHeartbeat = 10 * time.Second
)

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type Option func(*config)

type config struct {
	address        string
	connectTimeout time.Duration
	drainTimeout   time.Duration
	readTimeout    time.Duration
	dial           dialFunc
	sink           ports.StatusSink
	logger         *logging.Logger
	now            func() time.Time
}

func defaultConfig() config {
	var dialer net.Dialer
	return config{
		address:        DefaultAddress,
		connectTimeout: DefaultConnectTimeout,
		drainTimeout:   DefaultDrainTimeout,
		readTimeout:    DefaultReadTimeout,
		dial:           dialer.DialContext,
		logger:         logging.Nop(),
		now:            time.Now,
	}
}

// normalize restores defaults for zero or negative settings.
func (c *config) normalize() {
	defaults := defaultConfig()
	if c.address == "" {
		c.address = defaults.address
	}
	if c.connectTimeout <= 0 {
		c.connectTimeout = defaults.connectTimeout
	}
	if c.drainTimeout <= 0 {
		c.drainTimeout = defaults.drainTimeout
	}
	if c.readTimeout <= 0 {
		c.readTimeout = defaults.readTimeout
	}
	if c.dial == nil {
		c.dial = defaults.dial
	}
	if c.logger == nil {
		c.logger = defaults.logger
	}
	if c.now == nil {
		c.now = defaults.now
	}
}

func WithAddress(address string) Option {
	return func(c *config) {
		c.address = address
	}
}

// WithTimeouts overrides the connect, write-drain and read timeouts. Zero
// values keep the defaults.
func WithTimeouts(connect, drain, read time.Duration) Option {
	return func(c *config) {
		c.connectTimeout = connect
		c.drainTimeout = drain
		c.readTimeout = read
	}
}

// WithStatusSink receives every status change, e.g. to expose it to other processes.
func WithStatusSink(sink ports.StatusSink) Option {
	return func(c *config) {
		c.sink = sink
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func withDialer(dial dialFunc) Option {
	return func(c *config) {
		c.dial = dial
	}
}

func withClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
