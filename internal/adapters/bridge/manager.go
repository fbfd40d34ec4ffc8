package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

// Manager owns the loopback socket to the emulator bridge script. Connect,
// RoundTrip and Close must be called from a single goroutine; Status may be
// read from anywhere.
type Manager struct {
	address        string
	connectTimeout time.Duration
	drainTimeout   time.Duration
	readTimeout    time.Duration
	dial           dialFunc
	sink           ports.StatusSink
	logger         *logging.Logger
	now            func() time.Time

	conn        net.Conn
	reader      *bufio.Reader
	status      atomic.Pointer[domain.BridgeStatus]
	persistedAt time.Time
}

var _ ports.Bridge = (*Manager)(nil)

func NewManager(opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()

	m := &Manager{
		address:        cfg.address,
		connectTimeout: cfg.connectTimeout,
		drainTimeout:   cfg.drainTimeout,
		readTimeout:    cfg.readTimeout,
		dial:           cfg.dial,
		sink:           cfg.sink,
		logger:         cfg.logger,
		now:            cfg.now,
	}
	initial := domain.NewBridgeStatus(domain.ConnectionDisconnected, m.now())
	m.status.Store(&initial)

	return m
}

func (m *Manager) Address() string {
	return m.address
}

func (m *Manager) Connected() bool {
	return m.conn != nil
}

func (m *Manager) Status() domain.BridgeStatus {
	return *m.status.Load()
}

// Connect dials the bridge, bounded by the connect timeout. On failure the
// status records the error and the caller is expected to retry.
func (m *Manager) Connect(ctx context.Context) error {
	if m.conn != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	conn, err := m.dial(dialCtx, "tcp", m.address)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		classified := classifyDial(err)
		m.setStatus(ctx, domain.NewBridgeStatus(stateFor(classified), m.now()))
		return fmt.Errorf("connect to bridge at %s: %w", m.address, classified)
	}

	m.conn = conn
	m.reader = bufio.NewReader(conn)
	m.setStatus(ctx, domain.NewBridgeStatus(domain.ConnectionTentativelyConnected, m.now()))
	m.logger.Debug("bridge socket opened", "address", m.address)

	return nil
}

// RoundTrip writes one payload line and reads one response line. It is
// bounded by the drain and read timeouts; cancelling ctx does not abort an
// exchange already in flight. Any failure closes the socket.
func (m *Manager) RoundTrip(ctx context.Context, payload domain.BridgePayload) (domain.BridgeFrame, error) {
	if m.conn == nil {
		return domain.BridgeFrame{}, ErrNotConnected
	}

	line, err := EncodePayload(payload)
	if err != nil {
		return domain.BridgeFrame{}, err
	}

	tentative := m.Status().State == domain.ConnectionTentativelyConnected

	frame, err := m.exchange(line)
	if err != nil {
		m.drop()

		state := stateFor(err)
		if tentative {
			m.setStatus(ctx, domain.TentativeFailure(state, m.now()))
		} else {
			m.setStatus(ctx, domain.NewBridgeStatus(state, m.now()))
		}
		return domain.BridgeFrame{}, err
	}

	if tentative {
		m.logger.Info("successfully connected to bridge", "address", m.address)
	}
	m.setStatus(ctx, domain.NewBridgeStatus(domain.ConnectionConnected, m.now()))

	return frame, nil
}

func (m *Manager) exchange(line []byte) (domain.BridgeFrame, error) {
	if err := m.conn.SetWriteDeadline(time.Now().Add(m.drainTimeout)); err != nil {
		return domain.BridgeFrame{}, classifyIO(err, ErrDrainTimeout)
	}
	if _, err := m.conn.Write(line); err != nil {
		return domain.BridgeFrame{}, classifyIO(err, ErrDrainTimeout)
	}

	if err := m.conn.SetReadDeadline(time.Now().Add(m.readTimeout)); err != nil {
		return domain.BridgeFrame{}, classifyIO(err, ErrReadTimeout)
	}
	response, err := m.reader.ReadBytes('\n')
	if err != nil {
		return domain.BridgeFrame{}, classifyIO(err, ErrReadTimeout)
	}

	frame, err := DecodeLine(response)
	if err != nil {
		return domain.BridgeFrame{}, classifyIO(err, ErrReadTimeout)
	}

	return frame, nil
}

func (m *Manager) drop() {
	if m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		m.logger.Debug("close bridge socket", "error", err)
	}
	m.conn = nil
	m.reader = nil
}

// Close releases the socket and marks the client as stopped.
func (m *Manager) Close() error {
	var err error
	if m.conn != nil {
		err = m.conn.Close()
		m.conn = nil
		m.reader = nil
	}

	stopped := domain.BridgeStatus{
		State:     domain.ConnectionDisconnected,
		Text:      domain.StatusStoppedText,
		UpdatedAt: m.now(),
	}
	m.setStatus(context.Background(), stopped)

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close bridge socket: %w", err)
	}
	return nil
}

// setStatus persists a status when it differs from the previous one, and
// otherwise at most once per statusHeartbeat so readers can tell a live client
// from a dead one.
func (m *Manager) setStatus(ctx context.Context, status domain.BridgeStatus) {
	previous := m.status.Swap(&status)
	changed := previous == nil || previous.Text != status.Text || previous.State != status.State ||
		previous.Tentative != status.Tentative
	if changed {
		m.logger.Debug("bridge status changed", "state", string(status.State), "status", status.Text)
	}

	if m.sink == nil {
		return
	}
	if !changed && !m.persistedAt.IsZero() && status.UpdatedAt.Sub(m.persistedAt) < statusHeartbeat {
		return
	}
	if err := m.sink.SaveStatus(context.WithoutCancel(ctx), status); err != nil {
		m.logger.Warn("persist bridge status", "error", err)
		return
	}
	m.persistedAt = status.UpdatedAt
}
