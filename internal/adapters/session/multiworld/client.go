// Package multiworld is a websocket client for the multiworld server. It
// performs the slot handshake, tracks the session state the sync loop needs
// and forwards server notices as domain.RemoteEvent values.
package multiworld

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

const (
	DefaultPort         = "38281"
	defaultWriteTimeout = 10 * time.Second
)

var (
	ErrNotConnected      = errors.New("multiworld session not connected")
	ErrConnectionRefused = errors.New("multiworld server refused connection")
	ErrUnsupportedScheme = errors.New("unsupported server address scheme")
)

// Identity is what the client presents in its Connect packet.
type Identity struct {
	Name     string
	Password string
	UUID     string
	Version  domain.Version
}

type Client struct {
	url          string
	identity     Identity
	dialer       *websocket.Dialer
	onEvent      func(domain.RemoteEvent)
	logger       *logging.Logger
	writeTimeout time.Duration

	writeMu sync.Mutex
	conn    *websocket.Conn

	state atomic.Pointer[sessionState]
}

var (
	_ ports.Session         = (*Client)(nil)
	_ ports.PlayerDirectory = (*Client)(nil)
)

type Option func(*Client)

// WithEventHandler receives every decoded server notice on the reader goroutine.
func WithEventHandler(handler func(domain.RemoteEvent)) Option {
	return func(c *Client) {
		c.onEvent = handler
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func withDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

func NewClient(address string, identity Identity, opts ...Option) (*Client, error) {
	target, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	c := &Client{
		url:          target,
		identity:     identity,
		dialer:       websocket.DefaultDialer,
		logger:       logging.Nop(),
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Store(&sessionState{})

	return c, nil
}

// NormalizeAddress turns "host", "host:port" or a full URL into a websocket
// URL, filling in the default server port.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", domain.ErrServerAddressUnset
	}
	if !strings.Contains(address, "://") {
		address = "ws://" + address
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("parse server address %q: %w", address, err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("parse server address %q: missing host", address)
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), DefaultPort)
	}

	return u.String(), nil
}

func (c *Client) URL() string {
	return c.url
}

// Run dials the server and reads packets until ctx is done or the socket
// fails. It returns nil only when ctx ended the session.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial multiworld server %s: %w", c.url, err)
	}

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	defer func() {
		c.writeMu.Lock()
		c.conn = nil
		c.writeMu.Unlock()
		_ = conn.Close()
		c.markNotReady()
	}()

	c.logger.Info("connected to multiworld server", "url", c.url)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read multiworld server: %w", err)
		}

		if err := c.handleFrame(ctx, frame); err != nil {
			return err
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, frame []byte) error {
	packets, err := splitPackets(frame)
	if err != nil {
		c.logger.Warn("dropping malformed server frame", "error", err)
		return nil
	}

	for _, raw := range packets {
		if err := c.handlePacket(ctx, raw); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) handlePacket(ctx context.Context, raw json.RawMessage) error {
	cmd, err := packetCmd(raw)
	if err != nil {
		c.logger.Warn("dropping malformed server packet", "error", err)
		return nil
	}

	switch cmd {
	case "RoomInfo":
		var p roomInfoPacket
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.malformed(cmd, err)
		}
		if p.Password && c.identity.Password == "" {
			c.logger.Warn("server expects a password but none is configured")
		}
		connect := domain.NewConnect(c.identity.Name, c.identity.Password, c.identity.UUID, c.identity.Version)
		return c.SendMessages(ctx, connect)

	case "ConnectionRefused":
		var p connectionRefusedPacket
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.malformed(cmd, err)
		}
		c.markNotReady()
		return fmt.Errorf("%w: %s", ErrConnectionRefused, strings.Join(p.Errors, ", "))

	case "Connected":
		var p connectedPacket
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.malformed(cmd, err)
		}
		next := c.state.Load().clone()
		next.bind(p)
		c.state.Store(next)
		if dropped := len(p.MissingLocations) - len(next.missing); dropped > 0 {
			c.logger.Warn("ignoring missing locations outside the tracked range", "count", dropped)
		}
		c.logger.Info("bound to slot", "slot", p.Slot, "missing", len(next.missing), "checked", len(next.checked))
		c.emit(domain.ConnectedEvent{
			Slot:             p.Slot,
			MissingLocations: slices.Clone(next.missing),
			CheckedLocations: slices.Clone(next.checked),
		})

	case "RoomUpdate":
		var p roomUpdatePacket
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.malformed(cmd, err)
		}
		next := c.state.Load().clone()
		next.update(p)
		c.state.Store(next)

	case "ReceivedItems":
		var p receivedItemsPacket
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.malformed(cmd, err)
		}
		next := c.state.Load().clone()
		if !next.receive(p) {
			c.logger.Debug("received items out of order, resyncing", "index", p.Index, "known", len(next.items))
			return c.SendMessages(ctx, domain.NewSync())
		}
		c.state.Store(next)

		items := make([]domain.Item, 0, len(p.Items))
		for _, item := range p.Items {
			items = append(items, item.toDomain())
		}
		c.emit(domain.ReceivedItemsEvent{Index: p.Index, Items: items})

	case "Print":
		var p printPacket
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.malformed(cmd, err)
		}
		c.emit(domain.PrintEvent{Text: p.Text})

	case "PrintJSON":
		var p printJSONPacket
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.malformed(cmd, err)
		}
		c.emit(domain.PrintJSONEvent{
			Type:      domain.PrintJSONType(p.Type),
			Receiving: p.Receiving,
			Item:      p.Item.toDomain(),
			Text:      p.text(),
		})

	default:
		c.emit(domain.UnknownEvent{Cmd: cmd})
	}

	return nil
}

func (c *Client) malformed(cmd string, err error) error {
	c.logger.Warn("dropping malformed server packet", "cmd", cmd, "error", err)
	return nil
}

func (c *Client) emit(ev domain.RemoteEvent) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

func (c *Client) markNotReady() {
	current := c.state.Load()
	if !current.ready {
		return
	}
	next := current.clone()
	next.ready = false
	c.state.Store(next)
}

// SendMessages writes commands as one frame. It is safe for concurrent use.
func (c *Client) SendMessages(ctx context.Context, commands ...domain.Command) error {
	if len(commands) == 0 {
		return nil
	}

	data, err := encodeCommands(commands)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", commands[0].CommandName(), err)
	}

	return nil
}

func (c *Client) Ready() bool {
	return c.state.Load().ready
}

func (c *Client) Slot() int {
	return c.state.Load().slot
}

func (c *Client) PlayerName(slot int) string {
	if name, ok := c.state.Load().players[slot]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Player %d", slot)
}

func (c *Client) MissingLocations() []domain.LocationID {
	return slices.Clone(c.state.Load().missing)
}

func (c *Client) CheckedLocations() []domain.LocationID {
	return slices.Clone(c.state.Load().checked)
}

func (c *Client) ItemsReceived() []domain.Item {
	return slices.Clone(c.state.Load().items)
}
