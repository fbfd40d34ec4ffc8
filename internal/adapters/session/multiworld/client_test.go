package multiworld

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/ff1c/internal/domain"
)

// fakeServer upgrades one connection and hands it to script.
func fakeServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(server.Close)

	return server
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func readCommands(t *testing.T, conn *websocket.Conn) []map[string]any {
	t.Helper()

	_, data, err := conn.ReadMessage()
	if !assert.NoError(t, err) {
		return nil
	}
	var commands []map[string]any
	assert.NoError(t, json.Unmarshal(data, &commands))
	return commands
}

type eventLog struct {
	mu     sync.Mutex
	events []domain.RemoteEvent
}

func (l *eventLog) add(ev domain.RemoteEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []domain.RemoteEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.RemoteEvent(nil), l.events...)
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "localhost", want: "ws://localhost:38281"},
		{in: "archipelago.gg:51234", want: "ws://archipelago.gg:51234"},
		{in: "wss://archipelago.gg", want: "wss://archipelago.gg:38281"},
		{in: "http://127.0.0.1:9000", want: "ws://127.0.0.1:9000"},
		{in: " https://example.com ", want: "wss://example.com:38281"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeAddress(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAddressErrors(t *testing.T) {
	_, err := NormalizeAddress("  ")
	assert.ErrorIs(t, err, domain.ErrServerAddressUnset)

	_, err = NormalizeAddress("ftp://example.com")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestClientHandshakeAndState(t *testing.T) {
	connectSeen := make(chan map[string]any, 1)
	syncSeen := make(chan map[string]any, 1)
	finished := make(chan struct{})

	server := fakeServer(t, func(conn *websocket.Conn) {
		send(t, conn, `[{"cmd":"RoomInfo","password":false,"games":["Final Fantasy"]}]`)

		commands := readCommands(t, conn)
		if len(commands) == 1 {
			connectSeen <- commands[0]
		}

		send(t, conn, `[
			{"cmd":"Connected","team":0,"slot":1,
			 "players":[{"team":0,"slot":1,"alias":"Warrior","name":"w"},{"team":0,"slot":2,"alias":"","name":"Mage"}],
			 "missing_locations":[262,257],"checked_locations":[300]},
			{"cmd":"ReceivedItems","index":0,"items":[{"item":17,"location":300,"player":2,"flags":1}]}
		]`)
		send(t, conn, `[{"cmd":"ReceivedItems","index":5,"items":[{"item":99,"location":1,"player":2,"flags":0}]}]`)

		commands = readCommands(t, conn)
		if len(commands) == 1 {
			syncSeen <- commands[0]
		}

		send(t, conn, `[{"cmd":"RoomUpdate","checked_locations":[257]}]`)
		send(t, conn, `[{"cmd":"PrintJSON","type":"Hint","receiving":1,
			"item":{"item":17,"location":512,"player":2,"flags":0},
			"data":[{"text":"Warrior"},{"text":"'s Lute"}]}]`)
		send(t, conn, `[{"cmd":"Print","text":"Welcome"},{"cmd":"Bounced"}]`)

		<-finished
	})

	events := &eventLog{}
	client, err := NewClient(server.URL, Identity{
		Name:    "Warrior",
		UUID:    "b1946ac9-2b9d-4c3b-9a37-5e1f2d7c8a10",
		Version: domain.Version{Major: 0, Minor: 5, Build: 0, Class: "Version"},
	}, WithEventHandler(events.add))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	select {
	case connect := <-connectSeen:
		assert.Equal(t, "Connect", connect["cmd"])
		assert.Equal(t, "Warrior", connect["name"])
		assert.Equal(t, domain.GameName, connect["game"])
		assert.Equal(t, float64(domain.ItemsHandlingAll), connect["items_handling"])
		assert.Equal(t, "b1946ac9-2b9d-4c3b-9a37-5e1f2d7c8a10", connect["uuid"])
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw Connect")
	}

	select {
	case resync := <-syncSeen:
		assert.Equal(t, "Sync", resync["cmd"])
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw Sync")
	}

	require.Eventually(t, func() bool { return len(events.all()) == 5 }, 2*time.Second, 10*time.Millisecond)

	assert.True(t, client.Ready())
	assert.Equal(t, 1, client.Slot())
	assert.Equal(t, "Warrior", client.PlayerName(1))
	assert.Equal(t, "Mage", client.PlayerName(2))
	assert.Equal(t, "Player 7", client.PlayerName(7))
	assert.Equal(t, []domain.LocationID{262}, client.MissingLocations())
	assert.Equal(t, []domain.LocationID{257, 300}, client.CheckedLocations())
	assert.Equal(t, []domain.Item{{Item: 17, Location: 300, Player: 2, Flags: 1}}, client.ItemsReceived())

	assert.Equal(t, []domain.RemoteEvent{
		domain.ConnectedEvent{
			Slot:             1,
			MissingLocations: []domain.LocationID{257, 262},
			CheckedLocations: []domain.LocationID{300},
		},
		domain.ReceivedItemsEvent{Index: 0, Items: []domain.Item{{Item: 17, Location: 300, Player: 2, Flags: 1}}},
		domain.PrintJSONEvent{
			Type:      domain.PrintJSONHint,
			Receiving: 1,
			Item:      domain.Item{Item: 17, Location: 512, Player: 2},
			Text:      "Warrior's Lute",
		},
		domain.PrintEvent{Text: "Welcome"},
		domain.UnknownEvent{Cmd: "Bounced"},
	}, events.all())

	cancel()
	close(finished)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
	assert.False(t, client.Ready())
}

func TestClientConnectionRefused(t *testing.T) {
	server := fakeServer(t, func(conn *websocket.Conn) {
		send(t, conn, `[{"cmd":"RoomInfo","password":true}]`)
		readCommands(t, conn)
		send(t, conn, `[{"cmd":"ConnectionRefused","errors":["InvalidSlot"]}]`)
		_, _, _ = conn.ReadMessage()
	})

	client, err := NewClient(server.URL, Identity{Name: "nobody"})
	require.NoError(t, err)

	err = client.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionRefused)
	assert.Contains(t, err.Error(), "InvalidSlot")
	assert.False(t, client.Ready())
}

func TestClientServerCloseEndsRun(t *testing.T) {
	server := fakeServer(t, func(conn *websocket.Conn) {
		send(t, conn, `not json`)
	})

	client, err := NewClient(server.URL, Identity{Name: "Warrior"})
	require.NoError(t, err)

	err = client.Run(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConnectionRefused))
}

func TestClientSendWithoutConnection(t *testing.T) {
	client, err := NewClient("localhost", Identity{})
	require.NoError(t, err)

	err = client.SendMessages(context.Background(), domain.NewSay("hello"))
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, client.SendMessages(context.Background()))
}

func TestClientDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(url, Identity{}, withDialer(&websocket.Dialer{HandshakeTimeout: time.Second}))
	require.NoError(t, err)

	err = client.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial multiworld server")
}
