package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tomlrepo "github.com/bnema/ff1c/internal/adapters/repo/toml"
	"github.com/bnema/ff1c/internal/domain"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestNESWithoutStatusFile(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "nes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bridge status recorded")
}

func TestNESRendersStatus(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeStatusFixture(home, domain.NewBridgeStatus(domain.ConnectionConnected, time.Now())))

	stdout, _, err := executeCLI(t, home, "nes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "NES Bridge")
	assert.Contains(t, stdout, "[connected]")
	assert.Contains(t, stdout, domain.StatusConnectedText)
}

func TestNESJSONOutput(t *testing.T) {
	home := t.TempDir()
	updated := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
	require.NoError(t, writeStatusFixture(home, domain.TentativeFailure(domain.ConnectionErrorReset, updated)))

	stdout, _, err := executeCLI(t, home, "nes", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "error_reset", out["state"])
	assert.Equal(t, true, out["tentative"])
	assert.Equal(t, "2026-02-14T11:00:00Z", out["updated_at"])
	assert.True(t, strings.HasPrefix(out["text"].(string), "Was tentatively connected but error occurred: "))
}

func TestNESWaitReturnsWhenConnected(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeStatusFixture(home, domain.NewBridgeStatus(domain.ConnectionConnected, time.Now())))

	stdout, _, err := executeCLI(t, home, "nes", "--wait", "--json", "--timeout", "2s")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"state\": \"connected\"")
}

func TestNESWaitWithSpinner(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeStatusFixture(home, domain.NewBridgeStatus(domain.ConnectionTentativelyConnected, time.Now())))

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = writeStatusFixture(home, domain.NewBridgeStatus(domain.ConnectionConnected, time.Now()))
	}()

	stdout, _, err := executeCLI(t, home, "nes", "--wait", "--timeout", "5s")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[connected]")
}

func TestNESWaitTimesOut(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeStatusFixture(home, domain.NewBridgeStatus(domain.ConnectionErrorRefused, time.Now())))

	stdout, _, err := executeCLI(t, home, "nes", "--wait", "--json", "--timeout", "100ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bridge not connected after 100ms")
	assert.Contains(t, stdout, "\"state\": \"error_refused\"")
}

func TestNESWaitWithoutAnyStatus(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "nes", "--wait", "--json", "--timeout", "100ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bridge status appeared")
}

func TestRunRequiresServerAddress(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "run", "--name", "Warrior")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServerAddressUnset)
}

func TestRunRejectsInvalidLogLevel(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "run", "--connect", "localhost", "--name", "Warrior", "--log-level", "chatty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level \"chatty\"")
}

func TestRunPromptsForSlotName(t *testing.T) {
	stdout, _, err := executeCLIWithInput(t, t.TempDir(), strings.NewReader(""), "run", "--connect", "localhost")
	require.Error(t, err)
	assert.Contains(t, stdout, "Enter slot name: ")
	assert.Contains(t, err.Error(), "read slot name: no input")
}

func TestRunReportsCheckedLocations(t *testing.T) {
	home := t.TempDir()

	bridgeAddr := startSnapshotBridge(t, func(s domain.Snapshot) { s[0x05] = 0x04 })
	t.Setenv("FF1C_BRIDGE_ADDRESS", bridgeAddr)

	checks := make(chan []any, 1)
	server := startMultiworldServer(t, checks)

	stdinReader, stdinWriter := io.Pipe()
	defer stdinWriter.Close()

	t.Setenv("HOME", home)
	done := make(chan error, 1)
	var stdout, stderr bytes.Buffer
	go func() {
		done <- runCLI(stdinReader, &stdout, &stderr,
			"run", "--connect", server.URL, "--name", "Warrior", "--log-level", "debug")
	}()

	select {
	case locations := <-checks:
		assert.Equal(t, []any{float64(0x105)}, locations)
	case <-time.After(10 * time.Second):
		t.Fatal("server never received LocationChecks")
	}

	_, err := io.WriteString(stdinWriter, "/exit\n")
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after /exit")
	}

	repo, err := tomlrepo.NewStatusRepository(filepath.Join(home, ".ff1c", "status.toml"))
	require.NoError(t, err)
	status, err := repo.LoadStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStoppedText, status.Text)
}

func TestRunKeepsGoingAfterServerDrops(t *testing.T) {
	home := t.TempDir()

	bridgeAddr := startSnapshotBridge(t, func(domain.Snapshot) {})
	t.Setenv("FF1C_BRIDGE_ADDRESS", bridgeAddr)

	dropped := make(chan struct{})
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer close(dropped)
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"RoomInfo","password":false}]`)); err != nil {
			return
		}
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(server.Close)

	stdinReader, stdinWriter := io.Pipe()
	defer stdinWriter.Close()

	t.Setenv("HOME", home)
	done := make(chan error, 1)
	var stdout, stderr bytes.Buffer
	go func() {
		done <- runCLI(stdinReader, &stdout, &stderr, "run", "--connect", server.URL, "--name", "Warrior")
	}()

	select {
	case <-dropped:
	case <-time.After(10 * time.Second):
		t.Fatal("server never saw the client")
	}

	select {
	case err := <-done:
		t.Fatalf("run stopped after the server dropped: %v", err)
	case <-time.After(500 * time.Millisecond):
	}

	_, err := io.WriteString(stdinWriter, "/exit\n")
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after /exit")
	}
}

// startSnapshotBridge answers every request line with the same snapshot.
func startSnapshotBridge(t *testing.T, mutate func(domain.Snapshot)) string {
	t.Helper()

	snap := make(domain.Snapshot, domain.SnapshotMinLength)
	mutate(snap)
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	reply := append(data, '\n')

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				for {
					if _, err := reader.ReadBytes('\n'); err != nil {
						return
					}
					if _, err := conn.Write(reply); err != nil {
						return
					}
				}
			}()
		}
	}()

	return listener.Addr().String()
}

// startMultiworldServer binds the client to slot 1 and forwards the first
// LocationChecks it receives.
func startMultiworldServer(t *testing.T, checks chan<- []any) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"RoomInfo","password":false}]`)); err != nil {
			return
		}

		sent := false
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var commands []map[string]any
			if err := json.Unmarshal(data, &commands); err != nil {
				continue
			}
			for _, command := range commands {
				switch command["cmd"] {
				case "Connect":
					_ = conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"Connected","team":0,"slot":1,
						"players":[{"team":0,"slot":1,"alias":"Warrior","name":"Warrior"}],
						"missing_locations":[261,262],"checked_locations":[]}]`))
				case "LocationChecks":
					if !sent {
						sent = true
						locations, _ := command["locations"].([]any)
						checks <- locations
					}
				}
			}
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, strings.NewReader(""), args...)
}

func executeCLIWithInput(t *testing.T, home string, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("HOME", home)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := runCLI(stdin, stdout, stderr, args...)
	return stdout.String(), stderr.String(), err
}

func runCLI(stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	root := newRootCmd()
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	return root.Execute()
}

func writeStatusFixture(home string, status domain.BridgeStatus) error {
	repo, err := tomlrepo.NewStatusRepository(filepath.Join(home, ".ff1c", "status.toml"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(home, ".ff1c"), 0o700); err != nil {
		return err
	}
	return repo.SaveStatus(context.Background(), status)
}
