package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsgambit/kingsgambit-go/internal/api"
	"github.com/kingsgambit/kingsgambit-go/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "kgctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/kgctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		RoomService: app.RoomService,
		Gateway:     app.Gateway,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing

type authResponse struct {
	Identity struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		IsGuest     bool   `json:"is_guest"`
	} `json:"identity"`
	SessionToken string `json:"session_token"`
}

type seatResponse struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
}

type roomResponse struct {
	ID       string        `json:"id"`
	Status   string        `json:"status"`
	White    *seatResponse `json:"white"`
	Black    *seatResponse `json:"black"`
	Position string        `json:"position"`
	Moves    []struct {
		From string `json:"from"`
		To   string `json:"to"`
		SAN  string `json:"san"`
		By   string `json:"by"`
	} `json:"moves"`
	Winner      string `json:"winner"`
	PlayerColor string `json:"player_color"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create guest
	output, err := cli.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "Alice", authResp.Identity.DisplayName)
	assert.True(t, authResp.Identity.IsGuest)
	assert.NotEmpty(t, authResp.SessionToken)

	// Get me (token should be saved in token file)
	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)

	var identity struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		IsGuest     bool   `json:"is_guest"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &identity))
	assert.Equal(t, "Alice", identity.DisplayName)
	assert.Equal(t, authResp.Identity.ID, identity.ID)
}

func TestCLI_RegisterAndLogin(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "register", "--name", "Bobby", "--user", "bobby", "--pass", "fischer1972")
	require.NoError(t, err, "output: %s", output)

	var registered authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &registered))
	assert.False(t, registered.Identity.IsGuest)

	output, err = cli.run("player", "login", "--user", "bobby", "--pass", "fischer1972")
	require.NoError(t, err, "output: %s", output)

	var loggedIn authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &loggedIn))
	assert.Equal(t, registered.Identity.ID, loggedIn.Identity.ID)
	assert.NotEmpty(t, loggedIn.SessionToken)
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	token := authResp.SessionToken

	// Create room
	output, err = cli.runWithToken(token, "room", "create")
	require.NoError(t, err, "output: %s", output)

	var created roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Len(t, created.ID, 8)
	assert.Equal(t, "waiting", created.Status)
	assert.Equal(t, "white", created.PlayerColor)
	require.NotNil(t, created.White)
	assert.Equal(t, "Alice", created.White.DisplayName)
	assert.Nil(t, created.Black)

	// Show room
	output, err = cli.runWithToken(token, "room", "show", created.ID)
	require.NoError(t, err, "output: %s", output)

	var shown roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &shown))
	assert.Equal(t, created.ID, shown.ID)
	assert.True(t, strings.HasPrefix(shown.Position, "rnbqkbnr/"))
}

// playSession drives an interactive "room play" process
type playSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	events chan map[string]any
}

func startPlaySession(t *testing.T, r *cliRunner, roomID string) *playSession {
	t.Helper()

	cmd := exec.Command(r.binaryPath,
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"room", "play", roomID, "--json")

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	events := make(chan map[string]any, 64)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			var event map[string]any
			if json.Unmarshal(scanner.Bytes(), &event) == nil {
				events <- event
			}
		}
	}()

	t.Cleanup(func() {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	return &playSession{cmd: cmd, stdin: stdin, events: events}
}

func (s *playSession) send(t *testing.T, line string) {
	t.Helper()
	_, err := io.WriteString(s.stdin, line+"\n")
	require.NoError(t, err)
}

func (s *playSession) waitFor(t *testing.T, desc string, pred func(map[string]any) bool) map[string]any {
	t.Helper()

	timeout := time.After(10 * time.Second)
	for {
		select {
		case event, ok := <-s.events:
			if !ok {
				t.Fatalf("event stream closed waiting for %s", desc)
			}
			if pred(event) {
				return event
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", desc)
		}
	}
}

func eventType(want string) func(map[string]any) bool {
	return func(event map[string]any) bool {
		return event["type"] == want
	}
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	// Two CLI runners with separate token files
	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	output, err := cli1.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	output, err = cli2.run("player", "guest", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)

	// Alice creates, Bob joins
	output, err = cli1.run("room", "create")
	require.NoError(t, err, "output: %s", output)
	var created roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	roomID := created.ID

	output, err = cli2.run("room", "join", roomID)
	require.NoError(t, err, "output: %s", output)
	var joined roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &joined))
	assert.Equal(t, "black", joined.PlayerColor)
	require.NotNil(t, joined.Black)
	assert.Equal(t, "Bob", joined.Black.DisplayName)

	// Connect both players and wait for the connect snapshots
	alice := startPlaySession(t, cli1, roomID)
	bob := startPlaySession(t, cli2, roomID)
	alice.waitFor(t, "alice snapshot", eventType("game_state"))
	bob.waitFor(t, "bob snapshot", eventType("game_state"))

	// Both ready up; the game starts on the second ready
	alice.send(t, "ready")
	alice.waitFor(t, "first ready", eventType("lobby_state"))
	bob.send(t, "ready")

	started := alice.waitFor(t, "game start", func(event map[string]any) bool {
		return event["type"] == "lobby_state" && event["status"] == "playing"
	})
	bob.waitFor(t, "game start", func(event map[string]any) bool {
		return event["type"] == "lobby_state" && event["status"] == "playing"
	})

	// Seats may have been swapped at game start
	whiteSeat, ok := started["white"].(map[string]any)
	require.True(t, ok)
	white, black := alice, bob
	if whiteSeat["name"] == "Bob" {
		white, black = bob, alice
	}

	// White opens; only black receives the confirmation
	white.send(t, "move e2 e4")
	applied := black.waitFor(t, "move applied", eventType("move_applied"))
	move, ok := applied["move"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "e4", move["san"])

	output, err = cli1.run("room", "show", roomID)
	require.NoError(t, err, "output: %s", output)
	var after roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &after))
	require.Len(t, after.Moves, 1)
	assert.Equal(t, "e4", after.Moves[0].SAN)
	assert.Contains(t, after.Position, " b ")

	// Moving out of turn is rejected, and only the sender hears about it
	white.send(t, "move d2 d4")
	rejected := white.waitFor(t, "rejection", eventType("error"))
	assert.Equal(t, "NOT_YOUR_TURN", rejected["code"])

	// White abandons mid-game; black is awarded the win
	white.send(t, "quit")
	finished := black.waitFor(t, "forfeit", func(event map[string]any) bool {
		return event["type"] == "game_state" && event["status"] == "finished"
	})
	assert.Equal(t, "black", finished["winner"])

	output, err = cli1.run("room", "show", roomID)
	require.NoError(t, err, "output: %s", output)
	var settled roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &settled))
	assert.Equal(t, "finished", settled.Status)
	assert.Equal(t, "black", settled.Winner)
}

func TestCLI_JoinFullRoom(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}
	cli3 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token3"),
	}

	for i, c := range []*cliRunner{cli1, cli2, cli3} {
		output, err := c.run("player", "guest", "--name", "Player"+string(rune('A'+i)))
		require.NoError(t, err, "output: %s", output)
	}

	output, err := cli1.run("room", "create")
	require.NoError(t, err, "output: %s", output)
	var created roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))

	output, err = cli2.run("room", "join", created.ID)
	require.NoError(t, err, "output: %s", output)

	output, err = cli3.run("room", "join", created.ID)
	require.Error(t, err)
	assert.Contains(t, output, "ROOM_FULL")
}
