package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch <room-id>",
		Short: "Stream live events from a room",
		Long: `Connect to the room's websocket and stream events in real-time.

Events include:
  - lobby_state:  seat occupancy and ready flags changed
  - game_state:   authoritative game view (start, finish, forfeit)
  - move_applied: the other seat played a move
  - chat:         chat message from the other seat

Only seat holders may connect, and dropping the connection while the
game is in progress forfeits it. Use "room play" to actually play.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// dialRoom opens the room's websocket using the saved session token
func dialRoom(roomID string) (*websocket.Conn, error) {
	wsURL := strings.TrimSuffix(cfg.ServerURL, "/") + "/api/v1/rooms/" + roomID + "/ws"
	wsURL = strings.Replace(wsURL, "http", "ws", 1)

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connection refused: HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return conn, nil
}

func watchRoom(roomID string, jsonOutput bool) error {
	conn, err := dialRoom(roomID)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Disconnect cleanly on Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	fmt.Fprintf(os.Stderr, "Connected to room %s. Press Ctrl+C to disconnect.\n", roomID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return nil
		}
		printEvent(data, jsonOutput)
	}
}

func printEvent(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var event map[string]any
	if err := json.Unmarshal(data, &event); err != nil {
		fmt.Println(string(data))
		return
	}
	eventType, _ := event["type"].(string)
	ts := time.Now().Format("15:04:05")

	switch eventType {
	case "lobby_state":
		fmt.Printf("[%s] lobby: status=%v white=%s black=%s\n",
			ts, event["status"], eventSeat(event["white"]), eventSeat(event["black"]))
	case "game_state":
		line := fmt.Sprintf("[%s] game: status=%v", ts, event["status"])
		if winner, ok := event["winner"].(string); ok && winner != "" {
			line += " winner=" + winner
		}
		fmt.Println(line)
	case "move_applied":
		move, _ := event["move"].(map[string]any)
		fmt.Printf("[%s] move: %v by %v\n", ts, move["san"], event["by"])
	case "chat":
		fmt.Printf("[%s] %v: %v\n", ts, event["sender"], event["message"])
	case "signal":
		fmt.Printf("[%s] signal from %v\n", ts, event["sender"])
	case "error":
		fmt.Printf("[%s] rejected: %v (%v)\n", ts, event["message"], event["code"])
	default:
		fmt.Printf("[%s] %s\n", ts, string(data))
	}
}

func eventSeat(v any) string {
	seat, ok := v.(map[string]any)
	if !ok || seat == nil {
		return "(open)"
	}
	name, _ := seat["name"].(string)
	if ready, _ := seat["ready"].(bool); ready {
		return name + "(ready)"
	}
	return name
}
