package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newRoomPlayCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "play <room-id>",
		Short: "Play a game interactively over the room's websocket",
		Long: `Connect to the room and play from the terminal. Events from the
server stream to stdout; commands are read from stdin:

  ready                          mark yourself ready to start
  move <from> <to> [promotion]   play a move (e.g. move e2 e4)
  chat <message>                 send a chat message
  quit                           disconnect

Disconnecting while the game is in progress forfeits it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playRoom(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

func playRoom(roomID string, jsonOutput bool) error {
	conn, err := dialRoom(roomID)
	if err != nil {
		return err
	}
	defer conn.Close()

	closeConn := func() {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		closeConn()
	}()

	fmt.Fprintf(os.Stderr, "Connected to room %s. Commands: ready, move <from> <to>, chat <msg>, quit.\n", roomID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printEvent(data, jsonOutput)
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			frame, quit, err := parseGameCommand(scanner.Text())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if quit {
				closeConn()
				return
			}
			if frame == nil {
				continue
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
		// stdin closed: treat as quit
		closeConn()
	}()

	<-done
	return nil
}

func parseGameCommand(line string) (frame map[string]any, quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false, nil
	}

	switch fields[0] {
	case "ready":
		return map[string]any{"type": "ready"}, false, nil
	case "move":
		if len(fields) != 3 && len(fields) != 4 {
			return nil, false, fmt.Errorf("usage: move <from> <to> [promotion]")
		}
		frame := map[string]any{
			"type": "move",
			"from": fields[1],
			"to":   fields[2],
		}
		if len(fields) == 4 {
			frame["promotion"] = fields[3]
		}
		return frame, false, nil
	case "chat":
		if len(fields) < 2 {
			return nil, false, fmt.Errorf("usage: chat <message>")
		}
		return map[string]any{
			"type":    "chat",
			"message": strings.Join(fields[1:], " "),
		}, false, nil
	case "quit":
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("unknown command %q", fields[0])
	}
}
