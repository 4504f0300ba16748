package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Identity:
		o.printIdentity(v)
	case AuthResult:
		o.printAuthResult(v)
	case Room:
		o.printRoom(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Identity response type (matches API)
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines identity and token
type AuthResult struct {
	Identity     Identity `json:"identity"`
	SessionToken string   `json:"session_token"`
}

// Seat response type
type Seat struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
}

// Move response type
type Move struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	SAN      string    `json:"san"`
	By       string    `json:"by"`
	PlayedAt time.Time `json:"played_at"`
}

// Room response type
type Room struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	White       *Seat  `json:"white"`
	Black       *Seat  `json:"black"`
	Position    string `json:"position"`
	Moves       []Move `json:"moves"`
	Winner      string `json:"winner,omitempty"`
	PlayerColor string `json:"player_color,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printIdentity(p Identity) {
	fmt.Printf("ID:           %s\n", p.ID)
	fmt.Printf("Display name: %s\n", p.DisplayName)
	fmt.Printf("Guest:        %v\n", p.IsGuest)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printIdentity(a.Identity)
	fmt.Println("Session token saved.")
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room:   %s\n", r.ID)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("White:  %s\n", seatLine(r.White))
	fmt.Printf("Black:  %s\n", seatLine(r.Black))
	if r.PlayerColor != "" {
		fmt.Printf("You:    %s\n", r.PlayerColor)
	}
	if r.Winner != "" {
		fmt.Printf("Winner: %s\n", r.Winner)
	}
	if len(r.Moves) > 0 {
		sans := make([]string, len(r.Moves))
		for i, m := range r.Moves {
			sans[i] = m.SAN
		}
		fmt.Printf("Moves:  %s\n", strings.Join(sans, " "))
	}
	fmt.Println()
	fmt.Print(renderBoard(r.Position))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func seatLine(s *Seat) string {
	if s == nil {
		return "(open)"
	}
	if s.Ready {
		return s.DisplayName + " (ready)"
	}
	return s.DisplayName
}

// renderBoard draws the piece placement field of a FEN position as an
// ASCII board, rank 8 at the top
func renderBoard(fen string) string {
	placement := strings.Fields(fen)
	if len(placement) == 0 {
		return ""
	}
	ranks := strings.Split(placement[0], "/")
	if len(ranks) != 8 {
		return ""
	}

	var b strings.Builder
	for i, rank := range ranks {
		fmt.Fprintf(&b, "%d  ", 8-i)
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				b.WriteString(strings.Repeat(". ", int(r-'0')))
			} else {
				b.WriteRune(r)
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("\n   a b c d e f g h\n")
	return b.String()
}
