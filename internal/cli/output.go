package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

// PrintFrame outputs one websocket frame. JSON output is one object per line.
func (o *Output) PrintFrame(f Frame) {
	if o.format == "json" {
		data, _ := json.Marshal(f)
		_, _ = fmt.Fprintln(o.w, string(data))
		return
	}

	// Truncate data if it's too long for display
	display := string(f.Data)
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	_, _ = fmt.Fprintf(o.w, "[%s] %s: %s\n", f.Time.Format("2006-01-02 15:04:05"), f.Event, display)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case Wallet:
		o.printWallet(v)
	case WalletHistory:
		o.printWalletHistory(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Clients int    `json:"clients"`
}

// RoomPlayer response type
type RoomPlayer struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Room response type (matches API)
type Room struct {
	Code      string          `json:"code"`
	Started   bool            `json:"started"`
	Players   []RoomPlayer    `json:"players"`
	Setup     json.RawMessage `json:"setup,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	StartedAt *time.Time      `json:"started_at,omitempty"`
}

// RoomList response type
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// Wallet response type
type Wallet struct {
	Email string `json:"email"`
	Coins int64  `json:"coins"`
}

// LedgerEntry response type
type LedgerEntry struct {
	Action    string    `json:"action"`
	Diff      int64     `json:"diff"`
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// WalletHistory response type
type WalletHistory struct {
	Email   string        `json:"email"`
	History []LedgerEntry `json:"history"`
}

// Frame is one event received over the websocket
type Frame struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Rooms: %d\n", h.Rooms)
	_, _ = fmt.Fprintf(o.w, "Clients: %d\n", h.Clients)
}

func (o *Output) printRoom(r Room) {
	state := "waiting"
	if r.Started {
		state = "started"
	}
	_, _ = fmt.Fprintf(o.w, "Room: %s\n", r.Code)
	_, _ = fmt.Fprintf(o.w, "State: %s\n", state)
	_, _ = fmt.Fprintf(o.w, "Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		email := ""
		if p.Email != "" {
			email = " <" + p.Email + ">"
		}
		_, _ = fmt.Fprintf(o.w, "  %d. %s%s\n", p.Number, p.Name, email)
	}
	if len(r.Setup) > 0 {
		_, _ = fmt.Fprintf(o.w, "Setup: %s\n", r.Setup)
	}
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		_, _ = fmt.Fprintln(o.w, "No open rooms")
		return
	}
	for _, r := range l.Rooms {
		names := make([]string, len(r.Players))
		for i, p := range r.Players {
			names[i] = p.Name
		}
		state := "waiting"
		if r.Started {
			state = "started"
		}
		_, _ = fmt.Fprintf(o.w, "%s  %-7s  %d/4  %s\n", r.Code, state, len(r.Players), strings.Join(names, ", "))
	}
}

func (o *Output) printWallet(w Wallet) {
	_, _ = fmt.Fprintf(o.w, "Wallet: %s\n", w.Email)
	_, _ = fmt.Fprintf(o.w, "Coins: %d\n", w.Coins)
}

func (o *Output) printWalletHistory(h WalletHistory) {
	_, _ = fmt.Fprintf(o.w, "History for %s (%d entries):\n", h.Email, len(h.History))
	for _, e := range h.History {
		_, _ = fmt.Fprintf(o.w, "  %s  %-16s %+6d  -> %d\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Diff, e.Total)
	}
}
