package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for decoding. The viewer decodes JSONL
// on its own so it keeps reading logs written by older builds.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	Seq       uint64         `json:"seq"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Endpoint  string         `json:"endpoint"`
	Query     string         `json:"query"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// eventFilter selects events for display. Zero fields match everything.
type eventFilter struct {
	Kind    string
	Level   string
	Comp    string
	Seq     uint64
	Session string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.Kind != "" && !strings.HasPrefix(ev.Kind, f.Kind) {
		return false
	}
	if f.Level != "" && levelRank(ev.Level) < levelRank(f.Level) {
		return false
	}
	if f.Comp != "" && ev.Comp != f.Comp {
		return false
	}
	if f.Seq != 0 && ev.Seq != f.Seq {
		return false
	}
	if f.Session != "" && !strings.HasPrefix(ev.SessionID, f.Session) {
		return false
	}
	return true
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

var (
	eventsTail   int
	eventsFollow bool
	eventsJSON   bool
	eventsFilter eventFilter
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the JSONL event log",
	Long: `Print recent events from the session event log, optionally filtered.

Examples:
  cinescope events --kind search --level warn
  cinescope events -f --comp trending`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.IntVar(&eventsTail, "tail", 50, "number of recent lines to show")
	f.BoolVarP(&eventsFollow, "follow", "f", false, "follow mode (like tail -f)")
	f.BoolVar(&eventsJSON, "json", false, "output raw JSON lines")
	f.StringVar(&eventsFilter.Kind, "kind", "", "filter by event kind prefix (e.g. 'search')")
	f.StringVar(&eventsFilter.Level, "level", "", "minimum level: debug, info, warn, error")
	f.StringVar(&eventsFilter.Comp, "comp", "", "filter by component name")
	f.Uint64Var(&eventsFilter.Seq, "seq", 0, "filter by fetch generation")
	f.StringVar(&eventsFilter.Session, "session", "", "filter by session ID prefix")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logPath := cfg.EventsPath()

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("event log not found at %s (run the TUI first to generate events): %w", logPath, err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	for _, l := range readTailLines(f, eventsTail, eventsFilter.match) {
		fmt.Fprintln(out, formatEvent(l.ev, l.raw, eventsJSON))
	}
	if !eventsFollow {
		return nil
	}
	return followEvents(cmd.Context(), f, out)
}

// followEvents polls f for appended lines until ctx is done.
func followEvents(ctx context.Context, f io.Reader, out io.Writer) error {
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if eventsFilter.match(ev) {
			fmt.Fprintln(out, formatEvent(ev, line, eventsJSON))
		}
	}
}

func formatEvent(ev eventRecord, raw []byte, rawJSON bool) string {
	if rawJSON {
		return string(raw)
	}
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-8s] %-17s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}
	if ev.Seq > 0 {
		parts = append(parts, fmt.Sprintf("#%d", ev.Seq))
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Endpoint != "" {
		parts = append(parts, "ep="+ev.Endpoint)
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines returns the last n lines of r that decode and match.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		// Scanner reuses its buffer.
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}
	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
