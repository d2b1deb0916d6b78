package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Entry is one line of the client's JSON log. Lines that are not JSON keep
// only Raw.
type Entry struct {
	Raw     string
	Level   zapcore.Level
	Time    string
	Message string
	Parsed  bool
}

// Read returns at most maxLines entries (never more than MaxLines) at or
// above minLevel from the end of the log at path. A missing file yields no
// entries. Unparsed lines are kept regardless of level.
func Read(path string, maxLines int, minLevel zapcore.Level) ([]Entry, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()
	return tail(file, maxLines, minLevel)
}

// MaxLines bounds how many entries one Read keeps in memory.
const MaxLines = 10000

func tail(r io.Reader, maxLines int, minLevel zapcore.Level) ([]Entry, error) {
	maxLines = min(maxLines, MaxLines)

	// The ring grows as lines arrive, so a large limit on a short log stays cheap.
	ring := make([]Entry, 0, min(maxLines, 256))
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	idx := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := parse(line)
		if entry.Parsed && entry.Level < minLevel {
			continue
		}
		if len(ring) < maxLines {
			ring = append(ring, entry)
			continue
		}
		ring[idx] = entry
		idx = (idx + 1) % maxLines
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	entries := make([]Entry, len(ring))
	for i := range ring {
		entries[i] = ring[(idx+i)%len(ring)]
	}
	return entries, nil
}

func parse(line string) Entry {
	var raw struct {
		Level   string          `json:"level"`
		Time    json.RawMessage `json:"ts"`
		Message string          `json:"msg"`
	}
	entry := Entry{Raw: line}
	if json.Unmarshal([]byte(line), &raw) != nil || raw.Level == "" {
		return entry
	}
	level, err := zapcore.ParseLevel(raw.Level)
	if err != nil {
		return entry
	}
	entry.Level = level
	entry.Time = strings.Trim(string(raw.Time), `"`)
	entry.Message = raw.Message
	entry.Parsed = true
	return entry
}
