// Package history implements persistent command history, reverse-incremental
// search navigation, and context-aware tab completion over the input buffer.
package history

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vanpelt/sareterm/internal/logger"
	"github.com/vanpelt/sareterm/internal/model"
)

const defaultMaxEntries = 1000

// Store is a bounded, insertion-ordered, file-backed command history.
type Store struct {
	entries    []model.HistoryEntry
	maxEntries int
	path       string
}

// New returns a Store holding at most maxEntries entries (the default
// capacity when maxEntries <= 0) backed by the given file path, loading any
// existing entries. Unlike the config constructor this
// implementation is grounded on, both parameters are actually honored.
func New(maxEntries int, path string) *Store {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	s := &Store{maxEntries: maxEntries, path: path}
	if err := s.Load(); err != nil {
		logger.Warnf("history: failed to load %s: %v", path, err)
	}
	return s
}

// Load reads entries from the store's file, tolerating a missing file
// (starts empty), malformed timestamps (substituted with the current time),
// and a missing exit-code field.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var entries []model.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, ok := parseLine(line)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}
	s.entries = entries
	return nil
}

// parseLine parses one "unix_seconds|command|exit_code" record. Only the
// first two '|' separators are treated as delimiters, so a command
// containing '|' round-trips intact.
func parseLine(line string) (model.HistoryEntry, bool) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) < 2 {
		return model.HistoryEntry{}, false
	}

	ts := time.Now()
	if secs, err := strconv.ParseInt(parts[0], 10, 64); err == nil {
		ts = time.Unix(secs, 0)
	}

	entry := model.HistoryEntry{Command: parts[1], Timestamp: ts}
	if len(parts) == 3 {
		if code, err := strconv.Atoi(parts[2]); err == nil && code != -1 {
			entry.ExitCode = &code
		}
	}
	return entry, true
}

// Save rewrites the entire history file from the in-memory entries.
func (s *Store) Save() error {
	var b strings.Builder
	for _, e := range s.entries {
		code := -1
		if e.ExitCode != nil {
			code = *e.ExitCode
		}
		fmt.Fprintf(&b, "%d|%s|%d\n", e.Timestamp.Unix(), e.Command, code)
	}
	return os.WriteFile(s.path, []byte(b.String()), 0644)
}

// Add appends a command, evicting the oldest entry if over capacity, then
// best-effort persists to disk — a save failure is logged, not returned, so
// a read-only filesystem never aborts the session.
func (s *Store) Add(command string, exitCode *int) {
	s.entries = append(s.entries, model.HistoryEntry{
		Command:   command,
		Timestamp: time.Now(),
		ExitCode:  exitCode,
	})
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[len(s.entries)-s.maxEntries:]
	}
	if err := s.Save(); err != nil {
		logger.Warnf("history: failed to save %s: %v", s.path, err)
	}
}

// Entries returns all history entries, oldest first.
func (s *Store) Entries() []model.HistoryEntry {
	return s.entries
}

// Clear empties the history and persists the change.
func (s *Store) Clear() error {
	s.entries = nil
	return s.Save()
}

// Search returns entries whose command contains pattern, oldest first.
func (s *Store) Search(pattern string) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, e := range s.entries {
		if strings.Contains(e.Command, pattern) {
			out = append(out, e)
		}
	}
	return out
}
