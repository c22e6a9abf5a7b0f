// Package ledger implements durable storage for Nyx Notes, the points
// currency awarded for in-chat activity. Balances live in memory as a flat
// user→integer map and are persisted as a pretty-printed JSON snapshot with
// atomic file replacement and a backup fallback, so the on-disk file is
// always a fully valid, previously committed snapshot.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	notesFileName  = "nyxnotes.json"
	backupFileName = "nyxnotes_backup.json"
)

// ErrPersistence marks a save or load failure. Mutations still return the new
// in-memory balance alongside it; callers that need confirmed durability can
// check the error, everyone else keeps serving the in-memory truth.
var ErrPersistence = errors.New("ledger persistence failure")

// Entry is a single leaderboard row.
type Entry struct {
	UserID string
	Notes  int
}

// Store owns the user→balance mapping. All mutations acquire one store-wide
// lock for the full read-modify-write-persist sequence, so no two balance
// changes ever interleave.
type Store struct {
	mu         sync.Mutex
	notesFile  string
	backupFile string
	notes      map[string]int
	loaded     bool
	logger     *slog.Logger
}

// NewStore creates a Store persisting under dir. Data is loaded lazily on
// first access; a missing or unreadable directory simply yields an empty
// ledger until the first successful save.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		notesFile:  filepath.Join(dir, notesFileName),
		backupFile: filepath.Join(dir, backupFileName),
		notes:      make(map[string]int),
		logger:     logger.With("component", "ledger"),
	}
}

// Get returns the current balance for a user, 0 if unknown. It never fails.
func (s *Store) Get(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.notes[userID]
}

// Add applies a delta (may be negative) to a user's balance, clamping the
// result at 0, persists the snapshot and returns the new balance. The balance
// is updated and returned even when persistence fails; the error then wraps
// ErrPersistence.
func (s *Store) Add(userID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	old := s.notes[userID]
	next := old + delta
	if next < 0 {
		next = 0
	}
	s.notes[userID] = next
	s.logger.Debug("balance updated", "user", userID, "old", old, "new", next, "delta", delta)
	return next, s.save()
}

// Set overwrites a user's balance with max(0, value), persists and returns
// the clamped value. Same error contract as Add.
func (s *Store) Set(userID string, value int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	if value < 0 {
		value = 0
	}
	s.notes[userID] = value
	s.logger.Debug("balance set", "user", userID, "value", value)
	return value, s.save()
}

// TopN returns the n highest balances, descending. Equal balances are ordered
// by ascending user id so the leaderboard is deterministic.
func (s *Store) TopN(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	entries := make([]Entry, 0, len(s.notes))
	for id, notes := range s.notes {
		entries = append(entries, Entry{UserID: id, Notes: notes})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Notes != entries[j].Notes {
			return entries[i].Notes > entries[j].Notes
		}
		return entries[i].UserID < entries[j].UserID
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Len reports the number of users with a balance record.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return len(s.notes)
}

// Flush persists the current in-memory state. Used on shutdown.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.save()
}

// ensureLoaded lazily loads the snapshot. Callers must hold s.mu.
func (s *Store) ensureLoaded() {
	if s.loaded {
		return
	}
	s.load()
	s.loaded = true
}

// load reads the canonical file, falling back to the backup when the
// canonical is missing or unparseable. When neither yields a valid mapping
// the store starts empty; an empty ledger is a valid state, not an error.
func (s *Store) load() {
	for _, path := range []string{s.notesFile, s.backupFile} {
		notes, err := readSnapshot(path, s.logger)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("failed to load notes file", "path", path, "error", err)
			}
			continue
		}
		s.notes = notes
		s.logger.Debug("notes loaded", "path", path, "users", len(notes))
		return
	}
	s.notes = make(map[string]int)
	s.logger.Debug("initialized empty notes storage")
}

// readSnapshot parses one snapshot file, coercing keys to strings and values
// to non-negative integers. Entries that fail coercion are dropped with a
// warning rather than failing the whole load.
func readSnapshot(path string, logger *slog.Logger) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("empty snapshot %s", path)
	}

	raw := make(map[string]any)
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	notes := make(map[string]int, len(raw))
	for userID, value := range raw {
		v, err := coerceNotes(value)
		if err != nil {
			logger.Warn("dropping malformed ledger entry", "user", userID, "value", value)
			continue
		}
		notes[userID] = v
	}
	return notes, nil
}

// coerceNotes converts a raw JSON value to an integer balance. Floats
// truncate toward zero; numeric strings must be whole numbers; anything
// else is malformed. Negatives clamp to zero to preserve the
// non-negative invariant.
func coerceNotes(value any) (int, error) {
	var v int64
	switch n := value.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, fmt.Errorf("not a number: %s", n.String())
			}
			i = int64(f)
		}
		v = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		v = i
	default:
		return 0, fmt.Errorf("unsupported value type %T", value)
	}
	if v < 0 {
		return 0, nil
	}
	if v > int64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("out of range: %d", v)
	}
	return int(v), nil
}

// save writes the snapshot using the atomic replacement protocol:
// temp write, canonical→backup rename, temp→canonical rename. On any
// filesystem with atomic rename the canonical path is always either the old
// or the new snapshot, never a partial write. Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.notes, "", "  ")
	if err != nil {
		return s.saveFailed(fmt.Errorf("marshal notes: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(s.notesFile), 0o755); err != nil {
		return s.saveFailed(fmt.Errorf("create storage dir: %w", err))
	}

	tempFile := s.notesFile + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return s.saveFailed(fmt.Errorf("write temp file: %w", err))
	}

	if _, err := os.Stat(s.notesFile); err == nil {
		if err := os.Rename(s.notesFile, s.backupFile); err != nil {
			return s.saveFailed(fmt.Errorf("rotate backup: %w", err))
		}
	}

	if err := os.Rename(tempFile, s.notesFile); err != nil {
		return s.saveFailed(fmt.Errorf("replace canonical file: %w", err))
	}

	s.logger.Debug("notes saved", "users", len(s.notes))
	return nil
}

// saveFailed logs a failed save and attempts a best-effort backup restore
// when the canonical file went missing mid-protocol. The previous snapshot is
// preserved either way.
func (s *Store) saveFailed(cause error) error {
	s.logger.Error("failed to save notes", "error", cause)
	if _, err := os.Stat(s.notesFile); os.IsNotExist(err) {
		if _, berr := os.Stat(s.backupFile); berr == nil {
			if rerr := os.Rename(s.backupFile, s.notesFile); rerr != nil {
				s.logger.Error("failed to restore backup", "error", rerr)
			} else {
				s.logger.Debug("restored notes from backup")
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrPersistence, cause)
}
