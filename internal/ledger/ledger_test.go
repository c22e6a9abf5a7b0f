package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return NewStore(dir, nil), dir
}

func TestGetUnknownUserIsZero(t *testing.T) {
	store, _ := newTestStore(t)

	if got := store.Get("12345"); got != 0 {
		t.Errorf("Expected 0 for unknown user, got %d", got)
	}
}

func TestAddClampsEveryStep(t *testing.T) {
	store, _ := newTestStore(t)

	if got, _ := store.Add("u1", 5); got != 5 {
		t.Fatalf("Expected balance 5, got %d", got)
	}
	// A large negative delta clamps to 0 at this step, not to a stored
	// negative carried forward.
	if got, _ := store.Add("u1", -100); got != 0 {
		t.Fatalf("Expected balance clamped to 0, got %d", got)
	}
	if got, _ := store.Add("u1", 7); got != 7 {
		t.Errorf("Expected balance 7 after clamp, got %d", got)
	}
}

func TestSetClampsNegative(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		value    int
		expected int
	}{
		{42, 42},
		{0, 0},
		{-10, 0},
	}

	for _, test := range tests {
		got, err := store.Set("u1", test.value)
		if err != nil {
			t.Fatalf("Set(%d) returned error: %v", test.value, err)
		}
		if got != test.expected {
			t.Errorf("Set(%d) returned %d, expected %d", test.value, got, test.expected)
		}
		if balance := store.Get("u1"); balance != test.expected {
			t.Errorf("Get after Set(%d) returned %d, expected %d", test.value, balance, test.expected)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, dir := newTestStore(t)

	want := map[string]int{"alice": 50, "bob": 10, "carol": 30}
	for id, notes := range want {
		if _, err := store.Set(id, notes); err != nil {
			t.Fatalf("Set(%s) failed: %v", id, err)
		}
	}

	reloaded := NewStore(dir, nil)
	for id, notes := range want {
		if got := reloaded.Get(id); got != notes {
			t.Errorf("Reloaded balance for %s: got %d, expected %d", id, got, notes)
		}
	}
	if reloaded.Len() != len(want) {
		t.Errorf("Reloaded store has %d users, expected %d", reloaded.Len(), len(want))
	}
}

func TestCrashBetweenTempWriteAndRename(t *testing.T) {
	store, dir := newTestStore(t)

	if _, err := store.Add("u1", 25); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Simulate a crash that left a half-written temp file behind: the
	// canonical file must still parse as the previous valid snapshot.
	tempFile := filepath.Join(dir, "nyxnotes.json.tmp")
	if err := os.WriteFile(tempFile, []byte(`{"u1": 999`), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nyxnotes.json"))
	if err != nil {
		t.Fatalf("Canonical file missing: %v", err)
	}
	var snapshot map[string]int
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("Canonical file not parseable: %v", err)
	}
	if snapshot["u1"] != 25 {
		t.Errorf("Canonical snapshot has u1=%d, expected 25", snapshot["u1"])
	}

	reloaded := NewStore(dir, nil)
	if got := reloaded.Get("u1"); got != 25 {
		t.Errorf("Reload after simulated crash: got %d, expected 25", got)
	}
}

func TestTopNOrdering(t *testing.T) {
	store, _ := newTestStore(t)

	balances := map[string]int{"a": 50, "b": 10, "c": 30, "d": 5}
	for id, notes := range balances {
		if _, err := store.Set(id, notes); err != nil {
			t.Fatalf("Set(%s) failed: %v", id, err)
		}
	}

	got := store.TopN(3)
	expected := []Entry{{"a", 50}, {"c", 30}, {"b", 10}}
	if len(got) != len(expected) {
		t.Fatalf("TopN(3) returned %d entries, expected %d", len(got), len(expected))
	}
	for i, entry := range expected {
		if got[i] != entry {
			t.Errorf("TopN(3)[%d] = %+v, expected %+v", i, got[i], entry)
		}
	}
}

func TestTopNTieBreakByUserID(t *testing.T) {
	store, _ := newTestStore(t)

	for _, id := range []string{"zed", "amy", "mia"} {
		if _, err := store.Set(id, 10); err != nil {
			t.Fatalf("Set(%s) failed: %v", id, err)
		}
	}

	got := store.TopN(3)
	order := []string{"amy", "mia", "zed"}
	for i, id := range order {
		if got[i].UserID != id {
			t.Errorf("TopN tie order[%d] = %s, expected %s", i, got[i].UserID, id)
		}
	}
}

func TestConcurrentAddsNoLostUpdates(t *testing.T) {
	store, _ := newTestStore(t)

	const callers = 100
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Add("u1", 5); err != nil {
				t.Errorf("Concurrent Add failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := store.Get("u1"); got != callers*5 {
		t.Errorf("Expected balance %d after %d concurrent adds, got %d", callers*5, callers, got)
	}
}

func TestCorruptCanonicalFallsBackToBackup(t *testing.T) {
	dir := t.TempDir()

	backup := map[string]int{"u1": 77, "u2": 3}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal backup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nyxnotes_backup.json"), data, 0o644); err != nil {
		t.Fatalf("Failed to write backup file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nyxnotes.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt canonical: %v", err)
	}

	store := NewStore(dir, nil)
	if got := store.Get("u1"); got != 77 {
		t.Errorf("Expected backup balance 77, got %d", got)
	}
	if got := store.Get("u2"); got != 3 {
		t.Errorf("Expected backup balance 3, got %d", got)
	}
}

func TestLoadWithNoFilesYieldsEmptyStore(t *testing.T) {
	store, _ := newTestStore(t)

	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d users", store.Len())
	}
	if _, err := store.Add("u1", 1); err != nil {
		t.Errorf("First mutation on empty store failed: %v", err)
	}
}

func TestMalformedEntriesDroppedOnLoad(t *testing.T) {
	dir := t.TempDir()

	raw := `{"good": 12, "bad": "lots", "fractionalText": "7.5", "list": [1], "alsoGood": 3.0}`
	if err := os.WriteFile(filepath.Join(dir, "nyxnotes.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("Failed to write canonical: %v", err)
	}

	store := NewStore(dir, nil)
	if got := store.Get("good"); got != 12 {
		t.Errorf("Expected good=12, got %d", got)
	}
	if got := store.Get("alsoGood"); got != 3 {
		t.Errorf("Expected alsoGood=3 (integral float coerces), got %d", got)
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 surviving entries, got %d", store.Len())
	}
}

func TestFractionalNumbersTruncateOnLoad(t *testing.T) {
	dir := t.TempDir()

	// Fractional numeric values truncate toward zero; only fractional
	// strings are malformed.
	raw := `{"fractional": 7.5, "nearly": 0.9, "negFraction": -2.5, "textFraction": "7.5"}`
	if err := os.WriteFile(filepath.Join(dir, "nyxnotes.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("Failed to write canonical: %v", err)
	}

	store := NewStore(dir, nil)
	if got := store.Get("fractional"); got != 7 {
		t.Errorf("Expected fractional=7, got %d", got)
	}
	if got := store.Get("nearly"); got != 0 {
		t.Errorf("Expected nearly=0, got %d", got)
	}
	if got := store.Get("negFraction"); got != 0 {
		t.Errorf("Expected negFraction clamped to 0, got %d", got)
	}
	if store.Len() != 3 {
		t.Errorf("Expected 3 surviving entries, got %d", store.Len())
	}
}

func TestBackupHoldsPriorSnapshot(t *testing.T) {
	store, dir := newTestStore(t)

	if _, err := store.Set("u1", 10); err != nil {
		t.Fatalf("First Set failed: %v", err)
	}
	if _, err := store.Set("u1", 20); err != nil {
		t.Fatalf("Second Set failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nyxnotes_backup.json"))
	if err != nil {
		t.Fatalf("Backup file missing: %v", err)
	}
	var snapshot map[string]int
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("Backup not parseable: %v", err)
	}
	if snapshot["u1"] != 10 {
		t.Errorf("Backup snapshot has u1=%d, expected prior value 10", snapshot["u1"])
	}
}
