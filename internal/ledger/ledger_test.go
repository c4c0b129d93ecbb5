package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	l := Load(filepath.Join(t.TempDir(), "nope.json"))
	if l.Len() != 0 {
		t.Errorf("Expected empty ledger, got %d entries", l.Len())
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	l := Load(path)
	if l.Len() != 0 {
		t.Errorf("Expected empty ledger for corrupt file, got %d entries", l.Len())
	}
}

func TestLoadMalformedEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "string timestamp dropped",
			content: `{"a": "2024-01-01T00:00:00Z", "b": 1700000000}`,
			want:    1,
		},
		{
			name:    "zero and negative dropped",
			content: `{"a": 0, "b": -5, "c": 1700000000}`,
			want:    1,
		},
		{
			name:    "fractional epoch truncated",
			content: `{"a": 1700000000.75}`,
			want:    1,
		},
		{
			name:    "all valid",
			content: `{"a": 1700000000, "b": 1700000001}`,
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seen.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			l := Load(path)
			if l.Len() != tt.want {
				t.Errorf("Load() kept %d entries, want %d", l.Len(), tt.want)
			}
		})
	}
}

func TestRecordAndContains(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "seen.json"))
	now := time.Now()

	if l.Contains("fp1") {
		t.Error("Empty ledger should not contain fp1")
	}

	l.Record("fp1", now)
	if !l.Contains("fp1") {
		t.Error("Ledger should contain fp1 after Record")
	}

	// Idempotent
	l.Record("fp1", now.Add(time.Minute))
	if l.Len() != 1 {
		t.Errorf("Expected 1 entry after duplicate Record, got %d", l.Len())
	}
}

func TestEvictOlderThan(t *testing.T) {
	now := time.Now().UTC()
	retention := 24 * time.Hour

	l := New(filepath.Join(t.TempDir(), "seen.json"))
	l.Record("expired", now.Add(-25*time.Hour))
	l.Record("fresh", now.Add(-23*time.Hour))

	evicted := l.EvictOlderThan(retention, now)
	if evicted != 1 {
		t.Errorf("EvictOlderThan() = %d, want 1", evicted)
	}
	if l.Contains("expired") {
		t.Error("Entry at now-25h should be evicted with 24h retention")
	}
	if !l.Contains("fresh") {
		t.Error("Entry at now-23h should survive 24h retention")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "seen.json")
	now := time.Now().UTC().Truncate(time.Second)

	l := New(path)
	l.Record("fp1", now)
	l.Record("fp2", now.Add(-time.Hour))

	if err := l.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	// No temp file should remain
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file left behind after Persist")
	}

	loaded := Load(path)
	if loaded.Len() != 2 {
		t.Fatalf("Reloaded ledger has %d entries, want 2", loaded.Len())
	}
	if !loaded.Contains("fp1") || !loaded.Contains("fp2") {
		t.Error("Reloaded ledger is missing recorded fingerprints")
	}
}

func TestPersistSurvivesEviction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	now := time.Now().UTC()

	l := New(path)
	l.Record("old", now.Add(-48*time.Hour))
	l.Record("new", now)
	l.EvictOlderThan(24*time.Hour, now)

	if err := l.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	loaded := Load(path)
	if loaded.Contains("old") {
		t.Error("Evicted entry came back after reload")
	}
	if !loaded.Contains("new") {
		t.Error("Fresh entry lost after reload")
	}
}
