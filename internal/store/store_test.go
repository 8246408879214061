package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"entgo.io/ent"

	entschema "github.com/abhisek/rehearse/ent/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	// Each test gets its own named in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", filepath.Base(t.Name()))
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
	if s.Dialect() != "sqlite3" {
		t.Fatalf("expected sqlite3 dialect, got %q", s.Dialect())
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by the file-based test below.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rehearse.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, tbl := range Tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", tbl.Name,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", tbl.Name, err)
		}
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rehearse.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

// The hand-kept migration tables must carry every field declared in
// ent/schema.
func TestTablesMirrorEntSchema(t *testing.T) {
	tests := []struct {
		table  string
		fields []ent.Field
	}{
		{InterviewSessionsTable.Name, entschema.InterviewSession{}.Fields()},
		{QuestionResponsesTable.Name, entschema.QuestionResponse{}.Fields()},
		{LlmRequestEventsTable.Name, append(entschema.EventMixin{}.Fields(), entschema.LLMRequestEvent{}.Fields()...)},
	}

	for _, tt := range tests {
		var table []string
		for _, tbl := range Tables {
			if tbl.Name == tt.table {
				for _, c := range tbl.Columns {
					table = append(table, c.Name)
				}
			}
		}
		for _, f := range tt.fields {
			name := f.Descriptor().Name
			found := false
			for _, c := range table {
				if c == name {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("table %s is missing column %q declared in ent/schema", tt.table, name)
			}
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("REHEARSE_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "custom", "x.db") {
		t.Fatalf("unexpected path %q", p)
	}

	t.Setenv("REHEARSE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "rehearse", "rehearse.db") {
		t.Fatalf("unexpected path %q", p)
	}
}

type flakyPinger struct {
	failures int
	calls    int
}

func (f *flakyPinger) Ping(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWake_SucceedsOnLaterAttempt(t *testing.T) {
	p := &flakyPinger{failures: 2}
	if err := Wake(context.Background(), p, 3, time.Millisecond, nil); err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if p.calls != 3 {
		t.Fatalf("expected 3 pings, got %d", p.calls)
	}
}

func TestWake_GivesUp(t *testing.T) {
	p := &flakyPinger{failures: 10}
	if err := Wake(context.Background(), p, 3, time.Millisecond, nil); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if p.calls != 3 {
		t.Fatalf("expected 3 pings, got %d", p.calls)
	}
}

func TestWake_RealStore(t *testing.T) {
	s := openTestStore(t)
	if err := Wake(context.Background(), s, 1, time.Millisecond, nil); err != nil {
		t.Fatalf("Wake: %v", err)
	}
}
