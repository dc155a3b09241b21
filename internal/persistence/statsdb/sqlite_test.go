package statsdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"soulforge.gg/internal/sim/trap"
	"soulforge.gg/internal/soul"
)

func TestRecordAndTotals(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	s.RecordCapture(trap.CaptureEvent{
		Caster:  "hero",
		Victim:  "bandit",
		Soul:    soul.SizeCommon,
		At:      time.Now(),
		Elapsed: 250 * time.Microsecond,
	})
	s.RecordFailure("hero", "no_soul_gems_owned")
	s.RecordFailure("hero", "no_soul_gem_large_enough")
	s.Flush()

	captures, failures, err := s.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if captures != 1 || failures != 2 {
		t.Fatalf("totals = %d/%d, want 1/2", captures, failures)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.RecordFailure("hero", "all_soul_gems_filled")
	s.Flush()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Records after close must be silent no-ops.
	s.RecordFailure("hero", "dropped")
	s.Flush()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	_, failures, err := s2.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if failures != 1 {
		t.Fatalf("failures = %d, want 1", failures)
	}
}
