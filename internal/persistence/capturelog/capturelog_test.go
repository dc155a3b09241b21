package capturelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"soulforge.gg/internal/sim/trap"
	"soulforge.gg/internal/soul"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	l.RecordCapture(trap.CaptureEvent{
		Caster:  "hero",
		Victim:  "bandit",
		Soul:    soul.SizeGrand,
		At:      time.Now(),
		Elapsed: 1500 * time.Microsecond,
	})
	l.RecordFailure("hero", "all_soul_gems_filled")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "captures-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var entries []Entry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != "capture" || entries[0].Soul != "grand" || entries[0].Elapsed != 1500 {
		t.Fatalf("unexpected capture entry %+v", entries[0])
	}
	if entries[1].Kind != "failure" || entries[1].Reason != "all_soul_gems_filled" {
		t.Fatalf("unexpected failure entry %+v", entries[1])
	}
}

func TestCloseWithoutWrites(t *testing.T) {
	l := New(t.TempDir())
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
