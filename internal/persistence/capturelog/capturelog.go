// Package capturelog appends capture events to hour-rotated,
// zstd-compressed JSONL files.
package capturelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/sim/trap"
)

// Entry is one logged line.
type Entry struct {
	At      string `json:"at"`
	Kind    string `json:"kind"` // "capture" | "failure"
	Caster  string `json:"caster"`
	Victim  string `json:"victim,omitempty"`
	Soul    string `json:"soul,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Elapsed int64  `json:"elapsed_us,omitempty"`
}

// Logger writes JSONL entries into <dir>/captures-YYYY-MM-DD-HH.jsonl.zst.
type Logger struct {
	dir    string
	prefix string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func New(dir string) *Logger {
	return &Logger{dir: dir, prefix: "captures"}
}

// RecordCapture implements trap.Recorder.
func (l *Logger) RecordCapture(ev trap.CaptureEvent) {
	_ = l.write(Entry{
		At:      ev.At.UTC().Format(time.RFC3339Nano),
		Kind:    "capture",
		Caster:  string(ev.Caster),
		Victim:  string(ev.Victim),
		Soul:    ev.Soul.String(),
		Elapsed: ev.Elapsed.Microseconds(),
	})
}

// RecordFailure implements trap.Recorder.
func (l *Logger) RecordFailure(caster actors.ID, reason string) {
	_ = l.write(Entry{
		At:     time.Now().UTC().Format(time.RFC3339Nano),
		Kind:   "failure",
		Caster: string(caster),
		Reason: reason,
	})
}

func (l *Logger) write(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != l.curHour {
		if err := l.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

func (l *Logger) rotateLocked(hour string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 64*1024)
	l.curHour = hour
	return nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *Logger) closeLocked() error {
	var err error
	if l.w != nil {
		_ = l.w.Flush()
	}
	if l.enc != nil {
		err = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	l.w = nil
	return err
}

func (l *Logger) pathForHour(hour string) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s-%s.jsonl.zst", l.prefix, hour))
}
