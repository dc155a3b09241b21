// Package trap implements the soul capture allocation engine: given a
// caster and a drained victim, it places the victim's soul (and any
// souls displaced or split along the way) into the caster's soul gems
// under the configured policy.
package trap

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/soul"
)

// Inventory is the host inventory the engine reads and mutates. Add and
// Remove must be atomic with respect to subsequent SoulGems calls.
type Inventory interface {
	SoulGems(owner actors.ID) (map[catalog.GemID]actors.GemEntry, error)
	AddGem(owner actors.ID, kind catalog.GemID, meta *actors.GemMeta, count int) error
	RemoveGem(owner actors.ID, kind catalog.GemID, count int, meta *actors.GemMeta) error
}

// Notifier delivers best-effort user-facing messages. The engine
// rate-limits calls; implementations need not.
type Notifier interface {
	Notify(owner actors.ID, msg Message)
}

// CaptureEvent describes one successful primary capture.
type CaptureEvent struct {
	Caster  actors.ID
	Victim  actors.ID
	Soul    soul.Size
	At      time.Time
	Elapsed time.Duration
}

// Recorder is the fire-and-forget statistics hook. RecordCapture fires
// at most once per top-level call.
type Recorder interface {
	RecordCapture(ev CaptureEvent)
	RecordFailure(caster actors.ID, reason string)
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	Calls          uint64
	Captures       uint64
	Failures       uint64
	SoulsProcessed uint64
}

// Engine runs trap sessions. A single mutex serializes entire calls:
// at most one session runs at a time across the process.
type Engine struct {
	cat *catalog.Catalog
	reg *actors.Registry
	inv Inventory
	cfg *Config
	not Notifier
	rec Recorder
	log *log.Logger

	maxNotifications int

	mu sync.Mutex

	calls          atomic.Uint64
	captures       atomic.Uint64
	failures       atomic.Uint64
	soulsProcessed atomic.Uint64
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Catalog  *catalog.Catalog
	Registry *actors.Registry
	// Inventory defaults to Registry when nil.
	Inventory Inventory
	Policy    *Config
	Notifier  Notifier
	Recorder  Recorder
	Logger    *log.Logger
	// MaxNotifications caps user-facing messages per call (default 1).
	MaxNotifications int
}

func NewEngine(cfg EngineConfig) *Engine {
	inv := cfg.Inventory
	if inv == nil {
		inv = cfg.Registry
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxNotify := cfg.MaxNotifications
	if maxNotify <= 0 {
		maxNotify = 1
	}
	return &Engine{
		cat:              cfg.Catalog,
		reg:              cfg.Registry,
		inv:              inv,
		cfg:              cfg.Policy,
		not:              cfg.Notifier,
		rec:              cfg.Recorder,
		log:              logger,
		maxNotifications: maxNotify,
	}
}

// SetNotifier wires the notification sink after construction. The ws
// transport needs the engine to exist before it can register itself.
// Call before serving traffic.
func (e *Engine) SetNotifier(n Notifier) { e.not = n }

func (e *Engine) Stats() Stats {
	return Stats{
		Calls:          e.calls.Load(),
		Captures:       e.captures.Load(),
		Failures:       e.failures.Load(),
		SoulsProcessed: e.soulsProcessed.Load(),
	}
}
