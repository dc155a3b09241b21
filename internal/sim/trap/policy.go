package trap

import (
	"sync"

	"soulforge.gg/internal/tuning"
)

// ShrinkTechnique selects what happens to a white soul no gem can hold
// whole: nothing, shrink it to a smaller tier, or split it in two.
type ShrinkTechnique int

const (
	ShrinkNone ShrinkTechnique = iota
	ShrinkShrink
	ShrinkSplit
)

func (t ShrinkTechnique) String() string {
	switch t {
	case ShrinkShrink:
		return "shrink"
	case ShrinkSplit:
		return "split"
	}
	return "none"
}

// Policy is the full set of capture decision flags. Sessions copy it
// once at start; a running session never sees a later change.
type Policy struct {
	AllowSoulDiversion            bool
	PerformDiversionLocally       bool
	AllowNotifications            bool
	AllowExtraSoulRelocation      bool
	PreserveOwnership             bool
	AllowSoulDisplacement         bool
	AllowSoulRelocation           bool
	AllowPartiallyFillingSoulGems bool
	AllowProfiling                bool
	Shrinking                     ShrinkTechnique
}

// PolicyFromTuning maps the tuning file's policy block onto engine flags.
func PolicyFromTuning(p tuning.Policy) Policy {
	out := Policy{
		AllowSoulDiversion:            p.AllowSoulDiversion,
		PerformDiversionLocally:       p.PerformDiversionLocally,
		AllowNotifications:            p.AllowNotifications,
		AllowExtraSoulRelocation:      p.AllowExtraSoulRelocation,
		PreserveOwnership:             p.PreserveOwnership,
		AllowSoulDisplacement:         p.AllowSoulDisplacement,
		AllowSoulRelocation:           p.AllowSoulRelocation,
		AllowPartiallyFillingSoulGems: p.AllowPartiallyFillingSoulGems,
		AllowProfiling:                p.AllowProfiling,
	}
	switch p.SoulShrinkingTechnique {
	case "shrink":
		out.Shrinking = ShrinkShrink
	case "split":
		out.Shrinking = ShrinkSplit
	}
	return out
}

// Config holds the live policy. It may be updated between calls; the
// engine snapshots it at session start.
type Config struct {
	mu     sync.RWMutex
	policy Policy
}

func NewConfig(p Policy) *Config {
	return &Config{policy: p}
}

// Snapshot returns an immutable copy of the current policy.
func (c *Config) Snapshot() Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy
}

// Set replaces the live policy. In-flight sessions are unaffected.
func (c *Config) Set(p Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = p
}
