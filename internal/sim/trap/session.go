package trap

import (
	"time"

	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/sim/actors"
)

type inventoryStatus int

const (
	statusHasGemsToFill inventoryStatus = iota
	statusNoGemsOwned
	statusAllGemsFilled
)

// session bundles the per-call state so the strategy functions don't
// each need half a dozen arguments. It is created after the engine
// lock is taken and discarded at return.
type session struct {
	e      *Engine
	caster actors.Actor
	policy Policy

	victims victimQueue
	victim  Victim

	inv    map[catalog.GemID]actors.GemEntry
	status inventoryStatus
	dirty  bool

	started     time.Time
	notifyCount int
	counted     bool
}

func (e *Engine) newSession(caster actors.Actor) *session {
	s := &session{
		e:       e,
		caster:  caster,
		policy:  e.cfg.Snapshot(),
		dirty:   true,
		started: time.Now(),
	}

	// Soul diversion: a teammate's capture lands in the primary actor's
	// inventory instead of their own.
	if s.policy.AllowSoulDiversion && s.policy.PerformDiversionLocally &&
		!caster.Primary && caster.Teammate {
		if primary, ok := e.reg.Primary(); ok {
			s.caster = primary
			e.log.Printf("trap: capture diverted from %s to primary actor", caster.ID)
		} else {
			e.log.Printf("trap: no primary actor registered for soul diversion")
		}
	}

	return s
}

// markInventoryChanged forces a full snapshot rebuild before the next
// catalog lookup. The snapshot is never patched in place.
func (s *session) markInventoryChanged() { s.dirty = true }

// nextVictim pops the largest pending soul and refreshes the inventory
// snapshot if a mutation invalidated it.
func (s *session) nextVictim() error {
	s.victim = s.victims.pop()
	s.e.soulsProcessed.Add(1)
	if s.dirty {
		return s.rebuildInventory()
	}
	return nil
}

// rebuildInventory rescans the caster's gems and recomputes whether
// anything is still fillable. Fully-filled counting ignores that black
// souls in dual gems could still be displaced; if displacing them is
// the only move left, there is nowhere for the displaced soul to go
// anyway.
func (s *session) rebuildInventory() error {
	inv, err := s.e.inv.SoulGems(s.caster.ID)
	if err != nil {
		return err
	}
	s.inv = inv

	filled := 0
	for kind := range inv {
		ref, ok := s.e.cat.Kind(kind)
		if ok && ref.Group.Full(ref.Contained) {
			filled++
		}
	}
	switch {
	case len(inv) == 0:
		s.status = statusNoGemsOwned
	case len(inv) == filled:
		s.status = statusAllGemsFilled
	default:
		s.status = statusHasGemsToFill
	}

	s.dirty = false
	return nil
}

func (s *session) pushVictim(v Victim) { s.victims.push(v) }

func (s *session) notify(m Message) {
	if s.notifyCount >= s.e.maxNotifications || !s.policy.AllowNotifications {
		return
	}
	if s.e.not != nil {
		s.e.not.Notify(s.caster.ID, m)
	}
	s.notifyCount++
}

// notifySuccess reports a successful placement. Only the primary
// caster's primary soul produces a message and a statistics event.
func (s *session) notifySuccess(m Message) {
	if !s.caster.Primary || !s.victim.Primary {
		return
	}
	s.notify(m)
	if !s.counted {
		s.counted = true
		if s.e.rec != nil {
			s.e.rec.RecordCapture(CaptureEvent{
				Caster:  s.caster.ID,
				Victim:  s.victim.Actor,
				Soul:    s.victim.Size,
				At:      time.Now(),
				Elapsed: time.Since(s.started),
			})
		}
	}
}

func (s *session) notifyFailure(m Message) {
	if s.caster.Primary {
		s.notify(m)
	}
}
