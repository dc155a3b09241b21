package trap

import (
	"fmt"
	"time"

	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/soul"
)

// Trap attempts to capture the victim's soul into the caster's gem
// inventory and reports whether at least one soul (primary or derived)
// was placed. Precondition faults return false with no side effects;
// collaborator faults are logged and converted to false, never
// propagated.
func (e *Engine) Trap(casterID, victimID actors.ID) bool {
	e.calls.Add(1)
	start := time.Now()

	caster, ok := e.reg.Lookup(casterID)
	if !ok {
		e.log.Printf("trap: caster %s not found", casterID)
		return false
	}
	victim, ok := e.reg.Lookup(victimID)
	if !ok {
		e.log.Printf("trap: victim %s not found", victimID)
		return false
	}
	if caster.Dead {
		e.log.Printf("trap: caster %s is dead", casterID)
		return false
	}
	if !victim.Dead {
		e.log.Printf("trap: victim %s is not dead", victimID)
		return false
	}

	// Process one soul trap at a time. The drained check happens under
	// the lock so two sessions cannot race on the same victim.
	e.mu.Lock()
	defer e.mu.Unlock()

	victim, ok = e.reg.Lookup(victimID)
	if !ok || victim.Drained || victim.Soul == soul.SizeNone {
		e.log.Printf("trap: victim %s has already been drained", victimID)
		return false
	}

	captured, err := e.runSession(caster, victim)

	if e.cfg.Snapshot().AllowProfiling {
		e.log.Printf("trap: time to trap soul: %.7f seconds", time.Since(start).Seconds())
	}

	if err != nil {
		e.log.Printf("trap: session aborted: %v", err)
		e.failures.Add(1)
		return false
	}
	if captured {
		e.captures.Add(1)
	} else {
		e.failures.Add(1)
	}
	return captured
}

// runSession drives the victim queue to a fixed point: pop the largest
// pending soul, refresh the snapshot if dirty, dispatch by soul class,
// repeat until the queue empties or nothing fillable remains.
func (e *Engine) runSession(caster, victim actors.Actor) (captured bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collaborator fault: %v", r)
		}
	}()

	s := e.newSession(caster)
	s.pushVictim(Victim{Actor: victim.ID, Size: victim.Soul, Primary: true})

	for s.victims.Len() > 0 {
		if err := s.nextVictim(); err != nil {
			return captured, err
		}

		e.log.Printf("trap: processing %s", s.victim)

		if s.status != statusHasGemsToFill {
			e.log.Printf("trap: caster has no soul gems to fill, stopping")
			break
		}

		switch {
		case s.victim.Size == soul.SizeBlack:
			ok, err := s.trapBlack()
			if err != nil {
				return captured, err
			}
			if ok {
				captured = true
			}

		case s.victim.Split:
			ok, err := s.trapSplit()
			if err != nil {
				return captured, err
			}
			if ok {
				captured = true
			} else {
				s.splitSoul()
			}

		default:
			ok, err := s.trapFull()
			if err != nil {
				return captured, err
			}
			if ok {
				captured = true
				continue
			}

			// Full placement failed; start reducing the soul. Shrinking
			// takes priority over splitting when both are configured.
			switch s.policy.Shrinking {
			case ShrinkShrink:
				ok, err := s.trapShrunk()
				if err != nil {
					return captured, err
				}
				if ok {
					captured = true
				}
			case ShrinkSplit:
				s.splitSoul()
			}
		}
	}

	if captured {
		// Latch the victim so a later call cannot drain it twice.
		if err := e.reg.MarkDrained(victim.ID); err != nil {
			e.log.Printf("trap: flagging drained victim: %v", err)
		}
		return true, nil
	}

	var msg Message
	switch s.status {
	case statusAllGemsFilled:
		msg = MsgAllSoulGemsFilled
	case statusNoGemsOwned:
		msg = MsgNoSoulGemsOwned
	default:
		if s.policy.Shrinking != ShrinkNone {
			msg = MsgNoSuitableSoulGem
		} else {
			msg = MsgNoSoulGemLargeEnough
		}
	}
	s.notifyFailure(msg)
	if e.rec != nil {
		e.rec.RecordFailure(s.caster.ID, msg.String())
	}
	return false, nil
}
