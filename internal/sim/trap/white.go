package trap

import "soulforge.gg/internal/soul"

// trapFull places a white soul without changing its size. With
// relocation enabled it uses best-fit ordering (tightest capacity
// first, most-filled gem first within a capacity); without relocation a
// displaced soul is destroyed, so it minimizes loss by displacing the
// smallest existing content across all capacities first.
func (s *session) trapFull() (bool, error) {
	s.e.log.Printf("trap: trapping full %s soul", s.victim.Size)

	// Partial filling widens the capacity scan past the soul's natural
	// tier (end-inclusive); displacement widens the contained-size scan
	// past empty (end-exclusive).
	maxCapacity := soul.CapacityOf(s.victim.Size)
	if s.policy.AllowPartiallyFillingSoulGems {
		maxCapacity = soul.CapacityLastWhite
	}
	maxContained := soul.SizePetty
	if s.policy.AllowSoulDisplacement {
		maxContained = s.victim.Size
	}

	if s.policy.AllowSoulRelocation {
		for capacity := soul.CapacityOf(s.victim.Size); capacity <= maxCapacity; capacity++ {
			for contained := soul.SizeNone; contained < maxContained; contained++ {
				ok, err := s.fillGem(s.e.cat.GemsWith(capacity, contained), s.victim.Size)
				if err != nil {
					return false, err
				}
				if !ok {
					continue
				}
				if contained > soul.SizeNone {
					s.notifySuccess(MsgSoulDisplaced)
					s.pushVictim(Victim{Size: contained})
				} else {
					s.notifySuccess(MsgSoulCaptured)
				}
				return true, nil
			}
		}

		// Last resort: a dual gem holding a black soul can hand its
		// black soul to an empty dedicated black gem and take this one.
		// Handled outside the queue so black and white souls cannot
		// displace each other forever.
		if s.policy.AllowSoulDisplacement &&
			(s.policy.AllowPartiallyFillingSoulGems || s.victim.Size == soul.SizeGrand) {
			ok, err := s.evictBlackFromDual()
			if err != nil {
				return false, err
			}
			if ok {
				s.notifySuccess(MsgSoulDisplaced)
				return true, nil
			}
		}
		return false, nil
	}

	for contained := soul.SizeNone; contained < maxContained; contained++ {
		for capacity := soul.CapacityOf(s.victim.Size); capacity <= maxCapacity; capacity++ {
			ok, err := s.fillGem(s.e.cat.GemsWith(capacity, contained), s.victim.Size)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
			if contained > soul.SizeNone {
				s.notifySuccess(MsgSoulDisplaced)
			} else {
				s.notifySuccess(MsgSoulCaptured)
			}
			return true, nil
		}
	}
	return false, nil
}
