package trap

import "soulforge.gg/internal/soul"

// trapBlack places a black soul: first into an empty dedicated black
// gem, then, if displacement allows, into a dual gem by overwriting its
// white contents (scanned ascending so the smallest soul is displaced).
func (s *session) trapBlack() (bool, error) {
	s.e.log.Printf("trap: trapping black soul")

	filled, err := s.fillBlackGem()
	if err != nil {
		return false, err
	}
	if filled {
		s.notifySuccess(MsgSoulCaptured)
		return true, nil
	}

	// Dual gems are reserved for white souls unless displacement lets a
	// black soul claim one. The scan is end-exclusive: contained sizes
	// run up to (but not including) Black.
	if !s.policy.AllowSoulDisplacement {
		return false, nil
	}

	for contained := soul.SizeNone; contained < soul.SizeBlack; contained++ {
		ok, err := s.fillGem(s.e.cat.GemsWith(soul.CapacityDual, contained), soul.SizeBlack)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if s.policy.AllowSoulRelocation && contained > soul.SizeNone {
			s.notifySuccess(MsgSoulDisplaced)
			s.pushVictim(Victim{Size: contained})
		} else {
			s.notifySuccess(MsgSoulCaptured)
		}
		return true, nil
	}

	return false, nil
}
