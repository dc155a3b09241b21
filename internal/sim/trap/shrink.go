package trap

import "soulforge.gg/internal/soul"

// trapShrunk shrinks the soul to exactly fit a smaller gem. Shrinking
// destroys value permanently, so capacities are scanned descending from
// one tier below the soul's natural tier: the largest remaining shrink
// loses the least. Displaced contents are always smaller than the gem's
// capacity while a shrunk soul fills it completely, so there is no
// separate minimize-loss ordering here.
func (s *session) trapShrunk() (bool, error) {
	s.e.log.Printf("trap: shrinking %s soul", s.victim.Size)

	for capacity := soul.CapacityOf(s.victim.Size) - 1; capacity >= soul.CapacityFirst; capacity-- {
		// The contained-size bound depends on the tier itself, so it
		// lives inside the loop (end-exclusive; empty only when
		// displacement is off).
		maxContained := soul.SizePetty
		if s.policy.AllowSoulDisplacement {
			maxContained = soul.SizeOf(capacity)
		}

		for contained := soul.SizeNone; contained < maxContained; contained++ {
			ok, err := s.fillGem(s.e.cat.GemsWith(capacity, contained), soul.SizeOf(capacity))
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
			s.notifySuccess(MsgSoulShrunk)
			if s.policy.AllowSoulRelocation && contained > soul.SizeNone {
				s.pushVictim(Victim{Size: contained})
			}
			return true, nil
		}
	}
	return false, nil
}
