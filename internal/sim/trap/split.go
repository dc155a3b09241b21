package trap

import "soulforge.gg/internal/soul"

// trapSplit places a soul that came from splitting. It only targets the
// soul's natural tier; a half that still fits nowhere is split again by
// the driver.
func (s *session) trapSplit() (bool, error) {
	s.e.log.Printf("trap: trapping split %s soul", s.victim.Size)

	maxContained := soul.SizePetty
	if s.policy.AllowSoulDisplacement {
		maxContained = s.victim.Size
	}

	for contained := soul.SizeNone; contained < maxContained; contained++ {
		ok, err := s.fillGem(s.e.cat.GemsWith(soul.CapacityOf(s.victim.Size), contained), s.victim.Size)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		s.notifySuccess(MsgSoulSplit)
		if s.policy.AllowSoulRelocation && contained > soul.SizeNone {
			s.pushVictim(Victim{Size: contained})
		}
		return true, nil
	}
	return false, nil
}

// splitSoul decomposes the current victim into two half-size souls and
// re-queues both. Petty and black souls are not splittable; their
// victims are simply dropped. Split depth is bounded by the size
// ordinality, so a grand soul splits at most four levels deep.
func (s *session) splitSoul() {
	a, b, ok := soul.Split(s.victim.Size)
	if !ok {
		return
	}
	s.pushVictim(Victim{Actor: s.victim.Actor, Size: a, Split: true})
	s.pushVictim(Victim{Actor: s.victim.Actor, Size: b, Split: true})
}
