package trap

import (
	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/soul"
)

// searchResult is one owned gem found in the snapshot, with the family
// reference needed to re-target it to a new fill level.
type searchResult struct {
	ref   catalog.Ref
	count int
	meta  *actors.GemMeta
}

// findFirstOwned scans candidate kinds in catalog order and returns the
// first one the caster owns in positive quantity.
func findFirstOwned(inv map[catalog.GemID]actors.GemEntry, refs []catalog.Ref) (searchResult, bool) {
	for _, ref := range refs {
		if entry, ok := inv[ref.ID]; ok && entry.Count > 0 {
			return searchResult{ref: ref, count: entry.Count, meta: entry.Meta}, true
		}
	}
	return searchResult{}, false
}

// replaceGem swaps one owned gem for the same family at a new fill
// level: add one unit of toAdd, remove one unit of toRemove. A residual
// extra soul on the removed unit re-enters the queue when relocation is
// enabled, and ownership carries over when preservation is enabled.
func (s *session) replaceGem(toAdd catalog.GemID, toRemove catalog.Ref, meta *actors.GemMeta) error {
	var oldMeta *actors.GemMeta
	if s.policy.AllowExtraSoulRelocation || s.policy.PreserveOwnership {
		oldMeta = meta
	}

	if s.policy.AllowExtraSoulRelocation && oldMeta != nil && oldMeta.ExtraSoul != soul.SizeNone {
		size := oldMeta.ExtraSoul
		// A grand residual in a black-capable gem is assumed black; the
		// original record of what was stored is long gone.
		if size == soul.SizeGrand && toRemove.Group.HoldsBlack() {
			size = soul.SizeBlack
		}
		s.e.log.Printf("trap: relocating extra %s soul from %s", size, toRemove.ID)
		s.pushVictim(Victim{Size: size})
	}

	var newMeta *actors.GemMeta
	if s.policy.PreserveOwnership && oldMeta != nil && oldMeta.Owner != "" {
		newMeta = &actors.GemMeta{Owner: oldMeta.Owner}
	}

	s.e.log.Printf("trap: replacing %s with %s in %s's inventory", toRemove.ID, toAdd, s.caster.ID)

	if err := s.e.inv.AddGem(s.caster.ID, toAdd, newMeta, 1); err != nil {
		return err
	}
	if err := s.e.inv.RemoveGem(s.caster.ID, toRemove.ID, 1, oldMeta); err != nil {
		return err
	}
	s.markInventoryChanged()
	return nil
}

// fillGem searches the candidate kinds for the first owned one and, on
// a hit, replaces it with its family's kind at the target fill level.
// A miss is a normal negative result, not an error.
func (s *session) fillGem(refs []catalog.Ref, target soul.Size) (bool, error) {
	first, ok := findFirstOwned(s.inv, refs)
	if !ok {
		return false, nil
	}
	toAdd, err := first.ref.Retarget(target)
	if err != nil {
		return false, err
	}
	if err := s.replaceGem(toAdd, first.ref, first.meta); err != nil {
		return false, err
	}
	return true, nil
}

// fillBlackGem fills the first owned empty dedicated black gem.
func (s *session) fillBlackGem() (bool, error) {
	return s.fillGem(s.e.cat.GemsWith(soul.CapacityBlack, soul.SizeNone), soul.SizeBlack)
}

// evictBlackFromDual moves a black soul out of an owned dual gem into
// an empty dedicated black gem, then installs the current white victim
// in the freed slot. The dual gem is resolved before the black fill so
// the second replacement works off the pre-mutation snapshot.
func (s *session) evictBlackFromDual() (bool, error) {
	first, ok := findFirstOwned(s.inv, s.e.cat.GemsWith(soul.CapacityDual, soul.SizeBlack))
	if !ok {
		return false, nil
	}
	moved, err := s.fillBlackGem()
	if err != nil || !moved {
		return false, err
	}
	toAdd, err := first.ref.Retarget(s.victim.Size)
	if err != nil {
		return false, err
	}
	if err := s.replaceGem(toAdd, first.ref, first.meta); err != nil {
		return false, err
	}
	return true, nil
}
