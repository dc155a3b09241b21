package actors

import (
	"errors"
	"testing"

	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/soul"
)

func TestSpawnAndLookup(t *testing.T) {
	r := NewRegistry()
	id, err := r.Spawn(Actor{Name: "bandit", Soul: soul.SizeCommon, Dead: true})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}
	a, ok := r.Lookup(id)
	if !ok || a.Name != "bandit" || !a.Dead || a.Soul != soul.SizeCommon {
		t.Fatalf("unexpected actor %+v", a)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestPrimaryActor(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Primary(); ok {
		t.Fatalf("no primary yet")
	}
	id, err := r.Spawn(Actor{Name: "hero", Primary: true})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	p, ok := r.Primary()
	if !ok || p.ID != id {
		t.Fatalf("primary mismatch")
	}
	if _, err := r.Spawn(Actor{Name: "impostor", Primary: true}); err == nil {
		t.Fatalf("second primary should be rejected")
	}
}

func TestKillAndDrain(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Spawn(Actor{Name: "wolf", Soul: soul.SizePetty})
	if err := r.Kill(id); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if err := r.MarkDrained(id); err != nil {
		t.Fatalf("drain: %v", err)
	}
	a, _ := r.Lookup(id)
	if !a.Dead || !a.Drained {
		t.Fatalf("flags not set: %+v", a)
	}
	if err := r.Kill("missing"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
}

func TestInventoryRoundTrip(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Spawn(Actor{Name: "mage"})
	kind := catalog.GemID("common_gem_empty")

	if err := r.AddGem(id, kind, nil, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	meta := &GemMeta{Owner: "someone", ExtraSoul: soul.SizeLesser}
	if err := r.AddGem(id, kind, meta, 1); err != nil {
		t.Fatalf("add with meta: %v", err)
	}

	inv, err := r.SoulGems(id)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	entry, ok := inv[kind]
	if !ok || entry.Count != 3 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Meta == nil || entry.Meta.Owner != "someone" || entry.Meta.ExtraSoul != soul.SizeLesser {
		t.Fatalf("missing first metadata handle: %+v", entry.Meta)
	}

	// The returned map is a copy; mutating it must not affect state.
	delete(inv, kind)
	inv2, _ := r.SoulGems(id)
	if inv2[kind].Count != 3 {
		t.Fatalf("registry state leaked")
	}

	if err := r.RemoveGem(id, kind, 2, nil); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.RemoveGem(id, kind, 2, nil); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if err := r.RemoveGem(id, kind, 1, meta); err != nil {
		t.Fatalf("remove with meta: %v", err)
	}
	inv3, _ := r.SoulGems(id)
	if _, ok := inv3[kind]; ok {
		t.Fatalf("stack should be gone")
	}
}

func TestQueryUnknownOwner(t *testing.T) {
	r := NewRegistry()
	if _, err := r.SoulGems("nope"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
}
