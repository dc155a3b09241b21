// Package actors keeps the service's world state: the registry of
// known actors and the soul gem inventory each of them owns.
package actors

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/soul"
)

var (
	ErrUnknownActor = errors.New("unknown actor")
	ErrNotOwned     = errors.New("gem not owned in requested quantity")
)

// ID identifies a registered actor.
type ID string

// Actor is one registered actor. Soul is the size this actor yields
// when drained; Drained latches after a successful capture.
type Actor struct {
	ID       ID
	Name     string
	Soul     soul.Size
	Dead     bool
	Drained  bool
	Teammate bool
	Primary  bool
}

// GemMeta is the extra metadata one inventory unit may carry: its
// original owner and an unaccounted residual soul.
type GemMeta struct {
	Owner     ID
	ExtraSoul soul.Size
}

// GemEntry is the inventory view of one gem kind: the owned quantity
// and the first extra-metadata handle, if any unit carries one.
type GemEntry struct {
	Count int
	Meta  *GemMeta
}

type stack struct {
	count int
	metas []GemMeta // units carrying extra metadata; len <= count
}

// Registry owns actors and their inventories. All operations are
// individually atomic with respect to each other.
type Registry struct {
	mu          sync.Mutex
	actors      map[ID]*Actor
	inventories map[ID]map[catalog.GemID]*stack
	primary     ID
}

func NewRegistry() *Registry {
	return &Registry{
		actors:      map[ID]*Actor{},
		inventories: map[ID]map[catalog.GemID]*stack{},
	}
}

// Spawn registers a new actor. A blank ID gets a generated one. The
// first actor spawned with Primary set becomes the diversion target.
func (r *Registry) Spawn(a Actor) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = ID(uuid.NewString())
	}
	if _, exists := r.actors[a.ID]; exists {
		return "", fmt.Errorf("actor %s already registered", a.ID)
	}
	if a.Primary && r.primary != "" {
		return "", fmt.Errorf("primary actor already registered (%s)", r.primary)
	}

	copied := a
	r.actors[a.ID] = &copied
	r.inventories[a.ID] = map[catalog.GemID]*stack{}
	if a.Primary {
		r.primary = a.ID
	}
	return a.ID, nil
}

// Lookup returns a copy of the actor.
func (r *Registry) Lookup(id ID) (Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[id]
	if !ok {
		return Actor{}, false
	}
	return *a, true
}

// Primary returns the designated diversion target, if one exists.
func (r *Registry) Primary() (Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[r.primary]
	if !ok {
		return Actor{}, false
	}
	return *a, true
}

// Kill marks an actor dead.
func (r *Registry) Kill(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[id]
	if !ok {
		return ErrUnknownActor
	}
	a.Dead = true
	return nil
}

// MarkDrained latches an actor as already captured.
func (r *Registry) MarkDrained(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[id]
	if !ok {
		return ErrUnknownActor
	}
	a.Drained = true
	return nil
}

// SoulGems returns the owner's full gem inventory: count plus the first
// extra-metadata handle per kind. The returned map is a private copy.
func (r *Registry) SoulGems(owner ID) (map[catalog.GemID]GemEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.inventories[owner]
	if !ok {
		return nil, ErrUnknownActor
	}
	out := make(map[catalog.GemID]GemEntry, len(inv))
	for kind, st := range inv {
		if st.count <= 0 {
			continue
		}
		entry := GemEntry{Count: st.count}
		if len(st.metas) > 0 {
			meta := st.metas[0]
			entry.Meta = &meta
		}
		out[kind] = entry
	}
	return out, nil
}

// AddGem adds count units of a gem kind, optionally tagged with metadata.
func (r *Registry) AddGem(owner ID, kind catalog.GemID, meta *GemMeta, count int) error {
	if count <= 0 {
		return fmt.Errorf("add gem: non-positive count %d", count)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.inventories[owner]
	if !ok {
		return ErrUnknownActor
	}
	st := inv[kind]
	if st == nil {
		st = &stack{}
		inv[kind] = st
	}
	st.count += count
	if meta != nil {
		st.metas = append(st.metas, *meta)
	}
	return nil
}

// RemoveGem removes count units of a gem kind. When meta is given, the
// unit carrying the matching metadata is removed with it.
func (r *Registry) RemoveGem(owner ID, kind catalog.GemID, count int, meta *GemMeta) error {
	if count <= 0 {
		return fmt.Errorf("remove gem: non-positive count %d", count)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.inventories[owner]
	if !ok {
		return ErrUnknownActor
	}
	st := inv[kind]
	if st == nil || st.count < count {
		return fmt.Errorf("%w: %s x%d", ErrNotOwned, kind, count)
	}
	st.count -= count
	if meta != nil {
		for i := range st.metas {
			if st.metas[i] == *meta {
				st.metas = append(st.metas[:i], st.metas[i+1:]...)
				break
			}
		}
	}
	if st.count == 0 {
		delete(inv, kind)
	}
	return nil
}
