// Package catalog holds the static soul gem catalog: every concrete gem
// kind the service knows about, grouped by family and indexed by
// (capacity, contained soul size). The catalog is built once from
// configuration and never mutated afterward.
package catalog

import (
	"fmt"

	"soulforge.gg/internal/soul"
)

// GemID identifies one concrete gem kind: a family at one fill level.
type GemID string

// Group is one gem family at a fixed capacity. It carries exactly one
// concrete kind per contained size valid for the tier.
type Group struct {
	ID       string
	Name     string
	Capacity soul.Capacity

	variants map[soul.Size]GemID
}

// At returns the concrete kind of this family holding the given soul
// size, or false if the size is invalid for the tier.
func (g *Group) At(contained soul.Size) (GemID, bool) {
	id, ok := g.variants[contained]
	return id, ok
}

// HoldsBlack reports whether this family can contain a black soul.
func (g *Group) HoldsBlack() bool {
	return g.Capacity == soul.CapacityDual || g.Capacity == soul.CapacityBlack
}

// Full reports whether a gem of this family at the given fill level
// cannot accept any further soul without displacement. Dual gems count
// as full at either a grand or a black soul.
func (g *Group) Full(contained soul.Size) bool {
	switch g.Capacity {
	case soul.CapacityDual:
		return contained == soul.SizeGrand || contained == soul.SizeBlack
	case soul.CapacityBlack:
		return contained == soul.SizeBlack
	default:
		return contained == soul.SizeOf(g.Capacity)
	}
}

// validSizes lists the contained sizes a tier must define, in fill order.
func validSizes(c soul.Capacity) []soul.Size {
	switch c {
	case soul.CapacityDual:
		return []soul.Size{soul.SizeNone, soul.SizePetty, soul.SizeLesser, soul.SizeCommon, soul.SizeGreater, soul.SizeGrand, soul.SizeBlack}
	case soul.CapacityBlack:
		return []soul.Size{soul.SizeNone, soul.SizeBlack}
	default:
		sizes := []soul.Size{soul.SizeNone}
		for s := soul.SizePetty; s <= soul.SizeOf(c); s++ {
			sizes = append(sizes, s)
		}
		return sizes
	}
}

// Ref points at one concrete gem kind while retaining its family, so a
// search hit can be re-targeted to a different fill level of the same
// family.
type Ref struct {
	Group     *Group
	Contained soul.Size
	ID        GemID
}

// Retarget returns the kind of the same family at a different fill level.
func (r Ref) Retarget(contained soul.Size) (GemID, error) {
	id, ok := r.Group.At(contained)
	if !ok {
		return "", fmt.Errorf("gem family %s has no variant for contained soul %s", r.Group.ID, contained)
	}
	return id, nil
}

// Catalog owns all gem groups. Lookup order is construction order,
// which acts as the tie-break for first-owned searches.
type Catalog struct {
	Digest string

	groups []*Group
	byCap  map[soul.Capacity][]*Group
	byKind map[GemID]Ref
}

// Groups returns all families in construction order.
func (c *Catalog) Groups() []*Group { return c.groups }

// Kind resolves a concrete gem kind back to its family and fill level.
func (c *Catalog) Kind(id GemID) (Ref, bool) {
	ref, ok := c.byKind[id]
	return ref, ok
}

// GemsWith returns the concrete kinds of the given capacity at the given
// fill level, in construction order. Invalid pairs yield an empty slice,
// never an error.
func (c *Catalog) GemsWith(capacity soul.Capacity, contained soul.Size) []Ref {
	var out []Ref
	for _, g := range c.byCap[capacity] {
		if id, ok := g.At(contained); ok {
			out = append(out, Ref{Group: g, Contained: contained, ID: id})
		}
	}
	return out
}
