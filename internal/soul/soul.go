// Package soul defines the ordered soul size and gem capacity models
// shared by the catalog and the trap engine.
package soul

import "fmt"

// Size is the ordinal strength of a soul. White sizes are ordered
// Petty < Lesser < Common < Greater < Grand; Black sits above all white
// sizes for queue priority but is otherwise a disjoint tier.
type Size int

const (
	SizeNone Size = iota
	SizePetty
	SizeLesser
	SizeCommon
	SizeGreater
	SizeGrand
	SizeBlack
)

var sizeNames = map[Size]string{
	SizeNone:    "none",
	SizePetty:   "petty",
	SizeLesser:  "lesser",
	SizeCommon:  "common",
	SizeGreater: "greater",
	SizeGrand:   "grand",
	SizeBlack:   "black",
}

func (s Size) String() string {
	if name, ok := sizeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("size(%d)", int(s))
}

// Valid reports whether s is a defined soul size (including None).
func (s Size) Valid() bool {
	_, ok := sizeNames[s]
	return ok
}

// White reports whether s is a fillable white soul size.
func (s Size) White() bool {
	return s >= SizePetty && s <= SizeGrand
}

// ParseSize maps a config/wire name to a Size.
func ParseSize(name string) (Size, bool) {
	for s, n := range sizeNames {
		if n == name {
			return s, true
		}
	}
	return SizeNone, false
}

// Capacity is a gem capacity tier. White tiers mirror the white soul
// sizes. Dual holds either one black soul or one white grand soul.
// Black holds only black souls.
type Capacity int

const (
	CapacityPetty Capacity = iota + 1
	CapacityLesser
	CapacityCommon
	CapacityGreater
	CapacityGrand
	CapacityDual
	CapacityBlack
)

// CapacityFirst and CapacityLastWhite bound the search loops of the
// trap engine. Dual counts as the last white tier because it accepts a
// white grand soul.
const (
	CapacityFirst     = CapacityPetty
	CapacityLastWhite = CapacityDual
)

var capacityNames = map[Capacity]string{
	CapacityPetty:   "petty",
	CapacityLesser:  "lesser",
	CapacityCommon:  "common",
	CapacityGreater: "greater",
	CapacityGrand:   "grand",
	CapacityDual:    "dual",
	CapacityBlack:   "black",
}

func (c Capacity) String() string {
	if name, ok := capacityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capacity(%d)", int(c))
}

// Valid reports whether c is a defined capacity tier.
func (c Capacity) Valid() bool {
	_, ok := capacityNames[c]
	return ok
}

// ParseCapacity maps a config/wire name to a Capacity.
func ParseCapacity(name string) (Capacity, bool) {
	for c, n := range capacityNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// CapacityOf returns the smallest capacity tier that holds a white soul
// of size s unshrunk. Black souls have their own tier.
func CapacityOf(s Size) Capacity {
	switch s {
	case SizePetty:
		return CapacityPetty
	case SizeLesser:
		return CapacityLesser
	case SizeCommon:
		return CapacityCommon
	case SizeGreater:
		return CapacityGreater
	case SizeGrand:
		return CapacityGrand
	case SizeBlack:
		return CapacityBlack
	}
	return 0
}

// SizeOf is the inverse of CapacityOf for fillable tiers: the largest
// soul size a gem of capacity c holds when fully filled. Dual gems
// report Grand (their white maximum).
func SizeOf(c Capacity) Size {
	switch c {
	case CapacityPetty:
		return SizePetty
	case CapacityLesser:
		return SizeLesser
	case CapacityCommon:
		return SizeCommon
	case CapacityGreater:
		return SizeGreater
	case CapacityGrand, CapacityDual:
		return SizeGrand
	case CapacityBlack:
		return SizeBlack
	}
	return SizeNone
}

// Split decomposes a white soul into two halves, following the raw
// soul values (Grand=3000, Greater=2000, Common=1000, Lesser=500,
// Petty=250). Petty and Black souls do not split.
func Split(s Size) (a, b Size, ok bool) {
	switch s {
	case SizeGrand:
		return SizeGreater, SizeCommon, true
	case SizeGreater:
		return SizeCommon, SizeCommon, true
	case SizeCommon:
		return SizeLesser, SizeLesser, true
	case SizeLesser:
		return SizePetty, SizePetty, true
	}
	return SizeNone, SizeNone, false
}
