package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"soulforge.gg/internal/soul"
)

type gemsFile struct {
	Gems []gemDef `yaml:"gems"`
}

type gemDef struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Capacity string            `yaml:"capacity"`
	Variants map[string]string `yaml:"variants"` // contained size -> concrete kind id
}

// Load reads gems.yaml from the config directory and builds the catalog.
// Construction order follows file order.
func Load(configDir string) (*Catalog, error) {
	path := filepath.Join(configDir, "gems.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file gemsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("gems.yaml: %w", err)
	}
	if len(file.Gems) == 0 {
		return nil, fmt.Errorf("gems.yaml: no gem families defined")
	}

	c := &Catalog{
		Digest: sha256Hex(raw),
		byCap:  map[soul.Capacity][]*Group{},
		byKind: map[GemID]Ref{},
	}

	for _, def := range file.Gems {
		if def.ID == "" {
			return nil, fmt.Errorf("gems.yaml: gem family with empty id")
		}
		capacity, ok := soul.ParseCapacity(def.Capacity)
		if !ok {
			return nil, fmt.Errorf("gems.yaml: family %s: unknown capacity %q", def.ID, def.Capacity)
		}

		g := &Group{
			ID:       def.ID,
			Name:     def.Name,
			Capacity: capacity,
			variants: map[soul.Size]GemID{},
		}

		for name, kind := range def.Variants {
			size, ok := soul.ParseSize(name)
			if !ok {
				return nil, fmt.Errorf("gems.yaml: family %s: unknown contained size %q", def.ID, name)
			}
			if kind == "" {
				return nil, fmt.Errorf("gems.yaml: family %s: empty kind id for %s", def.ID, name)
			}
			g.variants[size] = GemID(kind)
		}

		// Every tier must define exactly its valid fill levels so that
		// lookups by (capacity, contained) are total within the tier.
		want := validSizes(capacity)
		if len(g.variants) != len(want) {
			return nil, fmt.Errorf("gems.yaml: family %s: expected %d variants for %s capacity, got %d",
				def.ID, len(want), capacity, len(g.variants))
		}
		for _, size := range want {
			id, ok := g.variants[size]
			if !ok {
				return nil, fmt.Errorf("gems.yaml: family %s: missing variant for contained soul %s", def.ID, size)
			}
			if prev, dup := c.byKind[id]; dup {
				return nil, fmt.Errorf("gems.yaml: kind %s defined by both %s and %s", id, prev.Group.ID, def.ID)
			}
			c.byKind[id] = Ref{Group: g, Contained: size, ID: id}
		}

		c.groups = append(c.groups, g)
		c.byCap[capacity] = append(c.byCap[capacity], g)
	}

	return c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
