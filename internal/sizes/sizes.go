// Package sizes holds the catalog of named image sizes the service is
// willing to generate. The catalog is built once at startup and never
// mutated afterwards, so concurrent readers need no locking.
package sizes

import (
	"sort"

	"github.com/lazythumb/lazythumb/internal/domain"
)

type Catalog struct {
	defs  map[string]domain.SizeDefinition
	names []string // sorted, so iteration order is deterministic
}

// New merges two definition layers into a catalog. Per size name a code
// registration wins over the config-file option value; options only fill
// names nobody registered.
func New(options, registered []domain.SizeDefinition) *Catalog {
	defs := make(map[string]domain.SizeDefinition, len(options)+len(registered))
	for _, d := range options {
		defs[d.Name] = d
	}
	for _, d := range registered {
		defs[d.Name] = d
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Catalog{defs: defs, names: names}
}

// All returns every definition in name order. The returned slice is a copy.
func (c *Catalog) All() []domain.SizeDefinition {
	out := make([]domain.SizeDefinition, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.defs[name])
	}
	return out
}

func (c *Catalog) Lookup(name string) (domain.SizeDefinition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

func (c *Catalog) Len() int {
	return len(c.defs)
}
