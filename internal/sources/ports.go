// Package sources defines the ports every input backend implements.
package sources

import (
	"context"

	"aceiro/internal/core"
)

// Ports for inbound data adapters.
type (
	// TableReader returns the raw rows of one input table.
	TableReader interface {
		// ReadTable fails with a *core.LoadError when the table cannot be
		// read at all. Header validation is left to the caller.
		ReadTable(ctx context.Context, entity core.Entity) (core.RawTable, error)
	}

	// Describer is implemented by readers that can name their location,
	// used in logs and the readiness probe.
	Describer interface {
		Describe() string
	}
)

// Describe names the location of r, or its type when it cannot.
func Describe(r TableReader) string {
	if d, ok := r.(Describer); ok {
		return d.Describe()
	}
	return "unknown"
}
