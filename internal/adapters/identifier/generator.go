// Package identifier implements ports.IDGenerator with UUIDv4.
package identifier

import "github.com/google/uuid"

// Generator hands out random UUIDs as opaque IDs.
type Generator struct{}

// New creates a Generator.
func New() *Generator { return &Generator{} }

// NewID returns a fresh UUIDv4 string.
func (g *Generator) NewID() string {
	return uuid.NewString()
}
