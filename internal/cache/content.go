package cache

import (
	"context"
	"errors"

	"github.com/emrgen/programtree/internal/tree"
)

// ErrMiss is returned when no content is cached for a tree.
var ErrMiss = errors.New("cache miss")

// ContentCache keeps the rendered content of program trees. Any write to a
// tree can change the content of the trees using its nodes, so Invalidate
// drops every entry at once.
type ContentCache interface {
	// GetContent returns the cached content of the tree or ErrMiss.
	GetContent(ctx context.Context, identity tree.ProgramTreeIdentity) ([]byte, error)
	// SetContent caches the content of the tree.
	SetContent(ctx context.Context, identity tree.ProgramTreeIdentity, content []byte) error
	// Invalidate drops the content of every tree.
	Invalidate(ctx context.Context) error
}
