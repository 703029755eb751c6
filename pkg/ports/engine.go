package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// Explorer is the read-only engine surface consumed by the delivery adapters (HTTP, MCP, CLI).
type Explorer interface {
	// Explore materializes the tree rooted at key. A maxDepth <= 0 keeps only the root.
	Explore(ctx context.Context, key domain.NodeKey, maxDepth int) (*domain.TreeNode, error)

	// Connections returns the flat view of a single entry.
	Connections(ctx context.Context, key domain.NodeKey) (*domain.Connections, error)

	// Outcomes resolves the downstream outcomes of the check attached to key.
	Outcomes(ctx context.Context, key domain.NodeKey) ([]domain.Outcome, error)

	Catalog
}
