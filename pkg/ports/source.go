package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// GraphDataSource is the read-only view of the dialogue dataset used by the engine.
//
// Absent entries are not errors: GetNode and GetCheck return (nil, nil) and the
// list methods return empty slices. A non-nil error always means the backing
// store failed and is propagated to the caller.
type GraphDataSource interface {
	// GetNode returns the entry stored under key.
	GetNode(ctx context.Context, key domain.NodeKey) (*domain.DialogueNode, error)

	// GetOutboundEdges returns the links leaving key, in no particular order.
	GetOutboundEdges(ctx context.Context, key domain.NodeKey) ([]domain.DialogueEdge, error)

	// GetCheck returns the skill check attached to key.
	GetCheck(ctx context.Context, key domain.NodeKey) (*domain.SkillCheck, error)

	// GetAlternates returns the alternate lines attached to key.
	GetAlternates(ctx context.Context, key domain.NodeKey) ([]domain.Alternate, error)

	// ListConditionalNodes returns every entry of a conversation with a
	// non-empty condition string, ordered by dialogue ID.
	ListConditionalNodes(ctx context.Context, conversationID int) ([]domain.DialogueNode, error)
}

// Catalog covers the flat lookups over the dataset that have no graph semantics.
type Catalog interface {
	// ListActors returns the distinct actor names, sorted.
	ListActors(ctx context.Context) ([]string, error)

	// SearchDialogues returns lines containing keyword (case-insensitive).
	// A non-empty actor restricts matches to that speaker, compared trimmed
	// and case-insensitively.
	SearchDialogues(ctx context.Context, actor, keyword string) ([]domain.DialogueMatch, error)
}

// Dataset is a source that serves both the graph and the catalog lookups.
// Every adapter in this module implements it.
type Dataset interface {
	GraphDataSource
	Catalog
}

// Watchable defines an interface for sources that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled after the dataset was reloaded.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
