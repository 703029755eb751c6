package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Inspector builds the flat connections view of single entries.
type Inspector struct {
	source   ports.GraphDataSource
	resolver *OutcomeResolver
}

// NewInspector creates an inspector sharing the given resolver.
func NewInspector(source ports.GraphDataSource, resolver *OutcomeResolver) *Inspector {
	return &Inspector{source: source, resolver: resolver}
}

// Connections returns the entry at key with its links, check, alternates and
// check outcomes. It returns (nil, nil) when the entry does not exist.
func (i *Inspector) Connections(ctx context.Context, key domain.NodeKey) (*domain.Connections, error) {
	node, err := i.source.GetNode(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", key, err)
	}
	if node == nil {
		return nil, nil
	}

	view := &domain.Connections{
		Node:       *node,
		Links:      []domain.Link{},
		Alternates: []domain.Alternate{},
		Outcomes:   []domain.Outcome{},
	}

	edges, err := i.source.GetOutboundEdges(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load links of %s: %w", key, err)
	}
	sortEdges(edges)
	for _, edge := range edges {
		target, err := i.source.GetNode(ctx, edge.Destination)
		if err != nil {
			return nil, fmt.Errorf("failed to load node %s: %w", edge.Destination, err)
		}
		view.Links = append(view.Links, domain.Link{
			Destination: edge.Destination,
			Priority:    edge.Priority,
			IsConnector: edge.IsConnector,
			Target:      target,
		})
	}

	alternates, err := i.source.GetAlternates(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load alternates of %s: %w", key, err)
	}
	view.Alternates = append(view.Alternates, alternates...)

	check, err := i.source.GetCheck(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load check %s: %w", key, err)
	}
	if check != nil {
		resolved := check.Resolve()
		view.Check = &resolved

		outcomes, err := i.resolver.Resolve(ctx, *check, key)
		if err != nil {
			return nil, err
		}
		view.Outcomes = outcomes
	}

	return view, nil
}

// Outcomes resolves the check attached to key. Entries without a check, or
// missing entries, yield an empty list.
func (i *Inspector) Outcomes(ctx context.Context, key domain.NodeKey) ([]domain.Outcome, error) {
	check, err := i.source.GetCheck(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load check %s: %w", key, err)
	}
	if check == nil {
		return []domain.Outcome{}, nil
	}
	return i.resolver.Resolve(ctx, *check, key)
}
