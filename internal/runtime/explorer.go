package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Explorer materializes the dialogue graph into trees.
type Explorer struct {
	source ports.GraphDataSource
	settings
}

// NewExplorer creates an explorer reading from source.
func NewExplorer(source ports.GraphDataSource, opts ...Option) *Explorer {
	return &Explorer{
		source:   source,
		settings: newSettings(opts),
	}
}

// Explore walks the graph depth-first from root and returns the branching tree.
//
// The root is kept whenever it exists; descendants whose depth reaches maxDepth
// are dropped, so maxDepth <= 1 yields the root alone. A node that already
// appears on its own root-to-node path is dropped to break cycles, while the
// same node reached through independent branches is materialized once per
// branch. Missing entries are pruned. Explore returns (nil, nil) when the root
// itself does not exist, and an error only when the source fails.
func (e *Explorer) Explore(ctx context.Context, root domain.NodeKey, maxDepth int) (*domain.TreeNode, error) {
	start := time.Now()
	w := &walk{Explorer: e, root: root, maxDepth: maxDepth}

	tree, err := w.visit(ctx, root, nil, 0)

	if e.hooks.OnExplore != nil {
		e.hooks.OnExplore(ctx, &domain.ExploreEvent{
			Root:     root,
			MaxDepth: maxDepth,
			Nodes:    tree.Size(),
			Duration: time.Since(start),
			Err:      err,
		})
	}
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// walk holds the per-request state of one exploration.
type walk struct {
	*Explorer
	root     domain.NodeKey
	maxDepth int
}

func (w *walk) visit(ctx context.Context, key domain.NodeKey, ancestors *path, depth int) (*domain.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth > 0 && depth >= w.maxDepth {
		w.prune(ctx, key, depth, domain.PruneDepth)
		return nil, nil
	}
	if ancestors.contains(key) {
		w.prune(ctx, key, depth, domain.PruneCycle)
		return nil, nil
	}

	node, err := w.source.GetNode(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", key, err)
	}
	if node == nil {
		w.prune(ctx, key, depth, domain.PruneMissing)
		return nil, nil
	}

	tree := &domain.TreeNode{
		ConversationID: key.ConversationID,
		DialogueID:     key.DialogueID,
		Actor:          node.ActorName,
		Dialogue:       node.Text,
		HasCheck:       node.HasCheck,
		Condition:      node.ConditionString,
		Children:       []*domain.TreeNode{},
	}

	if node.HasCheck {
		check, err := w.source.GetCheck(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load check %s: %w", key, err)
		}
		if check != nil {
			resolved := check.Resolve()
			tree.SkillCheck = &resolved
		}
	}

	if w.hooks.OnVisit != nil {
		w.hooks.OnVisit(ctx, &domain.VisitEvent{Root: w.root, Key: key, Depth: depth})
	}

	edges, err := w.source.GetOutboundEdges(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load links of %s: %w", key, err)
	}
	sortEdges(edges)

	here := ancestors.push(key)
	for _, edge := range edges {
		child, err := w.visit(ctx, edge.Destination, here, depth+1)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		child.IsConnector = edge.IsConnector
		child.ParentCondition = child.Condition
		child.Priority = edge.Priority
		tree.Children = append(tree.Children, child)
	}

	return tree, nil
}

func (w *walk) prune(ctx context.Context, key domain.NodeKey, depth int, reason domain.PruneReason) {
	w.logger.Debug("Branch pruned", "root", w.root.String(), "node", key.String(), "depth", depth, "reason", string(reason))
	if w.hooks.OnPrune != nil {
		w.hooks.OnPrune(ctx, &domain.PruneEvent{Root: w.root, Key: key, Depth: depth, Reason: reason})
	}
}
