package domain

import (
	"context"
	"time"
)

// PruneReason explains why a branch was left out of a tree.
type PruneReason string

const (
	PruneCycle   PruneReason = "cycle"
	PruneDepth   PruneReason = "depth"
	PruneMissing PruneReason = "missing"
)

// VisitEvent is emitted for every node materialized into a tree.
type VisitEvent struct {
	Root  NodeKey
	Key   NodeKey
	Depth int
}

// PruneEvent is emitted when a branch is dropped.
type PruneEvent struct {
	Root   NodeKey
	Key    NodeKey
	Depth  int
	Reason PruneReason
}

// OutcomeEvent is emitted once per resolved outcome.
type OutcomeEvent struct {
	Origin  NodeKey
	Outcome Outcome
}

// ExploreEvent is emitted after a tree has been materialized.
type ExploreEvent struct {
	Root     NodeKey
	MaxDepth int
	Nodes    int
	Duration time.Duration
	Err      error
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnExplore func(context.Context, *ExploreEvent)
	OnVisit   func(context.Context, *VisitEvent)
	OnPrune   func(context.Context, *PruneEvent)
	OnOutcome func(context.Context, *OutcomeEvent)
}
