package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// OutcomeResolver correlates a skill check with the lines its flag unlocks.
//
// The correlation is a textual heuristic over free-form condition strings, not
// an evaluation: a line is related to a check when its governing condition
// contains the check's flag name (case-sensitive), and it is a failure when
// that condition contains "== false" (case-insensitive). Anything else is a
// success. Conditions written differently (e.g. "!doorOpen") are misread.
type OutcomeResolver struct {
	source ports.GraphDataSource
	settings
}

// NewOutcomeResolver creates a resolver reading from source.
func NewOutcomeResolver(source ports.GraphDataSource, opts ...Option) *OutcomeResolver {
	return &OutcomeResolver{
		source:   source,
		settings: newSettings(opts),
	}
}

// Resolve returns the outcomes of check, which is attached to origin.
//
// Two searches run in order and their results are merged:
//  1. connector routing: connectors linked from origin whose condition
//     mentions the flag, and the spoken lines they lead to;
//  2. direct references: spoken lines of the same conversation whose own
//     condition mentions the flag, by ascending dialogue ID.
//
// A line found by both keeps the first record. Checks without a flag yield none.
func (r *OutcomeResolver) Resolve(ctx context.Context, check domain.SkillCheck, origin domain.NodeKey) ([]domain.Outcome, error) {
	outcomes := []domain.Outcome{}
	if check.FlagName == "" {
		return outcomes, nil
	}

	seen := make(map[domain.NodeKey]bool)
	add := func(line domain.DialogueNode, governing string) {
		if seen[line.Key] {
			return
		}
		seen[line.Key] = true
		o := domain.Outcome{
			CheckFlag:      check.FlagName,
			SkillType:      check.SkillType,
			Difficulty:     check.DifficultyCode,
			OutcomeType:    classify(governing),
			Actor:          line.ActorName,
			Dialogue:       line.Text,
			Condition:      governing,
			ConversationID: line.Key.ConversationID,
			DialogueID:     line.Key.DialogueID,
		}
		outcomes = append(outcomes, o)
		if r.hooks.OnOutcome != nil {
			r.hooks.OnOutcome(ctx, &domain.OutcomeEvent{Origin: origin, Outcome: o})
		}
	}

	if err := r.viaConnectors(ctx, check.FlagName, origin, add); err != nil {
		return nil, err
	}
	if err := r.viaReferences(ctx, check.FlagName, origin, add); err != nil {
		return nil, err
	}

	r.logger.Debug("Outcomes resolved", "origin", origin.String(), "flag", check.FlagName, "count", len(outcomes))
	return outcomes, nil
}

func (r *OutcomeResolver) viaConnectors(ctx context.Context, flag string, origin domain.NodeKey, add func(domain.DialogueNode, string)) error {
	edges, err := r.source.GetOutboundEdges(ctx, origin)
	if err != nil {
		return fmt.Errorf("failed to load links of %s: %w", origin, err)
	}
	sortEdges(edges)

	for _, edge := range edges {
		connector, err := r.source.GetNode(ctx, edge.Destination)
		if err != nil {
			return fmt.Errorf("failed to load node %s: %w", edge.Destination, err)
		}
		if connector == nil || !connector.IsConnector() || !strings.Contains(connector.ConditionString, flag) {
			continue
		}

		next, err := r.source.GetOutboundEdges(ctx, connector.Key)
		if err != nil {
			return fmt.Errorf("failed to load links of %s: %w", connector.Key, err)
		}
		sortEdges(next)

		for _, link := range next {
			line, err := r.source.GetNode(ctx, link.Destination)
			if err != nil {
				return fmt.Errorf("failed to load node %s: %w", link.Destination, err)
			}
			if line == nil || !line.IsSpokenLine() {
				continue
			}
			add(*line, connector.ConditionString)
		}
	}
	return nil
}

func (r *OutcomeResolver) viaReferences(ctx context.Context, flag string, origin domain.NodeKey, add func(domain.DialogueNode, string)) error {
	nodes, err := r.source.ListConditionalNodes(ctx, origin.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to list conditional nodes of conversation %d: %w", origin.ConversationID, err)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Key.DialogueID < nodes[j].Key.DialogueID
	})

	for _, n := range nodes {
		if !strings.Contains(n.ConditionString, flag) || !n.IsSpokenLine() {
			continue
		}
		add(n, n.ConditionString)
	}
	return nil
}

func classify(condition string) domain.OutcomeType {
	if strings.Contains(strings.ToLower(condition), domain.FailureMarker) {
		return domain.OutcomeFailure
	}
	return domain.OutcomeSuccess
}
