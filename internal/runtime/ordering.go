package runtime

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
)

// sortEdges orders links by priority (highest first), then by destination
// dialogue ID. The conversation ID breaks the remaining ties so the order is
// fully deterministic for cross-conversation links.
func sortEdges(edges []domain.DialogueEdge) {
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Destination.DialogueID != b.Destination.DialogueID {
			return a.Destination.DialogueID < b.Destination.DialogueID
		}
		return a.Destination.ConversationID < b.Destination.ConversationID
	})
}
