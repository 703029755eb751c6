package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// maxLabel bounds the dialogue excerpt shown inside a node.
const maxLabel = 48

// Overlay marks tree nodes that are outcomes of the root's skill check.
type Overlay struct {
	Outcomes []domain.Outcome
}

// GenerateMermaid produces a Mermaid flowchart for a dialogue tree.
//
// Every tree node becomes its own Mermaid node, so lines reached through
// several branches appear once per branch. Shapes:
//   - check holder: [[Subroutine]]
//   - connector ("0"): {Rhombus} labelled with its condition
//   - spoken line: [Rectangle]
//
// Links into a conditional node carry the condition as edge label.
func GenerateMermaid(tree *domain.TreeNode, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if tree == nil {
		return sb.String()
	}

	ids := make(map[*domain.TreeNode]string)
	var order []*domain.TreeNode
	seq := 0
	tree.Walk(func(n *domain.TreeNode, _ int) bool {
		seq++
		ids[n] = fmt.Sprintf("n%d_%d_%d", n.ConversationID, n.DialogueID, seq)
		order = append(order, n)
		return true
	})

	for _, n := range order {
		id := ids[n]
		switch {
		case n.IsConnector || n.Dialogue == domain.ConnectorText:
			cond := n.Condition
			if cond == "" {
				cond = "0"
			}
			fmt.Fprintf(&sb, "    %s{\"%s\"}\n", id, escape(cond))
		case n.SkillCheck != nil:
			fmt.Fprintf(&sb, "    %s[[\"%s <br/> %s %d %s\"]]\n", id, label(n),
				escape(n.SkillCheck.SkillType), n.SkillCheck.Difficulty, n.SkillCheck.DifficultyLabel)
		default:
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, label(n))
		}

		for _, child := range n.Children {
			arrow := "-->"
			if child.ParentCondition != "" && !child.IsConnector {
				arrow = fmt.Sprintf("-- \"%s\" -->", escape(child.ParentCondition))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow, ids[child])
		}
	}

	if overlay != nil && len(overlay.Outcomes) > 0 {
		sb.WriteString("\n    %% Outcome Styles\n")
		sb.WriteString("    classDef success fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failure fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")

		kinds := make(map[domain.NodeKey]string, len(overlay.Outcomes))
		for _, o := range overlay.Outcomes {
			kinds[o.Key()] = "success"
			if o.OutcomeType == domain.OutcomeFailure {
				kinds[o.Key()] = "failure"
			}
		}
		for _, n := range order {
			if kind, ok := kinds[n.Key()]; ok {
				fmt.Fprintf(&sb, "    class %s %s;\n", ids[n], kind)
			}
		}
	}

	return sb.String()
}

func label(n *domain.TreeNode) string {
	text := n.Dialogue
	if r := []rune(text); len(r) > maxLabel {
		text = string(r[:maxLabel-1]) + "…"
	}
	if n.Actor == "" {
		return escape(text)
	}
	return escape(n.Actor + ": " + text)
}

// escape keeps labels inside Mermaid double quotes.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
