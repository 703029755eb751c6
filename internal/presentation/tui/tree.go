package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
)

// TreePrinter writes a dialogue tree as an indented outline.
type TreePrinter struct {
	out *termenv.Output
}

// NewTreePrinter creates a printer for w. Colors follow the terminal profile
// unless plain is set.
func NewTreePrinter(w io.Writer, plain bool) *TreePrinter {
	var opts []termenv.OutputOption
	if plain {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &TreePrinter{out: termenv.NewOutput(w, opts...)}
}

// Print writes tree to the output.
func (p *TreePrinter) Print(tree *domain.TreeNode) {
	if tree == nil {
		return
	}
	fmt.Fprintln(p.out, p.line(tree))
	p.children(tree.Children, "")
}

func (p *TreePrinter) children(nodes []*domain.TreeNode, prefix string) {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		fmt.Fprintln(p.out, prefix+branch+p.line(n))
		p.children(n.Children, prefix+next)
	}
}

func (p *TreePrinter) line(n *domain.TreeNode) string {
	key := p.out.String(fmt.Sprintf("[%d:%d]", n.ConversationID, n.DialogueID)).Faint().String()

	if n.Dialogue == domain.ConnectorText {
		cond := n.Condition
		if cond == "" {
			cond = "always"
		}
		return fmt.Sprintf("%s %s %s", key,
			p.out.String("◆").Foreground(p.out.Color("#a78bfa")),
			p.out.String(cond).Italic())
	}

	var sb strings.Builder
	sb.WriteString(key)
	sb.WriteString(" ")
	if n.Actor != "" {
		sb.WriteString(p.out.String(n.Actor + ":").Bold().String())
		sb.WriteString(" ")
	}
	sb.WriteString(n.Dialogue)
	if n.Condition != "" {
		sb.WriteString(" ")
		sb.WriteString(p.out.String("{" + n.Condition + "}").Faint().String())
	}
	if c := n.SkillCheck; c != nil {
		color := "#e5e7eb"
		if c.IsRed {
			color = "#f87171"
		}
		sb.WriteString(" ")
		sb.WriteString(p.out.String(fmt.Sprintf("<%s %d %s>", c.SkillType, c.Difficulty, c.DifficultyLabel)).Foreground(p.out.Color(color)).String())
	}
	return sb.String()
}
