package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// When wordWrap is 0 glamour's default width is used.
func NewRenderer(wordWrap int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if wordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wordWrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render, nil
}

// OutcomeReport formats the check at key and its outcomes as markdown.
func OutcomeReport(key domain.NodeKey, check *domain.ResolvedCheck, outcomes []domain.Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Check outcomes for %s\n\n", key)

	if check == nil {
		sb.WriteString("_No skill check on this line._\n")
		return sb.String()
	}

	kind := "White"
	if check.IsRed {
		kind = "Red"
	}
	fmt.Fprintf(&sb, "**%s** %s check, difficulty **%d** (%s)", check.SkillType, kind, check.Difficulty, check.DifficultyLabel)
	if check.FlagName != "" {
		fmt.Fprintf(&sb, ", flag `%s`", check.FlagName)
	}
	sb.WriteString("\n\n")

	if len(outcomes) == 0 {
		sb.WriteString("_No outcome lines found._\n")
		return sb.String()
	}

	sb.WriteString("| Result | Line | Speaker | Dialogue | Condition |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, o := range outcomes {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | `%s` |\n",
			o.OutcomeType, o.Key(), cell(o.Actor), cell(o.Dialogue), cell(o.Condition))
	}
	return sb.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
