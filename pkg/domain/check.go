package domain

// SkillCheck is a gameplay decision point attached to a dialogue entry.
type SkillCheck struct {
	Key            NodeKey `json:"key" yaml:"key"`
	DifficultyCode int     `json:"difficultyCode" yaml:"difficulty"`
	SkillType      string  `json:"skillType" yaml:"skill"`
	IsRed          bool    `json:"isRed" yaml:"is_red"`

	// FlagName is the state variable written by the check's resolution.
	// Empty when the check does not expose one.
	FlagName string `json:"flagName" yaml:"flag"`
}

// ResolvedCheck is a SkillCheck with its difficulty translated for display.
type ResolvedCheck struct {
	SkillType       string `json:"skillType"`
	IsRed           bool   `json:"isRed"`
	FlagName        string `json:"flagName,omitempty"`
	DifficultyCode  int    `json:"difficultyCode"`
	Difficulty      int    `json:"difficulty"`
	DifficultyLabel string `json:"difficultyLabel"`
}

// Resolve applies the difficulty table to the raw check.
func (c SkillCheck) Resolve() ResolvedCheck {
	display, label := MapDifficulty(c.DifficultyCode)
	return ResolvedCheck{
		SkillType:       c.SkillType,
		IsRed:           c.IsRed,
		FlagName:        c.FlagName,
		DifficultyCode:  c.DifficultyCode,
		Difficulty:      display,
		DifficultyLabel: label,
	}
}
