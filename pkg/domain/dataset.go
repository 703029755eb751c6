package domain

// Dataset is a complete, denormalized copy of a dialogue database.
// It is the interchange format for fixtures and seeding.
type Dataset struct {
	Actors     []Actor        `json:"actors" yaml:"actors"`
	Nodes      []DialogueNode `json:"nodes" yaml:"nodes"`
	Edges      []DialogueEdge `json:"edges" yaml:"edges"`
	Checks     []SkillCheck   `json:"checks" yaml:"checks"`
	Alternates []Alternate    `json:"alternates" yaml:"alternates"`
}
