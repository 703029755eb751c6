package domain

// OutcomeType classifies a downstream line relative to its skill check.
type OutcomeType string

const (
	OutcomeSuccess OutcomeType = "SUCCESS"
	OutcomeFailure OutcomeType = "FAILURE"
)

// Outcome is a dialogue line correlated with a check through the check's flag.
// The correlation is textual and may be wrong for unconventional conditions.
type Outcome struct {
	CheckFlag      string      `json:"checkFlag"`
	SkillType      string      `json:"skillType"`
	Difficulty     int         `json:"difficulty"`
	OutcomeType    OutcomeType `json:"outcomeType"`
	Actor          string      `json:"actor"`
	Dialogue       string      `json:"dialogue"`
	Condition      string      `json:"condition"`
	ConversationID int         `json:"conversationId"`
	DialogueID     int         `json:"dialogueId"`
}

// Key returns the destination key of the outcome line.
func (o Outcome) Key() NodeKey {
	return NodeKey{ConversationID: o.ConversationID, DialogueID: o.DialogueID}
}

// Link is an outbound edge as presented in the connections view.
type Link struct {
	Destination NodeKey       `json:"destination"`
	Priority    int           `json:"priority"`
	IsConnector bool          `json:"isConnector"`
	Target      *DialogueNode `json:"target,omitempty"`
}

// Connections is the flat view of a single entry and its immediate surroundings.
type Connections struct {
	Node       DialogueNode   `json:"node"`
	Links      []Link         `json:"links"`
	Check      *ResolvedCheck `json:"check,omitempty"`
	Alternates []Alternate    `json:"alternates"`
	Outcomes   []Outcome      `json:"outcomes"`
}
