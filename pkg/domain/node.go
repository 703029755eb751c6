package domain

import (
	"fmt"
	"strings"
)

// ConnectorText is the dialogue text stored for routing-only entries.
// The dataset uses the literal "0" for nodes that never render a line.
const ConnectorText = "0"

// NodeKey identifies a dialogue entry inside the dataset.
type NodeKey struct {
	ConversationID int `json:"conversationId" yaml:"conversation"`
	DialogueID     int `json:"dialogueId" yaml:"dialogue"`
}

// String renders the key as "conversation:dialogue".
func (k NodeKey) String() string {
	return fmt.Sprintf("%d:%d", k.ConversationID, k.DialogueID)
}

// Validate rejects keys that cannot address a stored entry.
func (k NodeKey) Validate() error {
	if k.ConversationID <= 0 {
		return fmt.Errorf("%w: conversationId must be positive, got %d", ErrInvalidKey, k.ConversationID)
	}
	if k.DialogueID < 0 {
		return fmt.Errorf("%w: dialogueId must not be negative, got %d", ErrInvalidKey, k.DialogueID)
	}
	return nil
}

// DialogueNode is a single dialogue entry: a spoken line or a routing placeholder.
type DialogueNode struct {
	Key           NodeKey `json:"key" yaml:"key"`
	ActorName     string  `json:"actor" yaml:"actor"`
	Text          string  `json:"text" yaml:"text"`
	HasCheck      bool    `json:"hasCheck" yaml:"has_check"`
	HasAlternates bool    `json:"hasAlternates" yaml:"has_alternates"`

	// ConditionString is an informal boolean expression over dataset flags,
	// e.g. "doorOpen == false". It is surfaced verbatim and never evaluated.
	ConditionString string `json:"condition" yaml:"condition"`
}

// IsConnector reports whether the node only routes branches.
func (n DialogueNode) IsConnector() bool {
	return n.Text == ConnectorText
}

// IsSpokenLine reports whether the node carries a line long enough to be
// reported as a check outcome. Fillers such as "ok" or "..." are not.
func (n DialogueNode) IsSpokenLine() bool {
	return !n.IsConnector() && len(strings.TrimSpace(n.Text)) > MinOutcomeTextLen
}

// DialogueEdge is a directed link between two dialogue entries.
type DialogueEdge struct {
	Origin      NodeKey `json:"origin" yaml:"from"`
	Destination NodeKey `json:"destination" yaml:"to"`
	Priority    int     `json:"priority" yaml:"priority"`
	IsConnector bool    `json:"isConnector" yaml:"is_connector"`
}

// Alternate is a replacement line shown when its condition holds.
type Alternate struct {
	Key           NodeKey `json:"key" yaml:"key"`
	Condition     string  `json:"condition" yaml:"condition"`
	AlternateLine string  `json:"alternateLine" yaml:"line"`
}

// Actor is a speaker in the dataset.
type Actor struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DialogueMatch is a single keyword search hit.
type DialogueMatch struct {
	Actor    string `json:"actor"`
	Dialogue string `json:"dialogue"`
}
