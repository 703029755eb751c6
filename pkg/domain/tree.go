package domain

// TreeNode is one materialized visit of a dialogue entry. The same entry may
// appear several times in a tree when the graph reconverges.
type TreeNode struct {
	ConversationID int            `json:"conversationId"`
	DialogueID     int            `json:"dialogueId"`
	Actor          string         `json:"actor"`
	Dialogue       string         `json:"dialogue"`
	HasCheck       bool           `json:"hasCheck"`
	Condition      string         `json:"condition"`
	SkillCheck     *ResolvedCheck `json:"skillCheck,omitempty"`
	Children       []*TreeNode    `json:"children"`

	// Edge metadata describing how the parent reached this node.
	IsConnector     bool   `json:"isConnector"`
	ParentCondition string `json:"parentCondition"`
	Priority        int    `json:"priority"`
}

// Key returns the dataset key of the visited entry.
func (t *TreeNode) Key() NodeKey {
	return NodeKey{ConversationID: t.ConversationID, DialogueID: t.DialogueID}
}

// Walk visits the tree depth-first, parents before children.
// Returning false from fn skips the node's children.
func (t *TreeNode) Walk(fn func(node *TreeNode, depth int) bool) {
	t.walk(fn, 0)
}

func (t *TreeNode) walk(fn func(*TreeNode, int) bool, depth int) {
	if t == nil || !fn(t, depth) {
		return
	}
	for _, c := range t.Children {
		c.walk(fn, depth+1)
	}
}

// Size counts the materialized nodes.
func (t *TreeNode) Size() int {
	n := 0
	t.Walk(func(*TreeNode, int) bool {
		n++
		return true
	})
	return n
}
