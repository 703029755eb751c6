package runtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(id int) domain.NodeKey {
	return domain.NodeKey{ConversationID: 1, DialogueID: id}
}

func line(id int, text string) domain.DialogueNode {
	return domain.DialogueNode{Key: key(id), ActorName: "Kim Kitsuragi", Text: text}
}

func link(from, to, priority int) domain.DialogueEdge {
	return domain.DialogueEdge{Origin: key(from), Destination: key(to), Priority: priority}
}

func ids(nodes []*domain.TreeNode) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.DialogueID)
	}
	return out
}

func TestExplorer_SelfLoop(t *testing.T) {
	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{line(1, "Again and again.")},
		Edges: []domain.DialogueEdge{link(1, 1, 1)},
	})

	tree, err := runtime.NewExplorer(src).Explore(context.Background(), key(1), 5)
	require.NoError(t, err)
	require.NotNil(t, tree)

	assert.Equal(t, 1, tree.Size())
	assert.Empty(t, tree.Children)
}

func TestExplorer_BackReference(t *testing.T) {
	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{line(1, "A"), line(2, "B"), line(3, "C")},
		Edges: []domain.DialogueEdge{link(1, 2, 1), link(2, 3, 1), link(3, 1, 1)},
	})

	tree, err := runtime.NewExplorer(src).Explore(context.Background(), key(1), 10)
	require.NoError(t, err)

	// 1 -> 2 -> 3, and the link back to 1 is dropped.
	assert.Equal(t, 3, tree.Size())
	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Empty(t, tree.Children[0].Children[0].Children)
}

func TestExplorer_DiamondIsNotMerged(t *testing.T) {
	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{line(1, "A"), line(2, "B"), line(3, "C"), line(4, "D")},
		Edges: []domain.DialogueEdge{link(1, 2, 1), link(1, 3, 1), link(2, 4, 1), link(3, 4, 1)},
	})

	tree, err := runtime.NewExplorer(src).Explore(context.Background(), key(1), 7)
	require.NoError(t, err)

	require.Equal(t, []int{2, 3}, ids(tree.Children))
	underB := tree.Children[0].Children
	underC := tree.Children[1].Children
	require.Equal(t, []int{4}, ids(underB))
	require.Equal(t, []int{4}, ids(underC))
	assert.NotSame(t, underB[0], underC[0])
	assert.Equal(t, 5, tree.Size())
}

func TestExplorer_ChildOrdering(t *testing.T) {
	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{line(10, "Root"), line(1, "One"), line(2, "Two"), line(3, "Three")},
		Edges: []domain.DialogueEdge{link(10, 3, 5), link(10, 1, 10), link(10, 2, 5)},
	})

	tree, err := runtime.NewExplorer(src).Explore(context.Background(), key(10), 7)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, ids(tree.Children))
	assert.Equal(t, []int{10, 5, 5}, []int{tree.Children[0].Priority, tree.Children[1].Priority, tree.Children[2].Priority})
}

func TestExplorer_DepthBound(t *testing.T) {
	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{line(1, "A"), line(2, "B"), line(3, "C")},
		Edges: []domain.DialogueEdge{link(1, 2, 1), link(2, 3, 1)},
	})
	explorer := runtime.NewExplorer(src)
	ctx := context.Background()

	t.Run("zero keeps the root", func(t *testing.T) {
		tree, err := explorer.Explore(ctx, key(1), 0)
		require.NoError(t, err)
		require.NotNil(t, tree)
		assert.NotNil(t, tree.Children)
		assert.Empty(t, tree.Children)
	})

	t.Run("descendants stop before maxDepth", func(t *testing.T) {
		tree, err := explorer.Explore(ctx, key(1), 2)
		require.NoError(t, err)
		require.Equal(t, []int{2}, ids(tree.Children))
		assert.Empty(t, tree.Children[0].Children)
	})

	t.Run("deep enough for the whole chain", func(t *testing.T) {
		tree, err := explorer.Explore(ctx, key(1), 3)
		require.NoError(t, err)
		assert.Equal(t, 3, tree.Size())
	})
}

func TestExplorer_MissingNodes(t *testing.T) {
	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{line(1, "A")},
		Edges: []domain.DialogueEdge{link(1, 404, 1)},
	})
	explorer := runtime.NewExplorer(src)

	tree, err := explorer.Explore(context.Background(), key(1), 7)
	require.NoError(t, err)
	assert.Empty(t, tree.Children)

	missing, err := explorer.Explore(context.Background(), key(404), 7)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExplorer_NodeAttributes(t *testing.T) {
	connector := line(2, "0")
	connector.ConditionString = "doorOpen == false"
	root := line(1, "The door is locked.")
	root.HasCheck = true
	noCheckRow := line(3, "I have a check flag but no row.")
	noCheckRow.HasCheck = true

	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{root, connector, noCheckRow},
		Edges: []domain.DialogueEdge{
			{Origin: key(1), Destination: key(2), Priority: 4, IsConnector: true},
			link(1, 3, 1),
		},
		Checks: []domain.SkillCheck{{Key: key(1), DifficultyCode: 3, SkillType: "Half Light", FlagName: "doorOpen"}},
	})

	tree, err := runtime.NewExplorer(src).Explore(context.Background(), key(1), 7)
	require.NoError(t, err)

	require.NotNil(t, tree.SkillCheck)
	assert.Equal(t, 12, tree.SkillCheck.Difficulty)
	assert.Equal(t, "Challenging", tree.SkillCheck.DifficultyLabel)
	assert.False(t, tree.IsConnector)
	assert.Equal(t, "", tree.ParentCondition)

	require.Len(t, tree.Children, 2)
	conn := tree.Children[0]
	assert.True(t, conn.IsConnector)
	assert.Equal(t, "0", conn.Dialogue)
	assert.Equal(t, "doorOpen == false", conn.ParentCondition)
	assert.Equal(t, 4, conn.Priority)
	assert.Nil(t, conn.SkillCheck)

	assert.True(t, tree.Children[1].HasCheck)
	assert.Nil(t, tree.Children[1].SkillCheck)
}

func TestExplorer_JSONShape(t *testing.T) {
	src := memory.New(domain.Dataset{Nodes: []domain.DialogueNode{line(1, "Alone.")}})

	tree, err := runtime.NewExplorer(src).Explore(context.Background(), key(1), 7)
	require.NoError(t, err)

	raw, err := json.Marshal(tree)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, field := range []string{"conversationId", "dialogueId", "actor", "dialogue", "hasCheck", "condition", "children", "isConnector", "parentCondition", "priority"} {
		assert.Contains(t, doc, field)
	}
	assert.NotContains(t, doc, "skillCheck")
	assert.Equal(t, []any{}, doc["children"])
}

// failingSource fails every link lookup for one key.
type failingSource struct {
	*memory.Source
	failOn domain.NodeKey
	err    error
}

func (f *failingSource) GetOutboundEdges(ctx context.Context, k domain.NodeKey) ([]domain.DialogueEdge, error) {
	if k == f.failOn {
		return nil, f.err
	}
	return f.Source.GetOutboundEdges(ctx, k)
}

func (f *failingSource) ListConditionalNodes(ctx context.Context, conversationID int) ([]domain.DialogueNode, error) {
	if conversationID == f.failOn.ConversationID && f.failOn.DialogueID < 0 {
		return nil, f.err
	}
	return f.Source.ListConditionalNodes(ctx, conversationID)
}

func TestExplorer_SourceFailurePropagates(t *testing.T) {
	errBoom := errors.New("disk on fire")
	src := &failingSource{
		Source: memory.New(domain.Dataset{
			Nodes: []domain.DialogueNode{line(1, "A"), line(2, "B")},
			Edges: []domain.DialogueEdge{link(1, 2, 1)},
		}),
		failOn: key(2),
		err:    errBoom,
	}

	tree, err := runtime.NewExplorer(src).Explore(context.Background(), key(1), 7)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, errBoom)
}

func TestExplorer_CanceledContext(t *testing.T) {
	src := memory.New(domain.Dataset{Nodes: []domain.DialogueNode{line(1, "A")}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runtime.NewExplorer(src).Explore(ctx, key(1), 7)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExplorer_LifecycleHooks(t *testing.T) {
	src := memory.New(domain.Dataset{
		Nodes: []domain.DialogueNode{line(1, "A"), line(2, "B")},
		Edges: []domain.DialogueEdge{link(1, 2, 1), link(2, 1, 1), link(2, 404, 1)},
	})

	var visits []int
	reasons := map[domain.PruneReason]int{}
	var explored *domain.ExploreEvent

	hooks := domain.LifecycleHooks{
		OnVisit: func(ctx context.Context, e *domain.VisitEvent) {
			visits = append(visits, e.Key.DialogueID)
		},
		OnPrune: func(ctx context.Context, e *domain.PruneEvent) {
			reasons[e.Reason]++
		},
		OnExplore: func(ctx context.Context, e *domain.ExploreEvent) {
			explored = e
		},
	}

	_, err := runtime.NewExplorer(src, runtime.WithLifecycleHooks(hooks)).Explore(context.Background(), key(1), 7)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, visits)
	assert.Equal(t, 1, reasons[domain.PruneCycle])
	assert.Equal(t, 1, reasons[domain.PruneMissing])
	require.NotNil(t, explored)
	assert.Equal(t, 2, explored.Nodes)
	assert.NoError(t, explored.Err)
}
