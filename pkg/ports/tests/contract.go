package tests

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture returns the dataset every adapter must be seeded with before running
// DatasetContractTest.
func Fixture() domain.Dataset {
	key := func(d int) domain.NodeKey { return domain.NodeKey{ConversationID: 1, DialogueID: d} }
	return domain.Dataset{
		Actors: []domain.Actor{
			{ID: 1, Name: "Kim Kitsuragi"},
			{ID: 2, Name: "Harry"},
			{ID: 3, Name: "Garte"},
		},
		Nodes: []domain.DialogueNode{
			{Key: key(1), ActorName: "Kim Kitsuragi", Text: "Detective, the door is locked.", HasCheck: true, HasAlternates: true},
			{Key: key(2), ActorName: "Harry", Text: "0", ConditionString: "doorOpen == true"},
			{Key: key(3), ActorName: "Harry", Text: "0", ConditionString: "doorOpen == False"},
			{Key: key(4), ActorName: "Harry", Text: "The door swings open with a groan."},
			{Key: key(5), ActorName: "Harry", Text: "It won't budge. Your shoulder aches."},
			{Key: key(6), ActorName: "Kim Kitsuragi", Text: "Let's try the window instead.", ConditionString: "doorOpen == false"},
			{Key: key(7), ActorName: "Garte", Text: "ok", ConditionString: "doorOpen == true"},
			{Key: key(8), ActorName: "Garte", Text: "Tell me about the door."},
			{Key: domain.NodeKey{ConversationID: 2, DialogueID: 1}, ActorName: "Garte", Text: "Welcome to the Whirling-in-Rags."},
			{Key: domain.NodeKey{ConversationID: 2, DialogueID: 2}, Text: "The radio hisses: 100% chance of rain."},
			{Key: domain.NodeKey{ConversationID: 2, DialogueID: 3}, ActorName: "Garte", Text: "Drinks are 50% off tonight."},
		},
		Edges: []domain.DialogueEdge{
			{Origin: key(1), Destination: key(2), Priority: 2, IsConnector: true},
			{Origin: key(1), Destination: key(3), Priority: 2, IsConnector: true},
			{Origin: key(1), Destination: key(6), Priority: 1},
			{Origin: key(2), Destination: key(4), Priority: 2},
			{Origin: key(3), Destination: key(5), Priority: 2},
			{Origin: domain.NodeKey{ConversationID: 2, DialogueID: 1}, Destination: domain.NodeKey{ConversationID: 2, DialogueID: 1}, Priority: 2},
		},
		Checks: []domain.SkillCheck{
			{Key: key(1), DifficultyCode: 10, SkillType: "Physical Instrument", FlagName: "doorOpen"},
		},
		Alternates: []domain.Alternate{
			{Key: key(1), Condition: "kimAngry == true", AlternateLine: "Detective. Door. Locked."},
		},
	}
}

// DatasetContractTest is a reusable test suite that verifies if an adapter complies
// with ports.Dataset. The adapter must serve the content of Fixture.
func DatasetContractTest(t *testing.T, ds ports.Dataset) {
	t.Helper()
	ctx := context.Background()
	fixture := Fixture()
	key := func(d int) domain.NodeKey { return domain.NodeKey{ConversationID: 1, DialogueID: d} }

	t.Run("GetNode_Success", func(t *testing.T) {
		for _, want := range fixture.Nodes {
			got, err := ds.GetNode(ctx, want.Key)
			require.NoError(t, err)
			require.NotNil(t, got, "node %s", want.Key)
			assert.Equal(t, want, *got)
		}
	})

	t.Run("GetNode_NotFound", func(t *testing.T) {
		got, err := ds.GetNode(ctx, key(99))
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetOutboundEdges", func(t *testing.T) {
		edges, err := ds.GetOutboundEdges(ctx, key(1))
		require.NoError(t, err)
		assert.ElementsMatch(t, fixture.Edges[:3], edges)

		self, err := ds.GetOutboundEdges(ctx, domain.NodeKey{ConversationID: 2, DialogueID: 1})
		require.NoError(t, err)
		assert.Len(t, self, 1)

		none, err := ds.GetOutboundEdges(ctx, key(99))
		assert.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("GetCheck", func(t *testing.T) {
		check, err := ds.GetCheck(ctx, key(1))
		require.NoError(t, err)
		require.NotNil(t, check)
		assert.Equal(t, fixture.Checks[0], *check)

		missing, err := ds.GetCheck(ctx, key(4))
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("GetAlternates", func(t *testing.T) {
		alts, err := ds.GetAlternates(ctx, key(1))
		require.NoError(t, err)
		assert.Equal(t, fixture.Alternates, alts)

		none, err := ds.GetAlternates(ctx, key(4))
		assert.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ListConditionalNodes", func(t *testing.T) {
		nodes, err := ds.ListConditionalNodes(ctx, 1)
		require.NoError(t, err)
		ids := make([]int, 0, len(nodes))
		for _, n := range nodes {
			ids = append(ids, n.Key.DialogueID)
		}
		assert.Equal(t, []int{2, 3, 6, 7}, ids)

		empty, err := ds.ListConditionalNodes(ctx, 2)
		assert.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ListActors", func(t *testing.T) {
		actors, err := ds.ListActors(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Garte", "Harry", "Kim Kitsuragi"}, actors)
	})

	t.Run("SearchDialogues", func(t *testing.T) {
		all, err := ds.SearchDialogues(ctx, "", "DOOR")
		require.NoError(t, err)
		assert.Equal(t, []domain.DialogueMatch{
			{Actor: "Kim Kitsuragi", Dialogue: "Detective, the door is locked."},
			{Actor: "Harry", Dialogue: "The door swings open with a groan."},
			{Actor: "Garte", Dialogue: "Tell me about the door."},
		}, all)

		byActor, err := ds.SearchDialogues(ctx, "  harry ", "door")
		require.NoError(t, err)
		assert.Equal(t, []domain.DialogueMatch{
			{Actor: "Harry", Dialogue: "The door swings open with a groan."},
		}, byActor)

		none, err := ds.SearchDialogues(ctx, "Nobody", "door")
		assert.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("SearchDialogues_SkipsLinesWithoutSpeaker", func(t *testing.T) {
		got, err := ds.SearchDialogues(ctx, "", "radio")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("SearchDialogues_KeywordIsLiteral", func(t *testing.T) {
		percent, err := ds.SearchDialogues(ctx, "", "%")
		require.NoError(t, err)
		assert.Equal(t, []domain.DialogueMatch{
			{Actor: "Garte", Dialogue: "Drinks are 50% off tonight."},
		}, percent)

		underscore, err := ds.SearchDialogues(ctx, "", "_")
		require.NoError(t, err)
		assert.Empty(t, underscore)
	})
}
