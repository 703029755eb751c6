package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/sqlite"
	"github.com/aretw0/arbor/pkg/domain"
	contract "github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, ds domain.Dataset) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialogue.db")

	src, err := sqlite.Create(path)
	require.NoError(t, err)
	require.NoError(t, src.Seed(context.Background(), ds))
	require.NoError(t, src.Close())
	return path
}

func TestSource_Contract(t *testing.T) {
	src, err := sqlite.Open(seeded(t, contract.Fixture()))
	require.NoError(t, err)
	defer src.Close()

	contract.DatasetContractTest(t, src)
}

func TestSeed_UnknownSpeakerGetsActorRow(t *testing.T) {
	path := seeded(t, domain.Dataset{
		Actors: []domain.Actor{{ID: 7, Name: "Kim Kitsuragi"}},
		Nodes: []domain.DialogueNode{
			{Key: domain.NodeKey{ConversationID: 3, DialogueID: 1}, ActorName: "Cuno", Text: "Cuno doesn't care."},
			{Key: domain.NodeKey{ConversationID: 3, DialogueID: 2}, Text: "A door slams somewhere."},
		},
	})

	src, err := sqlite.Open(path)
	require.NoError(t, err)
	defer src.Close()
	ctx := context.Background()

	actors, err := src.ListActors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cuno", "Kim Kitsuragi"}, actors)

	narration, err := src.GetNode(ctx, domain.NodeKey{ConversationID: 3, DialogueID: 2})
	require.NoError(t, err)
	require.NotNil(t, narration)
	assert.Equal(t, "", narration.ActorName)

	// Lines without a speaker never show up in searches.
	matches, err := src.SearchDialogues(ctx, "", "door")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestOpen_IsReadOnly(t *testing.T) {
	path := seeded(t, contract.Fixture())

	src, err := sqlite.Open(path)
	require.NoError(t, err)
	defer src.Close()

	err = src.Seed(context.Background(), contract.Fixture())
	assert.Error(t, err)
}

func TestOpen_Missing(t *testing.T) {
	_, err := sqlite.Open(filepath.Join(t.TempDir(), "absent.db"))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestSource_ClosedDatabase(t *testing.T) {
	src, err := sqlite.Open(seeded(t, contract.Fixture()))
	require.NoError(t, err)
	require.NoError(t, src.Close())

	_, err = src.GetNode(context.Background(), domain.NodeKey{ConversationID: 1, DialogueID: 1})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
