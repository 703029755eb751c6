package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../../examples/whirling/dataset.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "arbor version 0.1.0\n", out)
}

func TestTree_Text(t *testing.T) {
	out, err := run(t, "--fixture", fixture, "tree", "1:1", "--format", "text")
	require.NoError(t, err)

	want := strings.Join([]string{
		"[1:1] Kim Kitsuragi: Detective, the door is locked. <Physical Instrument 11 Medium>",
		"├── [1:2] ◆ doorOpen == true",
		"│   └── [1:4] Harry: The door swings open with a groan.",
		"├── [1:3] ◆ doorOpen == False",
		"│   └── [1:5] Harry: It won't budge. Your shoulder aches.",
		"└── [1:6] Kim Kitsuragi: Let's try the window instead. {doorOpen == false}",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTree_JSONIsDefaultWhenPiped(t *testing.T) {
	out, err := run(t, "--fixture", fixture, "tree", "1", "1", "--depth", "2")
	require.NoError(t, err)

	var tree domain.TreeNode
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, 4, tree.Size())
	assert.Equal(t, "Medium", tree.SkillCheck.DifficultyLabel)
}

func TestTree_MermaidWithOutcomes(t *testing.T) {
	out, err := run(t, "--fixture", fixture, "tree", "1:1", "-f", "mermaid", "--outcomes")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "class n1_4_3 success;")
	assert.Contains(t, out, "class n1_5_5 failure;")
}

func TestTree_Errors(t *testing.T) {
	_, err := run(t, "--fixture", fixture, "tree", "0:1")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = run(t, "--fixture", fixture, "tree", "9:9")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	_, err = run(t, "--fixture", fixture, "tree", "1:1", "--format", "svg")
	assert.ErrorContains(t, err, `unknown format "svg"`)
}

func TestOutcomes(t *testing.T) {
	out, err := run(t, "--fixture", fixture, "outcomes", "1:1")
	require.NoError(t, err)

	var outcomes []domain.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 3)
	assert.Equal(t, domain.OutcomeSuccess, outcomes[0].OutcomeType)

	report, err := run(t, "--fixture", fixture, "outcomes", "1:1", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, report, "# Check outcomes for 1:1")
	assert.Contains(t, report, "| SUCCESS | 1:4 | Harry | The door swings open with a groan. |")
}

func TestConnections(t *testing.T) {
	out, err := run(t, "--fixture", fixture, "connections", "1:1")
	require.NoError(t, err)

	var view domain.Connections
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Links, 3)
	assert.Len(t, view.Alternates, 1)
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "--fixture", fixture, "actors")
	require.NoError(t, err)
	assert.Equal(t, "Garte\nHarry\nKim Kitsuragi\n", out)

	out, err = run(t, "--fixture", fixture, "search", "door", "--actor", " harry ")
	require.NoError(t, err)
	assert.Equal(t, "Harry: The door swings open with a groan.\n", out)
}

func TestImport_ThenQueryDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "whirling.db")

	out, err := run(t, "import", fixture, db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 9 lines, 6 links, 1 checks")

	out, err = run(t, "--db", db, "search", "Whirling")
	require.NoError(t, err)
	assert.Equal(t, "Garte: Welcome to the Whirling-in-Rags.\n", out)
}

func TestConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "actors")
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		args    []string
		want    domain.NodeKey
		wantErr bool
	}{
		{[]string{"12:5"}, domain.NodeKey{ConversationID: 12, DialogueID: 5}, false},
		{[]string{"12", "5"}, domain.NodeKey{ConversationID: 12, DialogueID: 5}, false},
		{[]string{"12"}, domain.NodeKey{}, true},
		{[]string{"a:5"}, domain.NodeKey{}, true},
		{[]string{"0:5"}, domain.NodeKey{ConversationID: 0, DialogueID: 5}, true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got, err := parseKey(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", fixture)
	require.NoError(t, err)
	assert.Equal(t, "Dataset is valid! ✅\n", out)

	_, err = run(t, "--fixture", fixture, "validate", "--from", "1:1")
	assert.NoError(t, err)

	_, err = run(t, "validate")
	assert.ErrorContains(t, err, "nothing to validate")
}
