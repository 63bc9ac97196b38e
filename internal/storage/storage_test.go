package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motif/internal/config"
	"motif/internal/midi"
	"motif/internal/project"
	"motif/internal/tree"
	"motif/internal/tuning"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	info := project.ProjectInfo{Title: "Demo", Author: "Someone"}
	p := project.New(cfg, info, tuning.TwelveToneEqual(), createdAt)

	tr := midi.NewTrack("t1", "Lead", midi.Piano)
	require.True(t, p.InsertTrack(tr))

	note := midi.NewNote(cfg, 1.0, 60, 1.0, 0.8, 1)
	stored, ok := p.InsertEvent("t1", note)
	require.True(t, ok)

	_, err := p.Commit(nil, "initial commit", createdAt)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "demo.motif.gz")
	require.NoError(t, Save(path, p))

	loaded, err := Load(path, cfg)
	require.NoError(t, err)

	assert.Equal(t, "Demo", loaded.Info.Title)
	assert.Equal(t, "Someone", loaded.Info.Author)
	require.Len(t, loaded.Tracks, 1)
	assert.Equal(t, "Lead", loaded.Tracks[0].Name)
	require.Equal(t, 1, loaded.Tracks[0].Sequence.Len())
	assert.Equal(t, stored.Key, loaded.Tracks[0].Sequence.Events()[0].Key)

	diff, err := loaded.Diff(createdAt)
	require.NoError(t, err)
	assert.Empty(t, diff.Items, "a freshly loaded project should have no uncommitted changes")

	// deserialize(serialize(p)) preserves every event and track field
	// exactly, not just the few fields asserted above.
	if diffs := deep.Equal(p.Tracks[0].Sequence.Events(), loaded.Tracks[0].Sequence.Events()); diffs != nil {
		t.Errorf("round-tripped events differ: %v", diffs)
	}
	if diffs := deep.Equal(p.Info, loaded.Info); diffs != nil {
		t.Errorf("round-tripped project info differs: %v", diffs)
	}

	// The undo history (track insert, event insert — never checkpointed
	// apart, so one Undo() reverses both) must survive the round trip
	// and still be able to undo against the reloaded track.
	require.Equal(t, p.Undo.Len(), loaded.Undo.Len())
	require.True(t, loaded.Undo.CanUndo())
	require.True(t, loaded.Undo.Undo())
	assert.Empty(t, loaded.Tracks, "restored undo history should undo both the event and track insert")
}

// A ProjectRoot with no UndoHistory child at all (as produced by a file
// saved before this node existed) must still decode, with an empty
// undo stack rather than an error.
func TestDecodeProjectWithoutUndoHistoryFallsBackToEmptyStack(t *testing.T) {
	cfg := config.DefaultConfig()
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := project.New(cfg, project.ProjectInfo{Title: "Empty"}, tuning.TwelveToneEqual(), createdAt)

	root, err := encodeProject(p)
	require.NoError(t, err)

	var filtered []*tree.Node
	for _, c := range root.Children {
		if c.Name != "UndoHistory" {
			filtered = append(filtered, c)
		}
	}
	root.Children = filtered

	decoded, err := decodeProject(root, cfg)
	require.NoError(t, err)
	assert.False(t, decoded.Undo.CanUndo())
	assert.False(t, decoded.Undo.CanRedo())
}
