package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motif/internal/config"
	"motif/internal/midi"
	"motif/internal/tuning"
)

func newTestProject(t *testing.T) (*Project, config.Config, time.Time) {
	t.Helper()
	cfg := config.DefaultConfig()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(cfg, ProjectInfo{Title: "Test"}, tuning.TwelveToneEqual(), at)
	return p, cfg, at
}

// S3 Coalesced change: insert a note, then two consecutive ChangeEvent
// calls moving its key 60->61->62 under the same checkpoint. A single
// Undo returns to key 60, not 61.
func TestChangeEventCoalescesUnderOneCheckpoint(t *testing.T) {
	p, cfg, _ := newTestProject(t)
	tr := midi.NewTrack("t1", "Lead", midi.Piano)
	require.True(t, p.InsertTrack(tr))

	note := midi.NewNote(cfg, 0, 60, 1.0, 1.0, 1)
	stored, ok := p.InsertEvent("t1", note)
	require.True(t, ok)

	p.Undo.Checkpoint()
	moved61 := stored
	moved61.Key = 61
	require.True(t, p.ChangeEvent("t1", stored, moved61))
	moved62 := moved61
	moved62.Key = 62
	require.True(t, p.ChangeEvent("t1", moved61, moved62))

	require.True(t, p.Undo.Undo())
	require.Equal(t, 1, tr.Sequence.Len())
	assert.Equal(t, 60, tr.Sequence.Events()[0].Key)
}

// Commit, then checkout back to the project root: the track disappears
// (reconcileTracks removes it) because the root snapshot has no items.
// Checking out forward again restores it.
func TestCheckoutRoundTripsTrackLifecycle(t *testing.T) {
	p, cfg, at := newTestProject(t)
	tr := midi.NewTrack("t1", "Lead", midi.Piano)
	require.True(t, p.InsertTrack(tr))
	_, ok := p.InsertEvent("t1", midi.NewNote(cfg, 0, 60, 1.0, 1.0, 1))
	require.True(t, ok)

	committed, err := p.Commit(nil, "add lead", at)
	require.NoError(t, err)
	require.Len(t, p.Tracks, 1)

	root := p.VCS.Root()
	require.NoError(t, p.Checkout(root))
	assert.Empty(t, p.Tracks, "checking out the empty root must remove the track")
	assert.Equal(t, 0, p.Undo.Len(), "checkout clears undo history")

	require.NoError(t, p.Checkout(committed))
	require.Len(t, p.Tracks, 1)
	assert.Equal(t, 1, p.Tracks[0].Sequence.Len())
}

// Stash then restore: stashing removes the uncommitted note, applying
// the stash brings it back.
func TestStashAndApply(t *testing.T) {
	p, cfg, at := newTestProject(t)
	tr := midi.NewTrack("t1", "Lead", midi.Piano)
	require.True(t, p.InsertTrack(tr))
	_, err := p.Commit(nil, "empty track", at)
	require.NoError(t, err)

	_, ok := p.InsertEvent("t1", midi.NewNote(cfg, 0, 60, 1.0, 1.0, 1))
	require.True(t, ok)

	stash, err := p.Stash(nil, "wip note", at, false)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Sequence.Len(), "stash without keep removes the uncommitted note")

	require.NoError(t, p.ApplyStash(stash, true))
	assert.Equal(t, 1, tr.Sequence.Len())
}

// A revision committed on top of base, merged back into a head checked
// out at base, brings its note back onto the project (S5-style).
func TestMergeFoldsForeignRevisionItems(t *testing.T) {
	p, cfg, at := newTestProject(t)
	tr := midi.NewTrack("t1", "Lead", midi.Piano)
	require.True(t, p.InsertTrack(tr))
	base, err := p.Commit(nil, "base", at)
	require.NoError(t, err)

	// Simulate a foreign branch: make a change on top of base, commit it
	// as the "foreign" revision, then checkout back to base.
	_, ok := p.InsertEvent("t1", midi.NewNote(cfg, 0, 60, 1.0, 1.0, 1))
	require.True(t, ok)
	foreign, err := p.Commit(nil, "foreign note", at)
	require.NoError(t, err)

	require.NoError(t, p.Checkout(base))

	merged, err := p.Merge(foreign, at)
	require.NoError(t, err)
	require.NotNil(t, merged)
	require.Len(t, p.Tracks, 1)
	assert.Equal(t, 1, p.Tracks[0].Sequence.Len(), "merge should bring the foreign note back")
}
