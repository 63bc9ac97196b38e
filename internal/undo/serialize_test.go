package undo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motif/internal/config"
	"motif/internal/midi"
)

// fakeContext implements Context against a single in-memory track,
// enough to exercise action serialize/deserialize round trips.
type fakeContext struct {
	cfg   config.Config
	track *midi.Track
}

func (f *fakeContext) SequenceByTrackID(trackID string) (*midi.Sequence, bool) {
	if f.track == nil || f.track.ID != trackID {
		return nil, false
	}
	return f.track.Sequence, true
}

func (f *fakeContext) TrackContainer() TrackContainer { return f }
func (f *fakeContext) Config() config.Config          { return f.cfg }

func (f *fakeContext) InsertTrackAt(tr *midi.Track, index int) { f.track = tr }

func (f *fakeContext) RemoveTrack(id string) (*midi.Track, int, bool) {
	if f.track == nil || f.track.ID != id {
		return nil, 0, false
	}
	tr := f.track
	f.track = nil
	return tr, 0, true
}

func TestStackEntriesRestoreStackRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	track := midi.NewTrack("t1", "Lead", midi.Piano)
	ctx := &fakeContext{cfg: cfg, track: track}

	stack := NewStack(0)
	note := midi.NewNote(cfg, 0, 60, 1, 0.5, 1)
	require.True(t, stack.Perform(NewInsertEventAction(track.Sequence, note)))
	stack.Checkpoint()

	inserted := track.Sequence.Events()[0]
	changed := inserted
	changed.Key = 64
	require.True(t, stack.Perform(NewChangeEventAction(cfg, track.Sequence, inserted, changed)))

	entries, err := stack.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3) // insert, checkpoint, change

	restored, err := RestoreStack(0, entries, ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Len())

	require.True(t, restored.Undo())
	assert.Equal(t, 60, track.Sequence.Events()[0].Key, "restored change should undo against the live track")

	require.True(t, restored.Undo())
	assert.Equal(t, 0, track.Sequence.Len(), "restored insert should undo against the live track")
}

func TestStackEntriesRestoreStackRoundTripAcrossTracks(t *testing.T) {
	cfg := config.DefaultConfig()
	ctx := &fakeContext{cfg: cfg}

	track := midi.NewTrack("t1", "Lead", midi.Piano)
	stack := NewStack(0)
	require.True(t, stack.Perform(NewInsertTrackAction(ctx, track, 0)))

	entries, err := stack.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	restored, err := RestoreStack(0, entries, ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Len())

	require.True(t, restored.Undo())
	_, _, ok := ctx.RemoveTrack("t1")
	assert.False(t, ok, "track should already be gone after undo of its insert")
}
