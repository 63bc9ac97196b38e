package undo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motif/internal/midi"
)

type fakeProject struct {
	tracks []*midi.Track
}

func (p *fakeProject) InsertTrackAt(tr *midi.Track, index int) {
	if index < 0 || index > len(p.tracks) {
		index = len(p.tracks)
	}
	p.tracks = append(p.tracks, nil)
	copy(p.tracks[index+1:], p.tracks[index:])
	p.tracks[index] = tr
}

func (p *fakeProject) RemoveTrack(id string) (*midi.Track, int, bool) {
	for i, tr := range p.tracks {
		if tr.ID == id {
			p.tracks = append(p.tracks[:i], p.tracks[i+1:]...)
			return tr, i, true
		}
	}
	return nil, 0, false
}

func TestInsertTrackActionUndo(t *testing.T) {
	proj := &fakeProject{}
	stack := NewStack(0)
	tr := midi.NewTrack("tr1", "Lead", midi.Piano)

	require.True(t, stack.Perform(NewInsertTrackAction(proj, tr, 0)))
	assert.Len(t, proj.tracks, 1)

	require.True(t, stack.Undo())
	assert.Empty(t, proj.tracks)
}

func TestRemoveTrackActionRoundTrip(t *testing.T) {
	proj := &fakeProject{}
	tr := midi.NewTrack("tr1", "Lead", midi.Piano)
	proj.InsertTrackAt(tr, 0)

	stack := NewStack(0)
	require.True(t, stack.Perform(NewRemoveTrackAction(proj, "tr1")))
	assert.Empty(t, proj.tracks)

	require.True(t, stack.Undo())
	require.Len(t, proj.tracks, 1)
	assert.Equal(t, "tr1", proj.tracks[0].ID)
}

func TestRemoveTrackActionFailsOnMissingID(t *testing.T) {
	proj := &fakeProject{}
	stack := NewStack(0)
	assert.False(t, stack.Perform(NewRemoveTrackAction(proj, "missing")))
}
