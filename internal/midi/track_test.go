package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"motif/internal/config"
)

func TestNewTrackOwnsSequenceAndPattern(t *testing.T) {
	tr := NewTrack("t1", "Lead", Piano)
	assert.Equal(t, "t1", tr.Sequence.TrackID())
	assert.Equal(t, "t1", tr.Pattern.TrackID())
	assert.Equal(t, 1, tr.Channel)

	cfg := config.DefaultConfig()
	tr.Sequence.Insert(NewNote(cfg, 0, 60, 1, 0.8, 1))
	assert.Equal(t, 1, tr.Sequence.Len())
}
