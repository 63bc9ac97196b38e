package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternInsertKeepsBeatOrder(t *testing.T) {
	p := NewPattern("track-1")
	p.Insert(NewClip(4))
	p.Insert(NewClip(1))
	p.Insert(NewClip(2))

	clips := p.Clips()
	require.Len(t, clips, 3)
	assert.Equal(t, 1.0, clips[0].Beat)
	assert.Equal(t, 2.0, clips[1].Beat)
	assert.Equal(t, 4.0, clips[2].Beat)
}

func TestPatternClipVelocityClamped(t *testing.T) {
	p := NewPattern("track-1")
	c := NewClip(0)
	c.Velocity = 10
	inserted := p.Insert(c)
	assert.Equal(t, 2.0, inserted.Velocity)
}

func TestPatternRemoveAndChange(t *testing.T) {
	p := NewPattern("track-1")
	c := p.Insert(NewClip(1))

	after := c
	after.Beat = 5
	require.True(t, p.Change(c.ID, after))
	assert.Equal(t, 5.0, p.Clips()[0].Beat)

	require.True(t, p.Remove(c.ID))
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Remove(c.ID))
}
