package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motif/internal/config"
)

type recordingListener struct {
	added   []Event
	changed [][2]Event
	removed []Event
	posts   int
}

func (r *recordingListener) OnEventAdded(e Event)            { r.added = append(r.added, e) }
func (r *recordingListener) OnEventChanged(before, after Event) {
	r.changed = append(r.changed, [2]Event{before, after})
}
func (r *recordingListener) OnEventRemoved(e Event) { r.removed = append(r.removed, e) }
func (r *recordingListener) OnEventRemovedPostAction() { r.posts++ }

func TestSequenceInsertKeepsSortedOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")

	s.Insert(NewNote(cfg, 2, 60, 1, 0.8, 1))
	s.Insert(NewNote(cfg, 1, 64, 1, 0.8, 1))
	s.Insert(NewNote(cfg, 1, 62, 1, 0.8, 1))

	events := s.Events()
	require.Len(t, events, 3)
	assert.Equal(t, 1.0, events[0].Beat)
	assert.Equal(t, 62, events[0].Key)
	assert.Equal(t, 1.0, events[1].Beat)
	assert.Equal(t, 64, events[1].Key)
	assert.Equal(t, 2.0, events[2].Beat)
}

func TestSequenceInsertAssignsUniqueIDs(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")
	a := s.Insert(NewNote(cfg, 1, 60, 1, 0.8, 1))
	b := s.Insert(NewNote(cfg, 1, 61, 1, 0.8, 1))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSequenceInsertRepairsCollidingID(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")
	first := s.Insert(NewNote(cfg, 1, 60, 1, 0.8, 1))

	colliding := NewNote(cfg, 2, 61, 1, 0.8, 1)
	colliding.ID = first.ID
	repaired := s.Insert(colliding)
	assert.NotEqual(t, first.ID, repaired.ID)
	assert.Equal(t, 2, s.Len())
}

func TestSequenceRemove(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")
	e := s.Insert(NewNote(cfg, 1, 60, 1, 0.8, 1))

	assert.True(t, s.Remove(e))
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Remove(e))
}

func TestSequenceChangeReordersOnBeatMove(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")
	a := s.Insert(NewNote(cfg, 1, 60, 1, 0.8, 1))
	s.Insert(NewNote(cfg, 2, 61, 1, 0.8, 1))

	after := a
	after.Beat = 3
	ok := s.Change(cfg, a, after)
	require.True(t, ok)

	events := s.Events()
	assert.Equal(t, 61, events[0].Key)
	assert.Equal(t, 60, events[1].Key)
	assert.Equal(t, 3.0, events[1].Beat)
	assert.Equal(t, a.ID, events[1].ID)
}

func TestSequenceChangeClampsVelocity(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")
	a := s.Insert(NewNote(cfg, 1, 60, 1, 0.8, 1))

	after := a
	after.Velocity = 5
	s.Change(cfg, a, after)
	assert.Equal(t, 1.0, s.Events()[0].Velocity)
}

func TestSequenceListenerDelivery(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")
	l := &recordingListener{}
	s.AddListener(l)

	e := s.Insert(NewNote(cfg, 1, 60, 1, 0.8, 1))
	assert.Len(t, l.added, 1)

	after := e
	after.Velocity = 0.5
	s.Change(cfg, e, after)
	assert.Len(t, l.changed, 1)

	s.Remove(after)
	assert.Len(t, l.removed, 1)
	assert.Equal(t, 1, l.posts)
}

func TestSequenceRemoveGroupDeliversSinglePostAction(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSequence("track-1")
	l := &recordingListener{}
	s.AddListener(l)

	a := s.Insert(NewNote(cfg, 1, 60, 1, 0.8, 1))
	b := s.Insert(NewNote(cfg, 2, 61, 1, 0.8, 1))

	n := s.RemoveGroup([]Event{a, b})
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, l.posts)
	assert.Equal(t, 0, s.Len())
}
