package undo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motif/internal/config"
	"motif/internal/midi"
)

func TestInsertUndoRedo(t *testing.T) {
	cfg := config.DefaultConfig()
	seq := midi.NewSequence("t1")
	stack := NewStack(0)

	note := midi.NewNote(cfg, 0, 60, 1, 0.5, 1)
	action := NewInsertEventAction(seq, note)
	require.True(t, stack.Perform(action))
	assert.Equal(t, 1, seq.Len())

	require.True(t, stack.Undo())
	assert.Equal(t, 0, seq.Len())

	require.True(t, stack.Redo())
	assert.Equal(t, 1, seq.Len())
	assert.Equal(t, 60, seq.Events()[0].Key)
}

func TestUndoExhaustionIsNoOp(t *testing.T) {
	stack := NewStack(0)
	assert.False(t, stack.Undo())
	assert.False(t, stack.Redo())
}

func TestCoalescedChangeUndoesInOneStep(t *testing.T) {
	cfg := config.DefaultConfig()
	seq := midi.NewSequence("t1")
	stack := NewStack(0)

	inserted := seq.Insert(midi.NewNote(cfg, 0, 60, 1, 0.5, 1))

	step1After := inserted
	step1After.Key = 61
	require.True(t, stack.Perform(NewChangeEventAction(cfg, seq, inserted, step1After)))

	step2After := step1After
	step2After.Key = 62
	require.True(t, stack.Perform(NewChangeEventAction(cfg, seq, step1After, step2After)))

	assert.Equal(t, 62, seq.Events()[0].Key)
	assert.Equal(t, 1, stack.Len(), "two changes to the same id should coalesce into one entry")

	require.True(t, stack.Undo())
	assert.Equal(t, 60, seq.Events()[0].Key, "undo of the coalesced change returns directly to the original")
}

func TestCheckpointPreventsCoalescingAcrossBoundary(t *testing.T) {
	cfg := config.DefaultConfig()
	seq := midi.NewSequence("t1")
	stack := NewStack(0)

	inserted := seq.Insert(midi.NewNote(cfg, 0, 60, 1, 0.5, 1))

	step1After := inserted
	step1After.Key = 61
	require.True(t, stack.Perform(NewChangeEventAction(cfg, seq, inserted, step1After)))

	stack.Checkpoint()

	step2After := step1After
	step2After.Key = 62
	require.True(t, stack.Perform(NewChangeEventAction(cfg, seq, step1After, step2After)))

	assert.Equal(t, 2, stack.Len())

	require.True(t, stack.Undo())
	assert.Equal(t, 61, seq.Events()[0].Key, "only the second change undoes")

	require.True(t, stack.Undo())
	assert.Equal(t, 60, seq.Events()[0].Key)
}

func TestGroupActionsNeverCoalesce(t *testing.T) {
	cfg := config.DefaultConfig()
	seq := midi.NewSequence("t1")
	stack := NewStack(0)

	group1 := []midi.Event{midi.NewNote(cfg, 0, 60, 1, 0.5, 1)}
	group2 := []midi.Event{midi.NewNote(cfg, 1, 61, 1, 0.5, 1)}

	require.True(t, stack.Perform(NewInsertEventGroupAction(seq, group1)))
	require.True(t, stack.Perform(NewInsertEventGroupAction(seq, group2)))
	assert.Equal(t, 2, stack.Len())
}

func TestRedoReplaysOnlyTheMostRecentlyUndoneGroup(t *testing.T) {
	cfg := config.DefaultConfig()
	seq := midi.NewSequence("t1")
	stack := NewStack(0)

	a := midi.NewNote(cfg, 0, 60, 1, 0.5, 1)
	b := midi.NewNote(cfg, 1, 61, 1, 0.5, 1)
	c := midi.NewNote(cfg, 2, 62, 1, 0.5, 1)

	require.True(t, stack.Perform(NewInsertEventAction(seq, a)))
	stack.Checkpoint()
	require.True(t, stack.Perform(NewInsertEventAction(seq, b)))
	stack.Checkpoint()
	require.True(t, stack.Perform(NewInsertEventAction(seq, c)))
	require.Equal(t, 3, seq.Len())

	require.True(t, stack.Undo()) // undoes C
	require.Equal(t, 2, seq.Len())
	require.True(t, stack.Undo()) // undoes B
	require.Equal(t, 1, seq.Len())

	require.True(t, stack.Redo()) // must redo only B, not C
	assert.Equal(t, 2, seq.Len(), "redo must replay exactly one Undo()'s worth of actions")
	keys := []int{seq.Events()[0].Key, seq.Events()[1].Key}
	assert.ElementsMatch(t, []int{60, 61}, keys, "B should be back, C should still be undone")

	require.True(t, stack.Redo()) // now redo C
	assert.Equal(t, 3, seq.Len())
}

func TestSizeBudgetTrimsOldestEntries(t *testing.T) {
	cfg := config.DefaultConfig()
	seq := midi.NewSequence("t1")
	stack := NewStack(2)

	for i := 0; i < 5; i++ {
		note := midi.NewNote(cfg, float64(i), 60+i, 1, 0.5, 1)
		require.True(t, stack.Perform(NewInsertEventAction(seq, note)))
		stack.Checkpoint()
	}
	assert.LessOrEqual(t, stack.Len(), 3, "budget of 2 should have trimmed older single-unit entries")
}
