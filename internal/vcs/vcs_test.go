package vcs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeItem is a minimal TrackedItem used to exercise VersionControl
// without depending on internal/project or internal/midi.
type fakeItem struct {
	id    string
	value string // scalar category "value"
	notes map[string]string // collection category "notesAdded"
}

func newFakeItem(id string) *fakeItem {
	return &fakeItem{id: id, notes: map[string]string{}}
}

func (f *fakeItem) ID() string     { return f.id }
func (f *fakeItem) Type() string   { return "fake" }
func (f *fakeItem) Categories() []string {
	return []string{"value", "notesAdded"}
}
func (f *fakeItem) CategoryIsCollection(category string) bool {
	return category == "notesAdded"
}
func (f *fakeItem) SnapshotCategory(category string) CategoryValue {
	if category == "notesAdded" {
		items := make(map[string][]byte, len(f.notes))
		for k, v := range f.notes {
			items[k] = []byte(v)
		}
		return CategoryValue{IsCollection: true, Items: items}
	}
	return CategoryValue{Scalar: []byte(f.value)}
}
func (f *fakeItem) ApplyScalar(category string, value []byte) error {
	f.value = string(value)
	return nil
}
func (f *fakeItem) ApplyCollection(category string, added, changed map[string][]byte, removed []string) error {
	for k, v := range added {
		f.notes[k] = string(v)
	}
	for k, v := range changed {
		f.notes[k] = string(v)
	}
	for _, k := range removed {
		delete(f.notes, k)
	}
	return nil
}

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCommitThenDiffIsEmpty(t *testing.T) {
	vc := NewVersionControl(t0)
	item := newFakeItem("track-1")
	item.notes["n1"] = "A"
	item.notes["n2"] = "B"
	item.notes["n3"] = "C"

	_, err := vc.Commit([]TrackedItem{item}, nil, "add", t0)
	require.NoError(t, err)

	diff, err := vc.Diff([]TrackedItem{item}, t0)
	require.NoError(t, err)
	assert.Empty(t, diff.Items)
}

func TestCommitThenResetAllChanges(t *testing.T) {
	vc := NewVersionControl(t0)
	item := newFakeItem("track-1")
	item.notes["n1"] = "A"
	item.notes["n2"] = "B"
	item.notes["n3"] = "C"
	_, err := vc.Commit([]TrackedItem{item}, nil, "add", t0)
	require.NoError(t, err)

	item.notes["n4"] = "D"
	require.NoError(t, vc.ResetAllChanges([]TrackedItem{item}))
	assert.Len(t, item.notes, 3)
	assert.NotContains(t, item.notes, "n4")
}

func TestBranchAndMerge(t *testing.T) {
	vc := NewVersionControl(t0)
	item := newFakeItem("track-1")

	item.notes["A"] = "note-a"
	c1, err := vc.Commit([]TrackedItem{item}, nil, "add A", t0)
	require.NoError(t, err)

	require.NoError(t, vc.Checkout(vc.root, []TrackedItem{item}))
	assert.Empty(t, item.notes)

	item.notes["B"] = "note-b"
	c2, err := vc.Commit([]TrackedItem{item}, nil, "add B", t0)
	require.NoError(t, err)

	require.NoError(t, vc.Checkout(c1, []TrackedItem{item}))
	assert.Contains(t, item.notes, "A")
	assert.NotContains(t, item.notes, "B")

	_, err = vc.Merge(c2, []TrackedItem{item}, t0)
	require.NoError(t, err)
	assert.Contains(t, item.notes, "A")
	assert.Contains(t, item.notes, "B")
}

func TestQuickStashRoundTrip(t *testing.T) {
	vc := NewVersionControl(t0)
	item := newFakeItem("track-1")
	item.notes["n1"] = "A"
	_, err := vc.Commit([]TrackedItem{item}, nil, "add", t0)
	require.NoError(t, err)

	item.notes["n2"] = "B"
	item.value = "dirty"

	require.NoError(t, vc.QuickStashAll([]TrackedItem{item}, t0))
	assert.True(t, vc.Stashes().HasQuickStash())
	assert.NotContains(t, item.notes, "n2")
	assert.Equal(t, "", item.value)

	require.NoError(t, vc.RestoreQuickStash([]TrackedItem{item}))
	assert.False(t, vc.Stashes().HasQuickStash())
	assert.Contains(t, item.notes, "n2")
	assert.Equal(t, "dirty", item.value)
}

func TestCherryPick(t *testing.T) {
	vc := NewVersionControl(t0)
	a := newFakeItem("a")
	b := newFakeItem("b")
	a.notes["x"] = "1"
	b.notes["y"] = "2"

	rev, err := vc.Commit([]TrackedItem{a, b}, nil, "both", t0)
	require.NoError(t, err)

	require.NoError(t, vc.Checkout(vc.root, []TrackedItem{a, b}))
	assert.Empty(t, a.notes)
	assert.Empty(t, b.notes)

	require.NoError(t, vc.CherryPick(rev, []string{"a"}, []TrackedItem{a, b}))
	assert.Contains(t, a.notes, "x")
	assert.Empty(t, b.notes)
}
