// Package project owns the top-level aggregate: a project's tracks,
// its undo history, and its version control state, wired together
// (§3 Project).
package project

import (
	"fmt"
	"time"

	"motif/internal/config"
	"motif/internal/midi"
	"motif/internal/tuning"
	"motif/internal/undo"
	"motif/internal/vcs"
)

// Listener receives every musical mutation that happens anywhere in
// the project (forwarded from whichever track's Sequence produced it)
// plus track-lifecycle notifications. Per the single-project-listener
// design note (§9 design notes on concurrency/listeners), a Project
// itself is the sole midi.Listener registered on every track's
// Sequence, and fans out to its own Listeners from there.
type Listener interface {
	midi.Listener
	OnTrackAdded(tr *midi.Track)
	OnTrackRemoved(tr *midi.Track)
}

// Project is the owning aggregate (§3 Project): an ordered list of
// tracks, a shared tuning Temperament and optional KeyboardMapping
// override, undoable editing via Undo, and a VersionControl history.
//
// Grounded on spec §3's Project entity; the "one struct owns
// everything" shape follows the teacher's Model.
type Project struct {
	cfg config.Config

	Info            ProjectInfo
	Temperament     tuning.Temperament
	KeyboardMapping *tuning.KeyboardMapping

	Tracks []*midi.Track

	Undo *undo.Stack
	VCS  *vcs.VersionControl

	listeners []Listener
}

// New constructs an empty project: no tracks, a fresh VCS rooted at a
// single "Project created" revision, and an empty undo stack bounded
// by cfg.UndoStackSizeBudget.
func New(cfg config.Config, info ProjectInfo, temperament tuning.Temperament, createdAt time.Time) *Project {
	return &Project{
		cfg:         cfg,
		Info:        info,
		Temperament: temperament,
		Undo:        undo.NewStack(cfg.UndoStackSizeBudget),
		VCS:         vcs.NewVersionControl(createdAt),
	}
}

func (p *Project) AddListener(l Listener)    { p.listeners = append(p.listeners, l) }
func (p *Project) RemoveListener(l Listener) {
	for i, x := range p.listeners {
		if x == l {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

// midi.Listener implementation: forwards every Sequence callback to
// this project's own listeners and invalidates the VCS's cached diff
// (§4.9 diffOutdated), since any event mutation changes the diff
// against the head snapshot.
func (p *Project) OnEventAdded(e midi.Event) {
	p.VCS.NotifyProjectChanged()
	for _, l := range p.listeners {
		l.OnEventAdded(e)
	}
}

func (p *Project) OnEventChanged(before, after midi.Event) {
	p.VCS.NotifyProjectChanged()
	for _, l := range p.listeners {
		l.OnEventChanged(before, after)
	}
}

func (p *Project) OnEventRemoved(e midi.Event) {
	p.VCS.NotifyProjectChanged()
	for _, l := range p.listeners {
		l.OnEventRemoved(e)
	}
}

func (p *Project) OnEventRemovedPostAction() {
	for _, l := range p.listeners {
		l.OnEventRemovedPostAction()
	}
}

// SequenceByTrackID, TrackContainer, and Config implement
// undo.Context, letting undo.RestoreStack reconstruct a persisted
// undo history against this project's live tracks.
func (p *Project) SequenceByTrackID(trackID string) (*midi.Sequence, bool) {
	tr := p.findTrack(trackID)
	if tr == nil {
		return nil, false
	}
	return tr.Sequence, true
}

func (p *Project) TrackContainer() undo.TrackContainer { return p }

func (p *Project) Config() config.Config { return p.cfg }

func (p *Project) findTrack(id string) *midi.Track {
	for _, tr := range p.Tracks {
		if tr.ID == id {
			return tr
		}
	}
	return nil
}

// InsertTrackAt and RemoveTrack are the raw, non-undoable primitives
// required by undo.TrackContainer; InsertTrackAction/RemoveTrackAction
// call these directly on Perform/Undo. Callers wanting undo history
// should go through InsertTrack/RemoveTrack instead.
func (p *Project) InsertTrackAt(tr *midi.Track, index int) {
	if index < 0 || index > len(p.Tracks) {
		index = len(p.Tracks)
	}
	p.Tracks = append(p.Tracks, nil)
	copy(p.Tracks[index+1:], p.Tracks[index:])
	p.Tracks[index] = tr
	tr.Sequence.AddListener(p)
	p.VCS.NotifyProjectChanged()
	for _, l := range p.listeners {
		l.OnTrackAdded(tr)
	}
}

func (p *Project) RemoveTrack(id string) (*midi.Track, int, bool) {
	for i, tr := range p.Tracks {
		if tr.ID == id {
			tr.Sequence.RemoveListener(p)
			p.Tracks = append(p.Tracks[:i], p.Tracks[i+1:]...)
			p.VCS.NotifyProjectChanged()
			for _, l := range p.listeners {
				l.OnTrackRemoved(tr)
			}
			return tr, i, true
		}
	}
	return nil, 0, false
}

// InsertTrack appends tr as an undoable action.
func (p *Project) InsertTrack(tr *midi.Track) bool {
	return p.Undo.Perform(undo.NewInsertTrackAction(p, tr, len(p.Tracks)))
}

// RemoveTrackByID removes the track with id as an undoable action.
func (p *Project) RemoveTrackByID(id string) bool {
	return p.Undo.Perform(undo.NewRemoveTrackAction(p, id))
}

// InsertEvent inserts e into trackID's sequence as an undoable action,
// returning the event as actually stored (with its assigned id).
func (p *Project) InsertEvent(trackID string, e midi.Event) (midi.Event, bool) {
	tr := p.findTrack(trackID)
	if tr == nil {
		return midi.Event{}, false
	}
	action := undo.NewInsertEventAction(tr.Sequence, e)
	if !p.Undo.Perform(action) {
		return midi.Event{}, false
	}
	return action.Result(), true
}

// RemoveEvent removes target from trackID's sequence as an undoable action.
func (p *Project) RemoveEvent(trackID string, target midi.Event) bool {
	tr := p.findTrack(trackID)
	if tr == nil {
		return false
	}
	return p.Undo.Perform(undo.NewRemoveEventAction(tr.Sequence, target))
}

// ChangeEvent replaces before with after in trackID's sequence as an
// undoable (and coalescable, for repeated edits of the same event)
// action.
func (p *Project) ChangeEvent(trackID string, before, after midi.Event) bool {
	tr := p.findTrack(trackID)
	if tr == nil {
		return false
	}
	return p.Undo.Perform(undo.NewChangeEventAction(p.cfg, tr.Sequence, before, after))
}

// trackedItems gathers every TrackedItem this project currently
// exposes to the VCS: the project-info pseudo-item, plus one adapter
// per track.
func (p *Project) trackedItems() []vcs.TrackedItem {
	items := make([]vcs.TrackedItem, 0, len(p.Tracks)+1)
	items = append(items, newTrackedProjectInfo(&p.Info))
	for _, tr := range p.Tracks {
		items = append(items, newTrackedTrack(tr, p.cfg))
	}
	return items
}

// Diff returns the current uncommitted change set against the head
// (§4.6).
func (p *Project) Diff(timestamp time.Time) (*vcs.Revision, error) {
	return p.VCS.Diff(p.trackedItems(), timestamp)
}

// Commit records the selected subset of the current diff (nil means
// everything) as a new revision and moves head onto it (§4.11).
func (p *Project) Commit(selectedIDs []string, message string, timestamp time.Time) (*vcs.Revision, error) {
	return p.VCS.Commit(p.trackedItems(), selectedIDs, message, timestamp)
}

// reconcileTracks adds placeholder tracks for items present in target
// but not currently live, and removes live tracks absent from target,
// ahead of a Checkout/Merge materialization. Placeholder Kind is
// inferred from whether the item's notes collection is named
// "notesAdded" (Piano) or "eventsAdded" (every other kind, folded into
// AutomationTrack since the snapshot alone cannot distinguish among
// them — see DESIGN.md's internal/project note on checkout/merge
// track-lifecycle reconciliation).
func (p *Project) reconcileTracks(target vcs.Snapshot) {
	have := make(map[string]bool, len(p.Tracks))
	for _, tr := range p.Tracks {
		have[tr.ID] = true
	}
	for id, cats := range target {
		if id == projectMetadataItemID || have[id] {
			continue
		}
		kind := midi.Piano
		if _, ok := cats["eventsAdded"]; ok {
			kind = midi.AutomationTrack
		}
		p.InsertTrackAt(midi.NewTrack(id, "", kind), len(p.Tracks))
	}
	for _, tr := range append([]*midi.Track(nil), p.Tracks...) {
		if !target.Has(tr.ID) {
			p.RemoveTrack(tr.ID)
		}
	}
}

// Checkout moves head to rev, reconciles track lifecycle against rev's
// snapshot, materializes its content onto the live tracks, and clears
// undo history (§4.5).
func (p *Project) Checkout(rev *vcs.Revision) error {
	target, err := vcs.Apply(rev.PathFromRoot())
	if err != nil {
		return err
	}
	p.reconcileTracks(target)
	if err := p.VCS.Checkout(rev, p.trackedItems()); err != nil {
		return err
	}
	p.Undo.Clear()
	return nil
}

// Merge folds foreign's items into head as a new commit and
// materializes the result, reconciling track lifecycle first (§4.6).
func (p *Project) Merge(foreign *vcs.Revision, timestamp time.Time) (*vcs.Revision, error) {
	target, err := vcs.Apply(foreign.PathFromRoot())
	if err != nil {
		return nil, err
	}
	p.reconcileTracks(target)
	return p.VCS.Merge(foreign, p.trackedItems(), timestamp)
}

// CherryPick applies the selected tracked items' deltas from rev onto
// the project as uncommitted changes (§4.8).
func (p *Project) CherryPick(rev *vcs.Revision, trackedItemIDs []string) error {
	return p.VCS.CherryPick(rev, trackedItemIDs, p.trackedItems())
}

// ResetAllChanges discards every uncommitted change (§4.11).
func (p *Project) ResetAllChanges() error {
	return p.VCS.ResetAllChanges(p.trackedItems())
}

// ResetChanges discards uncommitted changes restricted to the named
// tracked items.
func (p *Project) ResetChanges(trackedItemIDs []string) error {
	return p.VCS.ResetChanges(p.trackedItems(), trackedItemIDs)
}

// Stash moves the selected diff into a named stash, optionally leaving
// the live changes in place (§4.10).
func (p *Project) Stash(selectedIDs []string, message string, timestamp time.Time, keep bool) (*vcs.Revision, error) {
	return p.VCS.Stash(p.trackedItems(), selectedIDs, message, timestamp, keep)
}

// ApplyStash re-applies a previously created stash onto the project.
func (p *Project) ApplyStash(stash *vcs.Revision, remove bool) error {
	return p.VCS.ApplyStash(stash, p.trackedItems(), remove)
}

// QuickStashAll and RestoreQuickStash move the entire current diff
// into (and back out of) the single quick-stash slot.
func (p *Project) QuickStashAll(timestamp time.Time) error {
	return p.VCS.QuickStashAll(p.trackedItems(), timestamp)
}

func (p *Project) RestoreQuickStash() error {
	return p.VCS.RestoreQuickStash(p.trackedItems())
}

// QuickAmendItem folds trackedItemID's current diff into the heading
// revision without creating a new commit.
func (p *Project) QuickAmendItem(trackedItemID string) error {
	return p.VCS.QuickAmendItem(p.trackedItems(), trackedItemID)
}

// TrackByID returns the track with id, or an error if absent.
func (p *Project) TrackByID(id string) (*midi.Track, error) {
	if tr := p.findTrack(id); tr != nil {
		return tr, nil
	}
	return nil, fmt.Errorf("project: no track with id %q", id)
}
