package vcs

import (
	"fmt"
	"time"
)

// ProgressCallback reports progress of a long-running VCS operation
// (§5: "Long-running work ... MUST report progress"). Returning false
// requests cancellation.
type ProgressCallback func(bytes, total int) bool

// VersionControl is the project's owning VCS object: a Revision tree,
// a Head, and a StashesRepository (§3).
//
// Grounded on original_source/Source/Core/VCS/VersionControl.{h,cpp}.
type VersionControl struct {
	root              *Revision
	head              *Head
	stashes           *StashesRepository
	diffFormatVersion int
}

// CurrentDiffFormatVersion is bumped whenever the delta category
// schema changes incompatibly (§4.9).
const CurrentDiffFormatVersion = 1

// NewVersionControl creates a fresh VCS rooted at a single initial
// revision (§4.5).
func NewVersionControl(createdAt time.Time) *VersionControl {
	root := NewRevision("Project created", createdAt, nil)
	return &VersionControl{
		root:              root,
		head:              NewHead(root),
		stashes:           NewStashesRepository(),
		diffFormatVersion: CurrentDiffFormatVersion,
	}
}

func (vc *VersionControl) Root() *Revision            { return vc.root }
func (vc *VersionControl) Head() *Head                { return vc.head }
func (vc *VersionControl) Stashes() *StashesRepository { return vc.stashes }

// RestoreFromSerialized reconstructs a VersionControl from a
// deserialized tree: the full revision structure plus a head pointer
// and diffFormatVersion, applying §4.9's pointTo-vs-moveTo decision.
func RestoreFromSerialized(root *Revision, headRevisionID string, storedSnapshot Snapshot, storedDiffFormatVersion int, stashes *StashesRepository) (*VersionControl, error) {
	vc := &VersionControl{root: root, head: NewHead(root), stashes: stashes, diffFormatVersion: CurrentDiffFormatVersion}
	headRev := root.FindByID(headRevisionID)
	if headRev == nil {
		return nil, fmt.Errorf("vcs: head revision %q not found in tree, rebuilding from root", headRevisionID)
	}
	if storedDiffFormatVersion == CurrentDiffFormatVersion && storedSnapshot != nil {
		vc.head.PointTo(headRev, storedSnapshot)
		return vc, nil
	}
	if err := vc.head.MoveTo(headRev); err != nil {
		return nil, fmt.Errorf("vcs: rebuild snapshot from root: %w", err)
	}
	return vc, nil
}

// Diff computes (and caches) the Revision representing the difference
// between the head's snapshot and the live items' current state
// (§4.6, §4.9 diffOutdated).
func (vc *VersionControl) Diff(items []TrackedItem, timestamp time.Time) (*Revision, error) {
	if cached, ok := vc.head.CachedDiff(); ok {
		return cached, nil
	}
	revItems, err := DiffItems(vc.head.Snapshot, items)
	if err != nil {
		return nil, err
	}
	diff := NewRevision("diff", timestamp, revItems)
	vc.head.SetCachedDiff(diff)
	return diff, nil
}

// NotifyProjectChanged invalidates the cached diff; callers hook this
// to every sequence/track listener callback.
func (vc *VersionControl) NotifyProjectChanged() { vc.head.InvalidateDiff() }

// filterRevisionItems keeps only items whose TrackedItemID is in ids,
// or all items if ids is nil (meaning "commit everything").
func filterRevisionItems(items []RevisionItem, ids []string) []RevisionItem {
	if ids == nil {
		return items
	}
	allow := make(map[string]bool, len(ids))
	for _, id := range ids {
		allow[id] = true
	}
	var out []RevisionItem
	for _, ri := range items {
		if allow[ri.TrackedItemID] {
			out = append(out, ri)
		}
	}
	return out
}

// Commit constructs a new Revision from the selected subset of the
// current diff (selectedIDs nil means "all"), attaches it as a child
// of the heading revision, and moves head to it (§4.11). Returns an
// error ("nothing to commit") if the selection is empty.
func (vc *VersionControl) Commit(items []TrackedItem, selectedIDs []string, message string, timestamp time.Time) (*Revision, error) {
	diffItems, err := DiffItems(vc.head.Snapshot, items)
	if err != nil {
		return nil, err
	}
	selected := filterRevisionItems(diffItems, selectedIDs)
	if len(selected) == 0 {
		return nil, fmt.Errorf("vcs: nothing to commit")
	}

	rev := NewRevision(message, timestamp, selected)
	vc.root.FindByID(vc.head.Revision.ID).AddChild(rev)
	if err := vc.head.MoveTo(rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// Checkout overwrites the live items with the head's (already current,
// via MoveTo) snapshot and clears local changes (§4.5 step 2). Callers
// are responsible for reconciling whole-item creation/removal (a
// track present in the snapshot but not live, or vice versa) before
// calling this, since VersionControl only knows about TrackedItem
// categories, not track lifecycle.
func (vc *VersionControl) Checkout(rev *Revision, items []TrackedItem) error {
	if err := vc.head.MoveTo(rev); err != nil {
		return err
	}
	return MaterializeInto(vc.head.Snapshot, items)
}

// CherryPick applies the selected tracked items' deltas from rev onto
// the current project as uncommitted changes, without moving head
// permanently (§4.8).
func (vc *VersionControl) CherryPick(rev *Revision, trackedItemIDs []string, items []TrackedItem) error {
	originalRevision := vc.head.Revision

	parentSnap := Snapshot{}
	if rev.Parent != nil {
		if err := vc.head.MoveTo(rev.Parent); err != nil {
			return err
		}
		parentSnap = vc.head.Snapshot
	}

	picked := filterRevisionItems(rev.Items, trackedItemIDs)
	patch, err := ApplyItems(parentSnap, picked, true)
	if err != nil {
		return err
	}

	if err := vc.head.MoveTo(originalRevision); err != nil {
		return err
	}
	return MaterializeInto(patch, items)
}

// symmetricDifference combines local and foreign RevisionItems keyed
// by (trackedItemId, category): a category present in only one side is
// kept as-is; present in both with differing payloads, the foreign
// side wins (§4.6 "merge ... emitting a new diff revision whose
// payload is the symmetric-difference of items").
func symmetricDifference(local, foreign []RevisionItem) []RevisionItem {
	byID := make(map[string]map[string]Delta)
	kindByID := make(map[string]Kind)
	typeByID := make(map[string]string)
	order := []string{}

	merge := func(items []RevisionItem, preferOverwrite bool) {
		for _, ri := range items {
			if _, ok := byID[ri.TrackedItemID]; !ok {
				byID[ri.TrackedItemID] = make(map[string]Delta)
				order = append(order, ri.TrackedItemID)
			}
			kindByID[ri.TrackedItemID] = ri.Kind
			typeByID[ri.TrackedItemID] = ri.Type
			for _, d := range ri.Deltas {
				if _, exists := byID[ri.TrackedItemID][d.Description]; !exists || preferOverwrite {
					byID[ri.TrackedItemID][d.Description] = d
				}
			}
		}
	}
	merge(local, false)
	merge(foreign, true)

	out := make([]RevisionItem, 0, len(order))
	for _, id := range order {
		deltas := make([]Delta, 0, len(byID[id]))
		for _, d := range byID[id] {
			deltas = append(deltas, d)
		}
		out = append(out, RevisionItem{Kind: kindByID[id], TrackedItemID: id, Type: typeByID[id], Deltas: deltas})
	}
	return out
}

// resolveMergeKinds overrides each merged item's Kind against the
// local head snapshot: an item the local branch already knows about
// merges as Changed regardless of which side's Kind it inherited from
// symmetricDifference, so Apply folds its deltas into the existing
// item instead of replacing it outright.
func resolveMergeKinds(merged []RevisionItem, local Snapshot) []RevisionItem {
	out := make([]RevisionItem, len(merged))
	for i, ri := range merged {
		if local.Has(ri.TrackedItemID) {
			ri.Kind = Changed
		} else {
			ri.Kind = Added
		}
		out[i] = ri
	}
	return out
}

// Merge folds a foreign Revision's items into the local head by
// committing a new child revision carrying their symmetric difference
// against the current diff, then moves head there and materializes the
// result onto the live project (§4.6, S5).
func (vc *VersionControl) Merge(foreign *Revision, items []TrackedItem, timestamp time.Time) (*Revision, error) {
	localDiff, err := DiffItems(vc.head.Snapshot, items)
	if err != nil {
		return nil, err
	}
	merged := resolveMergeKinds(symmetricDifference(localDiff, foreign.Items), vc.head.Snapshot)
	if len(merged) == 0 {
		return nil, fmt.Errorf("vcs: nothing to merge")
	}

	rev := NewRevision(fmt.Sprintf("Merge %s", foreign.ID), timestamp, merged)
	vc.head.Revision.AddChild(rev)
	if err := vc.head.MoveTo(rev); err != nil {
		return nil, err
	}
	return rev, MaterializeInto(vc.head.Snapshot, items)
}

// AppendSubtree grafts an already-built revision subtree under parent,
// preserving its Shallow flags. Supplemented from
// original_source/Source/Core/VCS/VersionControl.cpp's
// appendRevision/replaceHistory machinery; available for composing a
// locally built branch onto another tree. Nothing in this package calls
// it (Merge attaches its revision with Revision.AddChild).
func (vc *VersionControl) AppendSubtree(parent *Revision, subtreeRoot *Revision) {
	parent.AddChild(subtreeRoot)
}

// ResetAllChanges overwrites the live items with the head's snapshot,
// discarding all uncommitted changes (§4.11).
func (vc *VersionControl) ResetAllChanges(items []TrackedItem) error {
	return MaterializeInto(vc.head.Snapshot, items)
}

// ResetChanges is the partial variant of ResetAllChanges, restricted to
// the named tracked items.
func (vc *VersionControl) ResetChanges(items []TrackedItem, trackedItemIDs []string) error {
	allow := make(map[string]bool, len(trackedItemIDs))
	for _, id := range trackedItemIDs {
		allow[id] = true
	}
	var filtered []TrackedItem
	for _, item := range items {
		if allow[item.ID()] {
			filtered = append(filtered, item)
		}
	}
	return MaterializeInto(vc.head.Snapshot, filtered)
}

// Stash creates a named, unattached Revision from the selected diff
// items; if keep is false, also resets those changes in the project
// (§4.10).
func (vc *VersionControl) Stash(items []TrackedItem, selectedIDs []string, message string, timestamp time.Time, keep bool) (*Revision, error) {
	diffItems, err := DiffItems(vc.head.Snapshot, items)
	if err != nil {
		return nil, err
	}
	selected := filterRevisionItems(diffItems, selectedIDs)
	if len(selected) == 0 {
		return nil, fmt.Errorf("vcs: nothing to stash")
	}
	stash := NewRevision(message, timestamp, selected)
	vc.stashes.AddNamed(stash)
	if !keep {
		var err error
		if selectedIDs == nil {
			err = vc.ResetAllChanges(items)
		} else {
			err = vc.ResetChanges(items, selectedIDs)
		}
		if err != nil {
			return nil, err
		}
	}
	return stash, nil
}

// ApplyStash transiently parents the stash under the current head
// revision, cherry-picks all its items onto the project, and optionally
// removes the stash (§4.10).
func (vc *VersionControl) ApplyStash(stash *Revision, items []TrackedItem, remove bool) error {
	fakeParent := vc.head.Revision
	stash.Parent = fakeParent // transient: baseline for the stash's deltas is the current head
	defer func() { stash.Parent = nil }()

	if err := vc.CherryPick(stash, nil, items); err != nil {
		return err
	}
	if remove {
		vc.stashes.RemoveNamed(stash.ID)
	}
	return nil
}

// QuickStashAll captures the entire current diff into the quick-stash
// slot and resets all changes (§4.10).
func (vc *VersionControl) QuickStashAll(items []TrackedItem, timestamp time.Time) error {
	if vc.stashes.HasQuickStash() {
		return fmt.Errorf("vcs: quick stash already populated")
	}
	diffItems, err := DiffItems(vc.head.Snapshot, items)
	if err != nil {
		return err
	}
	if len(diffItems) == 0 {
		return fmt.Errorf("vcs: nothing to stash")
	}
	stash := NewRevision("Quick stash", timestamp, diffItems)
	if err := vc.stashes.SetQuickStash(stash); err != nil {
		return err
	}
	return vc.ResetAllChanges(items)
}

// RestoreQuickStash re-applies the quick stash slot's contents and
// clears it (§4.10).
func (vc *VersionControl) RestoreQuickStash(items []TrackedItem) error {
	stash := vc.stashes.QuickStash()
	if stash == nil {
		return fmt.Errorf("vcs: no quick stash to restore")
	}
	patch, err := ApplyItems(vc.head.Snapshot, stash.Items, true)
	if err != nil {
		return err
	}
	if err := MaterializeInto(patch, items); err != nil {
		return err
	}
	vc.stashes.ClearQuickStash()
	return nil
}

// QuickAmendItem folds trackedItemID's current diff directly into the
// heading revision, without creating a new commit — a fixup for the
// most recent commit. Supplemented from
// original_source/Source/Core/VCS/VersionControl.cpp's
// quickAmendItem, which the distilled spec's §4.11 does not mention.
func (vc *VersionControl) QuickAmendItem(items []TrackedItem, trackedItemID string) error {
	diffItems, err := DiffItems(vc.head.Snapshot, items)
	if err != nil {
		return err
	}
	selected := filterRevisionItems(diffItems, []string{trackedItemID})
	if len(selected) == 0 {
		return fmt.Errorf("vcs: nothing to amend for %s", trackedItemID)
	}

	head := vc.head.Revision
	replaced := false
	for i, ri := range head.Items {
		if ri.TrackedItemID == trackedItemID {
			head.Items[i] = selected[0]
			replaced = true
			break
		}
	}
	if !replaced {
		head.Items = append(head.Items, selected[0])
	}

	vc.head.cache.invalidate(head.ID)
	if head.Parent != nil {
		return vc.head.MoveTo(head)
	}
	snap, err := Apply(head.PathFromRoot())
	if err != nil {
		return err
	}
	vc.head.PointTo(head, snap)
	return nil
}
