package vcs

import "strings"

// isCollectionCategory follows the naming convention used throughout
// this package and its TrackedItem adapters: collection categories are
// named with an "Added" suffix (notesAdded, clipsAdded, patternAdded —
// §4.6's own examples), everything else is scalar. This lets Snapshot
// reconstruction from a Revision's deltas work from category names
// alone, without needing a live TrackedItem to ask.
func isCollectionCategory(name string) bool {
	return strings.HasSuffix(name, "Added")
}

func applyCategory(current CategoryValue, d Delta, forward bool) (CategoryValue, error) {
	if isCollectionCategory(d.Description) {
		p, err := decodeCollectionDelta(d)
		if err != nil {
			return CategoryValue{}, err
		}
		if !forward {
			p = p.reverse()
		}
		items := make(map[string][]byte, len(current.Items))
		for k, v := range current.Items {
			items[k] = v
		}
		for id, v := range p.Added {
			items[id] = v
		}
		for id, pair := range p.Changed {
			items[id] = pair[1]
		}
		for id := range p.Removed {
			delete(items, id)
		}
		return CategoryValue{IsCollection: true, Items: items}, nil
	}

	p, err := decodeScalarDelta(d)
	if err != nil {
		return CategoryValue{}, err
	}
	if !forward {
		p = p.reverse()
	}
	return CategoryValue{Scalar: p.After}, nil
}

// ApplyItems applies a list of RevisionItems to baseline in the given
// direction, returning the resulting Snapshot. forward=true applies a
// revision's items as committed (baseline -> child); forward=false
// reverse-applies them (child -> baseline). Every caller in this
// package applies forward; ResetAllChanges materializes the head
// snapshot rather than reverse-applying.
func ApplyItems(baseline Snapshot, items []RevisionItem, forward bool) (Snapshot, error) {
	out := baseline.Clone()

	addKind, removeKind := Added, Removed
	if !forward {
		addKind, removeKind = Removed, Added
	}

	for _, ri := range items {
		switch ri.Kind {
		case addKind:
			cats := make(map[string]CategoryValue, len(ri.Deltas))
			for _, d := range ri.Deltas {
				cv, err := applyCategory(CategoryValue{}, d, forward)
				if err != nil {
					return nil, err
				}
				cats[d.Description] = cv
			}
			out[ri.TrackedItemID] = cats
		case removeKind:
			delete(out, ri.TrackedItemID)
		case Changed:
			cats := out[ri.TrackedItemID]
			if cats == nil {
				cats = make(map[string]CategoryValue)
			}
			for _, d := range ri.Deltas {
				cv, err := applyCategory(cats[d.Description], d, forward)
				if err != nil {
					return nil, err
				}
				cats[d.Description] = cv
			}
			out[ri.TrackedItemID] = cats
		}
	}
	return out, nil
}

// Apply walks the path of Revisions from root to rev (root first) and
// forward-applies each one's items in turn, starting from an empty
// Snapshot (§4.5 "apply(root→…→rev, empty)").
func Apply(path []*Revision) (Snapshot, error) {
	snap := Snapshot{}
	var err error
	for _, rev := range path {
		snap, err = ApplyItems(snap, rev.Items, true)
		if err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// MaterializeInto writes a Snapshot's values onto live TrackedItems.
// A category with no entry in snap (the whole item is absent, or the
// category held its zero value when committed, so no delta recorded
// it) is reset to its zero state; whole-item creation/removal of the
// live set itself (adding/deleting a track) is left to the caller.
func MaterializeInto(snap Snapshot, live []TrackedItem) error {
	for _, item := range live {
		cats := snap[item.ID()]
		for _, cat := range item.Categories() {
			cv, ok := cats[cat]
			if !ok {
				// no record of this category in the target snapshot:
				// it reverts to its zero state.
				cv = CategoryValue{IsCollection: item.CategoryIsCollection(cat)}
			}
			if item.CategoryIsCollection(cat) {
				added := map[string][]byte{}
				for id, v := range cv.Items {
					added[id] = v
				}
				current := item.SnapshotCategory(cat)
				var removed []string
				for id := range current.Items {
					if _, stillPresent := cv.Items[id]; !stillPresent {
						removed = append(removed, id)
					}
				}
				changed := map[string][]byte{}
				for id, v := range cv.Items {
					if _, existed := current.Items[id]; existed {
						changed[id] = v
						delete(added, id)
					}
				}
				if err := item.ApplyCollection(cat, added, changed, removed); err != nil {
					return err
				}
			} else if err := item.ApplyScalar(cat, cv.Scalar); err != nil {
				return err
			}
		}
	}
	return nil
}
