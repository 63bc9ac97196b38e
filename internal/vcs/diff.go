package vcs

// SnapshotItem captures item's full current state as a
// map[category]CategoryValue, used both to seed a fresh Snapshot and
// to diff against a baseline.
func SnapshotItem(item TrackedItem) map[string]CategoryValue {
	cats := make(map[string]CategoryValue, len(item.Categories()))
	for _, cat := range item.Categories() {
		cats[cat] = item.SnapshotCategory(cat)
	}
	return cats
}

// diffCategory compares a category's baseline and current value,
// returning the Delta to record if they differ.
func diffCategory(category string, isCollection bool, baseline, current CategoryValue) (Delta, bool, error) {
	if isCollection {
		added := map[string][]byte{}
		removed := map[string][]byte{}
		changed := map[string][2][]byte{}
		for id, cur := range current.Items {
			if base, ok := baseline.Items[id]; ok {
				if string(base) != string(cur) {
					changed[id] = [2][]byte{base, cur}
				}
			} else {
				added[id] = cur
			}
		}
		for id, base := range baseline.Items {
			if _, ok := current.Items[id]; !ok {
				removed[id] = base
			}
		}
		if len(added) == 0 && len(removed) == 0 && len(changed) == 0 {
			return Delta{}, false, nil
		}
		d, err := encodeCollectionDelta(added, removed, changed)
		if err != nil {
			return Delta{}, false, err
		}
		d.Description = category
		return d, true, nil
	}

	if baseline.equalScalar(current) {
		return Delta{}, false, nil
	}
	d, err := encodeScalarDelta(baseline.Scalar, current.Scalar)
	if err != nil {
		return Delta{}, false, err
	}
	d.Description = category
	return d, true, nil
}

// DiffItems computes the RevisionItems needed to transform baseline
// into the state of the given live items (§4.6). liveIDs lists every
// item id currently present in the project (used to detect Removed
// items: ids in baseline but absent from liveIDs).
func DiffItems(baseline Snapshot, live []TrackedItem) ([]RevisionItem, error) {
	var out []RevisionItem
	liveIDs := make(map[string]bool, len(live))

	for _, item := range live {
		liveIDs[item.ID()] = true
		current := SnapshotItem(item)
		base, existed := baseline[item.ID()]

		if !existed {
			var deltas []Delta
			for _, cat := range item.Categories() {
				cur := current[cat]
				d, changed, err := diffCategory(cat, item.CategoryIsCollection(cat), CategoryValue{IsCollection: cur.IsCollection}, cur)
				if err != nil {
					return nil, err
				}
				if changed {
					deltas = append(deltas, d)
				}
			}
			out = append(out, RevisionItem{Kind: Added, TrackedItemID: item.ID(), Type: item.Type(), Deltas: deltas})
			continue
		}

		var deltas []Delta
		for _, cat := range item.Categories() {
			d, changed, err := diffCategory(cat, item.CategoryIsCollection(cat), base[cat], current[cat])
			if err != nil {
				return nil, err
			}
			if changed {
				deltas = append(deltas, d)
			}
		}
		if len(deltas) > 0 {
			out = append(out, RevisionItem{Kind: Changed, TrackedItemID: item.ID(), Type: item.Type(), Deltas: deltas})
		}
	}

	for id, base := range baseline {
		if liveIDs[id] {
			continue
		}
		var deltas []Delta
		for cat, baseVal := range base {
			d, changed, err := diffCategory(cat, baseVal.IsCollection, baseVal, CategoryValue{IsCollection: baseVal.IsCollection})
			if err != nil {
				return nil, err
			}
			if changed {
				deltas = append(deltas, d)
			}
		}
		out = append(out, RevisionItem{Kind: Removed, TrackedItemID: id, Deltas: deltas})
	}

	return out, nil
}
