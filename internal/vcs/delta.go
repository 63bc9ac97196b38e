// Package vcs implements the content-addressed version control
// subsystem: a tree of Revisions, a Head with a cached Snapshot, a
// StashesRepository, and the diff/apply machinery that moves a
// TrackedItem's state between a Snapshot and a live project (§4.5–§4.11).
//
// Grounded on original_source/Source/Core/VCS/{VersionControl.{h,cpp},
// StashesRepository.{h,cpp},TrackedItem.h,RevisionItem.{h,cpp}}.
package vcs

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CategoryValue is the current value of one delta category on a
// TrackedItem. Exactly one of Scalar or Items is meaningful, chosen by
// the category's kind (§4.6: "scalar properties" vs. "collection
// deltas" like notesAdded).
type CategoryValue struct {
	IsCollection bool
	Scalar       []byte            // serialized scalar value
	Items        map[string][]byte // collection: item id -> serialized item
}

func (c CategoryValue) equalScalar(o CategoryValue) bool {
	return bytes.Equal(c.Scalar, o.Scalar)
}

// scalarDeltaPayload is the JSON payload of a Changed delta for a
// scalar category: enough to apply forward (After) or reverse (Before).
type scalarDeltaPayload struct {
	Before []byte `json:"before"`
	After  []byte `json:"after"`
}

// collectionDeltaPayload is the JSON payload of a delta for a
// collection category, per §4.7: added/removed/changed keyed by id.
type collectionDeltaPayload struct {
	Added   map[string][]byte    `json:"added,omitempty"`
	Removed map[string][]byte    `json:"removed,omitempty"`
	Changed map[string][2][]byte `json:"changed,omitempty"` // [before, after]
}

// Delta pairs a category tag ("DeltaDescription") with its serialized
// payload (§3 "A Delta pairs a DeltaDescription tag with a serialized payload").
type Delta struct {
	Description string `json:"description"`
	Payload     []byte `json:"payload"`
}

func encodeScalarDelta(before, after []byte) (Delta, error) {
	payload, err := json.Marshal(scalarDeltaPayload{Before: before, After: after})
	if err != nil {
		return Delta{}, fmt.Errorf("vcs: encode scalar delta: %w", err)
	}
	return Delta{Payload: payload}, nil
}

func decodeScalarDelta(d Delta) (scalarDeltaPayload, error) {
	var p scalarDeltaPayload
	if err := json.Unmarshal(d.Payload, &p); err != nil {
		return p, fmt.Errorf("vcs: decode scalar delta %q: %w", d.Description, err)
	}
	return p, nil
}

func encodeCollectionDelta(added, removed map[string][]byte, changed map[string][2][]byte) (Delta, error) {
	payload, err := json.Marshal(collectionDeltaPayload{Added: added, Removed: removed, Changed: changed})
	if err != nil {
		return Delta{}, fmt.Errorf("vcs: encode collection delta: %w", err)
	}
	return Delta{Payload: payload}, nil
}

func decodeCollectionDelta(d Delta) (collectionDeltaPayload, error) {
	var p collectionDeltaPayload
	if err := json.Unmarshal(d.Payload, &p); err != nil {
		return p, fmt.Errorf("vcs: decode collection delta %q: %w", d.Description, err)
	}
	return p, nil
}

// reverse swaps a payload's forward/reverse direction, used to
// reverse-apply a delta (ApplyItems with forward=false).
func (p scalarDeltaPayload) reverse() scalarDeltaPayload {
	return scalarDeltaPayload{Before: p.After, After: p.Before}
}

func (p collectionDeltaPayload) reverse() collectionDeltaPayload {
	changed := make(map[string][2][]byte, len(p.Changed))
	for id, pair := range p.Changed {
		changed[id] = [2][]byte{pair[1], pair[0]}
	}
	return collectionDeltaPayload{Added: p.Removed, Removed: p.Added, Changed: changed}
}
