package project

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"motif/internal/config"
	"motif/internal/midi"
	"motif/internal/tuning"
	"motif/internal/vcs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// trackedTrack adapts *midi.Track to vcs.TrackedItem (§3 TrackedItem,
// §4.6). Scalar categories map directly to track fields; the
// collection category (notesAdded for Piano tracks, eventsAdded for
// every other kind) covers the track's Sequence, and patternAdded
// covers its Pattern's Clips.
//
// Grounded on original_source/Source/Core/Midi/MidiTrack.h and
// spec.md §4.6's own category list (path, mute, colour, instrumentId,
// controllerNumber, notesAdded, patternAdded).
type trackedTrack struct {
	track *midi.Track
	cfg   config.Config
}

func newTrackedTrack(t *midi.Track, cfg config.Config) *trackedTrack {
	return &trackedTrack{track: t, cfg: cfg}
}

func (a *trackedTrack) ID() string { return a.track.ID }

func (a *trackedTrack) Type() string {
	return fmt.Sprintf("track.%s", trackKindTag(a.track.Kind))
}

func trackKindTag(k midi.Kind) string {
	switch k {
	case midi.Piano:
		return "piano"
	case midi.AutomationTrack:
		return "automation"
	case midi.KeySignatureTrack:
		return "keySignature"
	case midi.TimeSignatureTrack:
		return "timeSignature"
	case midi.AnnotationTrack:
		return "annotation"
	default:
		return "unknown"
	}
}

// eventsCategory returns "notesAdded" for piano tracks (the spec's own
// example) and "eventsAdded" for every other kind, since the spec only
// names the piano case explicitly.
func (a *trackedTrack) eventsCategory() string {
	if a.track.Kind == midi.Piano {
		return "notesAdded"
	}
	return "eventsAdded"
}

func (a *trackedTrack) Categories() []string {
	return []string{"path", "mute", "colour", "instrumentId", "controllerNumber", a.eventsCategory(), "patternAdded"}
}

func (a *trackedTrack) CategoryIsCollection(category string) bool {
	return category == a.eventsCategory() || category == "patternAdded"
}

func (a *trackedTrack) SnapshotCategory(category string) vcs.CategoryValue {
	switch category {
	case "path":
		b, _ := json.Marshal(a.track.Name)
		return vcs.CategoryValue{Scalar: b}
	case "mute":
		b, _ := json.Marshal(a.track.Muted)
		return vcs.CategoryValue{Scalar: b}
	case "colour":
		b, _ := json.Marshal(a.track.Colour)
		return vcs.CategoryValue{Scalar: b}
	case "instrumentId":
		b, _ := json.Marshal(a.track.InstrumentID)
		return vcs.CategoryValue{Scalar: b}
	case "controllerNumber":
		b, _ := json.Marshal(a.track.ControllerNumber)
		return vcs.CategoryValue{Scalar: b}
	case a.eventsCategory():
		items := map[string][]byte{}
		for _, e := range a.track.Sequence.Events() {
			b, _ := json.Marshal(e)
			items[e.ID] = b
		}
		return vcs.CategoryValue{IsCollection: true, Items: items}
	case "patternAdded":
		items := map[string][]byte{}
		for _, c := range a.track.Pattern.Clips() {
			b, _ := json.Marshal(c)
			items[c.ID] = b
		}
		return vcs.CategoryValue{IsCollection: true, Items: items}
	default:
		return vcs.CategoryValue{}
	}
}

func (a *trackedTrack) ApplyScalar(category string, value []byte) error {
	switch category {
	case "path":
		var v string
		if len(value) > 0 {
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
		}
		a.track.Name = v
	case "mute":
		var v bool
		if len(value) > 0 {
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
		}
		a.track.Muted = v
	case "colour":
		var v tuning.Colour
		if len(value) > 0 {
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
		}
		a.track.Colour = v
	case "instrumentId":
		var v string
		if len(value) > 0 {
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
		}
		a.track.InstrumentID = v
	case "controllerNumber":
		var v int
		if len(value) > 0 {
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
		}
		a.track.ControllerNumber = v
	default:
		return fmt.Errorf("project: %q is not a scalar category", category)
	}
	return nil
}

func (a *trackedTrack) ApplyCollection(category string, added, changed map[string][]byte, removed []string) error {
	switch category {
	case a.eventsCategory():
		for _, payload := range added {
			var e midi.Event
			if err := json.Unmarshal(payload, &e); err != nil {
				return err
			}
			a.track.Sequence.Insert(e)
		}
		for id, payload := range changed {
			var after midi.Event
			if err := json.Unmarshal(payload, &after); err != nil {
				return err
			}
			before := midi.Event{ID: id, Type: after.Type, Beat: after.Beat}
			if existing := findEventByID(a.track.Sequence, id); existing != nil {
				before = *existing
			}
			a.track.Sequence.Change(a.cfg, before, after)
		}
		for _, id := range removed {
			if existing := findEventByID(a.track.Sequence, id); existing != nil {
				a.track.Sequence.Remove(*existing)
			}
		}
		return nil
	case "patternAdded":
		for _, payload := range added {
			var c midi.Clip
			if err := json.Unmarshal(payload, &c); err != nil {
				return err
			}
			a.track.Pattern.Insert(c)
		}
		for id, payload := range changed {
			var c midi.Clip
			if err := json.Unmarshal(payload, &c); err != nil {
				return err
			}
			a.track.Pattern.Change(id, c)
		}
		for _, id := range removed {
			a.track.Pattern.Remove(id)
		}
		return nil
	default:
		return fmt.Errorf("project: %q is not a collection category", category)
	}
}

func findEventByID(seq *midi.Sequence, id string) *midi.Event {
	for _, e := range seq.Events() {
		if e.ID == id {
			return &e
		}
	}
	return nil
}

