package undo

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"motif/internal/config"
	"motif/internal/midi"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Context resolves the structural references a deserialized action
// needs (the sequence/track container it targets, project
// configuration) that Serialize deliberately leaves out of its
// payload, since those are live pointers that don't survive a save.
type Context interface {
	SequenceByTrackID(trackID string) (*midi.Sequence, bool)
	TrackContainer() TrackContainer
	Config() config.Config
}

// DeserializeAction reconstructs the action kind previously produced
// by Serialize, resolving its structural references against ctx
// before populating its value state via Deserialize (§4.4 "every kind
// has a concrete class with ... serialize/deserialize").
func DeserializeAction(kind string, payload []byte, ctx Context) (Action, error) {
	switch kind {
	case "checkpoint":
		return checkpointMarker{}, nil
	case "insertEvent":
		seq, err := resolveSeq(payload, ctx)
		if err != nil {
			return nil, err
		}
		a := &InsertEventAction{seq: seq}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	case "removeEvent":
		seq, err := resolveSeq(payload, ctx)
		if err != nil {
			return nil, err
		}
		a := &RemoveEventAction{seq: seq}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	case "changeEvent":
		seq, err := resolveSeq(payload, ctx)
		if err != nil {
			return nil, err
		}
		a := &ChangeEventAction{seq: seq, cfg: ctx.Config()}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	case "insertEventGroup":
		seq, err := resolveSeq(payload, ctx)
		if err != nil {
			return nil, err
		}
		a := &InsertEventGroupAction{seq: seq}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	case "removeEventGroup":
		seq, err := resolveSeq(payload, ctx)
		if err != nil {
			return nil, err
		}
		a := &RemoveEventGroupAction{seq: seq}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	case "changeEventGroup":
		seq, err := resolveSeq(payload, ctx)
		if err != nil {
			return nil, err
		}
		a := &ChangeEventGroupAction{seq: seq, cfg: ctx.Config()}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	case "insertTrack":
		a := &InsertTrackAction{proj: ctx.TrackContainer()}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	case "removeTrack":
		a := &RemoveTrackAction{proj: ctx.TrackContainer()}
		if err := a.Deserialize(payload); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("undo: unknown action kind %q", kind)
	}
}

// resolveSeq extracts the trackId every event-targeting action embeds
// in its own payload and resolves it through ctx, ahead of
// constructing the action and calling its Deserialize. A dedicated
// probe struct avoids adding a TargetTrackID method to Action just for
// this lookup.
func resolveSeq(payload []byte, ctx Context) (*midi.Sequence, error) {
	var probe struct {
		TrackID string `json:"trackId"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("undo: resolve track id: %w", err)
	}
	seq, ok := ctx.SequenceByTrackID(probe.TrackID)
	if !ok {
		return nil, fmt.Errorf("undo: no sequence for track %q", probe.TrackID)
	}
	return seq, nil
}
