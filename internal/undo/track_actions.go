package undo

import (
	"motif/internal/midi"
	"motif/internal/tuning"
)

// trackSnapshot is a flat, serializable copy of a Track's full state.
// Track itself can't be marshaled directly: Sequence and Pattern keep
// their events/clips behind unexported fields (id bookkeeping), so
// InsertTrackAction/RemoveTrackAction persist this instead.
type trackSnapshot struct {
	ID                    string
	Name                  string
	Kind                  midi.Kind
	Colour                tuning.Colour
	Channel               int
	Muted                 bool
	ControllerNumber      int
	InstrumentID          string
	TimeSignatureOverride *midi.Event
	Events                []midi.Event
	Clips                 []midi.Clip
}

func snapshotTrack(tr *midi.Track) trackSnapshot {
	return trackSnapshot{
		ID:                    tr.ID,
		Name:                  tr.Name,
		Kind:                  tr.Kind,
		Colour:                tr.Colour,
		Channel:               tr.Channel,
		Muted:                 tr.Muted,
		ControllerNumber:      tr.ControllerNumber,
		InstrumentID:          tr.InstrumentID,
		TimeSignatureOverride: tr.TimeSignatureOverride,
		Events:                tr.Sequence.Events(),
		Clips:                 tr.Pattern.Clips(),
	}
}

func (s trackSnapshot) rebuild() *midi.Track {
	tr := midi.NewTrack(s.ID, s.Name, s.Kind)
	tr.Colour = s.Colour
	tr.Channel = s.Channel
	tr.Muted = s.Muted
	tr.ControllerNumber = s.ControllerNumber
	tr.InstrumentID = s.InstrumentID
	tr.TimeSignatureOverride = s.TimeSignatureOverride
	for _, e := range s.Events {
		tr.Sequence.Insert(e)
	}
	for _, c := range s.Clips {
		tr.Pattern.Insert(c)
	}
	return tr
}

// TrackContainer is the minimal surface a Project exposes for
// Insert/Remove track actions, kept as an interface here so this
// package does not import internal/project (which imports this
// package for its own UndoStack).
type TrackContainer interface {
	InsertTrackAt(tr *midi.Track, index int)
	RemoveTrack(id string) (tr *midi.Track, index int, ok bool)
}

// InsertTrackAction inserts a track at a fixed position. Undo removes
// it by id.
type InsertTrackAction struct {
	proj  TrackContainer
	track *midi.Track
	index int
}

func NewInsertTrackAction(proj TrackContainer, track *midi.Track, index int) *InsertTrackAction {
	return &InsertTrackAction{proj: proj, track: track, index: index}
}

func (a *InsertTrackAction) Perform() bool {
	a.proj.InsertTrackAt(a.track, a.index)
	return true
}

func (a *InsertTrackAction) Undo() bool {
	_, _, ok := a.proj.RemoveTrack(a.track.ID)
	return ok
}

func (a *InsertTrackAction) SizeInUnits() int { return baseSize }

func (a *InsertTrackAction) CoalesceWith(Action) (Action, bool) { return nil, false }

func (a *InsertTrackAction) Kind() string { return "insertTrack" }

type insertTrackPayload struct {
	Index int           `json:"index"`
	Track trackSnapshot `json:"track"`
}

func (a *InsertTrackAction) Serialize() ([]byte, error) {
	return json.Marshal(insertTrackPayload{Index: a.index, Track: snapshotTrack(a.track)})
}

func (a *InsertTrackAction) Deserialize(data []byte) error {
	var p insertTrackPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.index = p.Index
	a.track = p.Track.rebuild()
	return nil
}

// RemoveTrackAction removes a track by id, keeping enough state
// (the track itself and its original index) to reinsert on Undo.
type RemoveTrackAction struct {
	proj  TrackContainer
	id    string
	track *midi.Track
	index int
}

func NewRemoveTrackAction(proj TrackContainer, id string) *RemoveTrackAction {
	return &RemoveTrackAction{proj: proj, id: id}
}

func (a *RemoveTrackAction) Perform() bool {
	tr, idx, ok := a.proj.RemoveTrack(a.id)
	if !ok {
		return false
	}
	a.track, a.index = tr, idx
	return true
}

func (a *RemoveTrackAction) Undo() bool {
	a.proj.InsertTrackAt(a.track, a.index)
	return true
}

func (a *RemoveTrackAction) SizeInUnits() int { return baseSize }

func (a *RemoveTrackAction) CoalesceWith(Action) (Action, bool) { return nil, false }

func (a *RemoveTrackAction) Kind() string { return "removeTrack" }

type removeTrackPayload struct {
	ID    string        `json:"id"`
	Index int           `json:"index"`
	Track trackSnapshot `json:"track"`
}

func (a *RemoveTrackAction) Serialize() ([]byte, error) {
	var track trackSnapshot
	if a.track != nil {
		track = snapshotTrack(a.track)
	}
	return json.Marshal(removeTrackPayload{ID: a.id, Index: a.index, Track: track})
}

func (a *RemoveTrackAction) Deserialize(data []byte) error {
	var p removeTrackPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.id = p.ID
	a.index = p.Index
	if p.Track.ID != "" {
		a.track = p.Track.rebuild()
	}
	return nil
}
