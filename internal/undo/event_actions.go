package undo

import (
	"motif/internal/config"
	"motif/internal/midi"
)

// InsertEventAction inserts a single event into a sequence (§4.4
// "Insert ... for each event type" — unified here per the Design
// Notes' tagged-variant guidance, one action kind covers every
// midi.Type rather than one class per event type).
type InsertEventAction struct {
	seq   *midi.Sequence
	event midi.Event // the event as requested; Perform fills in the assigned id
}

func NewInsertEventAction(seq *midi.Sequence, event midi.Event) *InsertEventAction {
	return &InsertEventAction{seq: seq, event: event}
}

func (a *InsertEventAction) Perform() bool {
	a.event = a.seq.Insert(a.event)
	return true
}

// Result returns the event as actually stored (with its assigned id),
// valid after Perform.
func (a *InsertEventAction) Result() midi.Event { return a.event }

func (a *InsertEventAction) Undo() bool {
	return a.seq.Remove(a.event)
}

func (a *InsertEventAction) SizeInUnits() int { return baseSize }

// CoalesceWith never merges: two inserts always produce two events.
func (a *InsertEventAction) CoalesceWith(Action) (Action, bool) { return nil, false }

func (a *InsertEventAction) Kind() string { return "insertEvent" }

type insertEventPayload struct {
	TrackID string     `json:"trackId"`
	Event   midi.Event `json:"event"`
}

func (a *InsertEventAction) Serialize() ([]byte, error) {
	return json.Marshal(insertEventPayload{TrackID: a.seq.TrackID(), Event: a.event})
}

func (a *InsertEventAction) Deserialize(data []byte) error {
	var p insertEventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.event = p.Event
	return nil
}

// RemoveEventAction removes a single event from a sequence, keeping a
// copy so Undo can reinsert it with the same id.
type RemoveEventAction struct {
	seq     *midi.Sequence
	target  midi.Event
	removed midi.Event
}

func NewRemoveEventAction(seq *midi.Sequence, target midi.Event) *RemoveEventAction {
	return &RemoveEventAction{seq: seq, target: target}
}

func (a *RemoveEventAction) Perform() bool {
	a.removed = a.target
	return a.seq.Remove(a.target)
}

func (a *RemoveEventAction) Undo() bool {
	a.seq.Insert(a.removed)
	return true
}

func (a *RemoveEventAction) SizeInUnits() int { return baseSize }

func (a *RemoveEventAction) CoalesceWith(Action) (Action, bool) { return nil, false }

func (a *RemoveEventAction) Kind() string { return "removeEvent" }

type removeEventPayload struct {
	TrackID string     `json:"trackId"`
	Target  midi.Event `json:"target"`
	Removed midi.Event `json:"removed"`
}

func (a *RemoveEventAction) Serialize() ([]byte, error) {
	return json.Marshal(removeEventPayload{TrackID: a.seq.TrackID(), Target: a.target, Removed: a.removed})
}

func (a *RemoveEventAction) Deserialize(data []byte) error {
	var p removeEventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.target, a.removed = p.Target, p.Removed
	return nil
}

// ChangeEventAction replaces one event's content with another,
// preserving id. Consecutive changes to the same id within a
// checkpoint coalesce, keeping the original before-image and the
// newest after-image (§4.2, §4.4, invariant 7).
type ChangeEventAction struct {
	cfg    config.Config
	seq    *midi.Sequence
	before midi.Event
	after  midi.Event
}

func NewChangeEventAction(cfg config.Config, seq *midi.Sequence, before, after midi.Event) *ChangeEventAction {
	return &ChangeEventAction{cfg: cfg, seq: seq, before: before, after: after}
}

func (a *ChangeEventAction) Perform() bool {
	return a.seq.Change(a.cfg, a.before, a.after)
}

func (a *ChangeEventAction) Undo() bool {
	return a.seq.Change(a.cfg, a.after, a.before)
}

func (a *ChangeEventAction) SizeInUnits() int { return baseSize }

func (a *ChangeEventAction) TargetID() string { return a.before.ID }

// CoalesceWith merges with a directly preceding ChangeEventAction that
// targets the same event id: the result keeps the older action's
// before-image and this action's after-image.
func (a *ChangeEventAction) CoalesceWith(previous Action) (Action, bool) {
	prev, ok := previous.(*ChangeEventAction)
	if !ok || prev.after.ID != a.before.ID {
		return nil, false
	}
	return &ChangeEventAction{cfg: a.cfg, seq: a.seq, before: prev.before, after: a.after}, true
}

func (a *ChangeEventAction) Kind() string { return "changeEvent" }

type changeEventPayload struct {
	TrackID string     `json:"trackId"`
	Before  midi.Event `json:"before"`
	After   midi.Event `json:"after"`
}

func (a *ChangeEventAction) Serialize() ([]byte, error) {
	return json.Marshal(changeEventPayload{TrackID: a.seq.TrackID(), Before: a.before, After: a.after})
}

func (a *ChangeEventAction) Deserialize(data []byte) error {
	var p changeEventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.before, a.after = p.Before, p.After
	return nil
}

// InsertEventGroupAction inserts a batch of events atomically for undo
// purposes. Group actions never coalesce (§4.4).
type InsertEventGroupAction struct {
	seq    *midi.Sequence
	events []midi.Event
}

func NewInsertEventGroupAction(seq *midi.Sequence, events []midi.Event) *InsertEventGroupAction {
	return &InsertEventGroupAction{seq: seq, events: events}
}

func (a *InsertEventGroupAction) Perform() bool {
	a.events = a.seq.InsertGroup(a.events)
	return true
}

// Result returns the events as actually stored, valid after Perform.
func (a *InsertEventGroupAction) Result() []midi.Event { return a.events }

func (a *InsertEventGroupAction) Undo() bool {
	a.seq.RemoveGroup(a.events)
	return true
}

func (a *InsertEventGroupAction) SizeInUnits() int { return len(a.events) }

func (a *InsertEventGroupAction) CoalesceWith(Action) (Action, bool) { return nil, false }

func (a *InsertEventGroupAction) Kind() string { return "insertEventGroup" }

type insertEventGroupPayload struct {
	TrackID string       `json:"trackId"`
	Events  []midi.Event `json:"events"`
}

func (a *InsertEventGroupAction) Serialize() ([]byte, error) {
	return json.Marshal(insertEventGroupPayload{TrackID: a.seq.TrackID(), Events: a.events})
}

func (a *InsertEventGroupAction) Deserialize(data []byte) error {
	var p insertEventGroupPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.events = p.Events
	return nil
}

// RemoveEventGroupAction removes a batch of events atomically.
type RemoveEventGroupAction struct {
	seq     *midi.Sequence
	targets []midi.Event
	removed []midi.Event
}

func NewRemoveEventGroupAction(seq *midi.Sequence, targets []midi.Event) *RemoveEventGroupAction {
	return &RemoveEventGroupAction{seq: seq, targets: targets}
}

func (a *RemoveEventGroupAction) Perform() bool {
	a.removed = make([]midi.Event, len(a.targets))
	copy(a.removed, a.targets)
	return a.seq.RemoveGroup(a.targets) == len(a.targets)
}

func (a *RemoveEventGroupAction) Undo() bool {
	a.seq.InsertGroup(a.removed)
	return true
}

func (a *RemoveEventGroupAction) SizeInUnits() int { return len(a.targets) }

func (a *RemoveEventGroupAction) CoalesceWith(Action) (Action, bool) { return nil, false }

func (a *RemoveEventGroupAction) Kind() string { return "removeEventGroup" }

type removeEventGroupPayload struct {
	TrackID string       `json:"trackId"`
	Targets []midi.Event `json:"targets"`
	Removed []midi.Event `json:"removed"`
}

func (a *RemoveEventGroupAction) Serialize() ([]byte, error) {
	return json.Marshal(removeEventGroupPayload{TrackID: a.seq.TrackID(), Targets: a.targets, Removed: a.removed})
}

func (a *RemoveEventGroupAction) Deserialize(data []byte) error {
	var p removeEventGroupPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.targets, a.removed = p.Targets, p.Removed
	return nil
}

// ChangeEventGroupAction applies paired before/after changes as a
// single undo step.
type ChangeEventGroupAction struct {
	cfg      config.Config
	seq      *midi.Sequence
	befores  []midi.Event
	afters   []midi.Event
}

func NewChangeEventGroupAction(cfg config.Config, seq *midi.Sequence, befores, afters []midi.Event) *ChangeEventGroupAction {
	return &ChangeEventGroupAction{cfg: cfg, seq: seq, befores: befores, afters: afters}
}

func (a *ChangeEventGroupAction) Perform() bool {
	n, err := a.seq.ChangeGroup(a.cfg, a.befores, a.afters)
	return err == nil && n == len(a.befores)
}

func (a *ChangeEventGroupAction) Undo() bool {
	_, err := a.seq.ChangeGroup(a.cfg, a.afters, a.befores)
	return err == nil
}

func (a *ChangeEventGroupAction) SizeInUnits() int { return len(a.befores) }

func (a *ChangeEventGroupAction) CoalesceWith(Action) (Action, bool) { return nil, false }

func (a *ChangeEventGroupAction) Kind() string { return "changeEventGroup" }

type changeEventGroupPayload struct {
	TrackID string       `json:"trackId"`
	Befores []midi.Event `json:"befores"`
	Afters  []midi.Event `json:"afters"`
}

func (a *ChangeEventGroupAction) Serialize() ([]byte, error) {
	return json.Marshal(changeEventGroupPayload{TrackID: a.seq.TrackID(), Befores: a.befores, Afters: a.afters})
}

func (a *ChangeEventGroupAction) Deserialize(data []byte) error {
	var p changeEventGroupPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	a.befores, a.afters = p.Befores, p.Afters
	return nil
}
