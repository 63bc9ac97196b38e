package midi

import (
	"fmt"
	"sort"
	"strconv"

	"motif/internal/config"
)

// Listener receives synchronous notifications of sequence mutations.
// Callbacks run on the calling goroutine before the mutating method
// returns; a listener must not mutate the sequence it is attached to
// from within a callback (§5 "single project-listener pattern").
type Listener interface {
	OnEventAdded(e Event)
	OnEventChanged(before, after Event)
	OnEventRemoved(e Event)
	OnEventRemovedPostAction()
}

// Sequence owns a beat-sorted slice of Events plus the id bookkeeping
// needed to keep every event's id unique within it (§4.1, §4.2).
//
// Grounded on original_source/Source/Core/Midi/MidiSequence.cpp: a
// std::vector kept sorted by insertion point, with a fail-fast
// `usedEventIds` set and listener fan-out identical in shape here.
type Sequence struct {
	trackID string

	events   []Event
	usedIDs  map[string]bool
	counter  idCounter
	delivering bool

	listeners []Listener
}

// NewSequence constructs an empty sequence owned by the track trackID.
func NewSequence(trackID string) *Sequence {
	return &Sequence{
		trackID: trackID,
		usedIDs: make(map[string]bool),
	}
}

func (s *Sequence) TrackID() string { return s.trackID }

// Len returns the number of events.
func (s *Sequence) Len() int { return len(s.events) }

// Events returns a copy of the sorted event slice; callers must not
// mutate Event values obtained this way and expect the sequence to see it.
func (s *Sequence) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Sequence) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Sequence) RemoveListener(l Listener) {
	for i, x := range s.listeners {
		if x == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Sequence) drawID() string {
	for {
		id := s.counter.draw()
		if !s.usedIDs[id] {
			return id
		}
	}
}

func (s *Sequence) markUsed(id string) {
	s.usedIDs[id] = true
	if n, err := strconv.ParseUint(id, 36, 64); err == nil {
		s.counter.advanceTo(n)
	}
}

func (s *Sequence) unmarkUsed(id string) {
	delete(s.usedIDs, id)
}

// sortedIndex finds the insertion point for e among events sharing its
// beat (and, for notes, its key), via binary search (§4.1 O(log n)).
func (s *Sequence) sortedIndex(e Event) int {
	return sort.Search(len(s.events), func(i int) bool {
		return !Less(s.events[i], e)
	})
}

func (s *Sequence) indexOf(e Event) int {
	i := s.sortedIndex(e)
	for i < len(s.events) && s.events[i].Beat == e.Beat {
		if s.events[i].ID == e.ID {
			return i
		}
		i++
	}
	return -1
}

// Insert adds e to the sequence, assigning it a fresh id if it has
// none (or if its id collides with one already in use — §9 OQ3
// id-collision repair). Returns the event as actually stored.
func (s *Sequence) Insert(e Event) Event {
	if e.ID == "" || s.usedIDs[e.ID] {
		e.ID = s.drawID()
	}
	s.markUsed(e.ID)
	idx := s.sortedIndex(e)
	s.events = append(s.events, Event{})
	copy(s.events[idx+1:], s.events[idx:])
	s.events[idx] = e
	s.notifyAdded(e)
	return e
}

// Remove deletes the event with e's id from the sequence. Returns
// false if no such event exists (precondition violation, §7).
func (s *Sequence) Remove(e Event) bool {
	idx := s.indexOf(e)
	if idx < 0 {
		return false
	}
	removed := s.events[idx]
	s.events = append(s.events[:idx], s.events[idx+1:]...)
	s.unmarkUsed(removed.ID)
	s.notifyRemoved(removed)
	s.notifyRemovedPostAction()
	return true
}

// Change replaces the event with before.ID's content with after
// (preserving before's id), reinserting it at its sorted position when
// its beat or secondary sort key changed. after is clamped per cfg
// before being stored. Returns false if before.ID is not present.
func (s *Sequence) Change(cfg config.Config, before, after Event) bool {
	idx := s.indexOf(before)
	if idx < 0 {
		return false
	}
	stored := s.events[idx]
	after.ID = stored.ID
	after.Type = stored.Type
	after = after.clamp(cfg)

	if after.Beat == stored.Beat && after.secondaryKey() == stored.secondaryKey() {
		s.events[idx] = after
		s.notifyChanged(stored, after)
		return true
	}

	s.events = append(s.events[:idx], s.events[idx+1:]...)
	newIdx := s.sortedIndex(after)
	s.events = append(s.events, Event{})
	copy(s.events[newIdx+1:], s.events[newIdx:])
	s.events[newIdx] = after
	s.notifyChanged(stored, after)
	return true
}

// InsertGroup inserts multiple events, delivering one OnEventAdded per
// event but only a single notifyRemovedPostAction-equivalent is not
// needed here (insert has no post-action phase in the original).
func (s *Sequence) InsertGroup(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, s.Insert(e))
	}
	return out
}

// RemoveGroup removes multiple events by id, delivering one
// OnEventRemoved per event and a single OnEventRemovedPostAction at
// the end (matching the original's checkpoint-friendly batch shape).
func (s *Sequence) RemoveGroup(events []Event) int {
	n := 0
	for _, e := range events {
		idx := s.indexOf(e)
		if idx < 0 {
			continue
		}
		removed := s.events[idx]
		s.events = append(s.events[:idx], s.events[idx+1:]...)
		s.unmarkUsed(removed.ID)
		s.notifyRemoved(removed)
		n++
	}
	if n > 0 {
		s.notifyRemovedPostAction()
	}
	return n
}

// ChangeGroup applies paired before/after changes in order, one Change
// call per pair, and returns how many pairs were applied. Each lookup
// sees the sequence as left by the pairs before it; a pair whose before
// is not present is skipped.
func (s *Sequence) ChangeGroup(cfg config.Config, befores, afters []Event) (int, error) {
	if len(befores) != len(afters) {
		return 0, fmt.Errorf("midi: ChangeGroup length mismatch: %d before, %d after", len(befores), len(afters))
	}
	n := 0
	for i := range befores {
		if s.Change(cfg, befores[i], afters[i]) {
			n++
		}
	}
	return n, nil
}

func (s *Sequence) notifyAdded(e Event) {
	s.deliver(func(l Listener) { l.OnEventAdded(e) })
}

func (s *Sequence) notifyChanged(before, after Event) {
	s.deliver(func(l Listener) { l.OnEventChanged(before, after) })
}

func (s *Sequence) notifyRemoved(e Event) {
	s.deliver(func(l Listener) { l.OnEventRemoved(e) })
}

func (s *Sequence) notifyRemovedPostAction() {
	s.deliver(func(l Listener) { l.OnEventRemovedPostAction() })
}

// deliver runs fn against every listener. The delivering flag exists so
// debug builds can assert against reentrant mutation from a callback;
// it is not required for correctness in release builds.
func (s *Sequence) deliver(fn func(Listener)) {
	s.delivering = true
	for _, l := range s.listeners {
		fn(l)
	}
	s.delivering = false
}
