package undo

import (
	"fmt"
	"log"
)

// checkpointMarker separates groups of actions that coalesce together.
// It is pushed onto the stack like any other entry but carries no
// payload and is never itself undone/redone as a unit with side
// effects beyond acting as a boundary.
type checkpointMarker struct{}

func (checkpointMarker) Perform() bool                      { return true }
func (checkpointMarker) Undo() bool                         { return true }
func (checkpointMarker) SizeInUnits() int                   { return 0 }
func (checkpointMarker) CoalesceWith(Action) (Action, bool) { return nil, false }
func (checkpointMarker) Kind() string                       { return "checkpoint" }
func (checkpointMarker) Serialize() ([]byte, error)         { return nil, nil }
func (checkpointMarker) Deserialize([]byte) error           { return nil }

// Stack is the project's undo/redo history (§4.4). It is bounded by a
// total-size-in-units budget: when pushing an action would exceed the
// budget, the oldest checkpoint-delimited groups of actions are
// discarded whole until it fits.
//
// The stack is not safe for concurrent use; per §5, all editing runs
// on a single project thread.
type Stack struct {
	sizeBudget int
	entries    []Action  // undo history, oldest first
	redo       [][]Action // redo history, one entry per Undo() call, oldest-undone first
	totalSize  int
	inconsistent bool
}

// NewStack constructs an empty Stack bounded by sizeBudget units.
func NewStack(sizeBudget int) *Stack {
	return &Stack{sizeBudget: sizeBudget}
}

// Inconsistent reports whether a prior Perform/Undo returned false
// unexpectedly, per §4.4's failure semantics.
func (s *Stack) Inconsistent() bool { return s.inconsistent }

// Checkpoint inserts a boundary: subsequent actions won't coalesce
// across it.
func (s *Stack) Checkpoint() {
	s.entries = append(s.entries, checkpointMarker{})
}

// Perform calls action.Perform(); on success it is pushed (possibly
// coalesced with the previous non-marker entry) and the redo history
// is cleared. Returns action.Perform()'s result.
func (s *Stack) Perform(action Action) bool {
	if !action.Perform() {
		return false
	}
	s.redo = s.redo[:0]
	s.push(action)
	return true
}

func (s *Stack) push(action Action) {
	if prev, ok := s.lastEntry(); ok {
		if merged, coalesced := action.CoalesceWith(prev); coalesced {
			s.entries[len(s.entries)-1] = merged
			s.totalSize += merged.SizeInUnits() - prev.SizeInUnits()
			s.trim()
			return
		}
	}
	s.entries = append(s.entries, action)
	s.totalSize += action.SizeInUnits()
	s.trim()
}

// lastEntry returns the most recently pushed non-checkpoint action, if
// the stack's tail entry is such an action (coalescing never reaches
// across a checkpoint boundary).
func (s *Stack) lastEntry() (Action, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	last := s.entries[len(s.entries)-1]
	if _, isMarker := last.(checkpointMarker); isMarker {
		return nil, false
	}
	return last, true
}

// trim discards the oldest entries, a whole group at a time (up to and
// including its closing checkpoint), until the stack fits its size
// budget; the group after the last checkpoint is always kept.
func (s *Stack) trim() {
	if s.sizeBudget <= 0 {
		return
	}
	for s.totalSize > s.sizeBudget {
		cut := -1
		for i, a := range s.entries {
			if _, isMarker := a.(checkpointMarker); isMarker {
				cut = i
				break
			}
		}
		if cut < 0 {
			return
		}
		for _, dropped := range s.entries[:cut+1] {
			s.totalSize -= dropped.SizeInUnits()
		}
		s.entries = s.entries[cut+1:]
	}
}

// Undo pops back to the previous checkpoint (or the start of history),
// calling Undo() on each action in reverse order, and moves them onto
// the redo history. Returns false (no-op) if there is nothing to undo,
// per §7 "undo/redo exhaustion is not an error".
func (s *Stack) Undo() bool {
	// Drop a trailing checkpoint marker so it doesn't count as "nothing
	// to undo" when actions precede it.
	for len(s.entries) > 0 {
		if _, isMarker := s.entries[len(s.entries)-1].(checkpointMarker); isMarker {
			s.entries = s.entries[:len(s.entries)-1]
			continue
		}
		break
	}
	if len(s.entries) == 0 {
		return false
	}

	var group []Action
	for len(s.entries) > 0 {
		last := s.entries[len(s.entries)-1]
		if _, isMarker := last.(checkpointMarker); isMarker {
			s.entries = s.entries[:len(s.entries)-1]
			break
		}
		s.entries = s.entries[:len(s.entries)-1]
		s.totalSize -= last.SizeInUnits()
		group = append(group, last)
	}

	for _, action := range group {
		if !action.Undo() {
			s.inconsistent = true
			log.Printf("undo: action %T.Undo() returned false, stack marked inconsistent", action)
			return false
		}
	}
	// group is in reverse perform order (most-recently-performed first);
	// kept that way so a single matching Redo() call can replay it.
	s.redo = append(s.redo, group)
	return true
}

// Redo re-performs the single group of actions most recently undone by
// one Undo() call. Returns false (no-op) if there is nothing to redo.
func (s *Stack) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	group := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]

	// group is stored in reverse perform order; replay oldest-first to
	// restore the original perform order.
	for i := len(group) - 1; i >= 0; i-- {
		action := group[i]
		if !action.Perform() {
			s.inconsistent = true
			log.Printf("undo: action %T.Perform() returned false during redo, stack marked inconsistent", action)
			return false
		}
		s.entries = append(s.entries, action)
		s.totalSize += action.SizeInUnits()
	}
	return true
}

// Clear truncates all history, e.g. after a checkout (§4.5).
func (s *Stack) Clear() {
	s.entries = nil
	s.redo = nil
	s.totalSize = 0
	s.inconsistent = false
}

// Len reports the number of actions (excluding checkpoint markers)
// currently in the undo history.
func (s *Stack) Len() int {
	n := 0
	for _, a := range s.entries {
		if _, isMarker := a.(checkpointMarker); !isMarker {
			n++
		}
	}
	return n
}

// CanUndo and CanRedo report whether Undo/Redo would be a no-op.
func (s *Stack) CanUndo() bool { return s.Len() > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// SerializedEntry is one persisted stack entry: a checkpoint marker or
// a concrete action, identified by its Kind tag plus a payload
// produced by that action's Serialize (§4.4 "serialize/deserialize").
type SerializedEntry struct {
	Kind    string
	Payload []byte
}

// Entries returns the undo history (oldest first) as serializable
// entries. The redo history is not included; it does not survive a
// save/load round trip (see RestoreStack).
func (s *Stack) Entries() ([]SerializedEntry, error) {
	out := make([]SerializedEntry, 0, len(s.entries))
	for _, a := range s.entries {
		payload, err := a.Serialize()
		if err != nil {
			return nil, fmt.Errorf("undo: serialize %s: %w", a.Kind(), err)
		}
		out = append(out, SerializedEntry{Kind: a.Kind(), Payload: payload})
	}
	return out, nil
}

// RestoreStack reconstructs a Stack's undo history from entries
// previously produced by Entries, resolving each action's structural
// references (target sequence, track container, config) against ctx.
// The redo history starts empty.
func RestoreStack(sizeBudget int, entries []SerializedEntry, ctx Context) (*Stack, error) {
	s := NewStack(sizeBudget)
	for _, se := range entries {
		action, err := DeserializeAction(se.Kind, se.Payload, ctx)
		if err != nil {
			return nil, fmt.Errorf("undo: restore %s: %w", se.Kind, err)
		}
		s.entries = append(s.entries, action)
		s.totalSize += action.SizeInUnits()
	}
	return s, nil
}
