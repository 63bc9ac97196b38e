// Package undo implements the reversible editing pipeline: every
// mutation is packaged as an Action pushed onto a Stack, with
// checkpoint-based grouping and coalescing of consecutive edits that
// target the same event id (§4.4).
//
// Grounded on original_source/Source/Core/Undo/Actions/*.h (Perform/
// Undo/getSizeInUnits shape) and the teacher's internal/model/
// undo_test.go push/pop/history-limit behaviour.
package undo

// Action is a single reversible edit. Implementations hold everything
// needed to both perform and undo themselves against the project they
// were constructed against.
type Action interface {
	// Perform applies the action's forward effect. Returns false on a
	// precondition violation (§7): the caller must not push the action.
	Perform() bool

	// Undo reverses a prior successful Perform. Returns false if the
	// action cannot be undone (the stack is then marked inconsistent).
	Undo() bool

	// SizeInUnits estimates the action's footprint for the stack's
	// size budget (§4.4).
	SizeInUnits() int

	// CoalesceWith attempts to merge this action with a directly
	// preceding one of the same concrete kind. Returns the merged
	// action and true if coalescing applies (matching target id, no
	// intervening checkpoint); otherwise (nil, false). Group actions
	// must always return (nil, false).
	CoalesceWith(previous Action) (Action, bool)

	// Kind identifies the action's concrete type, used to pick the
	// right constructor back out of DeserializeAction (§4.4 "every kind
	// has a concrete class with perform, undo, getSizeInUnits, and
	// serialize/deserialize").
	Kind() string

	// Serialize encodes the action's value state — not its structural
	// references to the sequence/track container it targets, which
	// DeserializeAction resolves via a Context before calling
	// Deserialize.
	Serialize() ([]byte, error)

	// Deserialize populates the action's value state from a payload
	// produced by Serialize. The receiver's structural references must
	// already be set by the caller before this runs.
	Deserialize(data []byte) error
}

// Coalescable is implemented by actions that can report the event id
// they target (ChangeEventAction).
type Coalescable interface {
	TargetID() string
}

// baseSize is the nominal footprint of a single scalar action, used by
// action kinds that do not hold a large payload.
const baseSize = 1
