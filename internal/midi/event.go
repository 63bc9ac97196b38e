// Package midi holds the musical data model: events, sequences, clips,
// patterns, and tracks. Per the Design Notes, the original class
// hierarchy (MidiEvent base, Note/Annotation/KeySignature/TimeSignature
// subclasses) is flattened into a single tagged-variant Event struct;
// the sort comparator and serialization dispatch on Type.
package midi

import (
	"motif/internal/config"
	"motif/internal/tuning"
)

// Type tags which variant of Event is populated.
type Type int

const (
	Note Type = iota
	Annotation
	KeySignature
	TimeSignature
	Automation
)

func (t Type) String() string {
	switch t {
	case Note:
		return "note"
	case Annotation:
		return "annotation"
	case KeySignature:
		return "keySignature"
	case TimeSignature:
		return "timeSignature"
	case Automation:
		return "automation"
	default:
		return "unknown"
	}
}

// Event is the base entity shared by all event kinds (§3 MidiEvent).
// It is a tagged variant: only the fields relevant to Type are
// meaningful, but all are present so sort/compare/serialize can treat
// every event uniformly.
type Event struct {
	ID   string
	Type Type
	Beat float64

	// Note fields.
	Key      int
	Length   float64
	Velocity float64
	Tuplet   int

	// AnnotationEvent fields (Length is shared with Note).
	Description string
	Colour      tuning.Colour

	// KeySignatureEvent fields.
	RootKey int
	Scale   tuning.Scale

	// TimeSignatureEvent fields.
	Numerator   int
	Denominator int

	// AutomationEvent fields.
	Value float64
	Curve float64
}

// MinTuplet and MaxTuplet bound Note.Tuplet, per §3/§6.
const (
	MinTuplet = 1
	MaxTuplet = 9
)

// clampNote enforces §3's Note invariants: length >= minNoteLength,
// velocity in [0,1], tuplet in [1,9], key >= 0. Out-of-range input is
// clamped, never rejected (§7 "Numeric out-of-range").
func clampNote(cfg config.Config, e Event) Event {
	if e.Key < 0 {
		e.Key = 0
	}
	if e.Length < cfg.MinNoteLength {
		e.Length = cfg.MinNoteLength
	}
	if e.Velocity < 0 {
		e.Velocity = 0
	} else if e.Velocity > 1 {
		e.Velocity = 1
	}
	if e.Tuplet < MinTuplet {
		e.Tuplet = MinTuplet
	} else if e.Tuplet > MaxTuplet {
		e.Tuplet = MaxTuplet
	}
	return e
}

func clampAutomation(e Event) Event {
	if e.Value < 0 {
		e.Value = 0
	} else if e.Value > 1 {
		e.Value = 1
	}
	return e
}

// NewNote constructs a Note event (without an id; the owning Sequence
// assigns one on Insert).
func NewNote(cfg config.Config, beat float64, key int, length, velocity float64, tuplet int) Event {
	e := Event{
		Type:     Note,
		Beat:     cfg.RoundBeat(beat),
		Key:      key,
		Length:   length,
		Velocity: velocity,
		Tuplet:   tuplet,
	}
	return clampNote(cfg, e)
}

// NewAnnotation constructs an AnnotationEvent.
func NewAnnotation(cfg config.Config, beat float64, description string, colour tuning.Colour, length float64) Event {
	if length < 0 {
		length = 0
	}
	return Event{
		Type:        Annotation,
		Beat:        cfg.RoundBeat(beat),
		Description: description,
		Colour:      colour,
		Length:      length,
	}
}

// NewKeySignature constructs a KeySignatureEvent.
func NewKeySignature(cfg config.Config, beat float64, rootKey int, scale tuning.Scale) Event {
	return Event{
		Type:    KeySignature,
		Beat:    cfg.RoundBeat(beat),
		RootKey: rootKey,
		Scale:   scale,
	}
}

// NewTimeSignature constructs a TimeSignatureEvent.
func NewTimeSignature(cfg config.Config, beat float64, numerator, denominator int) Event {
	if numerator < 1 {
		numerator = 1
	}
	if denominator < 1 {
		denominator = 1
	}
	return Event{
		Type:        TimeSignature,
		Beat:        cfg.RoundBeat(beat),
		Numerator:   numerator,
		Denominator: denominator,
	}
}

// NewAutomation constructs an AutomationEvent.
func NewAutomation(cfg config.Config, beat, value, curve float64) Event {
	e := Event{
		Type:  Automation,
		Beat:  cfg.RoundBeat(beat),
		Value: value,
		Curve: curve,
	}
	return clampAutomation(e)
}

// clamp applies cfg's clamping rules to a modified copy of e,
// preserving e's id and type. Used by Sequence.Change.
func (e Event) clamp(cfg config.Config) Event {
	switch e.Type {
	case Note:
		return clampNote(cfg, e)
	case Automation:
		return clampAutomation(e)
	default:
		return e
	}
}

// secondaryKey returns the type-specific tiebreaker used by the sort
// comparator: note key for notes, 0 for everything else (§4.1).
func (e Event) secondaryKey() int {
	if e.Type == Note {
		return e.Key
	}
	return 0
}

// Less implements the total order of §4.1: beat asc, then
// type-specific secondary key, then id asc.
func Less(a, b Event) bool {
	if a.Beat != b.Beat {
		return a.Beat < b.Beat
	}
	if sa, sb := a.secondaryKey(), b.secondaryKey(); sa != sb {
		return sa < sb
	}
	return a.ID < b.ID
}

// Equal compares all musically-relevant fields for the event's type,
// ignoring id; used by VCS diffing (§4.7) which compares note identity
// separately from note content.
func Equal(a, b Event) bool {
	if a.Type != b.Type || a.Beat != b.Beat {
		return false
	}
	switch a.Type {
	case Note:
		return a.Key == b.Key && a.Length == b.Length &&
			a.Velocity == b.Velocity && a.Tuplet == b.Tuplet
	case Annotation:
		return a.Description == b.Description && a.Colour == b.Colour && a.Length == b.Length
	case KeySignature:
		return a.RootKey == b.RootKey && a.Scale.IsEquivalentTo(b.Scale)
	case TimeSignature:
		return a.Numerator == b.Numerator && a.Denominator == b.Denominator
	case Automation:
		return a.Value == b.Value && a.Curve == b.Curve
	default:
		return false
	}
}

// WithNewID returns a copy of e carrying a freshly drawn id from dst,
// used when moving an event to another sequence (paste, split track).
func (e Event) WithNewID(dst *Sequence) Event {
	e.ID = dst.drawID()
	dst.markUsed(e.ID)
	return e
}
