package midi

import "motif/internal/tuning"

// Kind distinguishes the role a MidiTrack plays (§3 MidiTrack).
type Kind int

const (
	Piano Kind = iota
	AutomationTrack
	KeySignatureTrack
	TimeSignatureTrack
	AnnotationTrack
)

// Default controller numbers an AutomationTrack's ControllerNumber may
// carry, mirroring the original MidiLayer::DefaultControllers enum.
// SustainPedalController has no consumer in this core (no live
// playback); TempoController is read by internal/export to build the
// exported file's tempo map (§6).
const (
	SustainPedalController = 64
	TempoController        = 81
)

// Track is a named, coloured container owning exactly one Sequence
// (its pool of events) and one Pattern (the clips that place copies of
// that sequence on the timeline) — §3 MidiTrack.
//
// Grounded on original_source/Source/Core/Midi/MidiTrack.h; the
// teacher's internal/model did not have an analogous type, so this is
// original-source-grounded rather than teacher-grounded.
type Track struct {
	ID      string
	Name    string
	Kind    Kind
	Colour  tuning.Colour
	Channel int  // MIDI channel, 1..16
	Muted   bool

	ControllerNumber int // meaningful only for AutomationTrack
	InstrumentID     string

	// TimeSignatureOverride, when non-nil, pins this track's own time
	// signature independent of the project's default track.
	TimeSignatureOverride *Event

	Sequence *Sequence
	Pattern  *Pattern
}

// NewTrack constructs a Track of the given kind with an empty sequence
// and pattern, both scoped to id.
func NewTrack(id, name string, kind Kind) *Track {
	return &Track{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Channel:  1,
		Sequence: NewSequence(id),
		Pattern:  NewPattern(id),
	}
}
