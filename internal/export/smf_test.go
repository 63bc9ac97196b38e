package export

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motif/internal/config"
	"motif/internal/midi"
	"motif/internal/project"
	"motif/internal/tuning"
)

// A quintuplet note of length 1 beat emits 5 note-ons evenly spaced
// over the beat and 5 note-offs each nudged earlier by one tick (§8
// boundary example).
func TestExportNoteQuintupletTiming(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TicksPerBeat = 1000 // fine enough that 0.2-beat subdivisions land on integers
	note := midi.NewNote(cfg, 0, 60, 1.0, 1.0, 5)
	clip := midi.NewClip(0)
	mapping := tuning.NewKeyboardMapping(16)

	events := exportNote(note, clip, 1, mapping, cfg)
	require.Len(t, events, 10)

	wantOnTicks := []uint32{0, 200, 400, 600, 800}
	for i, want := range wantOnTicks {
		assert.Equal(t, want, events[2*i].tick, "note-on %d", i)
	}
	wantOffTicks := []uint32{199, 399, 599, 799, 999}
	for i, want := range wantOffTicks {
		assert.Equal(t, want, events[2*i+1].tick, "note-off %d", i)
	}
}

// Consecutive identical-key notes at beats 0 and 1 (length 1 each)
// must order, once merged and sorted for output, so the first note's
// note-off precedes the second note's note-on (§8 boundary example).
func TestExportConsecutiveIdenticalKeyNotesOrdering(t *testing.T) {
	cfg := config.DefaultConfig()
	mapping := tuning.NewKeyboardMapping(16)
	clip := midi.NewClip(0)

	first := midi.NewNote(cfg, 0, 60, 1.0, 1.0, 1)
	second := midi.NewNote(cfg, 1, 60, 1.0, 1.0, 1)

	var events []rawEvent
	events = append(events, exportNote(first, clip, 1, mapping, cfg)...)
	events = append(events, exportNote(second, clip, 1, mapping, cfg)...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	require.Len(t, events, 4)
	firstOff := events[1].tick
	secondOn := events[2].tick
	assert.Less(t, firstOff, secondOn, "first note-off must precede second note-on")
}

func TestBeatToTickClampsNegative(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, uint32(0), beatToTick(-1, cfg))
}

func TestBPMFromControllerValueSpansConfiguredRange(t *testing.T) {
	assert.Equal(t, minTempoBPM, bpmFromControllerValue(0))
	assert.Equal(t, maxTempoBPM, bpmFromControllerValue(1))
	assert.InDelta(t, (minTempoBPM+maxTempoBPM)/2, bpmFromControllerValue(0.5), 0.001)
}

// A track of Kind AutomationTrack whose ControllerNumber is
// midi.TempoController carries tempo-change points (§6): its
// Automation events' normalized values become BPM points in the
// exported tempo map, not a flat 120.
func TestCollectTempoEventsReadsOnlyTempoControllerTrack(t *testing.T) {
	cfg := config.DefaultConfig()
	p := project.New(cfg, project.ProjectInfo{}, tuning.Temperament{}, time.Unix(0, 0).UTC())

	tempoTrack := midi.NewTrack("tempo", "Tempo", midi.AutomationTrack)
	tempoTrack.ControllerNumber = midi.TempoController
	tempoTrack.Sequence.Insert(midi.NewAutomation(cfg, 0, 0, 0))
	tempoTrack.Sequence.Insert(midi.NewAutomation(cfg, 4, 1, 0))
	p.InsertTrackAt(tempoTrack, 0)

	otherAutomation := midi.NewTrack("cc1", "Mod wheel", midi.AutomationTrack)
	otherAutomation.ControllerNumber = 1
	otherAutomation.Sequence.Insert(midi.NewAutomation(cfg, 1, 0.5, 0))
	p.InsertTrackAt(otherAutomation, 1)

	tempos := collectTempoEvents(p, cfg)
	require.Len(t, tempos, 2, "only the tempo-controller track's automation should be collected")
	assert.Equal(t, uint32(0), tempos[0].tick)
	assert.Equal(t, minTempoBPM, tempos[0].bpm)
	assert.InDelta(t, maxTempoBPM, tempos[1].bpm, 0.001)
}

func TestCollectTempoEventsEmptyWhenNoTempoTrack(t *testing.T) {
	cfg := config.DefaultConfig()
	p := project.New(cfg, project.ProjectInfo{}, tuning.Temperament{}, time.Unix(0, 0).UTC())
	assert.Empty(t, collectTempoEvents(p, cfg))
}
