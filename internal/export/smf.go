// Package export renders a Project to a Standard MIDI File (§4.3, §6
// "MIDI export").
//
// Grounded on original_source's note-export semantics (tuplet
// sub-events, keyboard-mapping remap, note-off epsilon) and on the
// teacher's gitlab.com/gomidi/midi/v2 dependency, here re-wired from
// live device output (internal/midiconnector, dropped — see
// DESIGN.md) to file export via its smf sub-package.
package export

import (
	"fmt"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"motif/internal/config"
	"motif/internal/midi"
	"motif/internal/project"
	"motif/internal/tuning"
)

// noteOffEpsilonTicks reduces every note-off timestamp by a small,
// fixed offset (§4.3: "a fixed small offset, 1ms worth of ticks"), to
// keep a tuplet sub-event's rounding error from producing a note-off
// past the next note-on, and to stop a late note-off from silencing a
// following same-key note. One tick is the practical minimum at this
// core's tick resolutions (§6 ticksPerBeat of 16 or 480): a literal 1ms
// conversion would require baking a tempo into the core, which §5
// keeps out of the mutable project — tempo is carried only as
// Automation events on a TempoController track (midi.TempoController),
// rendered into a tempo map by exportMetaTrack per export.
const noteOffEpsilonTicks = 1

// maxVelocity is the 7-bit MIDI velocity ceiling.
const maxVelocity = 127

// minTempoBPM and maxTempoBPM bound the BPM range a normalized
// (0..1) tempo-controller AutomationEvent.Value maps onto. defaultBPM
// is emitted at tick 0 when a project carries no tempo automation at
// all, matching the teacher's single hardcoded tempo before this
// convention existed.
const (
	minTempoBPM = 20.0
	maxTempoBPM = 300.0
	defaultBPM  = 120.0
)

func bpmFromControllerValue(value float64) float64 {
	return minTempoBPM + value*(maxTempoBPM-minTempoBPM)
}

// Export renders p to a Standard MIDI File, format 1, one track per
// project track plus a leading tempo/meta track (§6).
func Export(p *project.Project, cfg config.Config) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(uint16(cfg.TicksPerBeat))

	meta, err := exportMetaTrack(p, cfg)
	if err != nil {
		return nil, err
	}
	s.Add(meta)

	mapping := p.KeyboardMapping
	if mapping == nil {
		mapping = tuning.NewKeyboardMapping(16)
	}

	for _, tr := range p.Tracks {
		track, err := exportTrack(tr, mapping, cfg)
		if err != nil {
			return nil, fmt.Errorf("export: track %q: %w", tr.ID, err)
		}
		s.Add(track)
	}
	return s, nil
}

type tsEvent struct {
	tick                   uint32
	numerator, denominator int
}

type tempoEvent struct {
	tick uint32
	bpm  float64
}

// collectTimeSignatureEvents gathers every TimeSignature event across
// all tracks, tick-sorted (§4.3: a project-wide tempo/meta track).
func collectTimeSignatureEvents(p *project.Project, cfg config.Config) []tsEvent {
	var out []tsEvent
	for _, track := range p.Tracks {
		for _, e := range track.Sequence.Events() {
			if e.Type != midi.TimeSignature {
				continue
			}
			out = append(out, tsEvent{
				tick:        beatToTick(e.Beat, cfg),
				numerator:   e.Numerator,
				denominator: e.Denominator,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tick < out[j].tick })
	return out
}

// collectTempoEvents gathers Automation events from every AutomationTrack
// whose ControllerNumber is midi.TempoController, converting each
// event's normalized Value into a BPM point (§6 "a tempo map emitted
// from the time-signature and automation controller=tempo data").
func collectTempoEvents(p *project.Project, cfg config.Config) []tempoEvent {
	var out []tempoEvent
	for _, track := range p.Tracks {
		if track.Kind != midi.AutomationTrack || track.ControllerNumber != midi.TempoController {
			continue
		}
		for _, e := range track.Sequence.Events() {
			if e.Type != midi.Automation {
				continue
			}
			out = append(out, tempoEvent{
				tick: beatToTick(e.Beat, cfg),
				bpm:  bpmFromControllerValue(e.Value),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tick < out[j].tick })
	return out
}

func exportMetaTrack(p *project.Project, cfg config.Config) (smf.Track, error) {
	signatures := collectTimeSignatureEvents(p, cfg)
	tempos := collectTempoEvents(p, cfg)

	type metaEvent struct {
		tick uint32
		msg  smf.Message
	}
	var events []metaEvent
	if len(tempos) == 0 || tempos[0].tick != 0 {
		events = append(events, metaEvent{tick: 0, msg: smf.MetaTempo(defaultBPM)})
	}
	for _, t := range tempos {
		events = append(events, metaEvent{tick: t.tick, msg: smf.MetaTempo(t.bpm)})
	}
	for _, ts := range signatures {
		events = append(events, metaEvent{tick: ts.tick, msg: smf.MetaMeter(uint8(ts.numerator), uint8(ts.denominator))})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	var tr smf.Track
	last := uint32(0)
	for _, ev := range events {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	return tr, nil
}

func beatToTick(beat float64, cfg config.Config) uint32 {
	ticks := beat * float64(cfg.TicksPerBeat)
	if ticks < 0 {
		ticks = 0
	}
	return uint32(ticks + 0.5)
}

type rawEvent struct {
	tick uint32
	msg  gomidi.Message
}

func exportTrack(tr *midi.Track, mapping *tuning.KeyboardMapping, cfg config.Config) (smf.Track, error) {
	var events []rawEvent

	for _, clip := range tr.Pattern.Clips() {
		if clip.Mute {
			continue
		}
		for _, e := range tr.Sequence.Events() {
			switch e.Type {
			case midi.Note:
				events = append(events, exportNote(e, clip, tr.Channel, mapping, cfg)...)
			case midi.Automation:
				events = append(events, rawEvent{
					tick: beatToTick(clip.Beat+e.Beat, cfg),
					msg:  gomidi.ControlChange(uint8(tr.Channel-1), uint8(tr.ControllerNumber), uint8(e.Value*maxVelocity+0.5)),
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(tr.Name))
	last := uint32(0)
	for _, ev := range events {
		track.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	track.Close(0)
	return track, nil
}

// exportNote expands one Note event placed by clip into its tuplet
// sub-events (§4.3): tuplet sub-events evenly spaced over
// length/tuplet, velocity fading by (1 - i/100) of the base velocity
// unless the core is configured for a flat fade (§9 OQ2), each
// note-off nudged earlier by noteOffEpsilonTicks.
func exportNote(e midi.Event, clip midi.Clip, channel int, mapping *tuning.KeyboardMapping, cfg config.Config) []rawEvent {
	target := mapping.Map(clip.KeyOffset+e.Key, channel)
	outKey, outChannel := target.Key, target.Channel
	base := e.Velocity * clip.Velocity
	subLength := e.Length / float64(e.Tuplet)

	var out []rawEvent
	for i := 0; i < e.Tuplet; i++ {
		subBeat := clip.Beat + e.Beat + float64(i)*subLength
		fade := 1.0
		if i > 0 && !cfg.FlatTupletVelocity {
			fade = 1 - float64(i)/100
			if fade < 0 {
				fade = 0
			}
		}
		velocity := base * fade
		vel := uint8(velocity*maxVelocity + 0.5)
		if vel > maxVelocity {
			vel = maxVelocity
		}

		onTick := beatToTick(subBeat, cfg)
		offTick := beatToTick(subBeat+subLength, cfg)
		if offTick > noteOffEpsilonTicks {
			offTick -= noteOffEpsilonTicks
		}
		if offTick <= onTick {
			offTick = onTick + 1
		}

		ch := uint8(outChannel - 1)
		out = append(out,
			rawEvent{tick: onTick, msg: gomidi.NoteOn(ch, uint8(outKey), vel)},
			rawEvent{tick: offTick, msg: gomidi.NoteOff(ch, uint8(outKey))},
		)
	}
	return out
}
