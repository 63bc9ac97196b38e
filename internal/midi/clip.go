package midi

import (
	"sort"

	"motif/internal/tuning"
)

// Clip places a copy of a track's Sequence at a beat offset within the
// project timeline, optionally transposed, re-velocitied, muted, or
// recoloured (§3 Clip).
//
// Grounded on original_source/Source/Core/Midi/Clip.h/.cpp.
type Clip struct {
	ID         string
	Beat       float64
	KeyOffset  int
	Velocity   float64 // multiplicative scalar applied on export, 1.0 = unchanged
	Mute       bool
	Colour     tuning.Colour
	HasColour  bool // Colour overrides the owning track's colour only if set
}

// NewClip constructs a Clip at beat with the identity transform.
func NewClip(beat float64) Clip {
	return Clip{Beat: beat, Velocity: 1.0}
}

func (c Clip) clamp() Clip {
	if c.Velocity < 0 {
		c.Velocity = 0
	} else if c.Velocity > 2 {
		c.Velocity = 2
	}
	return c
}

// Pattern is a track's beat-sorted collection of Clips (§3 Pattern).
type Pattern struct {
	trackID string
	clips   []Clip
	counter idCounter
	usedIDs map[string]bool
}

func NewPattern(trackID string) *Pattern {
	return &Pattern{trackID: trackID, usedIDs: make(map[string]bool)}
}

func (p *Pattern) TrackID() string { return p.trackID }

func (p *Pattern) Clips() []Clip {
	out := make([]Clip, len(p.clips))
	copy(out, p.clips)
	return out
}

func (p *Pattern) Len() int { return len(p.clips) }

func (p *Pattern) drawID() string {
	for {
		id := p.counter.draw()
		if !p.usedIDs[id] {
			p.usedIDs[id] = true
			return id
		}
	}
}

func (p *Pattern) indexOf(id string) int {
	for i, c := range p.clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Insert adds c to the pattern, assigning it a fresh id if needed, and
// keeps clips ordered by Beat.
func (p *Pattern) Insert(c Clip) Clip {
	c = c.clamp()
	if c.ID == "" || p.usedIDs[c.ID] {
		c.ID = p.drawID()
	} else {
		p.usedIDs[c.ID] = true
	}
	idx := sort.Search(len(p.clips), func(i int) bool { return p.clips[i].Beat >= c.Beat })
	p.clips = append(p.clips, Clip{})
	copy(p.clips[idx+1:], p.clips[idx:])
	p.clips[idx] = c
	return c
}

// Remove deletes the clip with id. Returns false if absent.
func (p *Pattern) Remove(id string) bool {
	idx := p.indexOf(id)
	if idx < 0 {
		return false
	}
	p.clips = append(p.clips[:idx], p.clips[idx+1:]...)
	delete(p.usedIDs, id)
	return true
}

// Change replaces the clip with id's content (beat may move it within
// the sorted order).
func (p *Pattern) Change(id string, after Clip) bool {
	idx := p.indexOf(id)
	if idx < 0 {
		return false
	}
	after.ID = id
	after = after.clamp()
	p.clips = append(p.clips[:idx], p.clips[idx+1:]...)
	newIdx := sort.Search(len(p.clips), func(i int) bool { return p.clips[i].Beat >= after.Beat })
	p.clips = append(p.clips, Clip{})
	copy(p.clips[newIdx+1:], p.clips[newIdx:])
	p.clips[newIdx] = after
	return true
}
