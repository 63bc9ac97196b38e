package tuning

// Chord is a set of in-scale degree offsets rendered to chromatic keys
// via a Scale. Grounded on original_source Scale.h's getChord, which
// renders a chord against a given scale degree.
type Chord struct {
	Name string
	// Keys are offsets in scale degrees from the chord's root degree,
	// e.g. a triad is {0, 2, 4}.
	Keys []int
}

// Degree names a scale degree a chord may be rendered against; only
// diatonic scales give these musical meaning, but any scale accepts them
// as a plain degree index.
type Degree int

const (
	Tonic Degree = iota
	Supertonic
	Mediant
	Subdominant
	Dominant
	Submediant
	Subtonic
)

// Triad presets, by scale-degree offset.
var (
	ChordTriad        = Chord{Name: "Triad", Keys: []int{0, 2, 4}}
	ChordSeventh       = Chord{Name: "Seventh", Keys: []int{0, 2, 4, 6}}
	ChordSixth         = Chord{Name: "Sixth", Keys: []int{0, 2, 4, 5}}
	ChordNinth         = Chord{Name: "Ninth", Keys: []int{0, 2, 4, 6, 8}}
)

// Chord renders c against this scale starting at the given degree,
// returning chromatic key offsets from the tonic. When oneOctave is
// true, results are wrapped into [0, basePeriod).
func (s Scale) Chord(c Chord, degree Degree, oneOctave bool) []int {
	out := make([]int, 0, len(c.Keys))
	for _, offset := range c.Keys {
		inScale := int(degree) + offset
		chromatic := s.GetChromaticKey(inScale, 0, oneOctave)
		out = append(out, chromatic)
	}
	return out
}
