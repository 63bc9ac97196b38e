package tuning

import (
	"encoding/json"
	"fmt"
)

// Temperament is an immutable tuning system: a fixed period size,
// a frequency ratio, a set of period note names, a highlighting scale
// used for keyboard visual cues, and an inclusive middle-C key index.
//
// Grounded on original_source/Source/Core/Configuration/Models/Temperament.h.
type Temperament struct {
	id                 string
	name               string
	periodNames        []string // len == period size
	periodRatio        float64
	highlighting       Scale
	chromaticMap       []bool // len == period size; true = "white key"
	numDisplayedPeriods int
	middleC            int
}

// MinPeriodSize is the invariant floor on period size (§3).
const MinPeriodSize = 5

// TemperamentConfig is the constructor input for NewTemperament.
type TemperamentConfig struct {
	ID                  string
	Name                string
	PeriodNames         []string
	PeriodRatio         float64 // 0 defaults to 2.0
	Highlighting        Scale
	ChromaticMap        []bool
	NumDisplayedPeriods int
	MiddleC             int
}

// NewTemperament validates and constructs a Temperament. It returns an
// error if the invariants in §3 are violated: period size >= 5,
// numKeys == periodSize * numDisplayedPeriods, and middle-C within range.
func NewTemperament(cfg TemperamentConfig) (Temperament, error) {
	periodSize := len(cfg.PeriodNames)
	if periodSize < MinPeriodSize {
		return Temperament{}, fmt.Errorf("tuning: period size %d below minimum %d", periodSize, MinPeriodSize)
	}
	if cfg.NumDisplayedPeriods <= 0 {
		cfg.NumDisplayedPeriods = 1
	}
	numKeys := periodSize * cfg.NumDisplayedPeriods
	if cfg.MiddleC < 0 || cfg.MiddleC >= numKeys {
		return Temperament{}, fmt.Errorf("tuning: middle-C index %d out of range [0,%d)", cfg.MiddleC, numKeys)
	}
	ratio := cfg.PeriodRatio
	if ratio == 0 {
		ratio = 2.0
	}
	chromaticMap := cfg.ChromaticMap
	if len(chromaticMap) != periodSize {
		chromaticMap = make([]bool, periodSize)
	}
	names := make([]string, periodSize)
	copy(names, cfg.PeriodNames)
	highlighting := cfg.Highlighting
	if !highlighting.IsValid() {
		highlighting = ChromaticScale(periodSize)
	}
	return Temperament{
		id:                  cfg.ID,
		name:                cfg.Name,
		periodNames:         names,
		periodRatio:         ratio,
		highlighting:        highlighting,
		chromaticMap:        chromaticMap,
		numDisplayedPeriods: cfg.NumDisplayedPeriods,
		middleC:             cfg.MiddleC,
	}, nil
}

func (t Temperament) ID() string             { return t.id }
func (t Temperament) Name() string           { return t.name }
func (t Temperament) PeriodSize() int        { return len(t.periodNames) }
func (t Temperament) PeriodRatio() float64   { return t.periodRatio }
func (t Temperament) Highlighting() Scale    { return t.highlighting }
func (t Temperament) NumDisplayedPeriods() int { return t.numDisplayedPeriods }
func (t Temperament) MiddleC() int           { return t.middleC }
func (t Temperament) NumKeys() int           { return t.PeriodSize() * t.numDisplayedPeriods }

// PeriodName returns the display name of the note at the given step
// within one period (0-based).
func (t Temperament) PeriodName(step int) string {
	n := t.PeriodSize()
	step = ((step % n) + n) % n
	return t.periodNames[step]
}

// IsWhiteKey reports whether a key index is part of the chromatic map
// highlight set (the keyboard's visual "white key" cue).
func (t Temperament) IsWhiteKey(key int) bool {
	n := t.PeriodSize()
	if n == 0 {
		return false
	}
	step := ((key % n) + n) % n
	return t.chromaticMap[step]
}

// KeyName returns a human-readable name for a chromatic key, e.g. "C4".
func (t Temperament) KeyName(key int) string {
	n := t.PeriodSize()
	if n == 0 {
		return ""
	}
	octave := key/n - t.middleC/n
	step := ((key % n) + n) % n
	return fmt.Sprintf("%s%d", t.periodName(step), octave+4)
}

func (t Temperament) periodName(step int) string { return t.PeriodName(step) }

// temperamentDTO is Temperament's wire shape, needed because its
// fields are unexported (§6 ProjectRoot carries a Temperament node).
type temperamentDTO struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	PeriodNames         []string `json:"periodNames"`
	PeriodRatio         float64  `json:"periodRatio"`
	Highlighting        Scale    `json:"highlighting"`
	ChromaticMap        []bool   `json:"chromaticMap"`
	NumDisplayedPeriods int      `json:"numDisplayedPeriods"`
	MiddleC             int      `json:"middleC"`
}

func (t Temperament) MarshalJSON() ([]byte, error) {
	return json.Marshal(temperamentDTO{
		ID:                  t.id,
		Name:                t.name,
		PeriodNames:         t.periodNames,
		PeriodRatio:         t.periodRatio,
		Highlighting:        t.highlighting,
		ChromaticMap:        t.chromaticMap,
		NumDisplayedPeriods: t.numDisplayedPeriods,
		MiddleC:             t.middleC,
	})
}

func (t *Temperament) UnmarshalJSON(data []byte) error {
	var dto temperamentDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	built, err := NewTemperament(TemperamentConfig{
		ID:                  dto.ID,
		Name:                dto.Name,
		PeriodNames:         dto.PeriodNames,
		PeriodRatio:         dto.PeriodRatio,
		Highlighting:        dto.Highlighting,
		ChromaticMap:        dto.ChromaticMap,
		NumDisplayedPeriods: dto.NumDisplayedPeriods,
		MiddleC:             dto.MiddleC,
	})
	if err != nil {
		return err
	}
	*t = built
	return nil
}

// Presets, per spec: the standard 12-EDO temperament is the default.

// TwelveToneEqual returns the standard 12-tone equal temperament.
func TwelveToneEqual() Temperament {
	names := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	whiteKeys := []bool{true, false, true, false, true, true, false, true, false, true, false, true}
	t, err := NewTemperament(TemperamentConfig{
		ID:                  "12edo",
		Name:                "12 equal temperament",
		PeriodNames:         names,
		PeriodRatio:         2.0,
		Highlighting:        NaturalMajorScale(),
		ChromaticMap:        whiteKeys,
		NumDisplayedPeriods: 11,
		MiddleC:             60,
	})
	if err != nil {
		panic(err) // preset must always be valid
	}
	return t
}

// NineteenToneEqual returns a 19-EDO temperament, demonstrating a
// non-12 period size per §3's "e.g. 19 for 19-EDO".
func NineteenToneEqual() Temperament {
	names := make([]string, 19)
	for i := range names {
		names[i] = fmt.Sprintf("s%d", i)
	}
	t, err := NewTemperament(TemperamentConfig{
		ID:                  "19edo",
		Name:                "19 equal temperament",
		PeriodNames:         names,
		PeriodRatio:         2.0,
		NumDisplayedPeriods: 6,
		MiddleC:             19 * 3,
	})
	if err != nil {
		panic(err)
	}
	return t
}
