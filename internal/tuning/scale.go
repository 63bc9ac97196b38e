package tuning

import (
	"encoding/json"
	"sort"
)

// RoundMode selects how getNearestScaleKey rounds a chromatic key that
// falls between two in-scale keys.
type RoundMode int

const (
	Round RoundMode = iota
	Ceil
	Floor
)

// Scale is an ordered set of step indices within one period. It is
// immutable after construction; With* methods return a new instance.
//
// Grounded on original_source/Source/Core/Configuration/Models/Scale.h.
type Scale struct {
	name       string
	keys       []int // sorted, keys[0] == 0
	basePeriod int
}

// DefaultBasePeriod is the base chromatic period length (12-EDO).
const DefaultBasePeriod = 12

// NewScale constructs a Scale. keys must be sorted, keys[0] == 0, and
// all other keys must lie in (0, basePeriod); basePeriod defaults to 12
// when 0 is passed. Invalid input is silently normalized: duplicates
// are removed and keys are sorted.
func NewScale(name string, keys []int, basePeriod int) Scale {
	if basePeriod <= 0 {
		basePeriod = DefaultBasePeriod
	}
	seen := make(map[int]bool, len(keys)+1)
	seen[0] = true
	norm := []int{0}
	for _, k := range keys {
		k = ((k % basePeriod) + basePeriod) % basePeriod
		if k == 0 || seen[k] {
			continue
		}
		seen[k] = true
		norm = append(norm, k)
	}
	sort.Ints(norm)
	return Scale{name: name, keys: norm, basePeriod: basePeriod}
}

// Name returns the scale's display name.
func (s Scale) Name() string { return s.name }

// Keys returns a copy of the sorted in-period step indices.
func (s Scale) Keys() []int {
	out := make([]int, len(s.keys))
	copy(out, s.keys)
	return out
}

// BasePeriod returns the chromatic period length this scale is defined over.
func (s Scale) BasePeriod() int { return s.basePeriod }

// Size returns the number of keys in the scale.
func (s Scale) Size() int { return len(s.keys) }

// IsValid reports whether the scale has at least one key and a period > 0.
func (s Scale) IsValid() bool { return len(s.keys) > 0 && s.basePeriod > 0 }

// WithName returns a copy of s with a new name.
func (s Scale) WithName(name string) Scale {
	return Scale{name: name, keys: s.Keys(), basePeriod: s.basePeriod}
}

// WithKeys returns a copy of s with new keys (renormalized).
func (s Scale) WithKeys(keys []int) Scale {
	return NewScale(s.name, keys, s.basePeriod)
}

func (s Scale) wrap(chromaticKey int) int {
	return ((chromaticKey % s.basePeriod) + s.basePeriod) % s.basePeriod
}

// HasKey reports whether chromaticKey (wrapped to the period) is in scale.
func (s Scale) HasKey(chromaticKey int) bool {
	return s.GetScaleKey(chromaticKey) != -1
}

// GetScaleKey converts a chromatic key to its index in s.keys, or -1 if absent.
func (s Scale) GetScaleKey(chromaticKey int) int {
	wrapped := s.wrap(chromaticKey)
	for i, k := range s.keys {
		if k == wrapped {
			return i
		}
	}
	return -1
}

// GetNearestScaleKey returns the closest in-scale key index to
// chromaticKey, using the given rounding mode. The index counts across
// periods (each period before or after the first adds -len(keys) or
// +len(keys)), so GetChromaticKey maps it back to a chromatic key. With
// Ceil, a chromatic key above the period's last in-scale key resolves to
// the next period's first index.
func (s Scale) GetNearestScaleKey(chromaticKey int, mode RoundMode) int {
	wrapped := s.wrap(chromaticKey)
	periodOffset := (chromaticKey - wrapped) / s.basePeriod * len(s.keys)
	if idx := s.GetScaleKey(wrapped); idx != -1 {
		return idx + periodOffset
	}

	// find surrounding keys
	lowerIdx, upperIdx := -1, -1
	for i, k := range s.keys {
		if k < wrapped {
			lowerIdx = i
		}
		if k > wrapped && upperIdx == -1 {
			upperIdx = i
		}
	}

	switch mode {
	case Floor:
		if lowerIdx == -1 {
			return -1 + periodOffset // below the period's first key
		}
		return lowerIdx + periodOffset
	case Ceil:
		if upperIdx == -1 {
			return len(s.keys) + periodOffset // above the period's last key
		}
		return upperIdx + periodOffset
	default: // Round
		if lowerIdx == -1 {
			return periodOffset
		}
		if upperIdx == -1 {
			return len(s.keys) - 1 + periodOffset
		}
		if wrapped-s.keys[lowerIdx] <= s.keys[upperIdx]-wrapped {
			return lowerIdx + periodOffset
		}
		return upperIdx + periodOffset
	}
}

// GetChromaticKey converts an in-scale key index (which may be negative
// or beyond len(keys), wrapping into further periods) back to a
// chromatic key, applying extraChromaticOffset afterwards. When
// restrictToOneOctave is true, the result is wrapped back into
// [0, basePeriod).
func (s Scale) GetChromaticKey(inScaleKey, extraChromaticOffset int, restrictToOneOctave bool) int {
	n := len(s.keys)
	if n == 0 {
		return extraChromaticOffset
	}
	period := inScaleKey / n
	idx := inScaleKey % n
	if idx < 0 {
		idx += n
		period--
	}
	chromatic := s.keys[idx] + period*s.basePeriod + extraChromaticOffset
	if restrictToOneOctave {
		chromatic = s.wrap(chromatic)
	}
	return chromatic
}

// UpScale returns the scale's keys in ascending order (its storage order).
func (s Scale) UpScale() []int { return s.Keys() }

// DownScale returns the scale's keys in descending order.
func (s Scale) DownScale() []int {
	out := s.Keys()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SeemsMinor reports whether the scale has a flat third relative to its
// base period (Aeolian, Phrygian, Locrian and similar all qualify).
func (s Scale) SeemsMinor() bool {
	third := s.basePeriod * 3 / 12 // minor third scaled to this period's size
	for _, k := range s.keys {
		if k == third {
			return true
		}
	}
	return false
}

// mask returns a bitmask (bit i set iff step i is in scale) modulo the period.
func (s Scale) mask() uint64 {
	var m uint64
	for _, k := range s.keys {
		if k < 64 {
			m |= 1 << uint(k)
		}
	}
	return m
}

// IsEquivalentTo reports whether two scales with the same base period
// cover the same set of steps, ignoring name; scales with different base
// periods are never equivalent. This allows recognizing e.g. Phrygian
// under a different name.
func (s Scale) IsEquivalentTo(other Scale) bool {
	if s.basePeriod != other.basePeriod {
		return false
	}
	return s.mask() == other.mask()
}

// DifferenceFrom returns the sum of abs(key_i - key_j) over the
// positionally-matched keys of the two scales (shorter scale's length);
// larger values mean less similar scales.
func (s Scale) DifferenceFrom(other Scale) int {
	n := len(s.keys)
	if len(other.keys) < n {
		n = len(other.keys)
	}
	diff := 0
	for i := 0; i < n; i++ {
		d := s.keys[i] - other.keys[i]
		if d < 0 {
			d = -d
		}
		diff += d
	}
	return diff
}

// scaleDTO is Scale's wire shape; Scale's fields are unexported so it
// cannot be marshaled directly (needed for KeySignatureEvent and the
// project file format, §6).
type scaleDTO struct {
	Name       string `json:"name"`
	Keys       []int  `json:"keys"`
	BasePeriod int    `json:"basePeriod"`
}

func (s Scale) MarshalJSON() ([]byte, error) {
	return json.Marshal(scaleDTO{Name: s.name, Keys: s.keys, BasePeriod: s.basePeriod})
}

func (s *Scale) UnmarshalJSON(data []byte) error {
	var dto scaleDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	if dto.Keys == nil && dto.BasePeriod == 0 {
		// the zero Scale (as marshalled above) decodes back to itself
		*s = Scale{name: dto.Name}
		return nil
	}
	*s = NewScale(dto.Name, dto.Keys, dto.BasePeriod)
	return nil
}

// Hard-coded presets, per spec §3.

// ChromaticScale returns the all-steps-included scale for the given period.
func ChromaticScale(basePeriod int) Scale {
	if basePeriod <= 0 {
		basePeriod = DefaultBasePeriod
	}
	keys := make([]int, basePeriod)
	for i := range keys {
		keys[i] = i
	}
	return NewScale("Chromatic", keys, basePeriod)
}

// NaturalMajorScale returns the Ionian mode over 12-EDO.
func NaturalMajorScale() Scale {
	return NewScale("Major", []int{0, 2, 4, 5, 7, 9, 11}, DefaultBasePeriod)
}

// NaturalMinorScale returns the Aeolian mode over 12-EDO.
func NaturalMinorScale() Scale {
	return NewScale("Minor", []int{0, 2, 3, 5, 7, 8, 10}, DefaultBasePeriod)
}
