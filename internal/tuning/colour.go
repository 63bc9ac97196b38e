// Package tuning holds the immutable tuning/scale model: Temperament,
// Scale, Chord, KeyboardMapping, and the shared Colour type used to tag
// tracks, clips, and annotations.
package tuning

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Colour is a canonical hex colour ("#rrggbb"), used by tracks, clips,
// and annotation events. The zero value is an unset colour.
type Colour struct {
	hex string
}

// ParseColour validates and canonicalizes a hex colour string.
func ParseColour(hex string) (Colour, error) {
	if hex == "" {
		return Colour{}, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Colour{}, fmt.Errorf("tuning: invalid colour %q: %w", hex, err)
	}
	return Colour{hex: c.Hex()}, nil
}

// MustColour is ParseColour but panics on error; for compile-time constants.
func MustColour(hex string) Colour {
	c, err := ParseColour(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero reports whether the colour is unset.
func (c Colour) IsZero() bool { return c.hex == "" }

// Hex returns the canonical "#rrggbb" form, or "" if unset.
func (c Colour) Hex() string { return c.hex }

// String implements fmt.Stringer.
func (c Colour) String() string { return c.hex }

// MarshalJSON implements json.Marshaler.
func (c Colour) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.hex + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Colour) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseColour(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Brightness returns perceived brightness in [0,1], used by UI layers
// (out of scope here) to pick readable foreground text.
func (c Colour) Brightness() float64 {
	if c.hex == "" {
		return 0
	}
	col, err := colorful.Hex(c.hex)
	if err != nil {
		return 0
	}
	_, _, l := col.Hsl()
	return l
}
