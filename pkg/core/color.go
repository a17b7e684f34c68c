package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidHexColor is returned when a color string is not #RRGGBB or #RRGGBBAA.
var ErrInvalidHexColor = errors.New("invalid hex color")

// Color is an 8-bit RGBA color.
type Color struct {
	r, g, b, a uint8
}

// NewColor builds a color from integer components. Components outside
// 0..255 wrap modulo 256, so -1 becomes 255 and 256 becomes 0.
func NewColor(r, g, b, a int) Color {
	return Color{r: wrap8(r), g: wrap8(g), b: wrap8(b), a: wrap8(a)}
}

// RGB builds an opaque color.
func RGB(r, g, b int) Color {
	return NewColor(r, g, b, 255)
}

func wrap8(v int) uint8 {
	return uint8(((v % 256) + 256) % 256)
}

// Palette
var (
	White   = RGB(255, 255, 255)
	Black   = RGB(0, 0, 0)
	Gray    = RGB(128, 128, 128)
	Red     = RGB(255, 0, 0)
	Green   = RGB(0, 255, 0)
	Blue    = RGB(0, 0, 255)
	Cyan    = RGB(0, 255, 255)
	Magenta = RGB(255, 0, 255)
	Yellow  = RGB(255, 255, 0)
	Gold    = RGB(255, 170, 0)
	Orange  = RGB(255, 128, 0)
	Purple  = RGB(128, 0, 128)
)

// Red returns the raw red component. Green, Blue and Alpha work the same way.
func (c Color) Red() uint8   { return c.r }
func (c Color) Green() uint8 { return c.g }
func (c Color) Blue() uint8  { return c.b }
func (c Color) Alpha() uint8 { return c.a }

// R returns the red component normalized to [0,1].
func (c Color) R() float32 { return float32(c.r) / 255 }

// G returns the green component normalized to [0,1].
func (c Color) G() float32 { return float32(c.g) / 255 }

// B returns the blue component normalized to [0,1].
func (c Color) B() float32 { return float32(c.b) / 255 }

// A returns the alpha component normalized to [0,1].
func (c Color) A() float32 { return float32(c.a) / 255 }

// Floats returns the normalized components as {r, g, b, a}.
func (c Color) Floats() [4]float32 {
	return [4]float32{c.R(), c.G(), c.B(), c.A()}
}

// WithAlpha returns a copy of c with a replaced.
func (c Color) WithAlpha(a int) Color {
	c.a = wrap8(a)
	return c
}

// Hex formats the color as #RRGGBBAA.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.r, c.g, c.b, c.a)
}

func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses #RRGGBB (opaque) or #RRGGBBAA. The leading # is optional.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHexColor, s)
	}
	if len(s) == 6 {
		s += "FF"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHexColor, s)
	}
	return NewColor(int(v>>24&0xFF), int(v>>16&0xFF), int(v>>8&0xFF), int(v&0xFF)), nil
}

// MarshalText encodes the color as its hex form.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex color.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
