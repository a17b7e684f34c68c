// Package parser turns host command arguments into typed values. The host
// passes every argument as a string and may quote or stringify numbers as
// floats ("32.00"), so each helper accepts both forms.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/util"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// ErrInvalidArgs is returned when a command receives the wrong arguments.
var ErrInvalidArgs = errors.New("invalid arguments")

// ErrUnknownCategory is returned for category names the radar does not know.
var ErrUnknownCategory = core.ErrUnknownCategory

// Expect checks that args has exactly n entries.
func Expect(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidArgs, n, len(args))
	}
	return nil
}

// ExpectBetween checks that args has between lo and hi entries inclusive.
func ExpectBetween(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%w: expected %d to %d, got %d", ErrInvalidArgs, lo, hi, len(args))
	}
	return nil
}

// String unquotes a host string argument.
func String(s string) string {
	return util.Unquote(s)
}

// Int parses an integer that may be serialized as a whole float.
func Int(s string) (int, error) {
	v, err := parseIntFromFloat(util.Unquote(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return int(v), nil
}

// Int32 parses a block coordinate.
func Int32(s string) (int32, error) {
	v, err := parseIntFromFloat(util.Unquote(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if v < -1<<31 || v > 1<<31-1 {
		return 0, fmt.Errorf("%w: %d overflows int32", ErrInvalidArgs, v)
	}
	return int32(v), nil
}

// Bool parses true/false, 1/0 and the other forms strconv accepts.
func Bool(s string) (bool, error) {
	v, err := strconv.ParseBool(util.Unquote(s))
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a bool", ErrInvalidArgs, s)
	}
	return v, nil
}

// Category parses a category name.
func Category(s string) (core.Category, error) {
	return core.ParseCategory(util.Unquote(s))
}

// Color parses #RRGGBB or #RRGGBBAA.
func Color(s string) (core.Color, error) {
	c, err := core.ParseHex(util.Unquote(s))
	if err != nil {
		return core.Color{}, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return c, nil
}

// Block parses three consecutive arguments as block coordinates.
func Block(args []string) ([3]int32, error) {
	var out [3]int32
	if len(args) < 3 {
		return out, fmt.Errorf("%w: expected x, y, z", ErrInvalidArgs)
	}
	for i := range 3 {
		v, err := Int32(args[i])
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// Player decodes the local player JSON object.
func Player(s string) (core.LocalPlayer, error) {
	var p core.LocalPlayer
	if err := decodeJSON(s, &p); err != nil {
		return p, fmt.Errorf("%w: player: %v", ErrInvalidArgs, err)
	}
	return p, nil
}

// Entities decodes the entity JSON array. An empty argument is no entities.
func Entities(s string) ([]core.Entity, error) {
	var out []core.Entity
	if util.Unquote(s) == "" {
		return out, nil
	}
	if err := decodeJSON(s, &out); err != nil {
		return nil, fmt.Errorf("%w: entities: %v", ErrInvalidArgs, err)
	}
	return out, nil
}

// decodeJSON accepts plain JSON or the host's quoted form with doubled
// inner quotes.
func decodeJSON(s string, v any) error {
	raw := strings.TrimSpace(s)
	if json.Valid([]byte(raw)) && !strings.HasPrefix(raw, `"`) {
		return json.Unmarshal([]byte(raw), v)
	}
	return json.Unmarshal([]byte(util.Unquote(s)), v)
}

// parseIntFromFloat parses a string that may be an integer or float into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int64(f), nil
}
