package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownCategory is returned when a category name cannot be resolved.
var ErrUnknownCategory = errors.New("unknown category")

// Category classifies something the radar can draw.
type Category uint8

const (
	CategoryPlayer Category = iota
	CategoryHostileMob
	CategoryPeacefulMob
	CategoryItem
	CategoryWaypoint
)

// Categories lists every category in draw order.
var Categories = []Category{
	CategoryPlayer,
	CategoryHostileMob,
	CategoryPeacefulMob,
	CategoryItem,
	CategoryWaypoint,
}

var categoryNames = map[Category]string{
	CategoryPlayer:      "player",
	CategoryHostileMob:  "hostile",
	CategoryPeacefulMob: "peaceful",
	CategoryItem:        "item",
	CategoryWaypoint:    "waypoint",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// ParseCategory resolves a category from its name. A few aliases used by
// host scripts are accepted ("players", "mob", "item_drop", ...).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "players":
		return CategoryPlayer, nil
	case "hostile", "hostilemob", "hostile_mob", "mob", "monster":
		return CategoryHostileMob, nil
	case "peaceful", "peacefulmob", "peaceful_mob", "animal", "passive":
		return CategoryPeacefulMob, nil
	case "item", "items", "item_drop", "drop":
		return CategoryItem, nil
	case "waypoint", "waypoints":
		return CategoryWaypoint, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// MarshalText encodes the category name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Entity is a live thing in the world reported by the host.
type Entity struct {
	ID       int64      `json:"id"`
	Category Category   `json:"category"`
	Name     string     `json:"name,omitempty"`
	Position Position3D `json:"position"`
	Rotation Rotation   `json:"rotation"`
}

// LocalPlayer is the player the radar is centered on.
type LocalPlayer struct {
	Position  Position3D `json:"position"`
	Rotation  Rotation   `json:"rotation"`
	EyeHeight float64    `json:"eyeHeight"`
}

// WorldSnapshot is the world state captured on a logic tick.
type WorldSnapshot struct {
	Tick      uint64      `json:"tick"`
	Player    LocalPlayer `json:"player"`
	Entities  []Entity    `json:"entities"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// DrawInstruction is one radar point to put on the HUD.
type DrawInstruction struct {
	Category Category `json:"category"`
	Position Point2D  `json:"position"`
	Color    Color    `json:"color"`
	Size     int      `json:"size"`
}
