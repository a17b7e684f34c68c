// Package core holds the value types shared by the radar: HUD geometry,
// colors and the entity feed.
package core

import (
	"encoding/json"
	"math"
)

// Point2D is a position on the HUD in pixels.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns the component-wise sum of p and o.
func (p Point2D) Add(o Point2D) Point2D {
	return Point2D{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o.
func (p Point2D) Sub(o Point2D) Point2D {
	return Point2D{X: p.X - o.X, Y: p.Y - o.Y}
}

// Len returns the distance of p from the origin.
func (p Point2D) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Box2D is an axis-aligned rectangle anchored at its top-left corner.
// Width and height are fixed once the box is built; moving the box only
// changes the corners.
type Box2D struct {
	topLeft     Point2D
	bottomRight Point2D
	width       float64
	height      float64
}

// NewBox2D builds a box of the given size at topLeft.
func NewBox2D(topLeft Point2D, width, height float64) Box2D {
	b := Box2D{width: width, height: height}
	b.SetTopLeft(topLeft)
	return b
}

// SetTopLeft moves the box, recomputing the bottom-right corner.
func (b *Box2D) SetTopLeft(p Point2D) {
	b.topLeft = p
	b.bottomRight = p.Add(Point2D{X: b.width, Y: b.height})
}

// TopLeft returns the anchor corner.
func (b Box2D) TopLeft() Point2D { return b.topLeft }

// BottomRight returns the corner derived from the anchor and the extent.
func (b Box2D) BottomRight() Point2D { return b.bottomRight }

// Width returns the horizontal extent, fixed at construction.
func (b Box2D) Width() float64 { return b.width }

// Height returns the vertical extent, fixed at construction.
func (b Box2D) Height() float64 { return b.height }

// Center returns the midpoint of the box.
func (b Box2D) Center() Point2D {
	return b.topLeft.Add(Point2D{X: b.width / 2, Y: b.height / 2})
}

// Contains reports whether p lies inside the box. The top and left edges are
// inside, the bottom and right edges are not.
func (b Box2D) Contains(p Point2D) bool {
	return p.X >= b.topLeft.X && p.X < b.bottomRight.X &&
		p.Y >= b.topLeft.Y && p.Y < b.bottomRight.Y
}

type jsonBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MarshalJSON encodes the box as its top-left corner and size.
func (b Box2D) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonBox{X: b.topLeft.X, Y: b.topLeft.Y, Width: b.width, Height: b.height})
}

// UnmarshalJSON decodes a box written by MarshalJSON.
func (b *Box2D) UnmarshalJSON(data []byte) error {
	var raw jsonBox
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = NewBox2D(Pt(raw.X, raw.Y), raw.Width, raw.Height)
	return nil
}

// Rotation is a pitch/yaw pair in degrees, as reported by the host.
type Rotation struct {
	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
}

// YawRadians returns the yaw converted to radians.
func (r Rotation) YawRadians() float64 {
	return float64(r.Yaw) * math.Pi / 180
}

// Position3D is a world position.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
