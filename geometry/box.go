// Package geometry - Bounding box math for vehicle overlap analysis.
package geometry

import "image"

// Box is an axis-aligned bounding box in pixel coordinates.
// X2,Y2 are exclusive (like image.Rectangle).
type Box struct {
	X1, Y1, X2, Y2 int
}

// FromRect converts an image.Rectangle into a Box.
func FromRect(r image.Rectangle) Box {
	r = r.Canon()
	return Box{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// ToRect converts the box to an image.Rectangle.
func (b Box) ToRect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Area returns the pixel area of the box. Degenerate boxes report 0.
func (b Box) Area() int {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Center returns the integer center point of the box.
func (b Box) Center() (int, int) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Intersection returns the pixel area of the overlap between two boxes.
//
// The intersection rectangle spans the maximum of the top-left corners to
// the minimum of the bottom-right corners; when either side length is not
// positive the boxes do not overlap and the area is 0.
func (b Box) Intersection(o Box) int {
	w := min(b.X2, o.X2) - max(b.X1, o.X1)
	h := min(b.Y2, o.Y2) - max(b.Y1, o.Y1)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the Intersection over Union between two boxes in [0,1].
func (b Box) IoU(o Box) float32 {
	inter := b.Intersection(o)
	if inter == 0 {
		return 0
	}
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float32(inter) / float32(union)
}

// Union returns the smallest box enclosing both boxes.
func (b Box) Union(o Box) Box {
	return Box{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Pad grows the box by px on every side.
func (b Box) Pad(px int) Box {
	return Box{X1: b.X1 - px, Y1: b.Y1 - px, X2: b.X2 + px, Y2: b.Y2 + px}
}

// Clamp restricts the box to a w×h frame.
func (b Box) Clamp(w, h int) Box {
	return Box{
		X1: max(0, b.X1),
		Y1: max(0, b.Y1),
		X2: min(w, b.X2),
		Y2: min(h, b.Y2),
	}
}
