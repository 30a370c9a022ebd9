// Package localize - Vehicle localization strategies for the collision
// detection pipeline.
//
// Two interchangeable strategies are provided: an ONNX model-based
// localizer and a color-mask fallback that needs no model file. The
// Fallback wrapper selects between them once at construction and degrades
// gracefully when the model path fails at runtime.
package localize

import (
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/geometry"
)

// Detection is a single localized vehicle.
type Detection struct {
	// Box is the bounding box in frame pixel coordinates.
	Box geometry.Box
	// Confidence is the localization confidence in [0,1].
	Confidence float32
	// Class is the detected vehicle class ("car", "truck", ...). The color
	// strategy reports the generic "vehicle".
	Class string
}

// Center returns the center point of the detection's bounding box.
func (d Detection) Center() (int, int) {
	return d.Box.Center()
}

// Localizer is the strategy interface for vehicle localization.
type Localizer interface {
	// Locate returns the vehicles found in the frame. An empty slice is a
	// valid, non-exceptional result.
	Locate(frame gocv.Mat) ([]Detection, error)
	// Name identifies the strategy for logging.
	Name() string
	// Close releases any native resources held by the strategy.
	Close() error
}

// Boxes extracts the bounding boxes from a detection list.
func Boxes(detections []Detection) []geometry.Box {
	boxes := make([]geometry.Box, len(detections))
	for i, d := range detections {
		boxes[i] = d.Box
	}
	return boxes
}
