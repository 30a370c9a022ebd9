// Package localize - Color-mask vehicle localization.
//
// This is the model-free fallback strategy: it approximates vehicles by
// segmenting common car paint colors in HSV space and extracting
// connected components. Accuracy is demo-grade; the point is to keep the
// pipeline producing plausible boxes when no ONNX model is available.
package localize

import (
	"sort"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/geometry"
)

const (
	// minBlobArea and maxBlobArea bound the contour pixel area accepted as
	// a vehicle candidate.
	minBlobArea = 500
	maxBlobArea = 50000
	// maxColorDetections caps the number of boxes the strategy reports.
	maxColorDetections = 4
	// confidenceAreaScale normalizes blob area into a [0,1] confidence.
	confidenceAreaScale = 10000
)

// hueRange is an inclusive HSV range used to mask one paint color family.
type hueRange struct {
	lower gocv.Scalar
	upper gocv.Scalar
}

// vehicleColorRanges covers red, blue, green, white and black paint.
var vehicleColorRanges = []hueRange{
	{gocv.NewScalar(0, 50, 50, 0), gocv.NewScalar(10, 255, 255, 0)},    // red
	{gocv.NewScalar(90, 50, 50, 0), gocv.NewScalar(130, 255, 255, 0)},  // blue
	{gocv.NewScalar(40, 50, 50, 0), gocv.NewScalar(80, 255, 255, 0)},   // green
	{gocv.NewScalar(0, 0, 200, 0), gocv.NewScalar(180, 30, 255, 0)},    // white
	{gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(180, 255, 50, 0)},      // black
}

// ColorLocalizer finds vehicle-shaped blobs by HSV color masking.
//
// The strategy is stateless per frame and safe to reuse across a stream.
type ColorLocalizer struct{}

// NewColorLocalizer constructs the color-mask strategy.
func NewColorLocalizer() *ColorLocalizer {
	return &ColorLocalizer{}
}

// Name implements Localizer.
func (c *ColorLocalizer) Name() string { return "color" }

// Close implements Localizer. The strategy holds no native state.
func (c *ColorLocalizer) Close() error { return nil }

// Locate masks the frame with the vehicle color ranges, extracts external
// contours and returns up to maxColorDetections area-filtered boxes.
// Confidence is min(area/10000, 1).
func (c *ColorLocalizer) Locate(frame gocv.Mat) ([]Detection, error) {
	if frame.Empty() {
		return nil, nil
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	combined := gocv.NewMatWithSize(frame.Rows(), frame.Cols(), gocv.MatTypeCV8U)
	defer combined.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	for _, r := range vehicleColorRanges {
		gocv.InRangeWithScalar(hsv, r.lower, r.upper, &mask)
		gocv.BitwiseOr(combined, mask, &combined)
	}

	contours := gocv.FindContours(combined, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var detections []Detection
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area <= minBlobArea || area >= maxBlobArea {
			continue
		}
		rect := gocv.BoundingRect(contour)
		confidence := float32(area / confidenceAreaScale)
		if confidence > 1 {
			confidence = 1
		}
		detections = append(detections, Detection{
			Box:        geometry.FromRect(rect),
			Confidence: confidence,
			Class:      "vehicle",
		})
	}

	// Keep the largest blobs when over the cap.
	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Box.Area() > detections[j].Box.Area()
	})
	if len(detections) > maxColorDetections {
		detections = detections[:maxColorDetections]
	}
	return detections, nil
}
