package motion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func newFrame(t *testing.T) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(40, 40, 40, 0), 240, 320, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func TestEstimateMissingFrames(t *testing.T) {
	e := NewEstimator()
	empty := gocv.NewMat()
	defer empty.Close()

	frame := newFrame(t)
	assert.Zero(t, e.Estimate(empty, frame))
	assert.Zero(t, e.Estimate(frame, empty))
	assert.Zero(t, e.Estimate(empty, empty))
}

func TestEstimateMismatchedSizes(t *testing.T) {
	e := NewEstimator()
	small := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer small.Close()

	assert.Zero(t, e.Estimate(small, newFrame(t)))
}

func TestEstimateStaticScene(t *testing.T) {
	e := NewEstimator()
	a := newFrame(t)
	b := newFrame(t)

	intensity := e.Estimate(a, b)
	assert.GreaterOrEqual(t, intensity, 0.0)
	assert.InDelta(t, 0, intensity, 0.5, "identical frames carry no motion")
}

func TestEstimateMovingObject(t *testing.T) {
	e := NewEstimator()
	a := newFrame(t)
	b := newFrame(t)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.Rectangle(&a, image.Rect(40, 80, 120, 160), white, -1)
	gocv.Rectangle(&b, image.Rect(70, 80, 150, 160), white, -1)

	moving := e.Estimate(a, b)
	static := e.Estimate(a, a)
	assert.Greater(t, moving, static, "a displaced object reads as more motion than none")
}

func TestFrameDifferenceFallbackRange(t *testing.T) {
	e := NewEstimator()

	a := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 64, 64, gocv.MatTypeCV8U)
	defer a.Close()
	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 0, 0, 0), 64, 64, gocv.MatTypeCV8U)
	defer b.Close()

	// Mean absolute difference 100, scaled into flow range.
	assert.InDelta(t, 10, e.frameDifference(a, b), 1e-6)
}
