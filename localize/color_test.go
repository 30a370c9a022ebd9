package localize

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// grayFrame returns a frame filled with a mid-gray that none of the
// vehicle color masks match, so only drawn shapes produce detections.
func grayFrame(t *testing.T) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(128, 128, 128, 0), 720, 1280, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func drawVehicle(frame *gocv.Mat, rect image.Rectangle, c color.RGBA) {
	gocv.Rectangle(frame, rect, c, -1)
}

func TestColorLocalizerEmptyFrame(t *testing.T) {
	loc := NewColorLocalizer()
	empty := gocv.NewMat()
	defer empty.Close()

	detections, err := loc.Locate(empty)
	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestColorLocalizerBlankFrame(t *testing.T) {
	loc := NewColorLocalizer()
	detections, err := loc.Locate(grayFrame(t))
	require.NoError(t, err)
	assert.Empty(t, detections, "a featureless frame has no vehicles")
}

func TestColorLocalizerFindsColoredBlobs(t *testing.T) {
	frame := grayFrame(t)
	drawVehicle(&frame, image.Rect(100, 100, 200, 180), color.RGBA{R: 255, A: 255})
	drawVehicle(&frame, image.Rect(500, 300, 620, 380), color.RGBA{B: 255, A: 255})

	loc := NewColorLocalizer()
	detections, err := loc.Locate(frame)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	for _, d := range detections {
		assert.Equal(t, "vehicle", d.Class)
		assert.Greater(t, d.Confidence, float32(0))
		assert.LessOrEqual(t, d.Confidence, float32(1))
		assert.Greater(t, d.Box.Area(), 0)
	}
}

func TestColorLocalizerIgnoresTinyBlobs(t *testing.T) {
	frame := grayFrame(t)
	// Below the 500px area floor.
	drawVehicle(&frame, image.Rect(50, 50, 65, 65), color.RGBA{R: 255, A: 255})

	loc := NewColorLocalizer()
	detections, err := loc.Locate(frame)
	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestColorLocalizerCapsDetections(t *testing.T) {
	frame := grayFrame(t)
	for i := 0; i < 6; i++ {
		x := 50 + i*200
		drawVehicle(&frame, image.Rect(x, 100, x+100, 180), color.RGBA{R: 255, A: 255})
	}

	loc := NewColorLocalizer()
	detections, err := loc.Locate(frame)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(detections), 4, "detection count is capped")
	assert.NotEmpty(t, detections)
}

func TestColorLocalizerConfidenceScalesWithArea(t *testing.T) {
	frame := grayFrame(t)
	drawVehicle(&frame, image.Rect(100, 100, 140, 130), color.RGBA{R: 255, A: 255})  // ~1200px
	drawVehicle(&frame, image.Rect(500, 100, 650, 240), color.RGBA{R: 255, A: 255})  // ~21000px

	loc := NewColorLocalizer()
	detections, err := loc.Locate(frame)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	// Sorted largest first by the cap logic.
	assert.Greater(t, detections[0].Confidence, detections[1].Confidence)
	assert.Equal(t, float32(1), detections[0].Confidence, "area beyond 10000px saturates confidence")
}
