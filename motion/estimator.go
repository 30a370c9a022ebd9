// Package motion - Scalar motion intensity estimation between frames.
//
// The estimator reduces dense optical flow between two consecutive frames
// to a single mean flow magnitude. When the flow computation cannot
// produce a result it degrades to mean absolute pixel difference scaled
// into the same numeric range.
package motion

import "gocv.io/x/gocv"

// Farnebäck parameters, tuned for traffic footage at demo resolutions.
const (
	flowPyrScale   = 0.5
	flowLevels     = 3
	flowWinSize    = 15
	flowIterations = 3
	flowPolyN      = 5
	flowPolySigma  = 1.2
	flowFlags      = 0

	// diffScale maps mean absolute pixel difference into the optical-flow
	// magnitude range so both paths feed the same downstream thresholds.
	diffScale = 10
)

// Estimator computes motion intensity between consecutive frames. It is
// stateless and reusable across a stream.
type Estimator struct{}

// NewEstimator constructs an Estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns a non-negative motion intensity between two frames.
// With either frame missing the result is 0.
func (e *Estimator) Estimate(prev, curr gocv.Mat) float64 {
	if prev.Empty() || curr.Empty() {
		return 0
	}
	if prev.Rows() != curr.Rows() || prev.Cols() != curr.Cols() {
		return 0
	}

	grayPrev := gocv.NewMat()
	defer grayPrev.Close()
	grayCurr := gocv.NewMat()
	defer grayCurr.Close()
	gocv.CvtColor(prev, &grayPrev, gocv.ColorBGRToGray)
	gocv.CvtColor(curr, &grayCurr, gocv.ColorBGRToGray)

	if intensity, ok := e.opticalFlow(grayPrev, grayCurr); ok {
		return intensity
	}
	return e.frameDifference(grayPrev, grayCurr)
}

// opticalFlow computes dense Farnebäck flow and reduces it to the mean
// vector magnitude. ok is false when the flow field was not produced.
func (e *Estimator) opticalFlow(prev, curr gocv.Mat) (float64, bool) {
	flow := gocv.NewMat()
	defer flow.Close()
	gocv.CalcOpticalFlowFarneback(prev, curr, &flow,
		flowPyrScale, flowLevels, flowWinSize, flowIterations,
		flowPolyN, flowPolySigma, flowFlags)
	if flow.Empty() {
		return 0, false
	}

	components := gocv.Split(flow)
	if len(components) != 2 {
		for _, c := range components {
			c.Close()
		}
		return 0, false
	}
	defer components[0].Close()
	defer components[1].Close()

	magnitude := gocv.NewMat()
	defer magnitude.Close()
	angle := gocv.NewMat()
	defer angle.Close()
	gocv.CartToPolar(components[0], components[1], &magnitude, &angle, false)
	if magnitude.Empty() {
		return 0, false
	}
	return magnitude.Mean().Val1, true
}

// frameDifference is the degraded path: mean absolute grayscale
// difference scaled down to the flow magnitude range.
func (e *Estimator) frameDifference(prev, curr gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(prev, curr, &diff)
	if diff.Empty() {
		return 0
	}
	return diff.Mean().Val1 / diffScale
}
