// Package severity - Factor scores and their weighted fusion.
package severity

import (
	"github.com/chewxy/math32"
)

// Factors holds the six independent severity signals, each in [0,100].
type Factors struct {
	Overlap      float32 `json:"overlap"`
	VehicleCount float32 `json:"vehicle_count"`
	Motion       float32 `json:"motion"`
	Debris       float32 `json:"debris"`
	SpeedChange  float32 `json:"speed_change"`
	Angle        float32 `json:"angle"`
}

// Weights are the fusion weights for the six factors. They must sum to 1.
type Weights struct {
	Overlap      float32
	VehicleCount float32
	Motion       float32
	Debris       float32
	SpeedChange  float32
	Angle        float32
}

// DefaultWeights returns the stock fusion weights.
func DefaultWeights() Weights {
	return Weights{
		Overlap:      0.25,
		VehicleCount: 0.20,
		Motion:       0.20,
		Debris:       0.15,
		SpeedChange:  0.10,
		Angle:        0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float32 {
	return w.Overlap + w.VehicleCount + w.Motion + w.Debris + w.SpeedChange + w.Angle
}

// values returns the factor scores in declaration order.
func (f Factors) values() [6]float32 {
	return [6]float32{f.Overlap, f.VehicleCount, f.Motion, f.Debris, f.SpeedChange, f.Angle}
}

// clamp bounds every factor to [0,100].
func (f Factors) clamp() Factors {
	f.Overlap = clampScore(f.Overlap)
	f.VehicleCount = clampScore(f.VehicleCount)
	f.Motion = clampScore(f.Motion)
	f.Debris = clampScore(f.Debris)
	f.SpeedChange = clampScore(f.SpeedChange)
	f.Angle = clampScore(f.Angle)
	return f
}

func clampScore(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Weighted returns the convex combination of the factors under w. With
// weights summing to 1 the result stays in [0,100].
func (f Factors) Weighted(w Weights) float64 {
	sum := f.Overlap*w.Overlap +
		f.VehicleCount*w.VehicleCount +
		f.Motion*w.Motion +
		f.Debris*w.Debris +
		f.SpeedChange*w.SpeedChange +
		f.Angle*w.Angle
	return float64(sum)
}

// stddev returns the population standard deviation of the factor scores.
func (f Factors) stddev() float32 {
	vals := f.values()
	var mean float32
	for _, v := range vals {
		mean += v
	}
	mean /= float32(len(vals))

	var variance float32
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float32(len(vals))
	return math32.Sqrt(variance)
}
