// Package geometry - Pairwise overlap analysis across detected vehicles.
package geometry

// MaxPairwiseOverlap returns the largest intersection area among all
// unordered box pairs. With fewer than two boxes there is no pair and the
// result is 0.
func MaxPairwiseOverlap(boxes []Box) int {
	maxOverlap := 0
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if overlap := boxes[i].Intersection(boxes[j]); overlap > maxOverlap {
				maxOverlap = overlap
			}
		}
	}
	return maxOverlap
}

// MeanPairwiseOverlap returns the mean intersection area across the pairs
// that actually overlap. Non-overlapping pairs do not dilute the mean.
// Returns 0 when no pair overlaps.
func MeanPairwiseOverlap(boxes []Box) float64 {
	total := 0
	count := 0
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if overlap := boxes[i].Intersection(boxes[j]); overlap > 0 {
				total += overlap
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// EnclosingBox returns the smallest box covering all boxes and true, or a
// zero box and false when the slice is empty.
func EnclosingBox(boxes []Box) (Box, bool) {
	if len(boxes) == 0 {
		return Box{}, false
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out = out.Union(b)
	}
	return out, true
}
