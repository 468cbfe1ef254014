package pipeline

import "math"

// DefaultSharpness is the temperature multiplier applied before exponentiation.
// The original scoring templates return values in [0,1], which plain softmax
// flattens into near-uniform distributions; multiplying by 10 keeps the
// dominant category clearly dominant after normalization.
const DefaultSharpness = 10.0

// Softmax normalizes raw category scores into a probability distribution using
// the default sharpness.
func Softmax(scores map[string]float64) map[string]float64 {
	return SoftmaxSharpened(scores, DefaultSharpness)
}

// SoftmaxSharpened computes value_i = exp(k*v_i) / sum_j exp(k*v_j) over the
// input map. The output has exactly the input's key set, every value is in
// (0,1), and the values sum to 1. An empty input yields an empty map.
func SoftmaxSharpened(scores map[string]float64, k float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	// Shift by the max before exponentiating so large raw scores cannot
	// overflow. The shift cancels in the ratio.
	max := math.Inf(-1)
	for _, v := range scores {
		if v > max {
			max = v
		}
	}

	sum := 0.0
	for name, v := range scores {
		e := math.Exp(k * (v - max))
		out[name] = e
		sum += e
	}
	for name := range out {
		out[name] /= sum
	}
	return out
}

// Dominant returns the category with the highest score and its value.
// It returns ("", 0) for an empty distribution.
func Dominant(dist map[string]float64) (string, float64) {
	best := ""
	bestScore := math.Inf(-1)
	for name, v := range dist {
		if v > bestScore || (v == bestScore && name < best) {
			best, bestScore = name, v
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}
