package engagement

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadVector marks probability vectors that violate the model contract:
// wrong length, negative entries, or a sum that is not 1. The model adapter
// should never produce one; this is a guard against a mis-exported model.
var ErrBadVector = errors.New("malformed probability vector")

// Softmax output in float32 drifts from an exact sum of 1.
const sumTolerance = 1e-3

// Result is a single classification outcome. Score blends the probability
// mass of every class with its engagement weight, so an uncertain prediction
// lands between the weights of the classes it hesitates over.
type Result struct {
	Class         Class
	Confidence    float64
	Score         float64
	Probabilities map[string]float64
}

// Classify maps a model probability vector to an engagement result. Ties on
// the maximum probability resolve to the lowest ordinal, so identical input
// always yields the identical result.
func Classify(probs []float32) (*Result, error) {
	if len(probs) != NumClasses {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrBadVector, NumClasses, len(probs))
	}

	sum := 0.0
	for i, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("%w: negative probability %g at index %d", ErrBadVector, p, i)
		}
		sum += float64(p)
	}
	if math.Abs(sum-1) > sumTolerance {
		return nil, fmt.Errorf("%w: probabilities sum to %g, expected 1", ErrBadVector, sum)
	}

	maxIdx := 0
	score := 0.0
	probabilities := make(map[string]float64, NumClasses)
	for i, p := range probs {
		if p > probs[maxIdx] {
			maxIdx = i
		}
		score += float64(p) * Classes[i].Weight
		probabilities[Classes[i].Label] = float64(p)
	}

	return &Result{
		Class:         Classes[maxIdx],
		Confidence:    float64(probs[maxIdx]),
		Score:         score,
		Probabilities: probabilities,
	}, nil
}
