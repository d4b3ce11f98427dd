package classify

import (
	"fmt"
	"math"
)

// Score is the probability of one class.
type Score struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Prediction is the result of classifying one frame.
type Prediction struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Scores     []Score `json:"scores"`
}

// String renders the overlay text, e.g. "Terlentang (92.4%)".
func (p Prediction) String() string {
	return fmt.Sprintf("%s (%.1f%%)", p.Label, p.Confidence*100)
}

// NewPrediction builds a prediction from raw network output. Outputs that
// are not already a probability distribution are passed through softmax.
func NewPrediction(raw []float64, labels []string) (Prediction, error) {
	if len(raw) == 0 {
		return Prediction{}, ErrNoOutput
	}

	probs := raw
	if !isDistribution(raw) {
		probs = Softmax(raw)
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	scores := make([]Score, len(probs))
	for i, p := range probs {
		scores[i] = Score{Label: labelFor(labels, i), Probability: p}
	}

	return Prediction{
		ClassID:    best,
		Label:      labelFor(labels, best),
		Confidence: probs[best],
		Scores:     scores,
	}, nil
}

// Softmax returns the normalized exponentials of xs.
func Softmax(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	hi := xs[0]
	for _, x := range xs[1:] {
		if x > hi {
			hi = x
		}
	}

	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		out[i] = math.Exp(x - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func isDistribution(xs []float64) bool {
	var sum float64
	for _, x := range xs {
		if x < 0 || x > 1 || math.IsNaN(x) {
			return false
		}
		sum += x
	}
	return math.Abs(sum-1) < 1e-3
}
