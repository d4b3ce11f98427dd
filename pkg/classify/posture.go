package classify

import "strings"

// Posture is the sleeping position derived from a prediction.
type Posture string

// Postures.
const (
	Supine  Posture = "Supine"
	Prone   Posture = "Prone"
	Unknown Posture = "Unknown"
)

// MinPostureConfidence is the lowest top probability accepted as a posture.
const MinPostureConfidence = 0.6

// PostureResult is a posture with its confidence in 0..1.
type PostureResult struct {
	Posture    Posture `json:"posture"`
	Confidence float64 `json:"confidence"`
}

var postureLabels = map[string]Posture{
	"terlentang": Supine,
	"supine":     Supine,
	"tengkurap":  Prone,
	"prone":      Prone,
	"unknown":    Unknown,
}

// ParsePosture maps a class label to a posture. Unrecognized labels map
// to Unknown.
func ParsePosture(label string) Posture {
	if p, ok := postureLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return p
	}
	return Unknown
}

// MapPosture picks the posture with the highest probability. A top
// posture of Unknown, or one below MinPostureConfidence, yields Unknown
// with zero confidence.
func MapPosture(scores []Score) PostureResult {
	if len(scores) == 0 {
		return PostureResult{Posture: Unknown}
	}

	best := map[Posture]float64{}
	for _, s := range scores {
		p := ParsePosture(s.Label)
		if s.Probability > best[p] {
			best[p] = s.Probability
		}
	}

	// Ties resolve in this order.
	top := Supine
	for _, p := range []Posture{Prone, Unknown} {
		if best[p] > best[top] {
			top = p
		}
	}

	if top == Unknown || best[top] < MinPostureConfidence {
		return PostureResult{Posture: Unknown}
	}
	return PostureResult{Posture: top, Confidence: min(max(best[top], 0), 1)}
}
