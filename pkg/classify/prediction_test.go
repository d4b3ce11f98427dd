package classify

import (
	"errors"
	"math"
	"testing"
)

func TestNewPrediction(t *testing.T) {
	labels := []string{"Terlentang", "Tengkurap", "Unknown"}

	tests := []struct {
		name      string
		raw       []float64
		labels    []string
		wantID    int
		wantLabel string
		wantConf  float64
	}{
		{
			name:      "probabilities",
			raw:       []float64{0.1, 0.7, 0.2},
			labels:    labels,
			wantID:    1,
			wantLabel: "Tengkurap",
			wantConf:  0.7,
		},
		{
			name:      "logits get softmax",
			raw:       []float64{2, 0, 0},
			labels:    labels,
			wantID:    0,
			wantLabel: "Terlentang",
			wantConf:  math.Exp(2) / (math.Exp(2) + 2),
		},
		{
			name:      "labels shorter than output",
			raw:       []float64{0.1, 0.1, 0.1, 0.7},
			labels:    labels,
			wantID:    3,
			wantLabel: "Class 3",
			wantConf:  0.7,
		},
		{
			name:      "no labels",
			raw:       []float64{0.9, 0.1},
			wantID:    0,
			wantLabel: "Class 0",
			wantConf:  0.9,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPrediction(tc.raw, tc.labels)
			if err != nil {
				t.Fatalf("NewPrediction: %v", err)
			}
			if p.ClassID != tc.wantID {
				t.Errorf("ClassID = %d, want %d", p.ClassID, tc.wantID)
			}
			if p.Label != tc.wantLabel {
				t.Errorf("Label = %q, want %q", p.Label, tc.wantLabel)
			}
			if math.Abs(p.Confidence-tc.wantConf) > 1e-9 {
				t.Errorf("Confidence = %f, want %f", p.Confidence, tc.wantConf)
			}
			if len(p.Scores) != len(tc.raw) {
				t.Errorf("len(Scores) = %d, want %d", len(p.Scores), len(tc.raw))
			}
		})
	}
}

func TestNewPrediction_Empty(t *testing.T) {
	if _, err := NewPrediction(nil, nil); !errors.Is(err, ErrNoOutput) {
		t.Errorf("err = %v, want ErrNoOutput", err)
	}
}

func TestSoftmax(t *testing.T) {
	out := Softmax([]float64{1000, 1000})
	if math.Abs(out[0]-0.5) > 1e-9 || math.Abs(out[1]-0.5) > 1e-9 {
		t.Errorf("Softmax large equal inputs = %v", out)
	}
	if Softmax(nil) != nil {
		t.Error("Softmax(nil) should be nil")
	}
}

func TestPrediction_String(t *testing.T) {
	p := Prediction{Label: "Terlentang", Confidence: 0.9237}
	if got, want := p.String(), "Terlentang (92.4%)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
