package classify

import "testing"

func TestMapPosture(t *testing.T) {
	tests := []struct {
		name     string
		scores   []Score
		want     Posture
		wantConf float64
	}{
		{
			name:   "empty",
			scores: nil,
			want:   Unknown,
		},
		{
			name: "confident supine",
			scores: []Score{
				{"Terlentang", 0.9}, {"Tengkurap", 0.05}, {"Unknown", 0.05},
			},
			want:     Supine,
			wantConf: 0.9,
		},
		{
			name: "confident prone with spacing and case",
			scores: []Score{
				{" TENGKURAP ", 0.75}, {"terlentang", 0.25},
			},
			want:     Prone,
			wantConf: 0.75,
		},
		{
			name: "below threshold",
			scores: []Score{
				{"Terlentang", 0.55}, {"Tengkurap", 0.45},
			},
			want: Unknown,
		},
		{
			name: "exactly at threshold",
			scores: []Score{
				{"Terlentang", 0.6}, {"Tengkurap", 0.4},
			},
			want:     Supine,
			wantConf: 0.6,
		},
		{
			name: "unknown wins",
			scores: []Score{
				{"Unknown", 0.8}, {"Terlentang", 0.2},
			},
			want: Unknown,
		},
		{
			name: "unrecognized labels count as unknown",
			scores: []Score{
				{"cat", 0.95}, {"Terlentang", 0.05},
			},
			want: Unknown,
		},
		{
			name: "max per posture",
			scores: []Score{
				{"Tengkurap", 0.3}, {"prone", 0.65}, {"Terlentang", 0.05},
			},
			want:     Prone,
			wantConf: 0.65,
		},
		{
			name: "clamped",
			scores: []Score{
				{"Terlentang", 1.4},
			},
			want:     Supine,
			wantConf: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapPosture(tc.scores)
			if got.Posture != tc.want {
				t.Errorf("Posture = %s, want %s", got.Posture, tc.want)
			}
			if got.Confidence != tc.wantConf {
				t.Errorf("Confidence = %f, want %f", got.Confidence, tc.wantConf)
			}
		})
	}
}
