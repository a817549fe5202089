package audio

import "testing"

func TestDownmixInterleaved(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		frames   int
		input    []float32
		want     []float32
	}{
		{
			name:     "mono",
			channels: 1,
			frames:   4,
			input:    []float32{0.1, 0.2, 0.3, 0.4},
			want:     []float32{0.1, 0.2, 0.3, 0.4},
		},
		{
			name:     "stereo",
			channels: 2,
			frames:   4,
			input:    []float32{0.0, 1.0, 0.5, 0.5, 1.0, 0.0, -0.5, 0.5},
			want:     []float32{0.5, 0.5, 0.5, 0.0},
		},
		{
			name:     "three channels",
			channels: 3,
			frames:   2,
			input:    []float32{1, 3, 5, 2, 4, 6},
			want:     []float32{3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := downmixInterleaved(tt.input, tt.channels, tt.frames)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("frame %d = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// The capture buffer is reused by the next Read, so chunks must not alias it.
func TestDownmixInterleavedCopies(t *testing.T) {
	input := []float32{0.1, 0.2}
	got := downmixInterleaved(input, 1, len(input))
	if &got[0] == &input[0] {
		t.Fatal("expected mono result to be copied into a new slice")
	}
}
