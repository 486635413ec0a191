package ollama

import "testing"

func TestCheckDim(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}

	got, err := checkDim(vec, 3)
	if err != nil {
		t.Fatalf("checkDim returned error for matching length: %v", err)
	}
	if &got[0] != &vec[0] {
		t.Fatal("matching vector should pass through without copying")
	}

	tests := []struct {
		name string
		vec  []float32
		dim  int
	}{
		{name: "too long", vec: make([]float32, 1024), dim: 768},
		{name: "too short", vec: []float32{0.1, 0.2}, dim: 768},
		{name: "empty", vec: nil, dim: 768},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := checkDim(tc.vec, tc.dim); err == nil {
				t.Fatalf("checkDim(len %d, dim %d) accepted a mismatched vector", len(tc.vec), tc.dim)
			}
		})
	}
}
