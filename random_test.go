package arix

import "testing"

// constSource always returns the same sample.
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

// seqSource cycles through a fixed list of samples.
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestNewRandomSourceDeterministic(t *testing.T) {
	a := NewRandomSource(42)
	b := NewRandomSource(42)
	for i := 0; i < 100; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("sample %d: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("sample %d = %v, want [0, 1)", i, va)
		}
	}
}

func TestUniform(t *testing.T) {
	tests := []struct {
		name   string
		sample float64
		want   float64
	}{
		{"min", 0, -0.15},
		{"mid", 0.5, 0},
		{"quarter", 0.25, -0.075},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Uniform(constSource(tt.sample), -0.15, 0.15)
			if !approxEqual(got, tt.want, 1e-12) {
				t.Errorf("Uniform = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRangeRandomFrom(t *testing.T) {
	r := Range{Min: 0.8, Max: 1.4}
	got := r.RandomFrom(constSource(0.5))
	if !approxEqual(got, 1.1, 1e-12) {
		t.Errorf("RandomFrom = %v, want 1.1", got)
	}
}

func TestRangeRandomWithinBounds(t *testing.T) {
	r := Range{Min: 2, Max: 3}
	for i := 0; i < 1000; i++ {
		v := r.Random()
		if v < 2 || v >= 3 {
			t.Fatalf("Random() = %v, outside [2, 3)", v)
		}
	}
}
