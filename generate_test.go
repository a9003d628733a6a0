package arix

import (
	"math"
	"testing"
)

func TestGenerateEmpty(t *testing.T) {
	for _, n := range []int{0, -5} {
		if got := Generate(n, KindStructural, 0, constSource(0.5)); got != nil {
			t.Errorf("Generate(%d) = %d poses, want nil", n, len(got))
		}
	}
}

func TestGenerateCount(t *testing.T) {
	got := Generate(150, KindDecorative, 123, NewRandomSource(1))
	if len(got) != 150 {
		t.Errorf("len = %d, want 150", len(got))
	}
}

func TestGenerateInvariants(t *testing.T) {
	gp := DefaultGeneratorParams()
	for _, kind := range []Kind{KindStructural, KindDecorative} {
		t.Run(kind.String(), func(t *testing.T) {
			poses := Generate(2500, kind, 0, NewRandomSource(7))
			for i, p := range poses {
				if p.Scale <= 0 {
					t.Fatalf("pose %d: scale %v <= 0", i, p.Scale)
				}
				if r := p.Scattered.Len(); r > gp.ScatterRadius+1e-9 {
					t.Fatalf("pose %d: scattered radius %v > %v", i, r, gp.ScatterRadius)
				}
				if p.Assembled.Y < gp.MinY || p.Assembled.Y > gp.MinY+gp.Height {
					t.Fatalf("pose %d: assembled y %v outside [%v, %v]", i, p.Assembled.Y, gp.MinY, gp.MinY+gp.Height)
				}
				for _, v := range []float64{p.AssembledRot.X, p.AssembledRot.Y, p.AssembledRot.Z} {
					if math.IsNaN(v) {
						t.Fatalf("pose %d: NaN rotation", i)
					}
				}
			}
		})
	}
}

func TestGenerateUpperHalfIsHigher(t *testing.T) {
	poses := Generate(400, KindStructural, 0, NewRandomSource(3))
	var lo, hi float64
	half := len(poses) / 2
	for i, p := range poses {
		if i < half {
			lo += p.Assembled.Y
		} else {
			hi += p.Assembled.Y
		}
	}
	if hi/float64(len(poses)-half) <= lo/float64(half) {
		t.Errorf("mean upper y %v <= mean lower y %v", hi, lo)
	}
}

func TestGenerateRadiusTapers(t *testing.T) {
	// The midpoint sample cancels the radius jitter, leaving the bare taper.
	poses := Generate(100, KindStructural, 0, constSource(0.5))
	prev := math.Inf(1)
	for i, p := range poses {
		r := math.Hypot(p.Assembled.X, p.Assembled.Z)
		if r > prev+1e-9 {
			t.Fatalf("pose %d: radius %v grew from %v", i, r, prev)
		}
		prev = r
	}
	if r := math.Hypot(poses[0].Assembled.X, poses[0].Assembled.Z); !approxEqual(r, 2.4, 1e-9) {
		t.Errorf("base radius = %v, want 2.4", r)
	}
}

func TestGenerateRadiusClampedAtZero(t *testing.T) {
	// A zero sample pulls the radius down by the full jitter; near the tip the
	// taper is smaller than that, so the radius clamps to the axis.
	poses := Generate(100, KindStructural, 0, constSource(0))
	top := poses[99]
	if top.Assembled.X != 0 || top.Assembled.Z != 0 {
		t.Errorf("top pose = %v, want on the axis", top.Assembled)
	}
}

func TestGenerateDeterministicWithStub(t *testing.T) {
	a := Generate(4, KindStructural, 0, constSource(0))
	b := Generate(4, KindStructural, 0, constSource(0))
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("pose %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateSeededSourceReproducible(t *testing.T) {
	a := Generate(50, KindDecorative, 456, NewRandomSource(99))
	b := Generate(50, KindDecorative, 456, NewRandomSource(99))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pose %d differs", i)
		}
	}
}

func TestGenerateDecorativePushedOut(t *testing.T) {
	s := Generate(20, KindStructural, 1, constSource(0.3))
	d := Generate(20, KindDecorative, 1, constSource(0.3))
	for i := range s {
		assertVec(t, "decorative", d[i].Assembled,
			Vec3{s[i].Assembled.X * 1.15, s[i].Assembled.Y, s[i].Assembled.Z * 1.15}, 1e-9)
	}
}

func TestGenerateSeedOffsetRotatesSpiral(t *testing.T) {
	a := Generate(10, KindStructural, 0, constSource(0.5))
	b := Generate(10, KindStructural, math.Pi/2, constSource(0.5))
	for i := range a {
		// A quarter turn about Y maps (x, z) to (-z, x).
		assertVec(t, "rotated", b[i].Assembled, Vec3{-a[i].Assembled.Z, a[i].Assembled.Y, a[i].Assembled.X}, 1e-9)
	}
}

func TestGenerateScaleRanges(t *testing.T) {
	s := Generate(10, KindStructural, 0, constSource(0))
	for i, p := range s {
		want := 0.8 * (1 - float64(i)/10*0.4)
		if !approxEqual(p.Scale, want, 1e-12) {
			t.Errorf("structural scale[%d] = %v, want %v", i, p.Scale, want)
		}
	}
	d := Generate(3, KindDecorative, 0, constSource(0.5))
	for i, p := range d {
		if !approxEqual(p.Scale, 1.05, 1e-12) {
			t.Errorf("decorative scale[%d] = %v, want 1.05", i, p.Scale)
		}
	}
}

func TestGenerateDecorativeRotationRange(t *testing.T) {
	for _, p := range Generate(200, KindDecorative, 0, NewRandomSource(5)) {
		for _, v := range []float64{p.AssembledRot.X, p.AssembledRot.Y, p.AssembledRot.Z} {
			if v < 0 || v >= math.Pi {
				t.Fatalf("decorative rotation %v outside [0, pi)", v)
			}
		}
		for _, v := range []float64{p.ScatteredRot.X, p.ScatteredRot.Y, p.ScatteredRot.Z} {
			if v < 0 || v >= 2*math.Pi {
				t.Fatalf("scatter rotation %v outside [0, 2pi)", v)
			}
		}
	}
}

func TestGenerateStructuralTilt(t *testing.T) {
	// Without jitter the needle keeps the look-at yaw and only gains the
	// quarter turn about X.
	poses := Generate(8, KindStructural, 0, constSource(0.5))
	for _, p := range poses {
		look := lookRotation(p.Assembled, Vec3{0, p.Assembled.Y, 0}, Vec3{0, 1, 0})
		assertVec(t, "rotation", p.AssembledRot, Vec3{look.X - math.Pi/2, look.Y, look.Z}, 1e-9)
	}
}

func BenchmarkGenerateNeedles(b *testing.B) {
	rng := NewRandomSource(1)
	b.ReportAllocs()
	for b.Loop() {
		_ = Generate(2500, KindStructural, 0, rng)
	}
}
