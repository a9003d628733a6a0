package arix

import "math"

// EntityPose is the pair of transforms one instance morphs between. Rotations
// are Euler XYZ in radians. Poses are immutable once generated.
type EntityPose struct {
	Assembled    Vec3
	Scattered    Vec3
	AssembledRot Vec3
	ScatteredRot Vec3
	Scale        float64
}

// GeneratorParams shapes the cone spiral and the scatter cloud.
type GeneratorParams struct {
	MinY            float64 `yaml:"min_y"`
	Height          float64 `yaml:"height"`           // assembled y spans [MinY, MinY+Height)
	BaseRadius      float64 `yaml:"base_radius"`      // cone radius at the bottom
	TaperExponent   float64 `yaml:"taper_exponent"`   // radius falls off as 1 - t^TaperExponent
	RadiusJitter    float64 `yaml:"radius_jitter"`    // +/- noise added to the radius
	Turns           float64 `yaml:"turns"`            // golden-angle multiplier
	DecorativePush  float64 `yaml:"decorative_push"`  // x/z multiplier for decorative entities
	ScatterRadius   float64 `yaml:"scatter_radius"`   // radius of the scatter sphere
	StructuralTilt  float64 `yaml:"structural_tilt"`  // +/- noise on structural rot.x and rot.z
	StructuralScale Range   `yaml:"structural_scale"`
	StructuralTaper float64 `yaml:"structural_taper"` // structural scale multiplied by 1 - t*StructuralTaper
	DecorativeScale Range   `yaml:"decorative_scale"`
}

// DefaultGeneratorParams returns the tree shape used by the holiday scene.
func DefaultGeneratorParams() GeneratorParams {
	return GeneratorParams{
		MinY:            -2.0,
		Height:          4.5,
		BaseRadius:      2.4,
		TaperExponent:   0.8,
		RadiusJitter:    0.15,
		Turns:           15,
		DecorativePush:  1.15,
		ScatterRadius:   6,
		StructuralTilt:  0.2,
		StructuralScale: Range{Min: 0.8, Max: 1.4},
		StructuralTaper: 0.4,
		DecorativeScale: Range{Min: 0.8, Max: 1.3},
	}
}

// goldenAngle is pi * (3 - sqrt 5).
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Generate produces count poses using DefaultGeneratorParams. A nil rng uses
// DefaultRandomSource. count <= 0 yields nil.
func Generate(count int, kind Kind, seedOffset float64, rng RandomSource) []EntityPose {
	return DefaultGeneratorParams().Generate(count, kind, seedOffset, rng)
}

// Generate produces count poses. Entity i sits at height fraction t = i/count
// on a golden-angle spiral around the Y axis, rotated by seedOffset radians.
func (gp GeneratorParams) Generate(count int, kind Kind, seedOffset float64, rng RandomSource) []EntityPose {
	if count <= 0 {
		return nil
	}
	rng = sourceOrDefault(rng)
	poses := make([]EntityPose, count)
	for i := range poses {
		poses[i] = gp.pose(i, count, kind, seedOffset, rng)
	}
	return poses
}

// pose draws one entity. The draw order is fixed so a given random stream
// always yields the same pose.
func (gp GeneratorParams) pose(i, count int, kind Kind, seedOffset float64, rng RandomSource) EntityPose {
	t := float64(i) / float64(count)

	y := gp.MinY + gp.Height*t
	radius := gp.BaseRadius*(1-math.Pow(t, gp.TaperExponent)) + Uniform(rng, -gp.RadiusJitter, gp.RadiusJitter)
	radius = math.Max(0, radius)
	theta := float64(i)*goldenAngle*gp.Turns + seedOffset
	x := radius * math.Cos(theta)
	z := radius * math.Sin(theta)
	if kind == KindDecorative {
		x *= gp.DecorativePush
		z *= gp.DecorativePush
	}
	assembled := Vec3{x, y, z}

	sr := gp.ScatterRadius * math.Cbrt(rng.Float64())
	sTheta := rng.Float64() * 2 * math.Pi
	sPhi := math.Acos(2*rng.Float64() - 1)
	scattered := Vec3{
		sr * math.Sin(sPhi) * math.Cos(sTheta),
		sr * math.Sin(sPhi) * math.Sin(sTheta),
		sr * math.Cos(sPhi),
	}

	var rot Vec3
	if kind == KindStructural {
		// Face the trunk, then tip the cone so its apex points away from it.
		rot = lookRotation(assembled, Vec3{0, y, 0}, Vec3{0, 1, 0})
		rot.X -= math.Pi / 2
		rot.X += Uniform(rng, -gp.StructuralTilt, gp.StructuralTilt)
		rot.Z += Uniform(rng, -gp.StructuralTilt, gp.StructuralTilt)
	} else {
		rot = Vec3{
			Uniform(rng, 0, math.Pi),
			Uniform(rng, 0, math.Pi),
			Uniform(rng, 0, math.Pi),
		}
	}

	scatterRot := Vec3{
		rng.Float64() * 2 * math.Pi,
		rng.Float64() * 2 * math.Pi,
		rng.Float64() * 2 * math.Pi,
	}

	var scale float64
	if kind == KindStructural {
		scale = gp.StructuralScale.RandomFrom(rng) * (1 - t*gp.StructuralTaper)
	} else {
		scale = gp.DecorativeScale.RandomFrom(rng)
	}

	return EntityPose{
		Assembled:    assembled,
		Scattered:    scattered,
		AssembledRot: rot,
		ScatteredRot: scatterRot,
		Scale:        scale,
	}
}
