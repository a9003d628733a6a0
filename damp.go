package arix

import "math"

// Damp moves current toward target by the frame-rate independent factor
// 1 - e^(-lambda*dt). A non-positive dt or lambda leaves current unchanged.
// Repeated application converges exponentially and never overshoots.
func Damp(current, target, lambda, dt float64) float64 {
	if dt <= 0 || lambda <= 0 {
		return current
	}
	return current + (target-current)*(1-math.Exp(-lambda*dt))
}

// dampProgress is Damp restricted to [0, 1]. Progress values leave the
// interval only through float rounding, which the clamp absorbs.
func dampProgress(current, target, lambda, dt float64) float64 {
	return clamp01(Damp(current, clamp01(target), lambda, dt))
}

// lerp performs linear interpolation between a and b by t. The two-product
// form returns a exactly at t=0 and b exactly at t=1.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
