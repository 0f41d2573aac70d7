// Package angle maps raw entropy bytes onto phase angles.
package angle

import "math"

// FullTurn is one full rotation in radians.
const FullTurn = 2 * math.Pi

// FromByte maps b onto [0, 2π) as (b / 256) * 2π.
func FromByte(b uint8) float64 {
	return float64(b) / 256 * FullTurn
}

// ToAngles converts each byte with FromByte, preserving length and order.
// The result is always non-nil.
func ToAngles(raw []uint8) []float64 {
	out := make([]float64, len(raw))
	for i, b := range raw {
		out[i] = FromByte(b)
	}
	return out
}
