// Package vector provides the three-component geometry primitive shared by
// every stage of the survey pipeline, plus the polar/Cartesian conversions
// the shot-to-delta kernel and the traverse solver both need.
package vector

import "math"

// Vector3D is an immutable (east, north, up) triple in feet, the module's
// single canonical internal unit.
type Vector3D struct {
	East, North, Up float64
}

// Zero is the additive identity.
var Zero = Vector3D{}

// Add returns the component-wise sum.
func (v Vector3D) Add(o Vector3D) Vector3D {
	return Vector3D{v.East + o.East, v.North + o.North, v.Up + o.Up}
}

// Sub returns the component-wise difference v - o.
func (v Vector3D) Sub(o Vector3D) Vector3D {
	return Vector3D{v.East - o.East, v.North - o.North, v.Up - o.Up}
}

// Scale returns v multiplied by a scalar.
func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{v.East * s, v.North * s, v.Up * s}
}

// Neg returns the additive inverse.
func (v Vector3D) Neg() Vector3D {
	return Vector3D{-v.East, -v.North, -v.Up}
}

// Length returns the Euclidean length.
func (v Vector3D) Length() float64 {
	return math.Sqrt(v.East*v.East + v.North*v.North + v.Up*v.Up)
}

// Mean returns the arithmetic mean of vs. Returns Zero for an empty slice.
func Mean(vs []Vector3D) Vector3D {
	if len(vs) == 0 {
		return Zero
	}
	var sum Vector3D
	for _, v := range vs {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(vs)))
}

const degToRad = math.Pi / 180
const radToDeg = 180 / math.Pi

// FromPolar converts a polar survey measurement to a Cartesian delta.
// azimuthDeg is clockwise from grid north in degrees; inclinationDeg is the
// signed elevation angle in degrees; lengthFt is the slope distance in feet
// and is assumed non-negative.
func FromPolar(lengthFt, azimuthDeg, inclinationDeg float64) Vector3D {
	az := azimuthDeg * degToRad
	inc := inclinationDeg * degToRad
	cosInc := math.Cos(inc)
	return Vector3D{
		East:  lengthFt * cosInc * math.Sin(az),
		North: lengthFt * cosInc * math.Cos(az),
		Up:    lengthFt * math.Sin(inc),
	}
}

// ToPolar decomposes a Cartesian delta into (length feet, azimuth degrees in
// [0, 360), inclination degrees in [-90, 90]). A zero-length vector decomposes
// to azimuth 0, inclination 0.
func ToPolar(v Vector3D) (lengthFt, azimuthDeg, inclinationDeg float64) {
	lengthFt = v.Length()
	if lengthFt == 0 {
		return 0, 0, 0
	}
	inclinationDeg = math.Asin(clamp(v.Up/lengthFt, -1, 1)) * radToDeg
	azimuthDeg = math.Atan2(v.East, v.North) * radToDeg
	if azimuthDeg < 0 {
		azimuthDeg += 360
	}
	return lengthFt, azimuthDeg, inclinationDeg
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// NormalizeDegrees reduces a degree value into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
