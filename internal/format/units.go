package format

import "math"

// metersToFeet matches spec.md §4.2's stated conversion factor.
const metersToFeet = 3.280839895

// LengthToFeet converts a raw length/passage/LRUD reading in unit u to feet.
func LengthToFeet(value float64, u LengthUnit) float64 {
	switch u {
	case LengthMeters:
		return value * metersToFeet
	case LengthFeetInches, LengthDecimalFeet:
		return value
	default:
		return value
	}
}

// BearingToDegrees converts a raw azimuth reading in unit u to decimal
// degrees. Quads (Q) is a pass-through, not a scaled unit: it is numerically
// identical to decimal degrees, per original_source/compass_scratchpad's
// AzimuthUnit.convert.
func BearingToDegrees(value float64, u BearingUnit) float64 {
	switch u {
	case BearingGrads:
		return value * 360 / 400
	default:
		return value
	}
}

// InclinationToDegrees converts a raw inclination reading in unit u to
// decimal degrees. The depth-gauge unit (W) is handled by the kernel, not
// here, since it needs the shot length to derive an angle.
func InclinationToDegrees(value float64, u InclinationUnit) float64 {
	switch u {
	case InclinationPercentGrade:
		return math.Atan(value/100) * radToDeg
	case InclinationDegMin:
		return degMinToDegrees(value)
	case InclinationGrads:
		return value * 180 / 200
	default:
		return value
	}
}

const radToDeg = 180 / math.Pi

// degMinToDegrees decodes Compass's DDD.MM degrees-and-minutes convention:
// the integer part is whole degrees, the first two digits after the decimal
// point are minutes (0-59). The sign of the whole value applies to the
// combined angle.
func degMinToDegrees(value float64) float64 {
	sign := 1.0
	if value < 0 {
		sign = -1
		value = -value
	}
	degrees := math.Trunc(value)
	minutes := math.Round((value-degrees)*100) / 100 * 100
	return sign * (degrees + minutes/60)
}
