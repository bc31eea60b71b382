// Package kernel converts a single parsed shot into a Cartesian delta,
// honouring backsight reconciliation, instrument corrections, declination,
// and convergence per spec.md §4.3.
package kernel

import (
	"math"

	"compassnet/internal/diag"
	"compassnet/internal/format"
	"compassnet/internal/survey"
	"compassnet/internal/vector"
)

// Delta is the outcome of reducing one shot to feet/degrees polar
// measurements and their Cartesian equivalent. Length/Heading/Inclination
// are the reconciled-and-corrected "survey reading" spec.md §4.7 clamps
// against; Vector is their Cartesian form.
type Delta struct {
	Length      float64
	Heading     float64
	Inclination float64
	Vector      vector.Vector3D
}

const verticalSentinel = -999

// Reduce applies backsight reconciliation, corrections, declination, and
// convergence to shot, returning the resulting Delta. source and the shot's
// Index are used only to annotate diagnostics raised for backsight
// disagreements and depth-gauge range violations.
func Reduce(shot survey.Shot, hdr survey.Header, applyConvergence bool, convergence float64, source string, bag *diag.Bag) Delta {
	length := shot.Length + hdr.Corrections.Length

	var azimuth, inclination float64
	if hdr.Format.HasBacksights() && shot.Backsight.Present {
		azimuth, inclination = reconcileBacksight(shot, hdr, source, shot.Index, bag)
	} else {
		azimuth = applyIfNotVertical(shot.Azimuth, hdr.Corrections.FrontsightAzimuth)
		inclination = applyIfNotVertical(shot.Inclination, hdr.Corrections.FrontsightInclination)
	}

	if azimuth != verticalSentinel {
		azimuth = vector.NormalizeDegrees(azimuth + hdr.Declination)
		if applyConvergence {
			azimuth = vector.NormalizeDegrees(azimuth - convergence)
		}
	}

	if hdr.Format.Inclination == format.InclinationDepthGauge {
		inclination = resolveDepthGauge(inclination, length, source, shot.Index, bag)
	}

	if azimuth == verticalSentinel {
		azimuth = 0
	}

	v := vector.FromPolar(length, azimuth, inclination)
	return Delta{Length: length, Heading: azimuth, Inclination: inclination, Vector: v}
}

func applyIfNotVertical(reading, correction float64) float64 {
	if reading == verticalSentinel {
		return reading
	}
	return reading + correction
}

// backsightDisagreementTolerance is the angular threshold, in degrees, above
// which a frontsight/reversed-backsight pair is flagged rather than
// silently averaged.
const backsightDisagreementTolerance = 2.0

// reconcileBacksight averages the frontsight and reversed backsight
// readings per spec.md §4.3 step 1, falling back to whichever is defined
// when the other is absent or a vertical-shot sentinel. When both are
// defined and disagree by more than backsightDisagreementTolerance, it
// raises a geom.domain diagnostic rather than averaging silently.
func reconcileBacksight(shot survey.Shot, hdr survey.Header, source string, shotIndex int, bag *diag.Bag) (azimuth, inclination float64) {
	fsAz := applyIfNotVertical(shot.Azimuth, hdr.Corrections.FrontsightAzimuth)
	fsInc := applyIfNotVertical(shot.Inclination, hdr.Corrections.FrontsightInclination)

	bsAz := applyIfNotVertical(shot.Backsight.Azimuth, hdr.Corrections.BacksightAzimuth)
	bsInc := applyIfNotVertical(shot.Backsight.Inclination, hdr.Corrections.BacksightInclination)

	var bsAzReversed, bsIncReversed float64
	bsDefined := bsAz != verticalSentinel
	if bsDefined {
		bsAzReversed = vector.NormalizeDegrees(bsAz + 180)
		bsIncReversed = -bsInc
	}

	fsDefined := fsAz != verticalSentinel

	switch {
	case fsDefined && bsDefined:
		azDiff := math.Abs(math.Mod(bsAzReversed-fsAz+540, 360) - 180)
		incDiff := math.Abs(bsIncReversed - fsInc)
		if azDiff > backsightDisagreementTolerance || incDiff > backsightDisagreementTolerance {
			bag.Warning(diag.KindGeomDomain, source, 0,
				"shot %d: backsight disagreement (azimuth %.2f vs %.2f, inclination %.2f vs %.2f)",
				shotIndex, fsAz, bsAzReversed, fsInc, bsIncReversed)
		}
		azimuth = averageAngles(fsAz, bsAzReversed)
		inclination = (fsInc + bsIncReversed) / 2
	case fsDefined:
		azimuth, inclination = fsAz, fsInc
	case bsDefined:
		azimuth, inclination = bsAzReversed, bsIncReversed
	default:
		azimuth, inclination = verticalSentinel, verticalSentinel
	}
	return azimuth, inclination
}

// averageAngles averages two bearings correctly across the 0/360 wrap
// point by picking the shorter arc between them.
func averageAngles(a, b float64) float64 {
	diff := math.Mod(b-a+540, 360) - 180
	return vector.NormalizeDegrees(a + diff/2)
}

// resolveDepthGauge derives an inclination angle from a stored depth
// difference per spec.md §4.3 step 5: asin(Δdepth/length), clamped to
// ±length with a warning when the reading is out of range.
func resolveDepthGauge(deltaDepth, length float64, source string, shotIndex int, bag *diag.Bag) float64 {
	if length == 0 {
		return 0
	}
	if math.Abs(deltaDepth) > length {
		bag.Warning(diag.KindGeomDomain, source, 0,
			"shot %d: depth-gauge reading %.3f exceeds shot length %.3f, clamped", shotIndex, deltaDepth, length)
		if deltaDepth > 0 {
			deltaDepth = length
		} else {
			deltaDepth = -length
		}
	}
	ratio := deltaDepth / length
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	return math.Asin(ratio) * (180 / math.Pi)
}
