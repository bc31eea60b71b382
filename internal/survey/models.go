// Package survey parses the raw Compass-style survey data file: a
// concatenation of one or more surveys, each carrying its own header and an
// ordered list of shot rows.
package survey

import (
	"time"

	"compassnet/internal/format"
)

// Flag is one of the four per-shot exclusion/behavior markers spec.md §3
// defines (L, P, X, C).
type Flag byte

const (
	FlagExcludeLength Flag = 'L'
	FlagExcludePlot   Flag = 'P'
	FlagExcludeAll    Flag = 'X'
	FlagNoAdjust      Flag = 'C'
)

// FlagSet is a small set of Flag values.
type FlagSet map[Flag]bool

// Has reports whether f is present in the set.
func (fs FlagSet) Has(f Flag) bool {
	return fs != nil && fs[f]
}

// LRUD holds the four passage-wall measurements, each in feet. A negative
// value means "missing" per spec.md §4.2.
type LRUD struct {
	Left, Up, Down, Right float64
}

// Present reports whether v is a recorded (non-missing) LRUD value.
func Present(v float64) bool {
	return v >= 0
}

// Backsight is present|absent, not zero|non-zero: an absent backsight is
// distinct from one that happens to read 0/0.
type Backsight struct {
	Azimuth     float64
	Inclination float64
	Present     bool
}

// Shot is a single raw measurement between two stations, exactly as it
// appears in the survey file (unit-converted to feet/degrees, but not yet
// corrected, reconciled, or converted to Cartesian — that is the kernel's
// job).
type Shot struct {
	From, To string

	Length      float64
	Azimuth     float64 // NaN-free sentinel: IsVerticalShot() below
	Inclination float64

	LRUD LRUD

	Backsight Backsight

	Flags   FlagSet
	Comment string

	// Index is the shot's 0-based position within its Survey, used only for
	// diagnostics (spec.md §4.2 "identifies file, survey name, and shot
	// index").
	Index int
}

// verticalAzimuthSentinel is the -999 azimuth/inclination sentinel spec.md
// §4.2 defines: "not applicable / vertical shot", which disables azimuth
// usage entirely.
const verticalAzimuthSentinel = -999

// IsVerticalShot reports whether the shot's azimuth is the -999 sentinel.
func (s Shot) IsVerticalShot() bool {
	return s.Azimuth == verticalAzimuthSentinel
}

// Corrections are the additive front/back-sight correction factors a survey
// header may declare (CORRECTIONS:/CORRECTIONS2:).
type Corrections struct {
	Length              float64
	FrontsightAzimuth   float64
	FrontsightInclination float64
	BacksightAzimuth     float64
	BacksightInclination float64
}

// Header carries the per-survey metadata that precedes its shot rows.
type Header struct {
	CaveName   string
	SurveyName string
	Date       time.Time // zero value means "absent -> 1/1/1" per spec.md §3
	Comment    string
	Team       string

	Declination float64

	Format format.Descriptor

	Corrections Corrections
}

// Survey is one cave-name/survey-name/date/team/format/shots unit, one of
// possibly several separated by form-feed bytes within a single file.
type Survey struct {
	Header Header
	Shots  []Shot
}

// File is the result of parsing one survey data file: an ordered list of
// surveys.
type File struct {
	Surveys []Survey
}
