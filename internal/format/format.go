// Package format parses and validates the Compass-style format descriptor:
// an 11, 12, or 13 character uppercase string that governs how a survey's
// shot rows are interpreted (units, column order, backsight mode, LRUD
// attachment side).
package format

import "fmt"

// BearingUnit is the unit a shot's azimuth is recorded in.
type BearingUnit byte

const (
	BearingDegrees BearingUnit = 'D'
	BearingQuads   BearingUnit = 'Q'
	BearingGrads   BearingUnit = 'R'
)

// LengthUnit is the unit a shot's length (or LRUD/passage measurement) is
// recorded in.
type LengthUnit byte

const (
	LengthDecimalFeet LengthUnit = 'D'
	LengthFeetInches  LengthUnit = 'I'
	LengthMeters      LengthUnit = 'M'
)

// InclinationUnit is the unit a shot's inclination is recorded in.
type InclinationUnit byte

const (
	InclinationDegrees    InclinationUnit = 'D'
	InclinationPercentGrade InclinationUnit = 'G'
	InclinationDegMin     InclinationUnit = 'M'
	InclinationGrads      InclinationUnit = 'R'
	InclinationDepthGauge InclinationUnit = 'W'
)

// LRUDItem names one of the four passage-wall measurements.
type LRUDItem byte

const (
	ItemLeft  LRUDItem = 'L'
	ItemUp    LRUDItem = 'U'
	ItemDown  LRUDItem = 'D'
	ItemRight LRUDItem = 'R'
)

// ShotItem names one of the three primary shot measurements.
type ShotItem byte

const (
	ItemLength      ShotItem = 'L'
	ItemAzimuth     ShotItem = 'A'
	ItemInclination ShotItem = 'D'
)

// BacksightMode says whether a survey records redundant backsights.
type BacksightMode int

const (
	BacksightNone BacksightMode = iota
	BacksightRedundant
)

// LRUDAttach says which endpoint of a shot the LRUD measurements were taken
// from.
type LRUDAttach int

const (
	AttachFrom LRUDAttach = iota
	AttachTo
)

// Descriptor is a fully decoded format string.
type Descriptor struct {
	Raw string

	Bearing     BearingUnit
	Length      LengthUnit
	Passage     LengthUnit
	Inclination InclinationUnit

	LRUDOrder [4]LRUDItem
	ShotOrder [3]ShotItem

	Backsight BacksightMode
	Attach    LRUDAttach
}

// Default is the format Compass uses when a survey header omits FORMAT:.
var Default = mustParse("DDDDLUDRLAD")

// Parse decodes a raw format descriptor string. Its length must be 11, 12,
// or 13; anything else is a survey.header-class error (the caller decides
// how to wrap it).
func Parse(raw string) (Descriptor, error) {
	if len(raw) != 11 && len(raw) != 12 && len(raw) != 13 {
		return Descriptor{}, fmt.Errorf("format descriptor must be 11, 12, or 13 characters, got %d (%q)", len(raw), raw)
	}

	d := Descriptor{Raw: raw}

	var err error
	if d.Bearing, err = parseBearing(raw[0]); err != nil {
		return Descriptor{}, err
	}
	if d.Length, err = parseLength(raw[1]); err != nil {
		return Descriptor{}, err
	}
	if d.Passage, err = parseLength(raw[2]); err != nil {
		return Descriptor{}, err
	}
	if d.Inclination, err = parseInclination(raw[3]); err != nil {
		return Descriptor{}, err
	}
	for i := 0; i < 4; i++ {
		item, err := parseLRUDItem(raw[4+i])
		if err != nil {
			return Descriptor{}, err
		}
		d.LRUDOrder[i] = item
	}
	for i := 0; i < 3; i++ {
		item, err := parseShotItem(raw[8+i])
		if err != nil {
			return Descriptor{}, err
		}
		d.ShotOrder[i] = item
	}

	if len(raw) >= 12 {
		switch raw[11] {
		case 'B':
			d.Backsight = BacksightRedundant
		case 'N':
			d.Backsight = BacksightNone
		default:
			return Descriptor{}, fmt.Errorf("unknown backsight mode %q in format descriptor %q", raw[11], raw)
		}
	}
	if len(raw) == 13 {
		switch raw[12] {
		case 'F':
			d.Attach = AttachFrom
		case 'T':
			d.Attach = AttachTo
		default:
			return Descriptor{}, fmt.Errorf("unknown LRUD attach side %q in format descriptor %q", raw[12], raw)
		}
	}

	if d.Backsight == BacksightRedundant && d.Inclination == InclinationDepthGauge {
		return Descriptor{}, fmt.Errorf("redundant backsight and depth-gauge inclination are mutually exclusive in %q", raw)
	}

	return d, nil
}

func mustParse(raw string) Descriptor {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func parseBearing(c byte) (BearingUnit, error) {
	switch BearingUnit(c) {
	case BearingDegrees, BearingQuads, BearingGrads:
		return BearingUnit(c), nil
	}
	return 0, fmt.Errorf("unknown bearing unit %q", c)
}

func parseLength(c byte) (LengthUnit, error) {
	switch LengthUnit(c) {
	case LengthDecimalFeet, LengthFeetInches, LengthMeters:
		return LengthUnit(c), nil
	}
	return 0, fmt.Errorf("unknown length unit %q", c)
}

func parseInclination(c byte) (InclinationUnit, error) {
	switch InclinationUnit(c) {
	case InclinationDegrees, InclinationPercentGrade, InclinationDegMin, InclinationGrads, InclinationDepthGauge:
		return InclinationUnit(c), nil
	}
	return 0, fmt.Errorf("unknown inclination unit %q", c)
}

func parseLRUDItem(c byte) (LRUDItem, error) {
	switch LRUDItem(c) {
	case ItemLeft, ItemUp, ItemDown, ItemRight:
		return LRUDItem(c), nil
	}
	return 0, fmt.Errorf("unknown LRUD item %q", c)
}

func parseShotItem(c byte) (ShotItem, error) {
	switch ShotItem(c) {
	case ItemLength, ItemAzimuth, ItemInclination:
		return ShotItem(c), nil
	}
	return 0, fmt.Errorf("unknown shot item %q", c)
}

// HasBacksights reports whether shot rows carry a redundant backsight pair.
func (d Descriptor) HasBacksights() bool {
	return d.Backsight == BacksightRedundant
}
