// Package geomag supplies the auxiliary geomagnetic declination model the
// project-flag "compute from date+location" declination mode (flag A)
// depends on. The core treats it as an external collaborator (spec.md §6);
// this package is one concrete, documented implementation of that
// interface, not a general-purpose IGRF/WMM replacement.
package geomag

import (
	"math"
	"time"
)

// Model computes magnetic declination in degrees for a geographic location
// (longitude and latitude in degrees, elevation in meters) and date.
type Model interface {
	Declination(longitudeDeg, latitudeDeg, elevMeters float64, date time.Time) float64
}

// DipoleModel approximates Earth's magnetic field as a single centered,
// tilted dipole. It is far less accurate than a real spherical-harmonic
// model (IGRF/WMM), which is why the corpus's own Python tooling reaches
// for a dedicated `pyIGRF14` package rather than hand-rolling one — no
// equivalent Go library exists in the ecosystem this module draws from, so
// this package documents its approximation instead of silently returning
// zero. Declination error against WMM is typically a few degrees at
// mid-latitudes and grows sharply near the poles.
type DipoleModel struct {
	// PoleLatitude and PoleLongitude locate the geomagnetic north pole, in
	// degrees. The 2020-epoch IGRF value is used as a static default.
	PoleLatitude, PoleLongitude float64
}

// Default is a DipoleModel seeded with the approximate 2020 geomagnetic
// pole location.
var Default = DipoleModel{PoleLatitude: 80.65, PoleLongitude: -72.68}

const degToRad = math.Pi / 180
const radToDeg = 180 / math.Pi

// Declination returns the angle in degrees between true north and magnetic
// north at the given geographic longitude/latitude in degrees (a UTM
// position can be converted with ApproxUTMToLatLon first); elevation and
// date do not affect a centered-dipole field and are accepted only to
// satisfy the Model interface.
func (m DipoleModel) Declination(longitudeDeg, latitudeDeg, _ float64, _ time.Time) float64 {
	phi := latitudeDeg * degToRad
	lambda := longitudeDeg * degToRad
	poleLat := m.PoleLatitude * degToRad
	poleLon := m.PoleLongitude * degToRad

	// Bearing from the observation point to the geomagnetic pole, using the
	// standard great-circle initial-bearing formula; declination is the
	// signed angle between that bearing and true north.
	dLon := poleLon - lambda
	y := math.Sin(dLon) * math.Cos(poleLat)
	x := math.Cos(phi)*math.Sin(poleLat) - math.Sin(phi)*math.Cos(poleLat)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * radToDeg

	return normalizeSigned(bearing)
}

func normalizeSigned(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg < -180 {
		deg += 360
	}
	return deg
}

// earthRadiusMeters is the mean spherical Earth radius used by
// ApproxUTMToLatLon; it is the same order of approximation DipoleModel
// already makes for the field itself, so a full ellipsoidal UTM inverse
// (the pack carries no library for one) would be false precision here.
const earthRadiusMeters = 6371000.0

const utmFalseEasting = 500000.0

// ApproxUTMToLatLon converts a UTM easting/northing/zone triple (the shape
// project.BaseLocation stores, per spec.md's `@` record) to an approximate
// geographic longitude/latitude in degrees, the input DipoleModel expects.
// It is a spherical, non-ellipsoidal inverse projection valid near the
// equator and central meridian; it ignores the southern-hemisphere false
// northing convention, so northings are assumed northern-hemisphere. This
// is adequate for a centered-dipole declination estimate but not for
// precision positioning.
func ApproxUTMToLatLon(eastMeters, northMeters float64, zone int) (lonDeg, latDeg float64) {
	centralMeridian := float64(zone)*6 - 183
	latDeg = northMeters / earthRadiusMeters * radToDeg
	lonDeg = centralMeridian + (eastMeters-utmFalseEasting)/(earthRadiusMeters*math.Cos(latDeg*degToRad))*radToDeg
	return lonDeg, latDeg
}
