package geomag

import (
	"math"
	"testing"
	"time"
)

func TestDeclinationAtPoleIsZero(t *testing.T) {
	m := Default
	d := m.Declination(m.PoleLongitude, m.PoleLatitude-0.01, 0, time.Time{})
	if math.Abs(d) > 5 {
		t.Errorf("declination very close to the pole should be small, got %v", d)
	}
}

func TestDeclinationSignFlipsAcrossPole(t *testing.T) {
	m := Default
	east := m.Declination(m.PoleLongitude+10, m.PoleLatitude-20, 0, time.Time{})
	west := m.Declination(m.PoleLongitude-10, m.PoleLatitude-20, 0, time.Time{})
	if math.Signbit(east) == math.Signbit(west) {
		t.Errorf("declination should have opposite sign on either side of the pole's meridian, got east=%v west=%v", east, west)
	}
}

func TestDeclinationBounded(t *testing.T) {
	m := Default
	d := m.Declination(-84, 39, 300, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if d < -180 || d > 180 {
		t.Errorf("declination out of range: %v", d)
	}
}

func TestApproxUTMToLatLonAtCentralMeridianAndEquator(t *testing.T) {
	// Zone 31's central meridian is 3°E; false easting puts 500000 there.
	lon, lat := ApproxUTMToLatLon(500000, 0, 31)
	if math.Abs(lon-3) > 1e-6 {
		t.Errorf("longitude at false easting = %v, want 3 (zone 31's central meridian)", lon)
	}
	if math.Abs(lat) > 1e-9 {
		t.Errorf("latitude at northing 0 = %v, want 0", lat)
	}
}

func TestApproxUTMToLatLonNorthingIncreasesLatitude(t *testing.T) {
	_, lowLat := ApproxUTMToLatLon(500000, 1000000, 15)
	_, highLat := ApproxUTMToLatLon(500000, 4000000, 15)
	if highLat <= lowLat {
		t.Errorf("larger northing should yield larger latitude, got low=%v high=%v", lowLat, highLat)
	}
}
