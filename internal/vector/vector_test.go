package vector

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestFromPolarCardinal(t *testing.T) {
	tests := []struct {
		name           string
		length, az, in float64
		want           Vector3D
	}{
		{"north level", 100, 0, 0, Vector3D{0, 100, 0}},
		{"east level", 100, 90, 0, Vector3D{100, 0, 0}},
		{"straight up", 100, 0, 90, Vector3D{0, 0, 100}},
		{"straight down", 100, 0, -90, Vector3D{0, 0, -100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPolar(tt.length, tt.az, tt.in)
			if !almostEqual(got.East, tt.want.East, 1e-9) ||
				!almostEqual(got.North, tt.want.North, 1e-9) ||
				!almostEqual(got.Up, tt.want.Up, 1e-9) {
				t.Errorf("FromPolar(%v,%v,%v) = %+v, want %+v", tt.length, tt.az, tt.in, got, tt.want)
			}
		})
	}
}

func TestPolarRoundTrip(t *testing.T) {
	cases := []struct{ length, az, inc float64 }{
		{100, 0, 0}, {50, 45, 30}, {10, 359, -89}, {1, 180.5, 0}, {200, 270, 45},
	}
	for _, c := range cases {
		v := FromPolar(c.length, c.az, c.inc)
		length, az, inc := ToPolar(v)
		if !almostEqual(length, c.length, 1e-9) {
			t.Errorf("length round-trip: got %v want %v", length, c.length)
		}
		if !almostEqual(inc, c.inc, 1e-9) {
			t.Errorf("inclination round-trip: got %v want %v", inc, c.inc)
		}
		if !almostEqual(az, c.az, 1e-9) {
			t.Errorf("azimuth round-trip: got %v want %v", az, c.az)
		}
	}
}

func TestZeroLength(t *testing.T) {
	v := FromPolar(0, 45, 30)
	if v != Zero {
		t.Errorf("zero-length shot should produce zero delta, got %+v", v)
	}
	length, az, inc := ToPolar(Zero)
	if length != 0 || az != 0 || inc != 0 {
		t.Errorf("ToPolar(Zero) = %v,%v,%v, want 0,0,0", length, az, inc)
	}
}

func TestMean(t *testing.T) {
	got := Mean([]Vector3D{{0, 0, 0}, {2, 4, 6}})
	want := Vector3D{1, 2, 3}
	if got != want {
		t.Errorf("Mean = %+v, want %+v", got, want)
	}
	if Mean(nil) != Zero {
		t.Errorf("Mean(nil) should be Zero")
	}
}

func TestRotationInvariance(t *testing.T) {
	const delta = 37.0
	length, az, inc := 100.0, 20.0, 10.0
	v1 := FromPolar(length, az, inc)
	v2 := FromPolar(length, az+delta, inc)
	// Rotating azimuth by delta rotates the horizontal plane; lengths and
	// vertical component must be preserved.
	if !almostEqual(v1.Up, v2.Up, 1e-9) {
		t.Errorf("vertical component should be rotation invariant")
	}
	if !almostEqual(v1.Length(), v2.Length(), 1e-9) {
		t.Errorf("length should be rotation invariant")
	}
}
