// Package site provides the small amount of astronomical geometry the
// plugger needs: local sidereal time at APO and the right-ascension
// visibility window for a scheduling period.
package site

import "math"

// APO longitude, degrees East.
const apoLongitude = 254.179583

const j2000 = 2451545.0

// LocalSiderealTime returns the local mean sidereal time at APO, in hours
// [0, 24), for a Julian Date.
func LocalSiderealTime(jd float64) float64 {
	t := (jd - j2000) / 36525.0
	gmst := 280.46061837 +
		360.98564736629*(jd-j2000) +
		0.000387933*t*t -
		t*t*t/38710000.0
	lst := math.Mod(gmst+apoLongitude, 360)
	if lst < 0 {
		lst += 360
	}
	return lst / 15.0
}

// RAWindow returns the right-ascension range(s), in degrees, visible between
// two Julian Dates, widened by halfWindow hours on each side. The range wraps
// at 360 degrees, so the result is one interval or, when the window crosses
// zero, two.
func RAWindow(jd0, jd1, halfWindow float64) [][2]float64 {
	ra0 := math.Mod((LocalSiderealTime(jd0)-halfWindow)*15.0, 360)
	ra1 := math.Mod((LocalSiderealTime(jd1)+halfWindow)*15.0, 360)
	if ra0 < 0 {
		ra0 += 360
	}
	if ra1 < 0 {
		ra1 += 360
	}
	if ra0 <= ra1 {
		return [][2]float64{{ra0, ra1}}
	}
	return [][2]float64{{ra0, 360}, {0, ra1}}
}
