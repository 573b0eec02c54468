// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Package geo implements the coordinate transform between the source
// spatial reference of the raw tables, EPSG:3003 (Monte Mario /
// Italy zone 1, the "Gauss-Boaga west" grid), and geographic WGS84
// (EPSG:4326).
//
// The transform chain is the standard one: inverse transverse Mercator
// on the International 1924 ellipsoid, geodetic to geocentric, a
// 7-parameter Helmert shift from the Monte Mario datum to WGS84, and
// geocentric back to geodetic. Both directions are exposed as pure
// orb.Projection functions so they compose with orb/project over any
// geometry type while preserving type, vertex count and vertex order.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// spheroid is a reference ellipsoid with derived eccentricity terms.
type spheroid struct {
	a   float64 // semi-major axis (m)
	e2  float64 // first eccentricity squared
	ep2 float64 // second eccentricity squared
}

func newSpheroid(a, invF float64) spheroid {
	f := 1 / invF
	e2 := 2*f - f*f
	return spheroid{a: a, e2: e2, ep2: e2 / (1 - e2)}
}

var (
	international1924 = newSpheroid(6378388.0, 297.0)
	wgs84Spheroid     = newSpheroid(6378137.0, 298.257223563)
)

// Gauss-Boaga west zone projection parameters (EPSG:3003).
const (
	centralMeridian = 9.0 * math.Pi / 180 // 9°E
	scaleFactor     = 0.9996
	falseEasting    = 1500000.0
	falseNorthing   = 0.0
)

// Monte Mario -> WGS84 position-vector Helmert parameters for peninsular
// Italy: translations in metres, rotations in arc-seconds, scale in ppm.
var monteMarioToWGS84 = helmert{
	tx: -104.1, ty: -49.1, tz: -9.9,
	rx: 0.971, ry: -2.917, rz: 0.714,
	ds: -11.68,
}

// helmert is a 7-parameter position-vector datum transformation.
type helmert struct {
	tx, ty, tz float64 // metres
	rx, ry, rz float64 // arc-seconds
	ds         float64 // parts per million
}

const arcSecToRad = math.Pi / (180 * 3600)

// apply shifts a geocentric coordinate onto the target datum.
func (h helmert) apply(x, y, z float64) (float64, float64, float64) {
	rx := h.rx * arcSecToRad
	ry := h.ry * arcSecToRad
	rz := h.rz * arcSecToRad
	s := 1 + h.ds*1e-6

	x2 := h.tx + s*(x-rz*y+ry*z)
	y2 := h.ty + s*(rz*x+y-rx*z)
	z2 := h.tz + s*(-ry*x+rx*y+z)
	return x2, y2, z2
}

// inverse returns the reversed transformation. Negating the parameters
// is the standard first-order inverse and is accurate well below the
// metre level for shifts of this magnitude.
func (h helmert) inverse() helmert {
	return helmert{
		tx: -h.tx, ty: -h.ty, tz: -h.tz,
		rx: -h.rx, ry: -h.ry, rz: -h.rz,
		ds: -h.ds,
	}
}

// geodeticToECEF converts latitude/longitude (radians) on the given
// spheroid to geocentric coordinates at ellipsoid height zero.
func geodeticToECEF(lat, lon float64, s spheroid) (float64, float64, float64) {
	sinLat := math.Sin(lat)
	n := s.a / math.Sqrt(1-s.e2*sinLat*sinLat)
	x := n * math.Cos(lat) * math.Cos(lon)
	y := n * math.Cos(lat) * math.Sin(lon)
	z := n * (1 - s.e2) * sinLat
	return x, y, z
}

// ecefToGeodetic converts geocentric coordinates back to latitude and
// longitude (radians) on the given spheroid, ignoring height. Uses the
// Bowring starting value followed by a short fixed-point refinement.
func ecefToGeodetic(x, y, z float64, s spheroid) (lat, lon float64) {
	lon = math.Atan2(y, x)

	p := math.Hypot(x, y)
	b := s.a * math.Sqrt(1-s.e2)
	theta := math.Atan2(z*s.a, p*b)
	sinT, cosT := math.Sin(theta), math.Cos(theta)
	lat = math.Atan2(z+s.ep2*b*sinT*sinT*sinT, p-s.e2*s.a*cosT*cosT*cosT)

	for i := 0; i < 3; i++ {
		sinLat := math.Sin(lat)
		n := s.a / math.Sqrt(1-s.e2*sinLat*sinLat)
		lat = math.Atan2(z+s.e2*n*sinLat, p)
	}
	return lat, lon
}

// tmInverse converts projected easting/northing to latitude/longitude
// (radians) on the projection spheroid, per the usual Redfearn series.
func tmInverse(east, north float64, s spheroid) (lat, lon float64) {
	e2 := s.e2
	m := (north - falseNorthing) / scaleFactor
	mu := m / (s.a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	tanPhi1 := sinPhi1 / cosPhi1

	c1 := s.ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := s.a / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := s.a * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (east - falseEasting) / (n1 * scaleFactor)

	lat = phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*s.ep2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*s.ep2-3*c1*c1)*d*d*d*d*d*d/720)
	lon = centralMeridian + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*s.ep2+24*t1*t1)*d*d*d*d*d/120)/cosPhi1
	return lat, lon
}

// tmForward converts latitude/longitude (radians) on the projection
// spheroid to projected easting/northing.
func tmForward(lat, lon float64, s spheroid) (east, north float64) {
	e2 := s.e2
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	tanLat := sinLat / cosLat

	n := s.a / math.Sqrt(1-e2*sinLat*sinLat)
	t := tanLat * tanLat
	c := s.ep2 * cosLat * cosLat
	a := (lon - centralMeridian) * cosLat

	m := s.a * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*lat -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*lat) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*lat) -
		(35*e2*e2*e2/3072)*math.Sin(6*lat))

	east = falseEasting + scaleFactor*n*(a+
		(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*s.ep2)*a*a*a*a*a/120)
	north = falseNorthing + scaleFactor*(m+n*tanLat*(a*a/2+
		(5-t+9*c+4*c*c)*a*a*a*a/24+
		(61-58*t+t*t+600*c-330*s.ep2)*a*a*a*a*a*a/720))
	return east, north
}

// GaussBoagaToWGS84 projects an EPSG:3003 easting/northing point to
// WGS84 longitude/latitude. It is a pure function and safe for
// concurrent use.
var GaussBoagaToWGS84 orb.Projection = func(p orb.Point) orb.Point {
	lat, lon := tmInverse(p[0], p[1], international1924)
	x, y, z := geodeticToECEF(lat, lon, international1924)
	x, y, z = monteMarioToWGS84.apply(x, y, z)
	lat, lon = ecefToGeodetic(x, y, z, wgs84Spheroid)
	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}

// WGS84ToGaussBoaga is the reverse transform, used by tests and tooling.
var WGS84ToGaussBoaga orb.Projection = func(p orb.Point) orb.Point {
	lat := p[1] * math.Pi / 180
	lon := p[0] * math.Pi / 180
	x, y, z := geodeticToECEF(lat, lon, wgs84Spheroid)
	x, y, z = monteMarioToWGS84.inverse().apply(x, y, z)
	lat, lon = ecefToGeodetic(x, y, z, international1924)
	east, north := tmForward(lat, lon, international1924)
	return orb.Point{east, north}
}

// Reproject applies the EPSG:3003 -> WGS84 transform to every vertex of
// a geometry. Geometry type, vertex count and vertex order are
// preserved; the input geometry is transformed in place and returned.
func Reproject(g orb.Geometry) orb.Geometry {
	return project.Geometry(g, GaussBoagaToWGS84)
}
