package ephemeris

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

// #region analytic

// Analytic is a built-in low-precision geocentric ephemeris: mean orbital
// elements for the planets and Chiron, a truncated lunar theory, and the mean
// lunar node. Accuracy is on the order of arc-minutes for the inner bodies,
// which is well inside one 5.625° archetype arc. Longitudes are tropical, of date.
type Analytic struct {
	closed atomic.Bool
}

// NewAnalytic creates a ready-to-use analytic source.
func NewAnalytic() *Analytic {
	return &Analytic{}
}

// Close releases the source. Later calls to Positions fail.
func (a *Analytic) Close() error {
	a.closed.Store(true)
	return nil
}

// errClosed is the cause reported by a closed source.
var errClosed = errors.New("source closed")

// Positions computes the requested bodies at q's instant. The observer location
// is validated but does not shift geocentric longitudes.
func (a *Analytic) Positions(ctx context.Context, q Query) (PositionSet, error) {
	if a.closed.Load() {
		return PositionSet{}, errs.Upstream("analytic positions", errClosed)
	}
	if err := ctx.Err(); err != nil {
		return PositionSet{}, errs.Upstream("analytic positions", err)
	}
	if err := ValidateQuery(q); err != nil {
		return PositionSet{}, err
	}

	instant := q.UTC()
	bodies := q.Bodies
	if len(bodies) == 0 {
		bodies = ComputedBodies
	}

	d := dayNumber(instant)
	set := PositionSet{Kind: q.Kind, Instant: instant, Positions: make(map[Body]BodyPosition, len(bodies))}
	for _, b := range bodies {
		lon, lat, dist := geocentric(b, d)
		speed := dailyMotion(b, d)
		set.Positions[b] = BodyPosition{
			Body:      b,
			Longitude: facet.Normalize(lon),
			Latitude:  &lat,
			Distance:  &dist,
			Speed:     &speed,
		}
	}
	return set, nil
}

// #endregion analytic

// #region time

// dayNumber returns days since 1999-12-31 00:00 UT (JD 2451543.5).
func dayNumber(t time.Time) float64 {
	jd := float64(t.UnixNano())/float64(24*time.Hour) + 2440587.5
	return jd - 2451543.5
}

// #endregion time

// #region elements

// elements are Keplerian orbital elements at day number d.
type elements struct {
	N, i, w float64 // ascending node, inclination, argument of perihelion (deg)
	a, e    float64 // semi-major axis (AU, Earth radii for the Moon), eccentricity
	M       float64 // mean anomaly (deg)
}

func sunElements(d float64) elements {
	return elements{w: 282.9404 + 4.70935e-5*d, a: 1, e: 0.016709 - 1.151e-9*d, M: 356.0470 + 0.9856002585*d}
}

func moonElements(d float64) elements {
	return elements{
		N: 125.1228 - 0.0529538083*d, i: 5.1454, w: 318.0634 + 0.1643573223*d,
		a: 60.2666, e: 0.054900, M: 115.3654 + 13.0649929509*d,
	}
}

var planetElements = map[Body]func(d float64) elements{
	Mercury: func(d float64) elements {
		return elements{48.3313 + 3.24587e-5*d, 7.0047 + 5.00e-8*d, 29.1241 + 1.01444e-5*d, 0.387098, 0.205635 + 5.59e-10*d, 168.6562 + 4.0923344368*d}
	},
	Venus: func(d float64) elements {
		return elements{76.6799 + 2.46590e-5*d, 3.3946 + 2.75e-8*d, 54.8910 + 1.38374e-5*d, 0.723330, 0.006773 - 1.302e-9*d, 48.0052 + 1.6021302244*d}
	},
	Mars: func(d float64) elements {
		return elements{49.5574 + 2.11081e-5*d, 1.8497 - 1.78e-8*d, 286.5016 + 2.92961e-5*d, 1.523688, 0.093405 + 2.516e-9*d, 18.6021 + 0.5240207766*d}
	},
	Jupiter: func(d float64) elements {
		return elements{100.4542 + 2.76854e-5*d, 1.3030 - 1.557e-7*d, 273.8777 + 1.64505e-5*d, 5.20256, 0.048498 + 4.469e-9*d, 19.8950 + 0.0830853001*d}
	},
	Saturn: func(d float64) elements {
		return elements{113.6634 + 2.38980e-5*d, 2.4886 - 1.081e-7*d, 339.3939 + 2.97661e-5*d, 9.55475, 0.055546 - 9.499e-9*d, 316.9670 + 0.0334442282*d}
	},
	Uranus: func(d float64) elements {
		return elements{74.0005 + 1.3978e-5*d, 0.7733 + 1.9e-8*d, 96.6612 + 3.0565e-5*d, 19.18171 - 1.55e-8*d, 0.047318 + 7.45e-9*d, 142.5905 + 0.011725806*d}
	},
	Neptune: func(d float64) elements {
		return elements{131.7806 + 3.0173e-5*d, 1.7700 - 2.55e-7*d, 272.8461 - 6.027e-6*d, 30.05826 + 3.313e-8*d, 0.008606 + 2.15e-9*d, 260.2471 + 0.005995147*d}
	},
	// Chiron: osculating elements near perihelion (1996-02-14), node and
	// perihelion precessed at the general rate.
	Chiron: func(d float64) elements {
		return elements{209.30 + 3.82e-5*d, 6.93, 339.25 + 3.82e-5*d, 13.648, 0.3786, 27.66 + 0.019548*d}
	},
}

// #endregion elements

// #region kepler

// heliocentric returns heliocentric ecliptic rectangular coordinates.
func (el elements) heliocentric() (x, y, z float64) {
	M := rad(el.M)
	E := M + el.e*math.Sin(M)*(1+el.e*math.Cos(M))
	for k := 0; k < 10; k++ {
		dE := (E - el.e*math.Sin(E) - M) / (1 - el.e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < 1e-12 {
			break
		}
	}
	xv := el.a * (math.Cos(E) - el.e)
	yv := el.a * math.Sqrt(1-el.e*el.e) * math.Sin(E)
	v := math.Atan2(yv, xv)
	r := math.Hypot(xv, yv)

	N, i, vw := rad(el.N), rad(el.i), v+rad(el.w)
	x = r * (math.Cos(N)*math.Cos(vw) - math.Sin(N)*math.Sin(vw)*math.Cos(i))
	y = r * (math.Sin(N)*math.Cos(vw) + math.Cos(N)*math.Sin(vw)*math.Cos(i))
	z = r * math.Sin(vw) * math.Sin(i)
	return x, y, z
}

// #endregion kepler

// #region geocentric

const earthRadiusAU = 4.26352e-5

// geocentric returns ecliptic longitude, latitude (deg) and distance (AU) of b.
func geocentric(b Body, d float64) (lon, lat, dist float64) {
	sun := sunElements(d)
	xs, ys, _ := sun.heliocentric() // Sun as seen from Earth

	switch b {
	case Sun:
		return deg(math.Atan2(ys, xs)), 0, math.Hypot(xs, ys)
	case Moon:
		return moonPosition(d, sun)
	case NorthNode:
		return moonElements(d).N, 0, 0
	case Pluto:
		x, y, z := plutoHeliocentric(d)
		return toGeocentric(x+xs, y+ys, z)
	}

	el, ok := planetElements[b]
	if !ok {
		return 0, 0, 0
	}
	x, y, z := el(d).heliocentric()
	lonH := math.Atan2(y, x)
	latH := math.Atan2(z, math.Hypot(x, y))
	r := math.Sqrt(x*x + y*y + z*z)
	if dl := perturbation(b, d); dl != 0 {
		lonH += rad(dl)
		x = r * math.Cos(latH) * math.Cos(lonH)
		y = r * math.Cos(latH) * math.Sin(lonH)
	}
	return toGeocentric(x+xs, y+ys, z)
}

func toGeocentric(x, y, z float64) (lon, lat, dist float64) {
	return deg(math.Atan2(y, x)), deg(math.Atan2(z, math.Hypot(x, y))), math.Sqrt(x*x + y*y + z*z)
}

// moonPosition applies the largest periodic terms of the lunar theory.
func moonPosition(d float64, sun elements) (lon, lat, dist float64) {
	m := moonElements(d)
	x, y, z := m.heliocentric() // geocentric for the Moon, Earth radii
	lon = deg(math.Atan2(y, x))
	lat = deg(math.Atan2(z, math.Hypot(x, y)))
	r := math.Sqrt(x*x + y*y + z*z)

	Ms, Mm := rad(sun.M), rad(m.M)
	Ls := sun.M + sun.w
	Lm := m.M + m.w + m.N
	D := rad(Lm - Ls)
	F := rad(Lm - m.N)

	lon += -1.274*math.Sin(Mm-2*D) +
		0.658*math.Sin(2*D) -
		0.186*math.Sin(Ms) -
		0.059*math.Sin(2*Mm-2*D) -
		0.057*math.Sin(Mm-2*D+Ms) +
		0.053*math.Sin(Mm+2*D) +
		0.046*math.Sin(2*D-Ms) +
		0.041*math.Sin(Mm-Ms) -
		0.035*math.Sin(D) -
		0.031*math.Sin(Mm+Ms) -
		0.015*math.Sin(2*F-2*D) +
		0.011*math.Sin(Mm-4*D)
	lat += -0.173*math.Sin(F-2*D) -
		0.055*math.Sin(Mm-F-2*D) -
		0.046*math.Sin(Mm+F-2*D) +
		0.033*math.Sin(F+2*D) +
		0.017*math.Sin(2*Mm+F)
	r += -0.58*math.Cos(Mm-2*D) - 0.46*math.Cos(2*D)
	return lon, lat, r * earthRadiusAU
}

// perturbation returns the longitude correction (deg) for the giant planets.
func perturbation(b Body, d float64) float64 {
	Mj := rad(planetElements[Jupiter](d).M)
	Ms := rad(planetElements[Saturn](d).M)
	Mu := rad(planetElements[Uranus](d).M)
	switch b {
	case Jupiter:
		return -0.332*math.Sin(2*Mj-5*Ms-rad(67.6)) -
			0.056*math.Sin(2*Mj-2*Ms+rad(21)) +
			0.042*math.Sin(3*Mj-5*Ms+rad(21)) -
			0.036*math.Sin(Mj-2*Ms) +
			0.022*math.Cos(Mj-Ms) +
			0.023*math.Sin(2*Mj-3*Ms+rad(52)) -
			0.016*math.Sin(Mj-5*Ms-rad(69))
	case Saturn:
		return 0.812*math.Sin(2*Mj-5*Ms-rad(67.6)) -
			0.229*math.Cos(2*Mj-4*Ms-rad(2)) +
			0.119*math.Sin(Mj-2*Ms-rad(3)) +
			0.046*math.Sin(2*Mj-6*Ms-rad(69)) +
			0.014*math.Sin(Mj-3*Ms+rad(32))
	case Uranus:
		return 0.040*math.Sin(Ms-2*Mu+rad(6)) +
			0.035*math.Sin(Ms-3*Mu+rad(33)) -
			0.015*math.Sin(Mj-Mu+rad(20))
	}
	return 0
}

// plutoHeliocentric uses a fitted periodic series valid for roughly 1800-2200.
func plutoHeliocentric(d float64) (x, y, z float64) {
	S := rad(50.03 + 0.033459652*d)
	P := rad(238.95 + 0.003968789*d)
	lon := 238.9508 + 0.00400703*d -
		19.799*math.Sin(P) + 19.848*math.Cos(P) +
		0.897*math.Sin(2*P) - 4.956*math.Cos(2*P) +
		0.610*math.Sin(3*P) + 1.211*math.Cos(3*P) -
		0.341*math.Sin(4*P) - 0.190*math.Cos(4*P) +
		0.128*math.Sin(5*P) - 0.034*math.Cos(5*P) -
		0.038*math.Sin(6*P) + 0.031*math.Cos(6*P) +
		0.020*math.Sin(S-P) - 0.010*math.Cos(S-P)
	lat := -3.9082 -
		5.453*math.Sin(P) - 14.975*math.Cos(P) +
		3.527*math.Sin(2*P) + 1.673*math.Cos(2*P) -
		1.051*math.Sin(3*P) + 0.328*math.Cos(3*P) +
		0.179*math.Sin(4*P) - 0.292*math.Cos(4*P) +
		0.019*math.Sin(5*P) + 0.100*math.Cos(5*P) -
		0.031*math.Sin(6*P) - 0.026*math.Cos(6*P) +
		0.011*math.Cos(S-P)
	r := 40.72 +
		6.68*math.Sin(P) + 6.90*math.Cos(P) -
		1.18*math.Sin(2*P) - 0.03*math.Cos(2*P) +
		0.15*math.Sin(3*P) - 0.14*math.Cos(3*P)
	lo, la := rad(lon), rad(lat)
	return r * math.Cos(la) * math.Cos(lo), r * math.Cos(la) * math.Sin(lo), r * math.Sin(la)
}

// dailyMotion is the central-difference speed in degrees per day.
func dailyMotion(b Body, d float64) float64 {
	before, _, _ := geocentric(b, d-0.5)
	after, _, _ := geocentric(b, d+0.5)
	return wrap180(after - before)
}

// #endregion geocentric

// #region helpers

func rad(x float64) float64 { return x * math.Pi / 180 }
func deg(x float64) float64 { return x * 180 / math.Pi }

// wrap180 maps an angle difference into [-180, 180).
func wrap180(x float64) float64 {
	return facet.Normalize(x+180) - 180
}

// #endregion helpers
