package ephemeris

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

// #region config

// DefaultDesignOffset is the solar arc separating the design instant from the event.
const DefaultDesignOffset = 88.0

const (
	meanSolarMotion = 0.9856 // degrees per day
	designPrecision = time.Second
)

var tracer = otel.Tracer("github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris")

// #endregion config

// #region design-instant

// DesignInstant finds the UTC instant before event at which the Sun stood
// offsetDeg of solar arc behind its event longitude. It bisects on the Sun's
// longitude as reported by src, so the result is consistent with that source.
func DesignInstant(ctx context.Context, src Source, q Query, eventSun, offsetDeg float64) (time.Time, error) {
	if !finite(offsetDeg) || offsetDeg <= 0 || offsetDeg >= 180 {
		return time.Time{}, errs.Validation("design_offset", "must be in (0, 180), got %v", offsetDeg)
	}
	target := facet.Normalize(eventSun - offsetDeg)
	event := q.UTC()

	// The Sun's daily motion varies by about ±3.4% over the year; the window
	// brackets the crossing with margin on both sides.
	meanDays := offsetDeg / meanSolarMotion
	lo := event.Add(-time.Duration(meanDays * 1.12 * float64(24*time.Hour)))
	hi := event.Add(-time.Duration(meanDays * 0.90 * float64(24*time.Hour)))

	// diff(t) = sun(t) - target, wrapped; increasing through zero inside the window.
	diff := func(t time.Time) (float64, error) {
		lon, err := sunLongitude(ctx, src, q.AtUTC(t))
		if err != nil {
			return 0, err
		}
		return wrap180(lon - target), nil
	}

	dLo, err := diff(lo)
	if err != nil {
		return time.Time{}, err
	}
	dHi, err := diff(hi)
	if err != nil {
		return time.Time{}, err
	}
	if dLo > 0 || dHi < 0 {
		return time.Time{}, errs.UpstreamValue("design_instant",
			"sun does not cross %.4f° between %s and %s", target, lo.Format(time.RFC3339), hi.Format(time.RFC3339))
	}

	for hi.Sub(lo) > designPrecision {
		mid := lo.Add(hi.Sub(lo) / 2)
		dMid, err := diff(mid)
		if err != nil {
			return time.Time{}, err
		}
		if dMid < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi.Truncate(designPrecision), nil
}

func sunLongitude(ctx context.Context, src Source, q Query) (float64, error) {
	q.Bodies = []Body{Sun}
	set, err := src.Positions(ctx, q)
	if err != nil {
		return 0, err
	}
	set, err = NormalizeSet(set)
	if err != nil {
		return 0, err
	}
	p, ok := set.Get(Sun)
	if !ok {
		return 0, errs.MissingInput(string(q.Kind), string(Sun))
	}
	return p.Longitude, nil
}

// #endregion design-instant

// #region fetch

// Charts holds the two position sets a profile is built from.
type Charts struct {
	Event  PositionSet `json:"event"`
	Design PositionSet `json:"design"`
}

// Fetch obtains the event set and the design set for q. The full event fetch
// runs concurrently with the design-instant solve. Every returned set has
// passed NormalizeSet.
func Fetch(ctx context.Context, src Source, q Query, offsetDeg float64) (Charts, error) {
	ctx, span := tracer.Start(ctx, "ephemeris.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("instant", q.UTC().Format(time.RFC3339)),
		attribute.Float64("design_offset", offsetDeg),
	)

	charts, err := fetch(ctx, src, q, offsetDeg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Charts{}, err
	}
	span.SetAttributes(attribute.String("design_instant", charts.Design.Instant.Format(time.RFC3339)))
	return charts, nil
}

func fetch(ctx context.Context, src Source, q Query, offsetDeg float64) (Charts, error) {
	if err := ValidateQuery(q); err != nil {
		return Charts{}, err
	}
	q.Kind = KindEvent
	q.Bodies = nil

	var charts Charts
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		set, err := positions(gctx, src, q)
		if err != nil {
			return fmt.Errorf("event positions: %w", err)
		}
		charts.Event = set
		return nil
	})

	g.Go(func() error {
		sun, err := sunLongitude(gctx, src, q)
		if err != nil {
			return fmt.Errorf("event sun: %w", err)
		}
		at, err := DesignInstant(gctx, src, q, sun, offsetDeg)
		if err != nil {
			return fmt.Errorf("design instant: %w", err)
		}
		dq := q.AtUTC(at)
		dq.Kind = KindDesign
		set, err := positions(gctx, src, dq)
		if err != nil {
			return fmt.Errorf("design positions: %w", err)
		}
		charts.Design = set
		return nil
	})

	if err := g.Wait(); err != nil {
		return Charts{}, err
	}
	return charts, nil
}

func positions(ctx context.Context, src Source, q Query) (PositionSet, error) {
	set, err := src.Positions(ctx, q)
	if err != nil {
		return PositionSet{}, err
	}
	set.Kind = q.Kind
	return NormalizeSet(set)
}

// #endregion fetch
