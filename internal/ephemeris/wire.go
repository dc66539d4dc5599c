package ephemeris

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
)

// Wire layout of the Positions RPC. Both messages are google.protobuf.Struct.
//
//	request:  {instant: "2006-01-02T15:04:05", tz_offset_seconds, latitude, longitude, kind, bodies: [..]}
//	response: {kind, instant: RFC3339 UTC, positions: {<body>: {longitude, latitude?, distance?, speed?}}}
const wallClockLayout = "2006-01-02T15:04:05.999999999"

// #region query

func encodeQuery(q Query) (*structpb.Struct, error) {
	bodies := make([]any, 0, len(q.Bodies))
	for _, b := range q.Bodies {
		bodies = append(bodies, string(b))
	}
	s, err := structpb.NewStruct(map[string]any{
		"instant":           q.Instant.Format(wallClockLayout),
		"tz_offset_seconds": q.TZOffset.Seconds(),
		"latitude":          q.Latitude,
		"longitude":         q.Longitude,
		"kind":              string(q.Kind),
		"bodies":            bodies,
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return s, nil
}

func decodeQuery(s *structpb.Struct) (Query, error) {
	f := s.GetFields()
	raw := f["instant"].GetStringValue()
	if raw == "" {
		return Query{}, errs.Validation("instant", "must be set")
	}
	instant, err := time.Parse(wallClockLayout, raw)
	if err != nil {
		return Query{}, errs.Validation("instant", "malformed %q", raw)
	}
	q := Query{
		Instant:   instant,
		TZOffset:  time.Duration(f["tz_offset_seconds"].GetNumberValue() * float64(time.Second)),
		Latitude:  f["latitude"].GetNumberValue(),
		Longitude: f["longitude"].GetNumberValue(),
		Kind:      Kind(f["kind"].GetStringValue()),
	}
	for _, v := range f["bodies"].GetListValue().GetValues() {
		q.Bodies = append(q.Bodies, Body(v.GetStringValue()))
	}
	return q, nil
}

// #endregion query

// #region set

func encodeSet(set PositionSet) (*structpb.Struct, error) {
	positions := make(map[string]any, len(set.Positions))
	for b, p := range set.Positions {
		entry := map[string]any{"longitude": p.Longitude}
		if p.Latitude != nil {
			entry["latitude"] = *p.Latitude
		}
		if p.Distance != nil {
			entry["distance"] = *p.Distance
		}
		if p.Speed != nil {
			entry["speed"] = *p.Speed
		}
		positions[string(b)] = entry
	}
	s, err := structpb.NewStruct(map[string]any{
		"kind":      string(set.Kind),
		"instant":   set.Instant.UTC().Format(time.RFC3339Nano),
		"positions": positions,
	})
	if err != nil {
		return nil, fmt.Errorf("encode positions: %w", err)
	}
	return s, nil
}

// decodeSet reads a response. Field-level problems are upstream failures
// because the bytes came from the remote source.
func decodeSet(s *structpb.Struct) (PositionSet, error) {
	f := s.GetFields()
	instant, err := time.Parse(time.RFC3339Nano, f["instant"].GetStringValue())
	if err != nil {
		return PositionSet{}, errs.UpstreamValue("instant", "malformed %q", f["instant"].GetStringValue())
	}
	set := PositionSet{
		Kind:      Kind(f["kind"].GetStringValue()),
		Instant:   instant.UTC(),
		Positions: map[Body]BodyPosition{},
	}
	for name, v := range f["positions"].GetStructValue().GetFields() {
		fields := v.GetStructValue().GetFields()
		lon, ok := fields["longitude"]
		if !ok {
			return PositionSet{}, errs.UpstreamValue(name, "longitude missing")
		}
		set.Positions[Body(name)] = BodyPosition{
			Body:      Body(name),
			Longitude: lon.GetNumberValue(),
			Latitude:  optionalNumber(fields, "latitude"),
			Distance:  optionalNumber(fields, "distance"),
			Speed:     optionalNumber(fields, "speed"),
		}
	}
	return set, nil
}

func optionalNumber(fields map[string]*structpb.Value, key string) *float64 {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	n := v.GetNumberValue()
	return &n
}

// #endregion set
