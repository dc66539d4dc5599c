package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/coherence"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/engine"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
)

// #region birth-flags

// wallLayouts are the accepted --date forms, all read as local wall clock.
var wallLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type birthFlags struct {
	subject string
	date    string
	tz      string
	lat     float64
	lon     float64
}

func (b *birthFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&b.subject, "subject", "", "subject identifier for logs and the archive")
	f.StringVar(&b.date, "date", "", `event wall clock, e.g. "1990-06-15T14:30" (an RFC 3339 timestamp sets --tz too)`)
	f.StringVar(&b.tz, "tz", "+00:00", `UTC offset of --date, e.g. "+02:00" or "-5h30m"`)
	f.Float64Var(&b.lat, "lat", 0, "latitude in degrees, [-90, 90]")
	f.Float64Var(&b.lon, "lon", 0, "longitude in degrees, [-180, 180]")
}

// given reports whether an event moment was supplied.
func (b *birthFlags) given() bool {
	return b.date != ""
}

func (b *birthFlags) input() (engine.BirthInput, error) {
	if b.date == "" {
		return engine.BirthInput{}, errs.Validation("date", "event date is required")
	}
	in := engine.BirthInput{Subject: b.subject, Latitude: b.lat, Longitude: b.lon}

	if t, err := time.Parse(time.RFC3339, b.date); err == nil {
		_, off := t.Zone()
		in.Instant = t
		in.TZOffset = time.Duration(off) * time.Second
		return in, nil
	}
	for _, layout := range wallLayouts {
		if t, err := time.Parse(layout, b.date); err == nil {
			in.Instant = t
			break
		}
	}
	if in.Instant.IsZero() {
		return engine.BirthInput{}, errs.Validation("date", "cannot parse %q", b.date)
	}
	off, err := parseOffset(b.tz)
	if err != nil {
		return engine.BirthInput{}, err
	}
	in.TZOffset = off
	return in, nil
}

// parseOffset accepts "+HH:MM", "-HH:MM", "Z", "UTC" or a Go duration.
func parseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "Z", "UTC":
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	sign := time.Duration(1)
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	hh, mm, ok := strings.Cut(s, ":")
	h, herr := strconv.Atoi(hh)
	m := 0
	var merr error
	if ok {
		m, merr = strconv.Atoi(mm)
	}
	if herr != nil || merr != nil || m < 0 || m >= 60 {
		return 0, errs.Validation("tz", "cannot parse offset %q", s)
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

// #endregion birth-flags

// #region state-flags

type stateFlags struct {
	file       string
	noise      float64
	tension    float64
	turbulence float64
	breath     int
	previous   int
}

func (s *stateFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.file, "state-file", "", "read the snapshot from a JSON file instead of flags")
	f.Float64Var(&s.noise, "noise", 0, "mental noise, [0, 10]")
	f.Float64Var(&s.tension, "tension", 0, "body tension, [0, 10]")
	f.Float64Var(&s.turbulence, "turbulence", 0, "emotional turbulence, [0, 10]")
	f.IntVar(&s.breath, "breath", 0, "breath completion, 0 or 1")
	f.IntVar(&s.previous, "previous", 0, "previous coherence score for the trend")
}

// axisFlags names the flags a snapshot needs when --state-file is absent.
var axisFlags = []string{"noise", "tension", "turbulence", "breath"}

// snapshot builds the snapshot from the flags set on cmd or from --state-file.
// Every axis must be given explicitly; nothing defaults to zero.
func (s *stateFlags) snapshot(cmd *cobra.Command) (coherence.Snapshot, error) {
	if s.file != "" {
		for _, name := range axisFlags {
			if cmd.Flags().Changed(name) {
				return coherence.Snapshot{}, errs.Validation(name, "cannot be combined with --state-file")
			}
		}
		return readSnapshot(s.file)
	}
	for _, name := range axisFlags {
		if !cmd.Flags().Changed(name) {
			return coherence.Snapshot{}, errs.Validation(name, "required")
		}
	}
	return coherence.Snapshot{
		MentalNoise:         s.noise,
		BodyTension:         s.tension,
		EmotionalTurbulence: s.turbulence,
		BreathCompletion:    s.breath,
	}, nil
}

// snapshotFile mirrors coherence.Snapshot with pointers so absent keys are
// detectable.
type snapshotFile struct {
	MentalNoise         *float64 `json:"mental_noise"`
	BodyTension         *float64 `json:"body_tension"`
	EmotionalTurbulence *float64 `json:"emotional_turbulence"`
	BreathCompletion    *int     `json:"breath_completion"`
}

func readSnapshot(path string) (coherence.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coherence.Snapshot{}, fmt.Errorf("read state file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f snapshotFile
	if err := dec.Decode(&f); err != nil {
		return coherence.Snapshot{}, errs.Validation("state-file", "parse %s: %v", path, err)
	}
	switch {
	case f.MentalNoise == nil:
		return coherence.Snapshot{}, errs.Validation("mental_noise", "required")
	case f.BodyTension == nil:
		return coherence.Snapshot{}, errs.Validation("body_tension", "required")
	case f.EmotionalTurbulence == nil:
		return coherence.Snapshot{}, errs.Validation("emotional_turbulence", "required")
	case f.BreathCompletion == nil:
		return coherence.Snapshot{}, errs.Validation("breath_completion", "required")
	}
	return coherence.Snapshot{
		MentalNoise:         *f.MentalNoise,
		BodyTension:         *f.BodyTension,
		EmotionalTurbulence: *f.EmotionalTurbulence,
		BreathCompletion:    *f.BreathCompletion,
	}, nil
}

// previousScore returns --previous when it was set on cmd.
func (s *stateFlags) previousScore(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("previous") {
		return nil
	}
	p := s.previous
	return &p
}

// #endregion state-flags
