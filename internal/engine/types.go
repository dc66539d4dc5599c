package engine

import (
	"time"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/coherence"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/connectivity"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

// #region config

// ServiceConfig holds every stage's coefficients and the source call budget.
type ServiceConfig struct {
	DesignOffsetDeg float64
	SourceTimeout   time.Duration // per Profile call, covers all source requests
	Scorer          coherence.ScorerConfig
	Interference    interference.EngineConfig
	Projector       projection.ProjectorConfig
	Assembler       reading.AssemblerConfig
}

// DefaultServiceConfig returns the standard coefficients.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DesignOffsetDeg: ephemeris.DefaultDesignOffset,
		SourceTimeout:   10 * time.Second,
		Scorer:          coherence.DefaultScorerConfig(),
		Interference:    interference.DefaultEngineConfig(),
		Projector:       projection.DefaultProjectorConfig(),
		Assembler:       reading.DefaultAssemblerConfig(),
	}
}

// #endregion config

// #region inputs

// BirthInput locates the event. Instant's wall clock is read in TZOffset.
type BirthInput struct {
	Subject   string        `json:"subject,omitempty"`
	Instant   time.Time     `json:"instant"`
	TZOffset  time.Duration `json:"tz_offset"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
}

// Query converts b into a position source query.
func (b BirthInput) Query() ephemeris.Query {
	return ephemeris.Query{
		Instant:   b.Instant,
		TZOffset:  b.TZOffset,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		Kind:      ephemeris.KindEvent,
	}
}

// ReadingInput is everything a full reading needs.
type ReadingInput struct {
	Birth    BirthInput
	State    coherence.Snapshot
	Previous *int // previous coherence score, nil for a first reading
}

// #endregion inputs

// #region results

// ProfileResult is the state-independent half of a reading.
type ProfileResult struct {
	Charts       ephemeris.Charts     `json:"charts"`
	Profile      profile.PrimeProfile `json:"profile"`
	Connectivity connectivity.Result  `json:"connectivity"`
}

// StateResult is the state-dependent half. Interference is nil when no
// profile was supplied.
type StateResult struct {
	Snapshot     coherence.Snapshot    `json:"snapshot"`
	Coherence    coherence.Result      `json:"coherence"`
	Interference *interference.Result  `json:"interference"`
	Trajectory   projection.Trajectory `json:"trajectory"`
}

// #endregion results
