// Package engine wires the pipeline stages behind the two entry points:
// Profile, which depends only on the event, and State, which scores a
// subjective-state snapshot against an optional profile. Reading runs both and
// assembles the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/coherence"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/connectivity"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/eval"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/logging"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/metrics"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

// Operation names used in logs and metrics.
const (
	opProfile = "profile"
	opState   = "state"
	opReading = "reading"
)

// #region service

// Service runs the pipeline. Its tables are loaded once in NewService and
// shared read-only, so a Service is safe for concurrent use. It does not own
// src; the caller closes it.
type Service struct {
	config     ServiceConfig
	src        ephemeris.Source
	logger     *zap.Logger
	metrics    *metrics.Metrics
	archetypes *facet.Table
	builder    *profile.Builder
	classifier *connectivity.Classifier
	scorer     *coherence.Scorer
	engine     *interference.Engine
	projector  *projection.Projector
	assembler  *reading.Assembler
}

// NewService loads the embedded tables and builds every stage. logger and m
// may be nil.
func NewService(config ServiceConfig, src ephemeris.Source, logger *zap.Logger, m *metrics.Metrics) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if config.SourceTimeout <= 0 {
		config.SourceTimeout = DefaultServiceConfig().SourceTimeout
	}

	archetypes, err := facet.DefaultTable()
	if err != nil {
		return nil, fmt.Errorf("load archetypes: %w", err)
	}
	builder, err := profile.NewBuilder(facet.NewResolver(archetypes), profile.DefaultSlots())
	if err != nil {
		return nil, fmt.Errorf("build slots: %w", err)
	}
	classifier, err := connectivity.DefaultClassifier(archetypes)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	catalog, err := interference.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("load corrections: %w", err)
	}
	eng, err := interference.NewEngine(config.Interference, catalog, archetypes)
	if err != nil {
		return nil, fmt.Errorf("build interference engine: %w", err)
	}
	assembler, err := reading.NewAssembler(config.Assembler, archetypes)
	if err != nil {
		return nil, fmt.Errorf("build assembler: %w", err)
	}

	return &Service{
		config:     config,
		src:        src,
		logger:     logger,
		metrics:    m,
		archetypes: archetypes,
		builder:    builder,
		classifier: classifier,
		scorer:     coherence.NewScorer(config.Scorer),
		engine:     eng,
		projector:  projection.NewProjector(config.Projector),
		assembler:  assembler,
	}, nil
}

// Archetypes returns the archetype table the service resolves against.
func (s *Service) Archetypes() *facet.Table {
	return s.archetypes
}

// #endregion service

// #region profile

// Profile fetches both charts for in and derives the profile and its
// connectivity. It is the only operation that calls the position source.
func (s *Service) Profile(ctx context.Context, in BirthInput) (res ProfileResult, err error) {
	defer func() { s.finish(opProfile, err) }()
	if s.src == nil {
		return ProfileResult{}, errs.Upstream("fetch positions", errors.New("no position source configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.SourceTimeout)
	defer cancel()

	start := time.Now()
	charts, err := ephemeris.Fetch(ctx, s.src, in.Query(), s.config.DesignOffsetDeg)
	s.metrics.ObserveStage(metrics.StageFetch, start)
	if err != nil {
		return ProfileResult{}, upstream("fetch positions", err)
	}
	return s.profileFromCharts(charts)
}

// ProfileFromPositions derives the profile from sets fetched elsewhere. Both
// sets pass the same boundary checks as source output.
func (s *Service) ProfileFromPositions(event, design ephemeris.PositionSet) (res ProfileResult, err error) {
	defer func() { s.finish(opProfile, err) }()
	return s.profileFromSets(event, design)
}

func (s *Service) profileFromSets(event, design ephemeris.PositionSet) (ProfileResult, error) {
	event, err := ephemeris.NormalizeSet(event)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("event positions: %w", err)
	}
	design, err = ephemeris.NormalizeSet(design)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("design positions: %w", err)
	}
	return s.profileFromCharts(ephemeris.Charts{Event: event, Design: design})
}

func (s *Service) profileFromCharts(charts ephemeris.Charts) (ProfileResult, error) {
	defer s.metrics.ObserveStage(metrics.StageProfile, time.Now())

	p, err := s.builder.Build(charts.Event, charts.Design)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("build profile: %w", err)
	}
	conn, err := s.classifier.Classify(p.Activated())
	if err != nil {
		return ProfileResult{}, fmt.Errorf("classify connectivity: %w", err)
	}
	return ProfileResult{Charts: charts, Profile: p, Connectivity: conn}, nil
}

// #endregion profile

// #region state

// State scores snap. With a profile it also evaluates interference and cites
// the strongest and weakest slots in the trajectory. previous is the prior
// coherence score, if any.
func (s *Service) State(snap coherence.Snapshot, prof *ProfileResult, previous *int) (res StateResult, err error) {
	defer func() { s.finish(opState, err) }()
	return s.state(snap, prof, previous)
}

func (s *Service) state(snap coherence.Snapshot, prof *ProfileResult, previous *int) (StateResult, error) {
	defer s.metrics.ObserveStage(metrics.StageState, time.Now())

	coh, err := s.scorer.Score(snap)
	if err != nil {
		return StateResult{}, err
	}
	res := StateResult{Snapshot: snap, Coherence: coh}

	var entries []interference.Entry
	if prof != nil {
		inter, err := s.engine.Evaluate(prof.Profile, coh.Amplifier, coh.Amplitudes)
		if err != nil {
			return StateResult{}, fmt.Errorf("evaluate interference: %w", err)
		}
		res.Interference = &inter
		entries = inter.Entries
	}

	res.Trajectory, err = s.projector.Project(coh.Score, previous, entries)
	if err != nil {
		return StateResult{}, fmt.Errorf("project trajectory: %w", err)
	}
	return res, nil
}

// #endregion state

// #region reading

// Reading runs the full pipeline for in and returns a checked Reading.
func (s *Service) Reading(ctx context.Context, in ReadingInput) (reading.Reading, error) {
	// Validate the snapshot before spending a source round trip on it.
	if err := coherence.Validate(in.State); err != nil {
		s.finish(opReading, err)
		return reading.Reading{}, err
	}
	prof, err := s.Profile(ctx, in.Birth)
	if err != nil {
		s.finish(opReading, err)
		return reading.Reading{}, err
	}
	return s.assemble(in.Birth.Subject, prof, in.State, in.Previous)
}

// ReadingFromPositions runs the pipeline over sets fetched elsewhere. Equal
// inputs yield readings that differ only in ID and CreatedAt.
func (s *Service) ReadingFromPositions(subject string, event, design ephemeris.PositionSet, snap coherence.Snapshot, previous *int) (reading.Reading, error) {
	prof, err := s.profileFromSets(event, design)
	if err != nil {
		s.finish(opReading, err)
		return reading.Reading{}, err
	}
	return s.assemble(subject, prof, snap, previous)
}

func (s *Service) assemble(subject string, prof ProfileResult, snap coherence.Snapshot, previous *int) (r reading.Reading, err error) {
	defer func() { s.finish(opReading, err) }()

	st, err := s.state(snap, &prof, previous)
	if err != nil {
		return reading.Reading{}, err
	}

	start := time.Now()
	r = s.assembler.Assemble(reading.Input{
		Subject:       subject,
		EventInstant:  prof.Charts.Event.Instant,
		DesignInstant: prof.Charts.Design.Instant,
		Profile:       prof.Profile,
		Connectivity:  prof.Connectivity,
		State:         st.Snapshot,
		Coherence:     st.Coherence,
		Interference:  *st.Interference,
		Trajectory:    st.Trajectory,
	})
	s.metrics.ObserveStage(metrics.StageAssemble, start)

	if err := eval.Check(r); err != nil {
		return reading.Reading{}, fmt.Errorf("check reading: %w", err)
	}
	s.metrics.ObserveReading(r)
	logging.LogReading(s.logger, r)
	return r, nil
}

// #endregion reading

// #region helpers

// finish records the outcome of one operation.
func (s *Service) finish(op string, err error) {
	s.metrics.ObserveRequest(op, err)
	if err == nil {
		s.logger.Debug("operation complete", zap.String("operation", op))
		return
	}
	level := s.logger.Debug
	if errors.Is(err, errs.ErrUpstream) || errors.Is(err, errs.ErrInvariant) {
		level = s.logger.Warn
	}
	level("operation failed",
		zap.String("operation", op),
		zap.String("kind", string(errs.KindOf(err))),
		zap.String("field", errs.FieldOf(err)),
		zap.Error(err))
}

// upstream tags source failures that carry no kind of their own. Validation
// and missing-input errors keep their kind.
func upstream(op string, err error) error {
	if errs.KindOf(err) != "" {
		return err
	}
	return errs.Upstream(op, err)
}

// #endregion helpers
