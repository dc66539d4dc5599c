package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/archive"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

// #region helpers

// run executes the root command with args against a private archive.
func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	cli := &CLI{out: &out}
	root := newRootCommand(cli)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	cli.close()
	return out.Bytes(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	t.Setenv("RESONANCE_ARCHIVE_PATH", path)
	t.Setenv("RESONANCE_LOG_LEVEL", "error")
	t.Setenv("RESONANCE_EPHEMERIS_MODE", "analytic")
	return path
}

var birthArgs = []string{
	"--subject", "ana",
	"--date", "1990-06-15T14:30",
	"--tz", "+02:00",
	"--lat", "52.52",
	"--lon", "13.40",
}

var calmArgs = []string{"--noise", "2", "--tension", "1", "--turbulence", "3", "--breath", "1"}

func writeStateFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// #endregion helpers

// #region flag-tests

func TestParseOffset(t *testing.T) {
	cases := map[string]time.Duration{
		"":       0,
		"Z":      0,
		"utc":    0,
		"+02:00": 2 * time.Hour,
		"-05:30": -(5*time.Hour + 30*time.Minute),
		"+9":     9 * time.Hour,
		"-3h30m": -(3*time.Hour + 30*time.Minute),
	}
	for in, want := range cases {
		got, err := parseOffset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"+02:75", "abc", "+"} {
		_, err := parseOffset(bad)
		assert.ErrorIs(t, err, errs.ErrValidation, bad)
	}
}

func TestBirthInput(t *testing.T) {
	b := birthFlags{date: "1990-06-15 14:30", tz: "+02:00", lat: 1, lon: 2}
	in, err := b.input()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, in.TZOffset)
	assert.Equal(t, time.Date(1990, 6, 15, 12, 30, 0, 0, time.UTC), in.Query().UTC())

	b = birthFlags{date: "1990-06-15T14:30:00-04:00", tz: "+09:00"}
	in, err = b.input()
	require.NoError(t, err)
	assert.Equal(t, -4*time.Hour, in.TZOffset, "an RFC 3339 offset wins over --tz")

	_, err = (&birthFlags{}).input()
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = (&birthFlags{date: "June 15"}).input()
	assert.ErrorIs(t, err, errs.ErrValidation)
}

// #endregion flag-tests

// #region command-tests

func TestProfileCommand(t *testing.T) {
	setupEnv(t)
	out, err := run(t, append([]string{"profile"}, birthArgs...)...)
	require.NoError(t, err)

	var res map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Contains(t, res, "profile")
	assert.Contains(t, res, "connectivity")
}

func TestStateCommand(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "state", "--noise", "4", "--tension", "3", "--turbulence", "5", "--breath", "0", "--previous", "70")
	require.NoError(t, err)

	var res struct {
		Coherence struct {
			Score int `json:"score"`
		} `json:"coherence"`
		Interference json.RawMessage `json:"interference"`
	}
	require.NoError(t, json.Unmarshal(out, &res))
	assert.InDelta(t, 50, res.Coherence.Score, 50)
	assert.Equal(t, "null", string(res.Interference), "no profile without --date")
}

func TestReadingArchivesAndChainsTrend(t *testing.T) {
	path := setupEnv(t)
	args := append([]string{"reading", "--noise", "9", "--tension", "9", "--turbulence", "9", "--breath", "0"}, birthArgs...)
	out, err := run(t, args...)
	require.NoError(t, err)
	first, err := reading.Parse(out)
	require.NoError(t, err)
	assert.Nil(t, first.Trajectory.Previous)

	args = append([]string{"reading", "--noise", "0", "--tension", "0", "--turbulence", "0", "--breath", "1"}, birthArgs...)
	out, err = run(t, args...)
	require.NoError(t, err)
	second, err := reading.Parse(out)
	require.NoError(t, err)
	require.NotNil(t, second.Trajectory.Previous)
	assert.Equal(t, first.Coherence.Score, *second.Trajectory.Previous)
	assert.Equal(t, projection.TrendAscending, second.Trajectory.Trend)

	store, err := archive.NewStore(path)
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List("ana", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
}

func TestReadingNoArchive(t *testing.T) {
	setupEnv(t)
	args := append(append([]string{"reading", "--no-archive"}, calmArgs...), birthArgs...)
	_, err := run(t, args...)
	require.NoError(t, err)

	out, err := run(t, "history", "--subject", "ana")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestHistoryByID(t *testing.T) {
	setupEnv(t)
	out, err := run(t, append(append([]string{"reading"}, calmArgs...), birthArgs...)...)
	require.NoError(t, err)
	r, err := reading.Parse(out)
	require.NoError(t, err)

	out, err = run(t, "history", "--id", r.ID)
	require.NoError(t, err)
	got, err := reading.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = run(t, "history", "--id", "missing")
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestReplayCommand(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "replay", filepath.Join("..", "..", "internal", "replay", "testdata", "charisma_session.json"))
	require.NoError(t, err)

	var res replayOutput
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Equal(t, 4, res.Summary.TotalTurns)
	assert.Equal(t, 0, res.Summary.Failed)
}

func TestStateRequiresEveryAxis(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "state")
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "noise", errs.FieldOf(err))

	_, err = run(t, "state", "--noise", "4", "--tension", "3", "--turbulence", "5")
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "breath", errs.FieldOf(err))

	_, err = run(t, append([]string{"reading", "--breath", "1"}, birthArgs...)...)
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "noise", errs.FieldOf(err))
}

func TestStateFile(t *testing.T) {
	setupEnv(t)
	full := writeStateFile(t, `{"mental_noise":4,"body_tension":3,"emotional_turbulence":5,"breath_completion":1}`)
	out, err := run(t, "state", "--state-file", full)
	require.NoError(t, err)
	var res struct {
		Snapshot map[string]float64 `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Equal(t, 3.0, res.Snapshot["body_tension"])

	partial := writeStateFile(t, `{"mental_noise":4}`)
	_, err = run(t, "state", "--state-file", partial)
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "body_tension", errs.FieldOf(err))

	unknown := writeStateFile(t, `{"mental_noise":4,"body_tension":3,"emotional_turbulence":5,"breath_completion":1,"mood":2}`)
	_, err = run(t, "state", "--state-file", unknown)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = run(t, "state", "--state-file", full, "--noise", "2")
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "noise", errs.FieldOf(err))
}

func TestExitCodes(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "reading", "--noise", "11", "--tension", "0", "--turbulence", "0", "--breath", "0", "--date", "1990-06-15T14:30")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = run(t, "profile")
	assert.Equal(t, exitUsage, exitCode(err))

	assert.Equal(t, exitDrift, exitCode(&replayFailure{failed: 1}))
	assert.Equal(t, exitFailure, exitCode(errs.Upstream("fetch positions", assert.AnError)))
}

// #endregion command-tests
