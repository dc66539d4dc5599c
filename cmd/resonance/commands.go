package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/archive"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/engine"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/replay"
)

// #region profile

func newProfileCommand(cli *CLI) *cobra.Command {
	var birth birthFlags
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Derive the nine-slot profile and connectivity for an event",
		Example: `  resonance profile --date 1990-06-15T14:30 --tz +02:00 --lat 52.52 --lon 13.40`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := birth.input()
			if err != nil {
				return err
			}
			if err := cli.initialize(); err != nil {
				return err
			}
			res, err := cli.svc.Profile(cmd.Context(), in)
			if err != nil {
				return err
			}
			return cli.emit(res)
		},
	}
	birth.bind(cmd)
	return cmd
}

// #endregion profile

// #region state

func newStateCommand(cli *CLI) *cobra.Command {
	var (
		birth birthFlags
		state stateFlags
	)
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Score a subjective-state snapshot",
		Long: `state scores a snapshot and projects its trajectory. When --date is
given the profile is fetched too and interference is evaluated against it.`,
		Example: `  resonance state --noise 4 --tension 3 --turbulence 5 --breath 1 --previous 70`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := state.snapshot(cmd)
			if err != nil {
				return err
			}
			if err := cli.initialize(); err != nil {
				return err
			}
			var prof *engine.ProfileResult
			if birth.given() {
				in, err := birth.input()
				if err != nil {
					return err
				}
				p, err := cli.svc.Profile(cmd.Context(), in)
				if err != nil {
					return err
				}
				prof = &p
			}
			res, err := cli.svc.State(snap, prof, state.previousScore(cmd))
			if err != nil {
				return err
			}
			return cli.emit(res)
		},
	}
	birth.bind(cmd)
	state.bind(cmd)
	return cmd
}

// #endregion state

// #region reading

func newReadingCommand(cli *CLI) *cobra.Command {
	var (
		birth     birthFlags
		state     stateFlags
		noArchive bool
	)
	cmd := &cobra.Command{
		Use:   "reading",
		Short: "Run the full pipeline and print the assembled reading",
		Long: `reading fetches the profile, scores the snapshot and assembles the
reading. Unless --no-archive is set the reading is archived, and the
subject's latest archived score is used as --previous when that flag is
absent.`,
		Example: `  resonance reading --subject ana --date 1990-06-15T14:30 --tz +02:00 \
    --lat 52.52 --lon 13.40 --noise 4 --tension 3 --turbulence 5 --breath 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := birth.input()
			if err != nil {
				return err
			}
			snap, err := state.snapshot(cmd)
			if err != nil {
				return err
			}
			if err := cli.initialize(); err != nil {
				return err
			}

			previous := state.previousScore(cmd)
			var store *archive.Store
			if !noArchive {
				store, err = archive.NewStore(cli.cfg.Archive.Path)
				if err != nil {
					return fmt.Errorf("open archive: %w", err)
				}
				defer store.Close()
				if previous == nil && in.Subject != "" {
					previous, err = store.PreviousScore(in.Subject)
					if err != nil {
						return err
					}
				}
			}

			r, err := cli.svc.Reading(cmd.Context(), engine.ReadingInput{Birth: in, State: snap, Previous: previous})
			if err != nil {
				return err
			}
			if store != nil {
				if err := store.Save(r); err != nil {
					return err
				}
				cli.logger.Debug("reading archived", zap.String("reading_id", r.ID))
			}
			return cli.emit(r)
		},
	}
	birth.bind(cmd)
	state.bind(cmd)
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not read or write the archive")
	return cmd
}

// #endregion reading

// #region history

func newHistoryCommand(cli *CLI) *cobra.Command {
	var (
		subject string
		id      string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived readings, newest first",
		Example: `  resonance history --subject ana --limit 5
  resonance history --id 3f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(); err != nil {
				return err
			}
			store, err := archive.NewStore(cli.cfg.Archive.Path)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer store.Close()

			if id != "" {
				r, err := store.Get(id)
				if err != nil {
					return err
				}
				return cli.emit(r)
			}
			entries, err := store.List(subject, limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []archive.Entry{}
			}
			return cli.emit(entries)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "only this subject's readings")
	cmd.Flags().StringVar(&id, "id", "", "print the full archived reading with this id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to list")
	return cmd
}

// #endregion history

// #region replay

// replayFailure reports a replay whose outcomes drifted from the fixture.
type replayFailure struct {
	failed int
}

func (e *replayFailure) Error() string {
	return fmt.Sprintf("replay: %d turn(s) did not match", e.failed)
}

type replayOutput struct {
	Summary replay.Summary `json:"summary"`
	Result  replay.Result  `json:"result"`
}

func newReplayCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <fixture.json>",
		Short: "Replay a recorded fixture and report drift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}
			if err := cli.initialize(); err != nil {
				return err
			}
			res, err := replay.Replay(cli.svc, f)
			if err != nil {
				return err
			}
			sum := replay.Summarize(res)
			if err := cli.emit(replayOutput{Summary: sum, Result: res}); err != nil {
				return err
			}
			if !res.Passed() {
				failed := sum.Failed
				if len(res.Profile) > 0 && failed == 0 {
					failed = 1
				}
				return &replayFailure{failed: failed}
			}
			return nil
		},
	}
	return cmd
}

// #endregion replay
