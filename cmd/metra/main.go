package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joshharrison/metra/internal/config"
	"github.com/joshharrison/metra/internal/graph"
	"github.com/joshharrison/metra/internal/logging"
	"github.com/joshharrison/metra/internal/mpm"
	"github.com/joshharrison/metra/internal/reporter"
	"github.com/joshharrison/metra/internal/taskfile"
	"github.com/joshharrison/metra/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root has set up.
type app struct {
	flagConfig   string
	flagJSON     bool
	flagLogLevel string
	flagNoColor  bool

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logging.Nop()}

	rootCmd := &cobra.Command{
		Use:   "metra",
		Short: "Critical path scheduling with the Metra Potential Method",
		Long: `Metra reads a list of tasks with durations and predecessors, computes
earliest and latest start/finish times, float and the critical path, and can
replay the computation one assignment at a time.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintLogo(cmd.ErrOrStderr())
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.flagConfig, "config", "", "Config file (default: ./metra.yaml or ~/.config/metra/metra.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&a.flagNoColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(a.scheduleCmd())
	rootCmd.AddCommand(a.traceCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.vizCmd())
	rootCmd.AddCommand(a.inferDepsCmd())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return err
	}

	if a.flagLogLevel != "" {
		cfg.Log.Level = a.flagLogLevel
	}
	if a.flagNoColor {
		cfg.Output.NoColor = true
	}
	if a.flagJSON {
		cfg.Output.Format = "json"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Log.NoColor = cfg.Log.NoColor || cfg.Output.NoColor
	ui.SetNoColor(cfg.Output.NoColor || os.Getenv("NO_COLOR") != "")

	a.cfg = cfg
	a.log = logging.New(cfg.Log, cmd.ErrOrStderr())
	if cfg.File != "" {
		a.log.Debug().Str("config", cfg.File).Msg("loaded config")
	}
	return nil
}

func (a *app) jsonOutput() bool {
	return a.cfg != nil && a.cfg.Output.Format == "json"
}

// loadTasks reads a task file and logs what was found.
func (a *app) loadTasks(path string) ([]graph.Task, error) {
	tasks, err := taskfile.Load(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("file", path).Int("tasks", len(tasks)).Msg("loaded task file")
	return tasks, nil
}

func (a *app) warnInconsistent(e *graph.Error) {
	if e == nil {
		return
	}
	a.log.Warn().Str("reason", string(e.Reason)).Strs("unresolved", e.Path).Msg("schedule used fallback values")
}

func (a *app) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule FILE",
		Short: "Compute the full schedule and critical path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.loadTasks(args[0])
			if err != nil {
				return err
			}

			a.log.Debug().Str("mode", mpm.ModeFull.String()).Msg("scheduling")
			res, err := mpm.Schedule(tasks)
			if err != nil {
				return fmt.Errorf("schedule %s: %w", args[0], err)
			}
			a.warnInconsistent(res.Inconsistency)

			if a.jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), res)
			}
			reporter.New(cmd.OutOrStdout()).PrintSchedule(res)
			return nil
		},
	}
}

func (a *app) traceCmd() *cobra.Command {
	var flagStep bool

	cmd := &cobra.Command{
		Use:   "trace FILE",
		Short: "Show every intermediate assignment of the computation",
		Long: `Runs the scheduler in trace mode. Each step is one assignment of an
early/late start or finish, the project duration, or the final float pass.

With --step the steps are shown one at a time: enter or "n" advances,
"p" goes back and "q" jumps to the final result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.loadTasks(args[0])
			if err != nil {
				return err
			}

			a.log.Debug().Str("mode", mpm.ModeTrace.String()).Msg("scheduling")
			tr, err := mpm.TraceSchedule(tasks)
			if err != nil {
				return fmt.Errorf("trace %s: %w", args[0], err)
			}
			a.warnInconsistent(tr.Inconsistency)

			out := cmd.OutOrStdout()
			if a.jsonOutput() {
				return outputJSON(out, struct {
					*mpm.Trace
					Result *mpm.Result `json:"result"`
				}{tr, mpm.Finalize(tr)})
			}
			if flagStep {
				return stepThrough(cmd.InOrStdin(), out, tr)
			}
			reporter.New(out).PrintTrace(tr)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagStep, "step", false, "Step through the trace interactively")

	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a task file forms a schedulable network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.loadTasks(args[0])
			if err != nil {
				return err
			}

			verr := graph.Validate(tasks)

			if a.jsonOutput() {
				var gerr *graph.Error
				errors.As(verr, &gerr)
				if err := outputJSON(cmd.OutOrStdout(), struct {
					Valid bool         `json:"valid"`
					Tasks int          `json:"tasks"`
					Error *graph.Error `json:"error,omitempty"`
				}{verr == nil, len(tasks), gerr}); err != nil {
					return err
				}
			} else {
				reporter.New(cmd.OutOrStdout()).PrintValidation(filepath.Base(args[0]), len(tasks), verr)
			}

			if verr != nil {
				return fmt.Errorf("%s is not schedulable", args[0])
			}
			return nil
		},
	}
}

func (a *app) vizCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "viz FILE",
		Short: "Print the task network as ASCII waves or Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagFormat != "ascii" && flagFormat != "dot" {
				return fmt.Errorf("unsupported format %q (use ascii or dot)", flagFormat)
			}

			tasks, err := a.loadTasks(args[0])
			if err != nil {
				return err
			}
			res, err := mpm.Schedule(tasks)
			if err != nil {
				return fmt.Errorf("schedule %s: %w", args[0], err)
			}
			a.warnInconsistent(res.Inconsistency)

			r := reporter.New(cmd.OutOrStdout())
			if flagFormat == "dot" {
				r.PrintDOT(res)
				return nil
			}
			r.PrintASCII(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

// --- Output helpers ---

func outputJSON(w io.Writer, v interface{}) error {
	data, err := reporter.JSON(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
