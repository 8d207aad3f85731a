package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/metra/internal/claude"
	"github.com/joshharrison/metra/internal/graph"
	"github.com/joshharrison/metra/internal/taskfile"
	"github.com/joshharrison/metra/internal/ui"
)

func (a *app) inferDepsCmd() *cobra.Command {
	var (
		flagApply    bool
		flagModel    string
		flagOutput   string
		flagFromFile string
	)

	cmd := &cobra.Command{
		Use:   "infer-deps FILE",
		Short: "Use Claude to infer missing predecessors from task names",
		Long: `Sends task names and durations to Claude and asks for predecessor edges.
Edges naming unknown tasks, self-dependencies, duplicates and edges that would
close a cycle are dropped. By default runs in dry-run mode; use --apply to
write the merged task list (to FILE, or to --output).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			tasks, err := a.loadTasks(args[0])
			if err != nil {
				return err
			}
			if err := graph.Validate(tasks); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			var result *claude.InferResult
			if flagFromFile != "" {
				data, err := os.ReadFile(flagFromFile)
				if err != nil {
					return fmt.Errorf("read from-file: %w", err)
				}
				result, err = claude.ParseResult(string(data))
				if err != nil {
					return fmt.Errorf("parse from-file: %w", err)
				}
				if !a.jsonOutput() {
					fmt.Fprintf(out, "📂 Loaded %s edges from %s\n", ui.Bold(len(result.Edges)), ui.Dim(flagFromFile))
				}
			} else {
				if !a.jsonOutput() {
					fmt.Fprintf(out, "🔍 Sending %s tasks to Claude for predecessor inference...\n", ui.Bold(len(tasks)))
				}

				model := a.cfg.Claude.Model
				if flagModel != "" {
					model = flagModel
				}
				client, err := claude.NewClient("", model, a.cfg.Claude.MaxTokens)
				if err != nil {
					return err
				}

				a.log.Debug().Str("model", model).Int("tasks", len(tasks)).Msg("requesting predecessor inference")
				result, err = client.InferPredecessors(cmd.Context(), claude.Summaries(tasks))
				if err != nil {
					return fmt.Errorf("infer predecessors: %w", err)
				}
			}

			merged := claude.Merge(tasks, result.Edges)
			a.log.Debug().Int("proposed", len(result.Edges)).Int("accepted", len(merged.Accepted)).Msg("merged inferred edges")

			dest := args[0]
			if flagOutput != "" {
				dest = flagOutput
			}
			if flagApply {
				if err := taskfile.Write(dest, merged.Tasks); err != nil {
					return fmt.Errorf("write %s: %w", dest, err)
				}
			}

			if a.jsonOutput() {
				return outputJSON(out, struct {
					claude.MergeResult
					Summary string `json:"summary"`
					Written string `json:"written,omitempty"`
				}{merged, result.Summary, writtenPath(flagApply, dest)})
			}

			for _, s := range merged.Skipped {
				fmt.Fprintf(out, "  %s %s <- %s: %s\n", ui.Yellow("⏭️  SKIP:"), s.Edge.TaskID, s.Edge.PredecessorID, s.Reason)
			}

			fmt.Fprintf(out, "\n🔗 Inferred %s predecessors (%d from Claude, %d after validation):\n\n",
				ui.Bold(len(merged.Accepted)), len(result.Edges), len(merged.Accepted))
			for _, e := range merged.Accepted {
				fmt.Fprintf(out, "  %s %s after %s  %s\n", ui.Cyan("→"), ui.BoldMagenta(e.TaskID), ui.BoldMagenta(e.PredecessorID), ui.Dim(e.Reason))
			}
			if result.Summary != "" {
				fmt.Fprintf(out, "\n💡 %s %s\n", ui.BoldWhite("Summary:"), result.Summary)
			}

			if !flagApply {
				fmt.Fprintf(out, "\n🎯 %s\n", ui.Yellow("Dry run; use --apply to write these predecessors."))
				return nil
			}
			fmt.Fprintf(out, "\n🏁 Wrote %s tasks with %d new predecessors to %s\n", ui.BoldGreen(len(merged.Tasks)), len(merged.Accepted), dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write the merged task list (default: dry-run)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use (default from config)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to this file instead of FILE (with --apply)")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Load inferred edges from a JSON file instead of calling Claude")

	return cmd
}

func writtenPath(applied bool, dest string) string {
	if applied {
		return dest
	}
	return ""
}
