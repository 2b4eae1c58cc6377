package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/activity"
	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/render"
	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/server"
	"github.com/joshharrison/critpath/internal/state"
	"github.com/joshharrison/critpath/internal/ui"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	json     bool
	noColor  bool
	stateDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "critpath",
		Short: "Critical path scheduling for activity networks",
		Long: `critpath reads a list of activities with durations and predecessors,
computes earliest and latest start/finish times and slack for each one, and
reports the critical path: the activities whose delay would delay the whole
project.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				ui.SetColor(false)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flags.stateDir, "state-dir", state.DefaultDir, "Directory for the saved schedule")

	rootCmd.AddCommand(analyzeCmd(flags))
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(showCmd(flags))
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

// schedule is shared logic for analyze and viz.
func schedule(path string) ([]activity.Descriptor, *graph.Graph, *cpm.Result, error) {
	descs, err := activity.LoadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}

	g, err := graph.Build(descs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build activity graph: %w", err)
	}

	result, err := cpm.AnalyzeGraph(g)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("CPM analysis: %w", err)
	}
	return descs, g, result, nil
}

func analyzeCmd(flags *rootFlags) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Compute the schedule and critical path of an activity file (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descs, _, result, err := schedule(args[0])
			if err != nil {
				return err
			}
			rpt := reporter.New(result)

			if save {
				snap := state.NewSnapshot(args[0], descs, rpt.Payload())
				if err := state.Save(flags.stateDir, snap); err != nil {
					return fmt.Errorf("save schedule: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if flags.json {
				return outputJSON(out, rpt)
			}
			rpt.PrintSchedule(out)
			if save {
				fmt.Fprintf(out, "\n%s %s\n", ui.Dim("Saved to"), state.Path(flags.stateDir))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the schedule for the show command")

	return cmd
}

func vizCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "viz <file|->",
		Short: "Draw the activity network with the critical path highlighted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, result, err := schedule(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "dot":
				return render.WriteDOT(cmd.OutOrStdout(), g, result)
			case "ascii":
				return render.WriteASCII(cmd.OutOrStdout(), g, result)
			default:
				return fmt.Errorf("unsupported format %q (use ascii or dot)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

func showCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the schedule saved by `analyze --save`",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !state.Exists(flags.stateDir) {
				return fmt.Errorf("no saved schedule in %s (run `critpath analyze --save <file>` first)", flags.stateDir)
			}
			snap, err := state.Load(flags.stateDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.json {
				return outputJSON(out, snap)
			}

			result, err := cpm.Analyze(snap.Activities)
			if err != nil {
				return fmt.Errorf("CPM analysis: %w", err)
			}
			fmt.Fprintf(out, "%s %s  %s %s\n\n",
				ui.Dim("Snapshot"), snap.ID, ui.Dim("from"), snap.Source)
			reporter.New(result).PrintSchedule(out)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve critical path analysis over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port != "" {
				cfg.SetPort(port)
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
			ui.PrintBanner(os.Stderr)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides PORT)")

	return cmd
}

// --- Output helpers ---

type jsonMarshaler interface {
	JSON() ([]byte, error)
}

func outputJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if m, ok := v.(jsonMarshaler); ok {
		data, err = m.JSON()
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
