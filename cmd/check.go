package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rajesh-ms/learn-lego-programming/internal/checks"
	"github.com/rajesh-ms/learn-lego-programming/internal/config"
	"github.com/rajesh-ms/learn-lego-programming/internal/report"
	"github.com/rajesh-ms/learn-lego-programming/internal/telemetry"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
	"github.com/rajesh-ms/learn-lego-programming/internal/watch"
	"github.com/rajesh-ms/learn-lego-programming/pkg/plan"

	"github.com/spf13/cobra"
)

// errReportFailed marks a run that completed but did not pass
var errReportFailed = errors.New("validation failed")

var checkFlags config.Flags

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate lesson content",
	Long: `Run a validation plan against the lessons and print the report.
Without --plan every built-in check runs over the bundled curriculum.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewCheckConfig(checkFlags)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		p, err := cfg.LoadPlan()
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}

		// Flags are fine from here on; a failing report is not a usage problem
		cmd.SilenceUsage = true

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := telemetry.New(ctx, config.Telemetry(version), utils.Logger())
		if err != nil {
			return fmt.Errorf("failed to set up telemetry: %w", err)
		}
		defer shutdownTelemetry(client)
		tracker := telemetry.NewTracker(client)

		out := cmd.OutOrStdout()
		if !cfg.Watch {
			return runCheck(ctx, out, p, cfg, tracker)
		}

		if err := runCheck(ctx, out, p, cfg, tracker); err != nil && !errors.Is(err, errReportFailed) {
			utils.LogError("%v", err)
		}

		w, err := watch.New(cfg.WatchPaths(p), watch.DefaultDebounce, func(ctx context.Context) error {
			reloaded, err := cfg.LoadPlan()
			if err != nil {
				return fmt.Errorf("failed to reload plan: %w", err)
			}
			if err := runCheck(ctx, out, reloaded, cfg, tracker); err != nil && !errors.Is(err, errReportFailed) {
				return err
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		return w.Run(ctx)
	},
}

// runCheck executes p once, prints the report and writes it to the plan's
// output directory
func runCheck(ctx context.Context, out io.Writer, p *plan.Plan, cfg *config.CheckConfig, tracker *telemetry.Tracker) error {
	rules, err := p.LoadRules()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	registry := checks.NewDefaultRegistry(rules)

	if err := p.ValidateBeforeRun(registry); err != nil {
		return fmt.Errorf("plan validation failed: %w", err)
	}

	format, err := report.ParseFormat(p.Format)
	if err != nil {
		return err
	}

	r, err := p.Execute(ctx, plan.Options{
		Registry: registry,
		Tracker:  tracker,
		Strict:   cfg.Strict,
		Units:    cfg.Units,
	})
	if err != nil {
		return fmt.Errorf("plan execution failed: %w", err)
	}

	if err := r.Render(out, format); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if p.Output != "" {
		path, err := r.WriteFile(p.OutputPath(), format)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		utils.LogSuccess("Report written to %s", path)
	}

	if err := tracker.Client().Flush(ctx); err != nil {
		utils.LogWarning("Failed to flush telemetry: %v", err)
	}

	if !r.Passed() {
		summary := r.Summary()
		return fmt.Errorf("%w: %d errors, %d warnings", errReportFailed, summary.Errors, summary.Warnings)
	}
	return nil
}

func shutdownTelemetry(client telemetry.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Shutdown(ctx); err != nil {
		utils.LogWarning("Failed to shut down telemetry: %v", err)
	}
}

func init() {
	checkCmd.Flags().StringVarP(&checkFlags.PlanPath, "plan", "p", "", "Path to plan YAML file (default: all built-in checks)")
	checkCmd.Flags().StringVar(&checkFlags.LessonsPath, "lessons", "", "Lessons YAML file (overrides the one in the plan)")
	checkCmd.Flags().StringVar(&checkFlags.RulesPath, "rules", "", "Rules YAML file (overrides the one in the plan)")
	checkCmd.Flags().StringVarP(&checkFlags.OutputPath, "output", "o", "", "Directory to write the report to")
	checkCmd.Flags().StringVarP(&checkFlags.Format, "format", "f", "", "Report format: text, json, yaml")
	checkCmd.Flags().StringVar(&checkFlags.Units, "units", "", "Comma separated unit ids to check (default: all)")
	checkCmd.Flags().BoolVar(&checkFlags.Strict, "strict", false, "Fail on warnings too")
	checkCmd.Flags().BoolVarP(&checkFlags.Watch, "watch", "w", false, "Re-run when the plan, lessons or rules file changes")
	rootCmd.AddCommand(checkCmd)
}
