package cmd

import (
	"fmt"

	"github.com/rajesh-ms/learn-lego-programming/internal/checks"
	"github.com/rajesh-ms/learn-lego-programming/internal/config"
	"github.com/rajesh-ms/learn-lego-programming/internal/telemetry"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"

	"github.com/spf13/cobra"
)

var validateFlags config.Flags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment setup",
	Long: `Check that the plan, lessons and rules files parse, the output directory
is writable and the telemetry connection string is well formed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.LogInfo("Validating environment...")

		cfg, err := config.NewCheckConfig(validateFlags)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		utils.LogSuccess("Paths: OK")

		p, err := cfg.LoadPlan()
		if err != nil {
			return fmt.Errorf("plan validation failed: %w", err)
		}

		rules, err := p.LoadRules()
		if err != nil {
			return fmt.Errorf("rules validation failed: %w", err)
		}
		utils.LogSuccess("Rules: OK")

		store, err := p.LoadLessons()
		if err != nil {
			return fmt.Errorf("lessons validation failed: %w", err)
		}
		utils.LogSuccess("Lessons: OK (%d units from %s)", store.Len(), store.Source())

		if err := p.ValidateBeforeRun(checks.NewDefaultRegistry(rules)); err != nil {
			return fmt.Errorf("plan validation failed: %w", err)
		}
		utils.LogSuccess("Plan %s: OK (%d steps)", p.Name, len(p.Steps))

		tcfg := config.Telemetry(version)
		if tcfg.ConnectionString == "" {
			utils.LogInfo("Telemetry: disabled")
		} else {
			if _, err := telemetry.ParseConnectionString(tcfg.ConnectionString); err != nil {
				return fmt.Errorf("telemetry validation failed: %w", err)
			}
			utils.LogSuccess("Telemetry: OK")
		}

		utils.LogSuccess("Environment validation completed successfully")
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateFlags.PlanPath, "plan", "p", "", "Path to plan YAML file")
	validateCmd.Flags().StringVar(&validateFlags.LessonsPath, "lessons", "", "Lessons YAML file")
	validateCmd.Flags().StringVar(&validateFlags.RulesPath, "rules", "", "Rules YAML file")
	validateCmd.Flags().StringVarP(&validateFlags.OutputPath, "output", "o", "", "Report output directory")
	rootCmd.AddCommand(validateCmd)
}
