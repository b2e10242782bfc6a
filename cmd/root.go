package cmd

import (
	"os"

	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// verbosityLevel is the command-line flag for setting the log level
	verbosityLevel string
	noColor        bool

	// version is set at build time with -ldflags "-X .../cmd.version=..."
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "lessonlint",
	Short:   "A content validator for LEGO robotics programming lessons",
	Version: version,
	Long: `lessonlint checks the code examples, learning objectives and unit
progression of a LEGO robotics curriculum with configurable plans defined in YAML.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set the global log level based on the flag
		logLevel := utils.LogLevelFromString(verbosityLevel)
		utils.SetLogLevel(logLevel)

		if noColor || os.Getenv("NO_COLOR") != "" {
			utils.ColorsEnabled = false
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Initialize global flags
	rootCmd.PersistentFlags().StringVarP(&verbosityLevel, "log-level", "l", "normal",
		"Set the logging verbosity level: quiet, normal, verbose, debug")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}
