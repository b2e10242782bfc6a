package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rajesh-ms/learn-lego-programming/internal/report"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"

	"github.com/spf13/cobra"
)

var (
	reportDir     string
	keepLatest    int
	olderThanDays int
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up old report files",
	Long:  `Remove old report files from an output directory based on age or count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportDir == "" {
			return fmt.Errorf("output directory is required")
		}

		// Check if output directory exists
		if _, err := os.Stat(reportDir); os.IsNotExist(err) {
			return fmt.Errorf("output directory %s does not exist", reportDir)
		}

		entries, err := os.ReadDir(reportDir)
		if err != nil {
			return fmt.Errorf("failed to read output directory: %w", err)
		}

		var names []string
		for _, entry := range entries {
			if !entry.IsDir() {
				names = append(names, entry.Name())
			}
		}

		toDelete := selectForCleanup(names, keepLatest, olderThanDays, time.Now())
		if len(toDelete) == 0 {
			utils.LogInfo("No reports to delete.")
			return nil
		}

		utils.LogInfo("Found %d reports to delete:", len(toDelete))
		for _, name := range toDelete {
			utils.LogInfo("- %s", name)
		}

		if cleanupDryRun {
			utils.LogInfo("Dry run - no reports were deleted.")
			return nil
		}

		for _, name := range toDelete {
			fullPath := filepath.Join(reportDir, name)
			utils.LogVerbose("Deleting %s...", fullPath)

			if err := os.Remove(fullPath); err != nil {
				utils.LogError("Error deleting %s: %v", fullPath, err)
			}
		}

		utils.LogSuccess("Cleanup completed.")
		return nil
	},
}

// selectForCleanup returns the report files to delete, oldest first. Files
// not named like reports are never selected. keepLatest applies per plan.
func selectForCleanup(names []string, keepLatest, olderThanDays int, now time.Time) []string {
	type reportFile struct {
		name string
		plan string
		at   time.Time
	}

	var files []reportFile
	for _, name := range names {
		if plan, at, ok := report.ParseFileName(name); ok {
			files = append(files, reportFile{name: name, plan: plan, at: at})
		}
	}

	// Sort by timestamp (newest last)
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].at.Equal(files[j].at) {
			return files[i].name < files[j].name
		}
		return files[i].at.Before(files[j].at)
	})

	selected := make(map[string]bool)

	if keepLatest > 0 {
		byPlan := make(map[string][]string)
		for _, f := range files {
			byPlan[f.plan] = append(byPlan[f.plan], f.name)
		}
		for _, group := range byPlan {
			if len(group) > keepLatest {
				for _, name := range group[:len(group)-keepLatest] {
					selected[name] = true
				}
			}
		}
	}

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, f := range files {
			if f.at.Before(cutoff) {
				selected[f.name] = true
			}
		}
	}

	var toDelete []string
	for _, f := range files {
		if selected[f.name] {
			toDelete = append(toDelete, f.name)
		}
	}
	return toDelete
}

func init() {
	cleanupCmd.Flags().StringVarP(&reportDir, "dir", "d", "", "Output directory to clean up (required)")
	cleanupCmd.Flags().IntVarP(&keepLatest, "keep-latest", "k", 0, "Keep this many latest reports per plan")
	cleanupCmd.Flags().IntVarP(&olderThanDays, "older-than", "o", 0, "Delete reports older than this many days")
	cleanupCmd.Flags().BoolVarP(&cleanupDryRun, "dry-run", "n", false, "Show what would be deleted without actually deleting")

	_ = cleanupCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(cleanupCmd)
}
