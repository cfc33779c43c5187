package commands

import (
	"fmt"

	"github.com/penwyp/cc-usage-monitor/internal/util"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore settings and history from a backup file",
	Long: `import validates a backup produced by export and, if the structure checks
out, replaces the current settings and history. Invalid backups are rejected
without touching existing data.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	mgr, err := buildExportManager()
	if err != nil {
		return err
	}

	if err := mgr.ImportFromFile(args[0], util.GetTimeProvider().Now()); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Printf("Imported settings and history from %s\n", args[0])
	return nil
}
