package commands

import (
	"fmt"

	"github.com/penwyp/cc-usage-monitor/internal/data/export"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	exportFile string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Back up settings and history to a JSON file",
		RunE:  runExport,
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "",
		"Destination file (default cc-usage-backup-YYYY-MM-DD.json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	mgr, err := buildExportManager()
	if err != nil {
		return err
	}

	now := util.GetTimeProvider().Now()
	path := exportFile
	if path == "" {
		path = export.Filename(now)
	}

	if err := mgr.ExportToFile(path, now); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Exported settings and history to %s\n", path)
	return nil
}

func buildExportManager() (*export.Manager, error) {
	settings, err := store.NewSettingsStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	history, err := store.NewHistoryStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &export.Manager{
		Settings: settings,
		History:  history,
		Cache:    store.NewResponseCache(),
	}, nil
}
