package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/cc-usage-monitor/internal/application"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/presentation/formatter"
	"github.com/penwyp/cc-usage-monitor/internal/util"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the usage API continuously and refresh the dashboard",
	Long: `watch polls the usage API at the configured query interval, records each
result into history, fires budget notifications, and redraws the dashboard
after every poll. Settings file edits are picked up without restarting.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	monitor, settings, _, err := buildMonitor()
	if err != nil {
		return err
	}

	watcher, err := store.NewSettingsWatcher(settings)
	if err != nil {
		util.LogWarnf("Settings file watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	asJSON := formatter.ParseOutput(outputFormat) == formatter.OutputJSON

	err = monitor.Watch(ctx, func(data application.DashboardData, err error) {
		if err != nil {
			util.LogWarnf("Poll failed: %v", err)
			fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
			return
		}
		if asJSON {
			formatter.RenderJSON(os.Stdout, data)
			return
		}
		fmt.Print("\033[H\033[2J")
		formatter.RenderDashboard(os.Stdout, data)
	})
	if err == context.Canceled {
		return nil
	}
	return err
}
