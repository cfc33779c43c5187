package commands

import (
	"fmt"
	"os"

	"github.com/penwyp/cc-usage-monitor/internal/core/fieldmatch"
	"github.com/penwyp/cc-usage-monitor/internal/data/api"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/presentation/formatter"
	"github.com/penwyp/cc-usage-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	applyMapping  bool
	minConfidence int

	fieldsCmd = &cobra.Command{
		Use:   "fields",
		Short: "Test the API connection and suggest field mappings",
		Long: `fields calls the configured usage API, lists every numeric or string field
found in the response, and scores each against the four budget metrics.
With --apply, suggestions at or above --min-confidence are written into the
settings file.`,
		RunE: runFields,
	}
)

func init() {
	fieldsCmd.Flags().BoolVar(&applyMapping, "apply", false,
		"Write suggested mappings into settings")
	fieldsCmd.Flags().IntVar(&minConfidence, "min-confidence", 70,
		"Minimum confidence (0-100) required to apply a suggestion")
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	settingsStore, err := store.NewSettingsStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	settings := settingsStore.Get()
	if !settings.HasCredentials() {
		return fmt.Errorf("api url and token are not configured; edit %s", settingsStore.Path())
	}

	client := api.NewClient(store.NewResponseCache())
	result := client.TestConnection(cmd.Context(), settings.ApiUrl, settings.Token)
	if !result.Success {
		return fmt.Errorf("connection test failed: %s", result.Message)
	}

	matches := fieldmatch.AutoMatch(result.FieldKeys)

	if formatter.ParseOutput(outputFormat) == formatter.OutputJSON {
		return formatter.RenderJSON(os.Stdout, struct {
			FieldKeys []string          `json:"fieldKeys"`
			Matches   fieldmatch.Result `json:"matches"`
		}{result.FieldKeys, matches})
	}

	fmt.Printf("Connection OK, %d fields discovered\n\n", len(result.FieldKeys))
	for _, target := range fieldmatch.Targets {
		match, ok := matches[target]
		if !ok {
			fmt.Printf("  %-15s no candidate\n", target)
			continue
		}
		fmt.Printf("  %-15s %-30s %3d%% (%s)\n",
			target, match.Field, match.Confidence,
			fieldmatch.QualityDescription(match.Confidence))
	}

	if !applyMapping {
		return nil
	}

	applied := 0
	for target, match := range matches {
		if match.Confidence < minConfidence {
			continue
		}
		switch target {
		case fieldmatch.TargetDailySpent:
			settings.Mapping.DailySpent = match.Field
		case fieldmatch.TargetDailyBudget:
			settings.Mapping.DailyBudget = match.Field
		case fieldmatch.TargetMonthlySpent:
			settings.Mapping.MonthlySpent = match.Field
		case fieldmatch.TargetMonthlyBudget:
			settings.Mapping.MonthlyBudget = match.Field
		}
		applied++
	}
	if applied == 0 {
		fmt.Printf("\nNo suggestions reached %d%% confidence, nothing applied\n", minConfidence)
		return nil
	}
	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	util.LogInfof("Applied %d field mappings", applied)
	fmt.Printf("\nApplied %d mappings to %s\n", applied, settingsStore.Path())
	return nil
}
