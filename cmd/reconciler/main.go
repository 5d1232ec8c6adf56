package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"migration-reconciliation/internal/config"
	"migration-reconciliation/internal/domain"
	"migration-reconciliation/internal/gateway"
	"migration-reconciliation/internal/logger"
	"migration-reconciliation/internal/reconcile"
	"migration-reconciliation/internal/usecase"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "reconciler",
		Short:        "Core banking migration reconciliation",
		Long:         `Compares legacy and new core extracts record by record, classifies every discrepancy and reports match statistics.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory containing config.yaml")

	rootCmd.AddCommand(createCompareCmd())
	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createReasonsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	jobs   *usecase.JobUseCase
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	reasons := domain.DefaultReasonDictionary()
	if cfg.Reasons.Path != "" {
		if reasons, err = gateway.LoadReasonDictionary(cfg.Reasons.Path); err != nil {
			return nil, err
		}
	}

	opts := []usecase.JobOption{
		usecase.WithLogger(log),
		usecase.WithLatency(cfg.Jobs.SimulatedLatency),
		usecase.WithReasons(reasons),
		usecase.WithComparator(reconcile.NewComparator(reconcile.WithRoundingTolerance(cfg.Reconcile.RoundingTolerance))),
	}
	if cfg.Gemini.APIKey != "" {
		explainer, err := gateway.NewGeminiExplainer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return nil, err
		}
		opts = append(opts, usecase.WithExplainer(explainer))
	} else {
		log.Warn("gemini api key not configured, explanations disabled")
	}

	jobs := usecase.NewJobUseCase(
		cfg.Jobs.Definitions,
		gateway.NewJobRecordSource(cfg.Jobs.Seed),
		gateway.NewMemoryRunStore(cfg.Jobs.HistoryLimit),
		opts...,
	)
	return &app{cfg: cfg, logger: log, jobs: jobs}, nil
}

func (a *app) close() {
	a.jobs.Close()
	_ = a.logger.Sync()
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate JSON report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}
