package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"migration-reconciliation/internal/delivery/httpapi"
	"migration-reconciliation/internal/domain"
	"migration-reconciliation/internal/gateway"
	"migration-reconciliation/internal/reconcile"
)

// compareReport is the output of the compare command.
type compareReport struct {
	Stats   domain.ComparisonStats    `json:"stats"`
	Results []domain.ComparisonResult `json:"results"`
}

func createCompareCmd() *cobra.Command {
	var oldPath, newPath, field, status, search string
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a legacy extract against a new core extract (CSV or XLSX)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			statusFilter, err := reconcile.ParseStatusFilter(status)
			if err != nil {
				return err
			}

			oldSet, err := gateway.ReadRecords(ctx, oldPath)
			if err != nil {
				return fmt.Errorf("could not read legacy records: %w", err)
			}
			newSet, err := gateway.ReadRecords(ctx, newPath)
			if err != nil {
				return fmt.Errorf("could not read new core records: %w", err)
			}

			results := reconcile.NewComparator(reconcile.WithRoundingTolerance(tolerance)).Compare(oldSet, newSet)
			stats := reconcile.Summarize(results)
			if field != "" {
				stats = reconcile.DrillDown(stats, results, field)
			}
			filtered, err := reconcile.Filter(results, reconcile.Query{Status: statusFilter, Search: search, Field: field})
			if err != nil {
				return err
			}
			return printJSON(cmd, compareReport{Stats: stats, Results: filtered})
		},
	}

	cmd.Flags().StringVar(&oldPath, "old", "", "legacy extract file (required)")
	cmd.Flags().StringVar(&newPath, "new", "", "new core extract file (required)")
	cmd.Flags().StringVar(&field, "field", "", "drill down into a single field")
	cmd.Flags().StringVar(&status, "status", "ALL", "ALL, EXPECTED or UNKNOWN")
	cmd.Flags().StringVar(&search, "search", "", "record id substring")
	cmd.Flags().Float64Var(&tolerance, "rounding-tolerance", reconcile.DefaultRoundingTolerance, "numeric gap still treated as rounding")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func createRunCmd() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a configured reconciliation job and print the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			run, err := a.jobs.RunSync(cmd.Context(), jobID)
			if err != nil {
				return err
			}
			return printJSON(cmd, run)
		},
	}
	cmd.Flags().StringVar(&jobID, "job", "JOB-LM-001", "job id")
	return cmd
}

func createServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			handler := httpapi.NewHandler(a.jobs, a.logger)
			server := httpapi.NewServer(a.cfg.Server.Addr, a.cfg.Server.AllowedOrigins, handler, a.logger)
			if err := server.Run(ctx); err != nil {
				a.logger.Error("server stopped with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func createReasonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reasons",
		Short: "Print the discrepancy reason dictionary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(context.Background())
			if err != nil {
				return err
			}
			defer a.close()
			return printJSON(cmd, a.jobs.Reasons().Reasons())
		},
	}
}
