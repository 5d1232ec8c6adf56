package usecase

import (
	"context"

	"migration-reconciliation/internal/domain"
)

// RecordSource loads the legacy and new record sets for a job.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go
type RecordSource interface {
	LoadRecords(ctx context.Context, job domain.ComparisonConfig) (oldSet, newSet []domain.Record, err error)
}

// RunStore keeps the history of job runs.
type RunStore interface {
	Save(ctx context.Context, run domain.JobRun) error
	Get(ctx context.Context, runID string) (domain.JobRun, error)
	List(ctx context.Context) ([]domain.JobRun, error)
}

// Explainer turns comparison output into prose. Its answers are opaque to the core.
type Explainer interface {
	ExplainRecord(ctx context.Context, oldRecord domain.Record, newRecord *domain.Record, reasons []domain.DiscrepancyReason) (string, error)
	ExecutiveSummary(ctx context.Context, stats domain.ComparisonStats, samples []domain.ComparisonResult) (string, error)
}
