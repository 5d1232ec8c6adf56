package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"migration-reconciliation/internal/domain"
	"migration-reconciliation/internal/reconcile"
)

// SummarySampleSize caps the mismatches handed to the executive summary.
const SummarySampleSize = 5

// JobUseCase runs reconciliation jobs and serves their results.
type JobUseCase struct {
	jobs       []domain.ComparisonConfig
	source     RecordSource
	store      RunStore
	explainer  Explainer
	comparator *reconcile.Comparator
	reasons    *domain.ReasonDictionary
	latency    time.Duration
	logger     *zap.Logger
	now        func() time.Time
	newRunID   func() string

	bgCtx    context.Context
	bgCancel context.CancelFunc
	wg       sync.WaitGroup
}

type JobOption func(*JobUseCase)

// WithExplainer enables record explanations and executive summaries.
func WithExplainer(e Explainer) JobOption {
	return func(uc *JobUseCase) { uc.explainer = e }
}

// WithLatency delays completion of every run, mimicking a batch backend.
func WithLatency(d time.Duration) JobOption {
	return func(uc *JobUseCase) { uc.latency = d }
}

func WithLogger(l *zap.Logger) JobOption {
	return func(uc *JobUseCase) { uc.logger = l }
}

func WithComparator(c *reconcile.Comparator) JobOption {
	return func(uc *JobUseCase) { uc.comparator = c }
}

func WithReasons(d *domain.ReasonDictionary) JobOption {
	return func(uc *JobUseCase) { uc.reasons = d }
}

func WithClock(now func() time.Time) JobOption {
	return func(uc *JobUseCase) { uc.now = now }
}

func WithRunIDGenerator(gen func() string) JobOption {
	return func(uc *JobUseCase) { uc.newRunID = gen }
}

// NewJobUseCase creates a new instance of the usecase.
func NewJobUseCase(jobs []domain.ComparisonConfig, source RecordSource, store RunStore, opts ...JobOption) *JobUseCase {
	uc := &JobUseCase{
		jobs:       jobs,
		source:     source,
		store:      store,
		comparator: reconcile.NewComparator(),
		reasons:    domain.DefaultReasonDictionary(),
		logger:     zap.NewNop(),
		now:        time.Now,
		newRunID:   defaultRunID,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.bgCtx, uc.bgCancel = context.WithCancel(context.Background())
	return uc
}

func defaultRunID() string {
	return "RUN-" + strings.ToUpper(uuid.NewString()[:8])
}

// Jobs lists the configured jobs.
func (uc *JobUseCase) Jobs() []domain.ComparisonConfig {
	out := make([]domain.ComparisonConfig, len(uc.jobs))
	copy(out, uc.jobs)
	return out
}

// Reasons returns the reference dictionary the service runs with.
func (uc *JobUseCase) Reasons() *domain.ReasonDictionary {
	return uc.reasons
}

func (uc *JobUseCase) job(configID string) (domain.ComparisonConfig, error) {
	for _, j := range uc.jobs {
		if j.ID == configID {
			return j, nil
		}
	}
	return domain.ComparisonConfig{}, fmt.Errorf("%w: %s", domain.ErrJobNotFound, configID)
}

func (uc *JobUseCase) newRun(job domain.ComparisonConfig) domain.JobRun {
	return domain.JobRun{
		RunID:      uc.newRunID(),
		ConfigID:   job.ID,
		ConfigName: job.Name,
		SchemaType: job.SchemaType,
		StartTime:  uc.now(),
		Status:     domain.RunStatusRunning,
	}
}

// StartRun records a RUNNING run and completes it in the background.
func (uc *JobUseCase) StartRun(ctx context.Context, configID string) (domain.JobRun, error) {
	job, err := uc.job(configID)
	if err != nil {
		return domain.JobRun{}, err
	}

	run := uc.newRun(job)
	if err := uc.store.Save(ctx, run); err != nil {
		return domain.JobRun{}, fmt.Errorf("could not save run %s: %w", run.RunID, err)
	}
	uc.logger.Info("run started", zap.String("run_id", run.RunID), zap.String("job_id", job.ID))

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		uc.execute(uc.bgCtx, job, run)
	}()
	return run, nil
}

// RunSync runs a job to completion on the caller's goroutine.
func (uc *JobUseCase) RunSync(ctx context.Context, configID string) (domain.JobRun, error) {
	job, err := uc.job(configID)
	if err != nil {
		return domain.JobRun{}, err
	}

	run := uc.newRun(job)
	if err := uc.store.Save(ctx, run); err != nil {
		return domain.JobRun{}, fmt.Errorf("could not save run %s: %w", run.RunID, err)
	}
	run = uc.execute(ctx, job, run)
	if run.Status == domain.RunStatusFailed {
		return run, fmt.Errorf("%w: %s", domain.ErrRunFailed, run.Error)
	}
	return run, nil
}

func (uc *JobUseCase) execute(ctx context.Context, job domain.ComparisonConfig, run domain.JobRun) domain.JobRun {
	log := uc.logger.With(zap.String("run_id", run.RunID), zap.String("job_id", job.ID))

	results, stats, err := uc.compare(ctx, job)
	end := uc.now()
	run.EndTime = &end
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
		log.Error("run failed", zap.Error(err))
	} else {
		run.Status = domain.RunStatusCompleted
		run.Results = results
		run.Stats = &stats
		log.Info("run completed",
			zap.Int("records", stats.TotalRecords),
			zap.Int("mismatches", stats.MismatchCount),
			zap.Float64("match_rate", stats.MatchRate),
		)
	}

	// save even if ctx was cancelled
	if err := uc.store.Save(context.WithoutCancel(ctx), run); err != nil {
		log.Error("could not save run", zap.Error(err))
	}
	return run
}

func (uc *JobUseCase) compare(ctx context.Context, job domain.ComparisonConfig) ([]domain.ComparisonResult, domain.ComparisonStats, error) {
	if uc.latency > 0 {
		timer := time.NewTimer(uc.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, domain.ComparisonStats{}, ctx.Err()
		case <-timer.C:
		}
	}

	oldSet, newSet, err := uc.source.LoadRecords(ctx, job)
	if err != nil {
		return nil, domain.ComparisonStats{}, fmt.Errorf("could not load records: %w", err)
	}

	results := uc.comparator.Compare(oldSet, newSet)
	return results, reconcile.Summarize(results), nil
}

// ListRuns returns the run history, newest first.
func (uc *JobUseCase) ListRuns(ctx context.Context) ([]domain.JobRun, error) {
	return uc.store.List(ctx)
}

func (uc *JobUseCase) GetRun(ctx context.Context, runID string) (domain.JobRun, error) {
	return uc.store.Get(ctx, runID)
}

func (uc *JobUseCase) completedRun(ctx context.Context, runID string) (domain.JobRun, error) {
	run, err := uc.store.Get(ctx, runID)
	if err != nil {
		return domain.JobRun{}, err
	}
	switch run.Status {
	case domain.RunStatusRunning:
		return domain.JobRun{}, fmt.Errorf("%w: %s", domain.ErrRunNotReady, runID)
	case domain.RunStatusFailed:
		return domain.JobRun{}, fmt.Errorf("%w: %s", domain.ErrRunFailed, run.Error)
	}
	return run, nil
}

// Results returns the comparison results of a completed run narrowed by q.
func (uc *JobUseCase) Results(ctx context.Context, runID string, q reconcile.Query) ([]domain.ComparisonResult, error) {
	run, err := uc.completedRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return reconcile.Filter(run.Results, q)
}

// Stats returns the run statistics, or the drill-down view when field is set.
func (uc *JobUseCase) Stats(ctx context.Context, runID, field string) (domain.ComparisonStats, error) {
	run, err := uc.completedRun(ctx, runID)
	if err != nil {
		return domain.ComparisonStats{}, err
	}
	if field == "" {
		return *run.Stats, nil
	}
	return reconcile.DrillDown(*run.Stats, run.Results, field), nil
}

// Explain asks the explanation service about a single record of a run.
func (uc *JobUseCase) Explain(ctx context.Context, runID, recordID string) (string, error) {
	if uc.explainer == nil {
		return "", domain.ErrExplainerUnavailable
	}
	run, err := uc.completedRun(ctx, runID)
	if err != nil {
		return "", err
	}

	for _, r := range run.Results {
		if r.RecordID != recordID {
			continue
		}
		text, err := uc.explainer.ExplainRecord(ctx, r.OldRecord, r.NewRecord, uc.reasons.Reasons())
		if err != nil {
			return "", fmt.Errorf("could not explain record %s: %w", recordID, err)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrRecordNotFound, recordID)
}

// Summarize asks the explanation service for an executive summary of a run.
func (uc *JobUseCase) Summarize(ctx context.Context, runID string) (string, error) {
	if uc.explainer == nil {
		return "", domain.ErrExplainerUnavailable
	}
	run, err := uc.completedRun(ctx, runID)
	if err != nil {
		return "", err
	}

	samples := make([]domain.ComparisonResult, 0, SummarySampleSize)
	for _, r := range run.Results {
		if len(samples) == SummarySampleSize {
			break
		}
		if r.Type != domain.Match {
			samples = append(samples, r)
		}
	}

	text, err := uc.explainer.ExecutiveSummary(ctx, *run.Stats, samples)
	if err != nil {
		return "", fmt.Errorf("could not summarize run %s: %w", runID, err)
	}
	return text, nil
}

// Wait blocks until every background run has finished.
func (uc *JobUseCase) Wait() {
	uc.wg.Wait()
}

// Close cancels pending background runs and waits for them to finish.
func (uc *JobUseCase) Close() {
	uc.bgCancel()
	uc.wg.Wait()
}
