package gateway

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"migration-reconciliation/internal/domain"
)

// FileRecordSource loads a job's record sets from the extract files it names.
type FileRecordSource struct{}

func NewFileRecordSource() *FileRecordSource {
	return &FileRecordSource{}
}

func (s *FileRecordSource) LoadRecords(ctx context.Context, job domain.ComparisonConfig) ([]domain.Record, []domain.Record, error) {
	if job.OldPath == "" || job.NewPath == "" {
		return nil, nil, fmt.Errorf("job %s has no extract paths", job.ID)
	}
	oldSet, err := ReadRecords(ctx, job.OldPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read legacy records: %w", err)
	}
	newSet, err := ReadRecords(ctx, job.NewPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read new core records: %w", err)
	}
	return oldSet, newSet, nil
}

// ReadRecords picks a reader by file extension.
func ReadRecords(ctx context.Context, path string) ([]domain.Record, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSVRecords(ctx, path)
	case ".xlsx":
		return ReadXLSXRecords(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported record file format %q", ext)
	}
}

// JobRecordSource reads files for jobs that name them and synthesizes
// records for the rest.
type JobRecordSource struct {
	files     *FileRecordSource
	synthetic *SyntheticRecordSource
}

func NewJobRecordSource(seed int64) *JobRecordSource {
	return &JobRecordSource{
		files:     NewFileRecordSource(),
		synthetic: NewSyntheticRecordSource(seed),
	}
}

func (s *JobRecordSource) LoadRecords(ctx context.Context, job domain.ComparisonConfig) ([]domain.Record, []domain.Record, error) {
	if job.OldPath != "" && job.NewPath != "" {
		return s.files.LoadRecords(ctx, job)
	}
	return s.synthetic.LoadRecords(ctx, job)
}
