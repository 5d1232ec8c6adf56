package domain

import "time"

// SchemaType names the record layout a job compares.
type SchemaType string

const (
	SchemaLoanMaster SchemaType = "LOAN_MASTER"
	SchemaLoanTxn    SchemaType = "LOAN_TXN"
)

// ComparisonConfig describes one reconciliation job.
// OldPath and NewPath are optional; without them the job runs on synthetic data.
type ComparisonConfig struct {
	ID          string     `json:"id" mapstructure:"id"`
	Name        string     `json:"name" mapstructure:"name"`
	SchemaType  SchemaType `json:"schemaType" mapstructure:"schema_type"`
	SourceTable string     `json:"sourceTable" mapstructure:"source_table"`
	TargetTable string     `json:"targetTable" mapstructure:"target_table"`
	Description string     `json:"description" mapstructure:"description"`
	OldPath     string     `json:"oldPath,omitempty" mapstructure:"old_path"`
	NewPath     string     `json:"newPath,omitempty" mapstructure:"new_path"`
}

// DefaultJobs are the jobs available when none are configured.
func DefaultJobs() []ComparisonConfig {
	return []ComparisonConfig{
		{
			ID:          "JOB-LM-001",
			Name:        "Loan Account Master Comparison",
			SchemaType:  SchemaLoanMaster,
			SourceTable: "LEGACY.LN_MSTR",
			TargetTable: "CORE.LOAN_ACCOUNT",
			Description: "Compare Principal, Interest Rates, and Dates for active loans.",
		},
		{
			ID:          "JOB-LT-001",
			Name:        "Loan Transaction History",
			SchemaType:  SchemaLoanTxn,
			SourceTable: "LEGACY.LN_HIST",
			TargetTable: "CORE.TXN_HIST",
			Description: "Validate transaction amounts, capture dates, and types.",
		},
	}
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// JobRun is one execution of a job. Results and Stats are only set once the
// run has completed and are replaced wholesale by each new run.
type JobRun struct {
	RunID      string             `json:"runId"`
	ConfigID   string             `json:"configId"`
	ConfigName string             `json:"configName"`
	SchemaType SchemaType         `json:"schemaType"`
	StartTime  time.Time          `json:"startTime"`
	EndTime    *time.Time         `json:"endTime,omitempty"`
	Status     RunStatus          `json:"status"`
	Error      string             `json:"error,omitempty"`
	Results    []ComparisonResult `json:"results,omitempty"`
	Stats      *ComparisonStats   `json:"stats,omitempty"`
}
