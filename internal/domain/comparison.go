package domain

import "sort"

// DiscrepancyType classifies the outcome of comparing one old record.
type DiscrepancyType string

const (
	Match         DiscrepancyType = "MATCH"
	ValueMismatch DiscrepancyType = "VALUE_MISMATCH"
	TimingDiff    DiscrepancyType = "TIMING_DIFF"
	StatusDiff    DiscrepancyType = "STATUS_DIFF"
	MetaDiff      DiscrepancyType = "META_DIFF"
	MissingInNew  DiscrepancyType = "MISSING_IN_NEW"
)

// ComparisonResult is produced for every record of the old set.
type ComparisonResult struct {
	RecordID   string          `json:"recordId"`
	OldRecord  Record          `json:"oldRecord"`
	NewRecord  *Record         `json:"newRecord,omitempty"`
	Type       DiscrepancyType `json:"type"`
	Diffs      []string        `json:"diffs"`
	ReasonCode string          `json:"reasonCode,omitempty"`
}

// HasDiff reports whether field is among the differing fields.
func (r ComparisonResult) HasDiff(field string) bool {
	for _, d := range r.Diffs {
		if d == field {
			return true
		}
	}
	return false
}

// FieldStat counts how often a field was present and how often it differed.
type FieldStat struct {
	Total    int `json:"total"`
	Mismatch int `json:"mismatch"`
}

// ComparisonStats is recomputed from scratch for every run.
type ComparisonStats struct {
	TotalRecords         int                  `json:"totalRecords"`
	MatchCount           int                  `json:"matchCount"`
	MismatchCount        int                  `json:"mismatchCount"`
	MatchRate            float64              `json:"matchRate"`
	DiscrepancyBreakdown map[string]int       `json:"discrepancyBreakdown"`
	FieldStats           map[string]FieldStat `json:"fieldStats"`
}

// FieldStatEntry is a named FieldStat, used for ordered presentation.
type FieldStatEntry struct {
	Field string `json:"field"`
	FieldStat
}

// SortedFields orders field stats by mismatch count, highest first, then by name.
func (s ComparisonStats) SortedFields() []FieldStatEntry {
	entries := make([]FieldStatEntry, 0, len(s.FieldStats))
	for name, st := range s.FieldStats {
		entries = append(entries, FieldStatEntry{Field: name, FieldStat: st})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Mismatch != entries[j].Mismatch {
			return entries[i].Mismatch > entries[j].Mismatch
		}
		return entries[i].Field < entries[j].Field
	})
	return entries
}
