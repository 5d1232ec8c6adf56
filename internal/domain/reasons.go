package domain

import (
	"fmt"
	"sort"
)

// Reason codes assigned by the comparator.
const (
	ReasonRounding       = "R001"
	ReasonTransformation = "R002"
	ReasonDateOffset     = "R003"
	ReasonTruncation     = "R004"
	ReasonRecordDrop     = "R005"
	ReasonInterestLogic  = "R006"
	ReasonUnknown        = "UNKNOWN"

	// ReasonUnclassified keys non-matching results that carry no reason code.
	ReasonUnclassified = "Unclassified"
)

// RequiredReasonCodes must be present in any dictionary the service runs with.
var RequiredReasonCodes = []string{
	ReasonRounding,
	ReasonTransformation,
	ReasonDateOffset,
	ReasonTruncation,
	ReasonRecordDrop,
	ReasonInterestLogic,
	ReasonUnknown,
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// DiscrepancyReason is one entry of the reference dictionary.
type DiscrepancyReason struct {
	Code        string   `json:"code" yaml:"code"`
	Label       string   `json:"label" yaml:"label"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// ReasonDictionary indexes reasons by code. It is never written to after construction.
type ReasonDictionary struct {
	byCode map[string]DiscrepancyReason
}

// NewReasonDictionary validates the entries and indexes them by code.
func NewReasonDictionary(reasons []DiscrepancyReason) (*ReasonDictionary, error) {
	byCode := make(map[string]DiscrepancyReason, len(reasons))
	for i, r := range reasons {
		if r.Code == "" {
			return nil, fmt.Errorf("reason at index %d has no code", i)
		}
		if !r.Severity.Valid() {
			return nil, fmt.Errorf("reason %s has invalid severity %q", r.Code, r.Severity)
		}
		if _, dup := byCode[r.Code]; dup {
			return nil, fmt.Errorf("reason %s defined twice", r.Code)
		}
		byCode[r.Code] = r
	}
	for _, code := range RequiredReasonCodes {
		if _, ok := byCode[code]; !ok {
			return nil, fmt.Errorf("reason dictionary is missing required code %s", code)
		}
	}
	return &ReasonDictionary{byCode: byCode}, nil
}

func (d *ReasonDictionary) Lookup(code string) (DiscrepancyReason, bool) {
	r, ok := d.byCode[code]
	return r, ok
}

// Codes returns all codes in ascending order.
func (d *ReasonDictionary) Codes() []string {
	codes := make([]string, 0, len(d.byCode))
	for c := range d.byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Reasons returns all entries ordered by code.
func (d *ReasonDictionary) Reasons() []DiscrepancyReason {
	codes := d.Codes()
	out := make([]DiscrepancyReason, 0, len(codes))
	for _, c := range codes {
		out = append(out, d.byCode[c])
	}
	return out
}

// DefaultReasons is the built-in dictionary used when no file is configured.
func DefaultReasons() []DiscrepancyReason {
	return []DiscrepancyReason{
		{Code: ReasonRounding, Label: "Rounding Difference", Description: "Variance due to different rounding precision (e.g. 2 vs 4 decimals).", Severity: SeverityLow},
		{Code: ReasonTransformation, Label: "Migration Transformation", Description: "Data transformed during migration logic (e.g. Product Code mapping).", Severity: SeverityMedium},
		{Code: ReasonDateOffset, Label: "Date Offset", Description: "Date varies by +/- 1 day due to timezone or EOD logic.", Severity: SeverityLow},
		{Code: ReasonTruncation, Label: "Truncation", Description: "String field truncated in target system.", Severity: SeverityLow},
		{Code: ReasonRecordDrop, Label: "Record Drop", Description: "Record failed to migrate completely.", Severity: SeverityCritical},
		{Code: ReasonInterestLogic, Label: "Interest Logic Change", Description: "Accrual calculation method updated in new core.", Severity: SeverityMedium},
		{Code: ReasonUnknown, Label: "Requires Investigation", Description: "No automatic rule matched this discrepancy.", Severity: SeverityHigh},
	}
}

// DefaultReasonDictionary never fails; the built-in entries are valid.
func DefaultReasonDictionary() *ReasonDictionary {
	d, err := NewReasonDictionary(DefaultReasons())
	if err != nil {
		panic(err)
	}
	return d
}
