package reconcile

import (
	"math"
	"strings"

	"migration-reconciliation/internal/domain"
)

// DefaultRoundingTolerance is the largest numeric gap still attributed to rounding (exclusive).
const DefaultRoundingTolerance = 0.1

// TypeRule refines the discrepancy type of a differing field by its name.
type TypeRule struct {
	Name    string
	Matches func(field string) bool
	Type    domain.DiscrepancyType
}

// ReasonRule proposes a probable cause for a differing field.
type ReasonRule struct {
	Name    string
	Matches func(field string, oldVal, newVal domain.Value) bool
	Code    string
}

func nameContains(substr string) func(string) bool {
	return func(field string) bool {
		return strings.Contains(strings.ToLower(field), substr)
	}
}

// DefaultTypeRules are evaluated in order and every match overwrites the
// previous one, so "desc" beats "status" beats "date" for the same name.
func DefaultTypeRules() []TypeRule {
	return []TypeRule{
		{Name: "date", Matches: nameContains("date"), Type: domain.TimingDiff},
		{Name: "status", Matches: nameContains("status"), Type: domain.StatusDiff},
		{Name: "description", Matches: nameContains("desc"), Type: domain.MetaDiff},
	}
}

// DefaultReasonRules are evaluated in order and the first match decides.
func DefaultReasonRules(tolerance float64) []ReasonRule {
	isDate := nameContains("date")
	return []ReasonRule{
		{
			Name: "rounding",
			Matches: func(_ string, oldVal, newVal domain.Value) bool {
				a, okA := oldVal.Float()
				b, okB := newVal.Float()
				return okA && okB && math.Abs(a-b) < tolerance
			},
			Code: domain.ReasonRounding,
		},
		{
			Name: "date-offset",
			Matches: func(field string, _, _ domain.Value) bool {
				return isDate(field)
			},
			Code: domain.ReasonDateOffset,
		},
		{
			Name: "product-code",
			Matches: func(field string, _, _ domain.Value) bool {
				return field == "productCode"
			},
			Code: domain.ReasonTransformation,
		},
	}
}

func classifyField(rules []TypeRule, field string) domain.DiscrepancyType {
	t := domain.ValueMismatch
	for _, r := range rules {
		if r.Matches(field) {
			t = r.Type
		}
	}
	return t
}

func inferReason(rules []ReasonRule, field string, oldVal, newVal domain.Value) (string, bool) {
	for _, r := range rules {
		if r.Matches(field, oldVal, newVal) {
			return r.Code, true
		}
	}
	return "", false
}
