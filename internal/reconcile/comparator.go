package reconcile

import (
	"migration-reconciliation/internal/domain"
)

// Comparator pairs old and new records by identifier and classifies every
// old record. It holds no state between calls and is safe for concurrent use.
type Comparator struct {
	typeRules   []TypeRule
	reasonRules []ReasonRule
	tolerance   float64
	customRules bool
}

type Option func(*Comparator)

// WithRoundingTolerance changes the numeric gap below which a difference is
// attributed to rounding. Ignored when WithReasonRules is also given.
func WithRoundingTolerance(tol float64) Option {
	return func(c *Comparator) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

func WithTypeRules(rules []TypeRule) Option {
	return func(c *Comparator) { c.typeRules = rules }
}

func WithReasonRules(rules []ReasonRule) Option {
	return func(c *Comparator) {
		c.reasonRules = rules
		c.customRules = true
	}
}

func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{
		typeRules: DefaultTypeRules(),
		tolerance: DefaultRoundingTolerance,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.customRules {
		c.reasonRules = DefaultReasonRules(c.tolerance)
	}
	return c
}

// Compare classifies the old set against the new set with the default rules.
func Compare(oldSet, newSet []domain.Record) []domain.ComparisonResult {
	return NewComparator().Compare(oldSet, newSet)
}

// Compare returns one result per old record, in the old set's order.
// Duplicate identifiers in newSet resolve to the last occurrence.
func (c *Comparator) Compare(oldSet, newSet []domain.Record) []domain.ComparisonResult {
	index := make(map[string]int, len(newSet))
	for i, rec := range newSet {
		index[rec.ID] = i
	}

	results := make([]domain.ComparisonResult, 0, len(oldSet))
	for _, oldRec := range oldSet {
		i, ok := index[oldRec.ID]
		if !ok {
			results = append(results, domain.ComparisonResult{
				RecordID:   oldRec.ID,
				OldRecord:  cloneRecord(oldRec),
				Type:       domain.MissingInNew,
				Diffs:      []string{},
				ReasonCode: domain.ReasonRecordDrop,
			})
			continue
		}
		results = append(results, c.comparePair(oldRec, newSet[i]))
	}
	return results
}

func (c *Comparator) comparePair(oldRec, newRec domain.Record) domain.ComparisonResult {
	matched := cloneRecord(newRec)
	res := domain.ComparisonResult{
		RecordID:  oldRec.ID,
		OldRecord: cloneRecord(oldRec),
		NewRecord: &matched,
		Type:      domain.Match,
		Diffs:     []string{},
	}

	for _, f := range oldRec.Fields {
		if f.Name == domain.IDField {
			continue
		}
		newVal, _ := newRec.Get(f.Name)
		if f.Value.Equal(newVal) {
			continue
		}

		res.Diffs = append(res.Diffs, f.Name)
		// the last differing field decides the type
		res.Type = classifyField(c.typeRules, f.Name)

		// the first differing field with a known cause decides the reason
		if res.ReasonCode == "" {
			if code, ok := inferReason(c.reasonRules, f.Name, f.Value, newVal); ok {
				res.ReasonCode = code
			}
		}
	}

	if len(res.Diffs) > 0 && res.ReasonCode == "" {
		res.ReasonCode = domain.ReasonUnknown
	}
	return res
}

func cloneRecord(r domain.Record) domain.Record {
	fields := make([]domain.Field, len(r.Fields))
	copy(fields, r.Fields)
	return domain.Record{ID: r.ID, Fields: fields}
}
