package reconcile_test

import (
	"testing"

	"migration-reconciliation/internal/domain"
	"migration-reconciliation/internal/reconcile"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, fields ...domain.Field) domain.Record {
	return domain.NewRecord(id, fields...)
}

func num(name string, v float64) domain.Field { return domain.F(name, domain.Number(v)) }
func text(name string, v string) domain.Field { return domain.F(name, domain.Text(v)) }
func absent(name string) domain.Field         { return domain.F(name, domain.Absent()) }

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		oldSet     []domain.Record
		newSet     []domain.Record
		wantType   domain.DiscrepancyType
		wantDiffs  []string
		wantReason string
	}{
		{
			name:      "identical records match",
			oldSet:    []domain.Record{rec("A1", num("amount", 100), text("date", "2023-01-01"))},
			newSet:    []domain.Record{rec("A1", num("amount", 100), text("date", "2023-01-01"))},
			wantType:  domain.Match,
			wantDiffs: []string{},
		},
		{
			name:       "small numeric gap is rounding",
			oldSet:     []domain.Record{rec("A1", num("amount", 100.00), text("date", "2023-01-01"))},
			newSet:     []domain.Record{rec("A1", num("amount", 100.05), text("date", "2023-01-01"))},
			wantType:   domain.ValueMismatch,
			wantDiffs:  []string{"amount"},
			wantReason: domain.ReasonRounding,
		},
		{
			name:       "date field is a timing difference",
			oldSet:     []domain.Record{rec("A1", text("date", "2023-01-01"))},
			newSet:     []domain.Record{rec("A1", text("date", "2023-01-02"))},
			wantType:   domain.TimingDiff,
			wantDiffs:  []string{"date"},
			wantReason: domain.ReasonDateOffset,
		},
		{
			name:       "product code remap is a transformation",
			oldSet:     []domain.Record{rec("A1", text("productCode", "X"))},
			newSet:     []domain.Record{rec("A1", text("productCode", "Y"))},
			wantType:   domain.ValueMismatch,
			wantDiffs:  []string{"productCode"},
			wantReason: domain.ReasonTransformation,
		},
		{
			name:       "record missing from new set",
			oldSet:     []domain.Record{rec("A1", text("notes", "foo"))},
			newSet:     []domain.Record{},
			wantType:   domain.MissingInNew,
			wantDiffs:  []string{},
			wantReason: domain.ReasonRecordDrop,
		},
		{
			name:       "large numeric gap is unknown",
			oldSet:     []domain.Record{rec("A1", num("outstandingPrincipal", 1000))},
			newSet:     []domain.Record{rec("A1", num("outstandingPrincipal", 1003.5))},
			wantType:   domain.ValueMismatch,
			wantDiffs:  []string{"outstandingPrincipal"},
			wantReason: domain.ReasonUnknown,
		},
		{
			name:       "number and string never compare equal",
			oldSet:     []domain.Record{rec("A1", num("rate", 4.5))},
			newSet:     []domain.Record{rec("A1", text("rate", "4.5"))},
			wantType:   domain.ValueMismatch,
			wantDiffs:  []string{"rate"},
			wantReason: domain.ReasonUnknown,
		},
		{
			name:       "zero and \"0\" differ",
			oldSet:     []domain.Record{rec("A1", num("balance", 0))},
			newSet:     []domain.Record{rec("A1", text("balance", "0"))},
			wantType:   domain.ValueMismatch,
			wantDiffs:  []string{"balance"},
			wantReason: domain.ReasonUnknown,
		},
		{
			name:       "status field",
			oldSet:     []domain.Record{rec("A1", text("status", "ACTIVE"))},
			newSet:     []domain.Record{rec("A1", text("status", "REVIEW_PENDING"))},
			wantType:   domain.StatusDiff,
			wantDiffs:  []string{"status"},
			wantReason: domain.ReasonUnknown,
		},
		{
			name:       "description field",
			oldSet:     []domain.Record{rec("A1", text("description", "Monthly Installment"))},
			newSet:     []domain.Record{rec("A1", text("description", "Monthly Install"))},
			wantType:   domain.MetaDiff,
			wantDiffs:  []string{"description"},
			wantReason: domain.ReasonUnknown,
		},
		{
			name:       "later type rule overwrites earlier on the same name",
			oldSet:     []domain.Record{rec("A1", text("statusDate", "2023-01-01"))},
			newSet:     []domain.Record{rec("A1", text("statusDate", "2023-01-02"))},
			wantType:   domain.StatusDiff,
			wantDiffs:  []string{"statusDate"},
			wantReason: domain.ReasonDateOffset,
		},
		{
			name: "last differing field decides type, first decides reason",
			oldSet: []domain.Record{rec("A1",
				num("interestRate", 4.5),
				text("dateLastActivity", "2023-10-25"),
				text("status", "ACTIVE"),
			)},
			newSet: []domain.Record{rec("A1",
				num("interestRate", 4.55),
				text("dateLastActivity", "2023-10-26"),
				text("status", "REVIEW_PENDING"),
			)},
			wantType:   domain.StatusDiff,
			wantDiffs:  []string{"interestRate", "dateLastActivity", "status"},
			wantReason: domain.ReasonRounding,
		},
		{
			name: "reason comes from the first field that has one",
			oldSet: []domain.Record{rec("A1",
				text("status", "ACTIVE"),
				text("productCode", "MORTGAGE_FIXED"),
				text("captureDate", "2023-10-25"),
			)},
			newSet: []domain.Record{rec("A1",
				text("status", "CLOSED"),
				text("productCode", "MORT_FX_30Y_V2"),
				text("captureDate", "2023-10-26"),
			)},
			wantType:   domain.TimingDiff,
			wantDiffs:  []string{"status", "productCode", "captureDate"},
			wantReason: domain.ReasonTransformation,
		},
		{
			name:       "field missing on new record differs",
			oldSet:     []domain.Record{rec("A1", text("branch", "001"))},
			newSet:     []domain.Record{rec("A1")},
			wantType:   domain.ValueMismatch,
			wantDiffs:  []string{"branch"},
			wantReason: domain.ReasonUnknown,
		},
		{
			name:      "absent on both sides is equal",
			oldSet:    []domain.Record{rec("A1", absent("closedDate"))},
			newSet:    []domain.Record{rec("A1")},
			wantType:  domain.Match,
			wantDiffs: []string{},
		},
		{
			name:      "fields only on new record are ignored",
			oldSet:    []domain.Record{rec("A1", num("amount", 1))},
			newSet:    []domain.Record{rec("A1", num("amount", 1), text("extra", "x"))},
			wantType:  domain.Match,
			wantDiffs: []string{},
		},
		{
			name:      "record with no fields matches",
			oldSet:    []domain.Record{rec("A1")},
			newSet:    []domain.Record{rec("A1", text("anything", "x"))},
			wantType:  domain.Match,
			wantDiffs: []string{},
		},
		{
			name:       "duplicate new ids resolve to the last one",
			oldSet:     []domain.Record{rec("A1", num("amount", 10))},
			newSet:     []domain.Record{rec("A1", num("amount", 10)), rec("A1", num("amount", 50))},
			wantType:   domain.ValueMismatch,
			wantDiffs:  []string{"amount"},
			wantReason: domain.ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconcile.Compare(tt.oldSet, tt.newSet)
			require.Len(t, got, 1)

			assert.Equal(t, tt.oldSet[0].ID, got[0].RecordID)
			assert.Equal(t, tt.wantType, got[0].Type)
			assert.Equal(t, tt.wantDiffs, got[0].Diffs)
			assert.Equal(t, tt.wantReason, got[0].ReasonCode)

			if tt.wantType == domain.MissingInNew {
				assert.Nil(t, got[0].NewRecord)
			} else {
				assert.NotNil(t, got[0].NewRecord)
			}
		})
	}
}

func TestCompare_EmptyOldSet(t *testing.T) {
	got := reconcile.Compare(nil, []domain.Record{rec("A1", num("amount", 1))})
	assert.Empty(t, got)
}

func TestCompare_PreservesOldOrder(t *testing.T) {
	oldSet := []domain.Record{
		rec("C", num("v", 1)),
		rec("A", num("v", 1)),
		rec("B", num("v", 1)),
		rec("D", num("v", 1)),
	}
	newSet := []domain.Record{
		rec("B", num("v", 1)),
		rec("A", num("v", 2)),
		rec("C", num("v", 1)),
	}

	got := reconcile.Compare(oldSet, newSet)
	require.Len(t, got, len(oldSet))

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.RecordID)
	}
	assert.Equal(t, []string{"C", "A", "B", "D"}, ids)
	assert.Equal(t, domain.MissingInNew, got[3].Type)
}

func TestCompare_MatchIffNoDiffsAndPartner(t *testing.T) {
	oldSet := []domain.Record{
		rec("1", num("a", 1), text("b", "x")),
		rec("2", num("a", 1), text("b", "x")),
		rec("3", num("a", 1), text("b", "x")),
	}
	newSet := []domain.Record{
		rec("1", num("a", 1), text("b", "x")),
		rec("2", num("a", 1), text("b", "y")),
	}

	for _, r := range reconcile.Compare(oldSet, newSet) {
		isMatch := len(r.Diffs) == 0 && r.NewRecord != nil
		assert.Equal(t, isMatch, r.Type == domain.Match, "record %s", r.RecordID)
		if len(r.Diffs) == 0 {
			assert.NotEqual(t, domain.ReasonUnknown, r.ReasonCode, "record %s", r.RecordID)
		}
	}
}

func TestCompare_DoesNotMutateInputs(t *testing.T) {
	oldSet := []domain.Record{rec("A1", num("amount", 100), text("date", "2023-01-01"))}
	newSet := []domain.Record{rec("A1", num("amount", 101), text("date", "2023-01-02"))}
	oldCopy := []domain.Record{rec("A1", num("amount", 100), text("date", "2023-01-01"))}
	newCopy := []domain.Record{rec("A1", num("amount", 101), text("date", "2023-01-02"))}

	got := reconcile.Compare(oldSet, newSet)
	got[0].OldRecord.Fields[0] = text("amount", "changed")

	if diff := cmp.Diff(oldCopy, oldSet, cmp.AllowUnexported(domain.Value{})); diff != "" {
		t.Errorf("old set mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(newCopy, newSet, cmp.AllowUnexported(domain.Value{})); diff != "" {
		t.Errorf("new set mutated (-want +got):\n%s", diff)
	}
}

func TestCompare_Deterministic(t *testing.T) {
	oldSet := []domain.Record{
		rec("A1", num("amount", 100), text("date", "2023-01-01"), text("status", "ACTIVE")),
		rec("A2", num("amount", 5), text("productCode", "X")),
		rec("A3", text("notes", "foo")),
	}
	newSet := []domain.Record{
		rec("A1", num("amount", 100.01), text("date", "2023-01-02"), text("status", "ACTIVE")),
		rec("A2", num("amount", 5), text("productCode", "Y")),
	}

	first := reconcile.Compare(oldSet, newSet)
	second := reconcile.Compare(oldSet, newSet)
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(domain.Value{})); diff != "" {
		t.Errorf("compare not deterministic (-first +second):\n%s", diff)
	}

	s1 := reconcile.Summarize(first)
	s2 := reconcile.Summarize(second)
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("summarize not deterministic (-first +second):\n%s", diff)
	}
}

func TestComparator_Options(t *testing.T) {
	oldSet := []domain.Record{rec("A1", num("amount", 100))}
	newSet := []domain.Record{rec("A1", num("amount", 100.5))}

	t.Run("wider rounding tolerance", func(t *testing.T) {
		got := reconcile.NewComparator(reconcile.WithRoundingTolerance(1)).Compare(oldSet, newSet)
		assert.Equal(t, domain.ReasonRounding, got[0].ReasonCode)
	})

	t.Run("non-positive tolerance keeps default", func(t *testing.T) {
		got := reconcile.NewComparator(reconcile.WithRoundingTolerance(0)).Compare(oldSet, newSet)
		assert.Equal(t, domain.ReasonUnknown, got[0].ReasonCode)
	})

	t.Run("custom reason rules", func(t *testing.T) {
		rules := []reconcile.ReasonRule{{
			Name:    "amount",
			Matches: func(field string, _, _ domain.Value) bool { return field == "amount" },
			Code:    domain.ReasonInterestLogic,
		}}
		got := reconcile.NewComparator(reconcile.WithReasonRules(rules)).Compare(oldSet, newSet)
		assert.Equal(t, domain.ReasonInterestLogic, got[0].ReasonCode)
	})

	t.Run("no type rules leaves value mismatch", func(t *testing.T) {
		got := reconcile.NewComparator(reconcile.WithTypeRules(nil)).Compare(
			[]domain.Record{rec("A1", text("date", "a"))},
			[]domain.Record{rec("A1", text("date", "b"))},
		)
		assert.Equal(t, domain.ValueMismatch, got[0].Type)
	})
}
