package reconcile_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"migration-reconciliation/internal/domain"
	"migration-reconciliation/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.ComparisonResult
		want    domain.ComparisonStats
	}{
		{
			name:    "empty results",
			results: nil,
			want: domain.ComparisonStats{
				DiscrepancyBreakdown: map[string]int{},
				FieldStats:           map[string]domain.FieldStat{},
			},
		},
		{
			name: "mixed results",
			results: []domain.ComparisonResult{
				{RecordID: "A1", OldRecord: rec("A1", num("amount", 1), text("date", "d")), Type: domain.Match, Diffs: []string{}},
				{RecordID: "A2", OldRecord: rec("A2", num("amount", 1), text("date", "d")), Type: domain.ValueMismatch, Diffs: []string{"amount"}, ReasonCode: domain.ReasonRounding},
				{RecordID: "A3", OldRecord: rec("A3", num("amount", 1)), Type: domain.TimingDiff, Diffs: []string{"date"}, ReasonCode: domain.ReasonDateOffset},
				{RecordID: "A4", OldRecord: rec("A4", num("amount", 1), text("date", "d")), Type: domain.MissingInNew, Diffs: []string{}, ReasonCode: domain.ReasonRecordDrop},
				{RecordID: "A5", OldRecord: rec("A5", text("date", "d")), Type: domain.ValueMismatch, Diffs: []string{"date"}},
			},
			want: domain.ComparisonStats{
				TotalRecords:  5,
				MatchCount:    1,
				MismatchCount: 4,
				MatchRate:     20,
				DiscrepancyBreakdown: map[string]int{
					domain.ReasonRounding:     1,
					domain.ReasonDateOffset:   1,
					domain.ReasonRecordDrop:   1,
					domain.ReasonUnclassified: 1,
				},
				FieldStats: map[string]domain.FieldStat{
					"amount": {Total: 4, Mismatch: 1},
					"date":   {Total: 4, Mismatch: 1},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconcile.Summarize(tt.results)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.TotalRecords, got.MatchCount+got.MismatchCount)
		})
	}
}

func TestSummarize_MatchRate(t *testing.T) {
	results := make([]domain.ComparisonResult, 0, 10)
	for i := 0; i < 10; i++ {
		r := domain.ComparisonResult{RecordID: fmt.Sprintf("R%d", i), OldRecord: rec(fmt.Sprintf("R%d", i)), Type: domain.Match, Diffs: []string{}}
		if i >= 7 {
			r.Type = domain.ValueMismatch
			r.Diffs = []string{"amount"}
			r.ReasonCode = domain.ReasonUnknown
		}
		results = append(results, r)
	}

	got := reconcile.Summarize(results)
	assert.InDelta(t, 70.0, got.MatchRate, 1e-9)
	assert.Equal(t, 3, got.MismatchCount)
	assert.Equal(t, 7, got.MatchCount)
	assert.Equal(t, map[string]int{domain.ReasonUnknown: 3}, got.DiscrepancyBreakdown)
}

func TestSummarize_IgnoresIdentifierField(t *testing.T) {
	results := reconcile.Compare(
		[]domain.Record{rec("A1", text(domain.IDField, "A1"), num("amount", 1))},
		[]domain.Record{rec("A1", num("amount", 1))},
	)
	got := reconcile.Summarize(results)
	assert.NotContains(t, got.FieldStats, domain.IDField)
	assert.Equal(t, domain.FieldStat{Total: 1}, got.FieldStats["amount"])
}

func TestSummarize_RepeatedJSONKeyCountsOnce(t *testing.T) {
	var oldRec, newRec domain.Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"A1","amount":1,"amount":2}`), &oldRec))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"A1","amount":2}`), &newRec))

	results := reconcile.Compare([]domain.Record{oldRec}, []domain.Record{newRec})
	require.Len(t, results, 1)
	assert.Equal(t, domain.Match, results[0].Type)
	assert.Empty(t, results[0].Diffs)

	got := reconcile.Summarize(results)
	assert.Equal(t, domain.FieldStat{Total: 1}, got.FieldStats["amount"])
	assert.Equal(t, 100.0, got.MatchRate)
}

func TestDrillDown(t *testing.T) {
	oldSet := []domain.Record{
		rec("A1", num("amount", 100), text("date", "2023-01-01")),
		rec("A2", num("amount", 100), text("date", "2023-01-01")),
		rec("A3", num("amount", 100), text("date", "2023-01-01")),
		rec("A4", num("amount", 100), text("date", "2023-01-01")),
		rec("A5", num("amount", 100)),
	}
	newSet := []domain.Record{
		rec("A1", num("amount", 100), text("date", "2023-01-01")),
		rec("A2", num("amount", 100.05), text("date", "2023-01-01")),
		rec("A3", num("amount", 180), text("date", "2023-01-02")),
		rec("A5", num("amount", 100)),
	}
	results := reconcile.Compare(oldSet, newSet)
	stats := reconcile.Summarize(results)

	t.Run("amount", func(t *testing.T) {
		got := reconcile.DrillDown(stats, results, "amount")
		assert.Equal(t, 5, got.TotalRecords)
		assert.Equal(t, 2, got.MismatchCount)
		assert.Equal(t, 3, got.MatchCount)
		assert.InDelta(t, 60.0, got.MatchRate, 1e-9)
		assert.Equal(t, map[string]int{domain.ReasonRounding: 1, domain.ReasonDateOffset: 1}, got.DiscrepancyBreakdown)
		assert.Equal(t, map[string]domain.FieldStat{"amount": {Total: 5, Mismatch: 2}}, got.FieldStats)
	})

	t.Run("date", func(t *testing.T) {
		got := reconcile.DrillDown(stats, results, "date")
		assert.Equal(t, 4, got.TotalRecords)
		assert.Equal(t, 1, got.MismatchCount)
		assert.Equal(t, map[string]int{domain.ReasonDateOffset: 1}, got.DiscrepancyBreakdown)
	})

	t.Run("unknown field", func(t *testing.T) {
		got := reconcile.DrillDown(stats, results, "nope")
		assert.Zero(t, got.TotalRecords)
		assert.Zero(t, got.MatchRate)
		assert.Empty(t, got.DiscrepancyBreakdown)
		assert.Empty(t, got.FieldStats)
	})

	t.Run("global stats untouched", func(t *testing.T) {
		before := reconcile.Summarize(results)
		reconcile.DrillDown(stats, results, "amount")
		assert.Equal(t, before, stats)
	})
}

func TestComparisonStats_SortedFields(t *testing.T) {
	stats := domain.ComparisonStats{FieldStats: map[string]domain.FieldStat{
		"b": {Total: 10, Mismatch: 1},
		"a": {Total: 10, Mismatch: 1},
		"c": {Total: 10, Mismatch: 5},
	}}
	got := stats.SortedFields()
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Field, got[1].Field, got[2].Field})
}
