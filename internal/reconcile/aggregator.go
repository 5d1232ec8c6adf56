package reconcile

import (
	"migration-reconciliation/internal/domain"
)

// Summarize derives run statistics from comparison results.
func Summarize(results []domain.ComparisonResult) domain.ComparisonStats {
	stats := domain.ComparisonStats{
		TotalRecords:         len(results),
		DiscrepancyBreakdown: make(map[string]int),
		FieldStats:           make(map[string]domain.FieldStat),
	}

	for _, r := range results {
		if r.Type == domain.Match {
			stats.MatchCount++
		} else {
			stats.DiscrepancyBreakdown[reasonKey(r.ReasonCode)]++
		}

		for _, name := range r.OldRecord.FieldNames() {
			fs := stats.FieldStats[name]
			fs.Total++
			if r.HasDiff(name) {
				fs.Mismatch++
			}
			stats.FieldStats[name] = fs
		}
	}

	stats.MismatchCount = stats.TotalRecords - stats.MatchCount
	stats.MatchRate = matchRate(stats.MatchCount, stats.TotalRecords)
	return stats
}

// DrillDown scopes stats to a single field. The global stats are left untouched.
func DrillDown(stats domain.ComparisonStats, results []domain.ComparisonResult, field string) domain.ComparisonStats {
	fs := stats.FieldStats[field]
	view := domain.ComparisonStats{
		TotalRecords:         fs.Total,
		MatchCount:           fs.Total - fs.Mismatch,
		MismatchCount:        fs.Mismatch,
		MatchRate:            matchRate(fs.Total-fs.Mismatch, fs.Total),
		DiscrepancyBreakdown: make(map[string]int),
		FieldStats:           make(map[string]domain.FieldStat),
	}
	if _, ok := stats.FieldStats[field]; ok {
		view.FieldStats[field] = fs
	}

	for _, r := range results {
		if r.HasDiff(field) {
			view.DiscrepancyBreakdown[reasonKey(r.ReasonCode)]++
		}
	}
	return view
}

func reasonKey(code string) string {
	if code == "" {
		return domain.ReasonUnclassified
	}
	return code
}

func matchRate(matches, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(matches) / float64(total) * 100
}
