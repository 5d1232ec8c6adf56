package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"migration-reconciliation/internal/domain"
)

var ErrInvalidStatusFilter = errors.New("invalid status filter")

// StatusFilter selects results by whether their cause is known.
type StatusFilter string

const (
	StatusAll      StatusFilter = "ALL"
	StatusExpected StatusFilter = "EXPECTED"
	StatusUnknown  StatusFilter = "UNKNOWN"
)

// ParseStatusFilter accepts the filter names case-insensitively; empty means ALL.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToUpper(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusExpected:
		return StatusExpected, nil
	case StatusUnknown:
		return StatusUnknown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatusFilter, s)
}

// Query narrows a result list the way the comparison table does.
type Query struct {
	Status StatusFilter
	Search string
	Field  string
}

// Filter returns the results satisfying every criterion of q, preserving order.
func Filter(results []domain.ComparisonResult, q Query) ([]domain.ComparisonResult, error) {
	status := q.Status
	if status == "" {
		status = StatusAll
	}
	if status != StatusAll && status != StatusExpected && status != StatusUnknown {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatusFilter, q.Status)
	}
	search := strings.ToLower(q.Search)

	out := make([]domain.ComparisonResult, 0, len(results))
	for _, r := range results {
		if !matchesStatus(r, status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.RecordID), search) {
			continue
		}
		if q.Field != "" && !r.HasDiff(q.Field) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func matchesStatus(r domain.ComparisonResult, status StatusFilter) bool {
	switch status {
	case StatusExpected:
		return r.Type != domain.Match && r.ReasonCode != "" && r.ReasonCode != domain.ReasonUnknown
	case StatusUnknown:
		return r.Type != domain.Match && (r.ReasonCode == "" || r.ReasonCode == domain.ReasonUnknown)
	}
	return true
}
