package gateway

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"migration-reconciliation/internal/domain"
)

const (
	syntheticRecordCount     = 100
	syntheticDiscrepancyRate = 0.28
)

// SyntheticRecordSource fabricates legacy/new record pairs with injected
// discrepancies. Successive loads use successive seeds, so a fixed seed
// reproduces the same sequence of runs.
type SyntheticRecordSource struct {
	seed  int64
	loads atomic.Int64
}

func NewSyntheticRecordSource(seed int64) *SyntheticRecordSource {
	return &SyntheticRecordSource{seed: seed}
}

func (s *SyntheticRecordSource) LoadRecords(ctx context.Context, job domain.ComparisonConfig) ([]domain.Record, []domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	rng := rand.New(rand.NewSource(s.seed + s.loads.Add(1) - 1))
	return GenerateRecords(rng, job.SchemaType)
}

// GenerateRecords builds one synthetic data set for the schema.
func GenerateRecords(rng *rand.Rand, schema domain.SchemaType) ([]domain.Record, []domain.Record, error) {
	switch schema {
	case domain.SchemaLoanMaster:
		old, cur := generateLoanMaster(rng)
		return old, cur, nil
	case domain.SchemaLoanTxn:
		old, cur := generateLoanTxn(rng)
		return old, cur, nil
	}
	return nil, nil, fmt.Errorf("no synthetic generator for schema %q", schema)
}

func generateLoanMaster(rng *rand.Rand) ([]domain.Record, []domain.Record) {
	oldSet := make([]domain.Record, 0, syntheticRecordCount)
	newSet := make([]domain.Record, 0, syntheticRecordCount)

	for i := 0; i < syntheticRecordCount; i++ {
		id := fmt.Sprintf("LN-%d", 100000+i)
		principal := float64(rng.Intn(500000) + 10000)
		rec := domain.NewRecord(id,
			domain.F("accountNumber", domain.Text(id)),
			domain.F("outstandingPrincipal", domain.Number(principal)),
			domain.F("dateLastActivity", domain.Text("2023-10-25")),
			domain.F("interestRate", domain.Number(4.5)),
			domain.F("productCode", domain.Text("MORTGAGE_FIXED")),
			domain.F("status", domain.Text("ACTIVE")),
		)
		oldSet = append(oldSet, rec)

		if rng.Float64() < 0.03 {
			continue
		}

		migrated := cloneFields(rec)
		if rng.Float64() < syntheticDiscrepancyRate {
			switch p := rng.Float64(); {
			case p < 0.35:
				migrated.Set("outstandingPrincipal", domain.Number(round2(principal+rng.Float64()*10-5)))
			case p < 0.55:
				migrated.Set("dateLastActivity", domain.Text("2023-10-26"))
			case p < 0.70:
				migrated.Set("interestRate", domain.Number(4.5+0.125))
			case p < 0.85:
				migrated.Set("productCode", domain.Text("MORT_FX_30Y_V2"))
			default:
				migrated.Set("status", domain.Text("REVIEW_PENDING"))
			}
		}
		newSet = append(newSet, migrated)
	}
	return oldSet, newSet
}

func generateLoanTxn(rng *rand.Rand) ([]domain.Record, []domain.Record) {
	oldSet := make([]domain.Record, 0, syntheticRecordCount)
	newSet := make([]domain.Record, 0, syntheticRecordCount)

	for i := 0; i < syntheticRecordCount; i++ {
		id := fmt.Sprintf("TX-%d", 900000+i)
		amount := float64(rng.Intn(1000) + 50)
		rec := domain.NewRecord(id,
			domain.F("accountNumber", domain.Text(fmt.Sprintf("LN-%d", 100000+i%20))),
			domain.F("captureDate", domain.Text("2023-10-25T10:30:00Z")),
			domain.F("transactionAmount", domain.Number(amount)),
			domain.F("transactionType", domain.Text("REPAYMENT")),
			domain.F("description", domain.Text("Monthly Installment")),
		)
		oldSet = append(oldSet, rec)

		if rng.Float64() < 0.02 {
			continue
		}

		migrated := cloneFields(rec)
		if rng.Float64() < syntheticDiscrepancyRate {
			switch p := rng.Float64(); {
			case p < 0.4:
				migrated.Set("transactionAmount", domain.Number(amount+0.01))
			case p < 0.7:
				migrated.Set("captureDate", domain.Text("2023-10-25T10:30:01Z"))
			default:
				migrated.Set("description", domain.Text("Monthly Install"))
			}
		}
		newSet = append(newSet, migrated)
	}
	return oldSet, newSet
}

func cloneFields(r domain.Record) domain.Record {
	fields := make([]domain.Field, len(r.Fields))
	copy(fields, r.Fields)
	return domain.Record{ID: r.ID, Fields: fields}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
