package gateway

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"migration-reconciliation/internal/domain"
)

type reasonFile struct {
	Reasons []domain.DiscrepancyReason `yaml:"reasons"`
}

// LoadReasonDictionary reads a YAML reason dictionary:
//
//	reasons:
//	  - code: R001
//	    label: Rounding Difference
//	    description: ...
//	    severity: low
func LoadReasonDictionary(path string) (*domain.ReasonDictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reason dictionary %s: %w", path, err)
	}

	var file reasonFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse reason dictionary %s: %w", path, err)
	}

	dict, err := domain.NewReasonDictionary(file.Reasons)
	if err != nil {
		return nil, fmt.Errorf("invalid reason dictionary %s: %w", path, err)
	}
	return dict, nil
}
