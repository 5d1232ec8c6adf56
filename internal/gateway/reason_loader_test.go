package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migration-reconciliation/internal/domain"
)

const reasonsYAML = `reasons:
  - code: R001
    label: Rounding Difference
    description: Precision variance.
    severity: low
  - code: R002
    label: Migration Transformation
    description: Mapped during migration.
    severity: medium
  - code: R003
    label: Date Offset
    description: EOD shift.
    severity: low
  - code: R004
    label: Truncation
    description: Truncated text.
    severity: low
  - code: R005
    label: Record Drop
    description: Not migrated.
    severity: critical
  - code: R006
    label: Interest Logic Change
    description: New accrual method.
    severity: medium
  - code: R007
    label: Fee Schedule Change
    description: Fee tables differ.
    severity: high
  - code: UNKNOWN
    label: Requires Investigation
    description: No rule matched.
    severity: high
`

func TestLoadReasonDictionary(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "reasons.yaml")
		require.NoError(t, os.WriteFile(path, []byte(reasonsYAML), 0o644))

		dict, err := LoadReasonDictionary(path)
		require.NoError(t, err)
		fee, ok := dict.Lookup("R007")
		require.True(t, ok)
		assert.Equal(t, domain.SeverityHigh, fee.Severity)
		assert.Len(t, dict.Codes(), 8)
	})

	t.Run("missing required code", func(t *testing.T) {
		path := filepath.Join(dir, "partial.yaml")
		require.NoError(t, os.WriteFile(path, []byte("reasons:\n  - code: R001\n    severity: low\n"), 0o644))

		_, err := LoadReasonDictionary(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("reasons: [\n"), 0o644))

		_, err := LoadReasonDictionary(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadReasonDictionary(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
