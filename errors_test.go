package insights

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	cause := errors.New("boom")

	testData := map[string]struct {
		err      error
		is       error
		expected string
	}{
		"validation": {
			err:      newValidationError(nil, "Target name %s not present in train data", "sales"),
			is:       ErrUserConfigValidation,
			expected: "Target name sales not present in train data",
		},
		"validation with cause": {
			err:      newValidationError(cause, "Invalid feature metadata"),
			is:       cause,
			expected: "Invalid feature metadata, boom",
		},
		"dashboard": {
			err:      newDashboardError(nil, "Unsupported dataset type"),
			is:       ErrDashboardData,
			expected: "Unsupported dataset type",
		},
		"dashboard with cause": {
			err:      newDashboardError(cause, "Unsupported dataset type"),
			is:       cause,
			expected: "Unsupported dataset type, boom",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, td.err, td.is)
			assert.EqualError(t, td.err, td.expected)
		})
	}

	assert.NotErrorIs(t, newValidationError(nil, "msg"), ErrDashboardData)
}
