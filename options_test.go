package insights

import (
	"log/slog"
	"testing"

	"github.com/aouyang1/go-forecast-insights/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	logger := slog.Default()

	testData := map[string]struct {
		opt      *Options
		expected *Options
		err      error
	}{
		"nil": {
			opt:      nil,
			expected: NewDefaultOptions(),
		},
		"unset fields use defaults": {
			opt:      &Options{Logger: logger},
			expected: NewDefaultOptions(),
		},
		"explicit values": {
			opt: &Options{
				MaximumRowsForTest: 10,
				QuantilePolicy:     QuantilePolicyAlways,
				PredictionSource:   PredictionSourceCache,
			},
			expected: &Options{
				MaximumRowsForTest: 10,
				QuantilePolicy:     QuantilePolicyAlways,
				PredictionSource:   PredictionSourceCache,
			},
		},
		"negative rows": {
			opt: &Options{MaximumRowsForTest: -1},
			err: ErrUserConfigValidation,
		},
		"unknown quantile policy": {
			opt: &Options{QuantilePolicy: "never"},
			err: ErrUserConfigValidation,
		},
		"unknown prediction source": {
			opt: &Options{PredictionSource: "disk"},
			err: ErrUserConfigValidation,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected.MaximumRowsForTest, res.MaximumRowsForTest)
			assert.Equal(t, td.expected.QuantilePolicy, res.QuantilePolicy)
			assert.Equal(t, td.expected.PredictionSource, res.PredictionSource)
			assert.NotNil(t, res.CategoricalProcessor)
			assert.NotNil(t, res.Filterer)
			assert.NotNil(t, res.Logger)
		})
	}
}

func TestOptionsValidateCopiesMetadata(t *testing.T) {
	fm := &metadata.FeatureMetadata{TimeColumnName: "date", CategoricalFeatures: []string{"store_id"}}
	opt := &Options{FeatureMetadata: fm}

	res, err := opt.Validate()
	require.Nil(t, err)
	require.Equal(t, fm, res.FeatureMetadata)

	res.FeatureMetadata.TimeColumnName = "ts"
	res.FeatureMetadata.CategoricalFeatures[0] = "item"
	assert.Equal(t, "date", fm.TimeColumnName)
	assert.Equal(t, "store_id", fm.CategoricalFeatures[0])
	assert.Equal(t, 0, opt.MaximumRowsForTest)
}
