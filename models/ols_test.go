package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func denseFromRows(t *testing.T, rows [][]float64) *mat.Dense {
	t.Helper()
	require.NotEmpty(t, rows)
	x := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}
	return x
}

func TestOLSOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *OLSOptions
		expected *OLSOptions
	}{
		"nil": {nil, NewDefaultOLSOptions()},
		"unset tolerance": {
			&OLSOptions{FitIntercept: false},
			&OLSOptions{FitIntercept: false, RankTol: DefaultRankTol},
		},
		"valid": {
			&OLSOptions{FitIntercept: true, RankTol: 1e-6},
			&OLSOptions{FitIntercept: true, RankTol: 1e-6},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestOLSRegression(t *testing.T) {
	tol := 1e-5
	testData := map[string]struct {
		x         [][]float64
		y         []float64
		opt       *OLSOptions
		intercept float64
		coef      []float64
	}{
		"ols model intercept": {
			x: [][]float64{
				{0, 0},
				{3, 5},
				{9, 20},
				{12, 6},
				{15, 10},
			},
			y:         []float64{2, 31, 109, 62, 87},
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"ols model no intercept": {
			x: [][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			},
			y: []float64{2, 31, 109, 62, 87},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
		"dependent feature zeroed": {
			x: [][]float64{
				{0, 0},
				{3, 6},
				{9, 18},
				{12, 24},
				{15, 30},
			},
			y:         []float64{2, 11, 29, 38, 47},
			intercept: 2.0,
			coef:      []float64{3.0, 0.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x := denseFromRows(t, td.x)
			y := mat.NewDense(len(td.y), 1, td.y)

			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)

			require.Nil(t, model.Fit(x, y))
			assert.InDelta(t, td.intercept, model.Intercept(), tol)
			assert.InDeltaSlice(t, td.coef, model.Coef(), tol)

			r2, err := model.Score(x, y)
			require.Nil(t, err)
			assert.InDelta(t, 1.0, r2, tol)
		})
	}
}

func TestOLSRegressionErrors(t *testing.T) {
	model, err := NewOLSRegression(nil)
	require.Nil(t, err)

	x := denseFromRows(t, [][]float64{{1, 2}, {3, 4}})
	testData := map[string]struct {
		x   mat.Matrix
		y   mat.Matrix
		err error
	}{
		"no training matrix":  {nil, mat.NewDense(2, 1, nil), ErrNoTrainingMatrix},
		"no target matrix":    {x, nil, ErrNoTargetMatrix},
		"target len mismatch": {x, mat.NewDense(3, 1, nil), ErrTargetLenMismatch},
		"underdetermined":     {x, mat.NewDense(2, 1, []float64{1, 2}), ErrUnderdetermined},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, model.Fit(td.x, td.y), td.err)
		})
	}

	_, err = model.Predict(nil)
	assert.ErrorIs(t, err, ErrNoDesignMatrix)

	_, err = model.Predict(denseFromRows(t, [][]float64{{1, 2, 3}}))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)
}

func BenchmarkOLSRegression(b *testing.B) {
	nObs, nFeat := 1000, 20
	x := mat.NewDense(nObs, nFeat, nil)
	y := mat.NewDense(nObs, 1, nil)
	for i := 0; i < nObs; i++ {
		for j := 0; j < nFeat; j++ {
			x.Set(i, j, float64((i*nFeat+j)%97))
		}
		y.Set(i, 0, float64(i))
	}

	for b.Loop() {
		model, err := NewOLSRegression(nil)
		if err != nil {
			b.Error(err)
			continue
		}
		if err := model.Fit(x, y); err != nil {
			b.Error(err)
			continue
		}
	}
}
