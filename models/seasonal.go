package models

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GlobalSeries is the key of the fit over all rows used for series not seen during training.
const GlobalSeries = "__global__"

const seriesKeySep = "|"

// SeasonalOptions configures the seasonal forecaster.
type SeasonalOptions struct {
	TimeColumn   string    `json:"time_column"`
	IDColumns    []string  `json:"id_columns"`
	WeeklyOrders []int     `json:"weekly_orders"`
	YearlyOrders []int     `json:"yearly_orders"`
	Holidays     bool      `json:"holidays"`
	Quantiles    []float64 `json:"quantiles"`
}

// NewDefaultSeasonalOptions returns options fitting three weekly and two yearly fourier orders,
// a US holiday indicator and the 10th, 50th and 90th percentiles.
func NewDefaultSeasonalOptions(timeColumn string, idColumns ...string) *SeasonalOptions {
	return &SeasonalOptions{
		TimeColumn:   timeColumn,
		IDColumns:    idColumns,
		WeeklyOrders: []int{1, 2, 3},
		YearlyOrders: []int{1, 2},
		Holidays:     true,
		Quantiles:    []float64{0.1, 0.5, 0.9},
	}
}

func (o *SeasonalOptions) Validate() error {
	if o == nil {
		return ErrNoOptions
	}
	if o.TimeColumn == "" {
		return ErrNoTimeColumn
	}
	for _, q := range o.Quantiles {
		if q <= 0 || q >= 1 || math.IsNaN(q) {
			return fmt.Errorf("got %f, %w", q, ErrInvalidQuantile)
		}
	}
	for _, order := range slices.Concat(o.WeeklyOrders, o.YearlyOrders) {
		if order <= 0 {
			return fmt.Errorf("got %d, %w", order, ErrInvalidOrder)
		}
	}
	return nil
}

// SeriesModel is the fit of a single time series.
type SeriesModel struct {
	Origin      time.Time `json:"origin"`
	Frequency   string    `json:"frequency"`
	Features    []string  `json:"features"`
	Intercept   float64   `json:"intercept"`
	Coef        []float64 `json:"coef"`
	ResidualStd float64   `json:"residual_std"`
	Scores      *Scores   `json:"scores"`
}

func (s *SeriesModel) predict(t []time.Time) ([]float64, error) {
	cols, err := generateFeatures(s.Features, t, s.Origin)
	if err != nil {
		return nil, err
	}
	res := make([]float64, len(t))
	floats.AddConst(s.Intercept, res)
	for j, col := range cols {
		floats.AddScaled(res, s.Coef[j], col)
	}
	return res, nil
}

// SeasonalModel is the serializable form of a SeasonalForecaster.
type SeasonalModel struct {
	Options *SeasonalOptions        `json:"options"`
	Series  map[string]*SeriesModel `json:"series"`
}

// SeasonalForecaster fits an ordinary least squares model per time series on a linear trend,
// weekly and yearly fourier terms and a US holiday indicator. Quantiles assume normally
// distributed residuals.
type SeasonalForecaster struct {
	opt     *SeasonalOptions
	series  map[string]*SeriesModel
	trained bool
}

func NewSeasonalForecaster(opt *SeasonalOptions) (*SeasonalForecaster, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return &SeasonalForecaster{opt: opt}, nil
}

// NewFromModel creates a trained forecaster from its serializable form.
func NewFromModel(model SeasonalModel) (*SeasonalForecaster, error) {
	if err := model.Options.Validate(); err != nil {
		return nil, err
	}
	if _, exists := model.Series[GlobalSeries]; !exists {
		return nil, fmt.Errorf("model has no global series, %w", ErrUntrainedForecaster)
	}
	for key, s := range model.Series {
		if s == nil || len(s.Features) != len(s.Coef) {
			return nil, fmt.Errorf("series %q, %w", key, ErrFeatureLenMismatch)
		}
	}
	return &SeasonalForecaster{
		opt:     model.Options,
		series:  model.Series,
		trained: true,
	}, nil
}

// TimeColumnName is the column holding the time of each row.
func (s *SeasonalForecaster) TimeColumnName() string {
	if s == nil || s.opt == nil {
		return ""
	}
	return s.opt.TimeColumn
}

func (s *SeasonalForecaster) Quantiles() []float64 {
	if s == nil || s.opt == nil {
		return nil
	}
	return slices.Clone(s.opt.Quantiles)
}

// seriesKeys returns the series of each row from the identifier columns.
func (s *SeasonalForecaster) seriesKeys(x *dataset.Frame) ([]string, error) {
	keys := make([]string, x.Nrow())
	if len(s.opt.IDColumns) == 0 {
		for i := range keys {
			keys[i] = GlobalSeries
		}
		return keys, nil
	}

	parts := make([][]string, x.Nrow())
	for _, col := range s.opt.IDColumns {
		vals, err := x.Values(col)
		if err != nil {
			return nil, fmt.Errorf("id column %q, %w", col, ErrMissingColumn)
		}
		for i, v := range vals {
			parts[i] = append(parts[i], dataset.FormatValue(v))
		}
	}
	for i := range keys {
		keys[i] = strings.Join(parts[i], seriesKeySep)
	}
	return keys, nil
}

func (s *SeasonalForecaster) times(x *dataset.Frame) ([]time.Time, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	vals, err := x.Values(s.opt.TimeColumn)
	if err != nil {
		return nil, fmt.Errorf("time column %q, %w", s.opt.TimeColumn, ErrMissingColumn)
	}
	return timedataset.ParseTimes(vals)
}

// Fit trains one model per series and a global model over every row.
func (s *SeasonalForecaster) Fit(x *dataset.Frame, y []float64) error {
	if s == nil || s.opt == nil {
		return ErrUninitializedForecaster
	}
	t, err := s.times(x)
	if err != nil {
		return err
	}
	if len(y) != len(t) {
		return fmt.Errorf("dataset has %d rows and target has %d values, %w", len(t), len(y), ErrTargetLenMismatch)
	}
	keys, err := s.seriesKeys(x)
	if err != nil {
		return err
	}

	global, err := fitSeries(s.opt, t, y)
	if err != nil {
		return fmt.Errorf("unable to fit global series, %w", err)
	}
	series := map[string]*SeriesModel{GlobalSeries: global}

	if len(s.opt.IDColumns) > 0 {
		groups := make(map[string][]int)
		for i, key := range keys {
			groups[key] = append(groups[key], i)
		}
		for key, rows := range groups {
			gt := make([]time.Time, len(rows))
			gy := make([]float64, len(rows))
			for i, r := range rows {
				gt[i] = t[r]
				gy[i] = y[r]
			}
			td, err := timedataset.NewSortedDataset(gt, gy)
			if err != nil {
				slog.Warn("unable to build series, using global fit", "series", key, "error", err.Error())
				continue
			}
			sm, err := fitSeries(s.opt, td.T, td.Y)
			if err != nil {
				slog.Warn("unable to fit series, using global fit", "series", key, "error", err.Error())
				continue
			}
			series[key] = sm
		}
	}

	s.series = series
	s.trained = true
	return nil
}

func fitSeries(opt *SeasonalOptions, t []time.Time, y []float64) (*SeriesModel, error) {
	tClean := make([]time.Time, 0, len(t))
	yClean := make([]float64, 0, len(y))
	for i := range y {
		if math.IsNaN(y[i]) {
			continue
		}
		tClean = append(tClean, t[i])
		yClean = append(yClean, y[i])
	}
	n := len(yClean)
	if n < 1 {
		return nil, ErrInsufficientTrainingData
	}

	start := slices.MinFunc(tClean, time.Time.Compare)
	end := slices.MaxFunc(tClean, time.Time.Compare)

	sm := &SeriesModel{Origin: start}
	if freq, err := timedataset.EstimateFreq(tClean); err == nil {
		sm.Frequency = freq.String()
	}

	names := candidateFeatures(opt, end.Sub(start))
	cols, err := generateFeatures(names, tClean, start)
	if err != nil {
		return nil, err
	}
	// keep a residual degree of freedom next to the intercept
	sm.Features, cols = selectFeatures(names, cols, n-2)
	p := len(sm.Features)

	if p == 0 {
		sm.Intercept = floats.Sum(yClean) / float64(n)
		sm.Coef = []float64{}
	} else {
		xMx := mat.NewDense(n, p, nil)
		for j, col := range cols {
			xMx.SetCol(j, col)
		}
		yMx := mat.NewDense(n, 1, yClean)

		reg, err := NewOLSRegression(NewDefaultOLSOptions())
		if err != nil {
			return nil, err
		}
		if err := reg.Fit(xMx, yMx); err != nil {
			return nil, err
		}
		sm.Intercept = reg.Intercept()
		sm.Coef = reg.Coef()
	}

	pred, err := sm.predict(tClean)
	if err != nil {
		return nil, err
	}
	residual := make([]float64, n)
	floats.SubTo(residual, yClean, pred)

	dof := n - p - 1
	if dof < 1 {
		dof = n
	}
	sm.ResidualStd = math.Sqrt(floats.Dot(residual, residual) / float64(dof))

	sm.Scores, err = NewScores(pred, yClean)
	if err != nil {
		return nil, err
	}
	return sm, nil
}

// Predict returns the point forecast of each row using the fit of its series, falling back to the
// global fit for series not seen during training.
func (s *SeasonalForecaster) Predict(x *dataset.Frame) ([]float64, error) {
	pred, _, err := s.predict(x)
	return pred, err
}

// PredictQuantiles returns, for each row, the forecast at each configured quantile.
func (s *SeasonalForecaster) PredictQuantiles(x *dataset.Frame) ([][]float64, error) {
	pred, std, err := s.predict(x)
	if err != nil {
		return nil, err
	}

	z := make([]float64, len(s.opt.Quantiles))
	for j, q := range s.opt.Quantiles {
		z[j] = distuv.UnitNormal.Quantile(q)
	}

	res := make([][]float64, len(pred))
	for i := range pred {
		row := make([]float64, len(z))
		for j := range z {
			row[j] = pred[i] + z[j]*std[i]
		}
		res[i] = row
	}
	return res, nil
}

func (s *SeasonalForecaster) predict(x *dataset.Frame) ([]float64, []float64, error) {
	if s == nil || s.opt == nil {
		return nil, nil, ErrUninitializedForecaster
	}
	if !s.trained {
		return nil, nil, ErrUntrainedForecaster
	}
	t, err := s.times(x)
	if err != nil {
		return nil, nil, err
	}
	keys, err := s.seriesKeys(x)
	if err != nil {
		return nil, nil, err
	}

	groups := make(map[string][]int)
	for i, key := range keys {
		if _, exists := s.series[key]; !exists {
			key = GlobalSeries
		}
		groups[key] = append(groups[key], i)
	}

	pred := make([]float64, len(t))
	std := make([]float64, len(t))
	for key, rows := range groups {
		sm := s.series[key]
		gt := make([]time.Time, len(rows))
		for i, r := range rows {
			gt[i] = t[r]
		}
		gp, err := sm.predict(gt)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to predict series %q, %w", key, err)
		}
		for i, r := range rows {
			pred[r] = gp[i]
			std[r] = sm.ResidualStd
		}
	}
	return pred, std, nil
}

// Model returns the serializable form of the trained forecaster.
func (s *SeasonalForecaster) Model() (SeasonalModel, error) {
	if s == nil || s.opt == nil {
		return SeasonalModel{}, ErrUninitializedForecaster
	}
	if !s.trained {
		return SeasonalModel{}, ErrUntrainedForecaster
	}
	return SeasonalModel{
		Options: s.opt,
		Series:  s.series,
	}, nil
}
