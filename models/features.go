package models

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-forecast-insights/event"
	"gonum.org/v1/gonum/stat"
)

const (
	FeatureTrend   = "trend"
	FeatureHoliday = "holiday"

	labelWeekly = "weekly"
	labelYearly = "yearly"

	secondsPerDay = 86400.0
	daysPerWeek   = 7.0
	daysPerYear   = 365.25
)

func fourierName(label, comp string, order int) string {
	return fmt.Sprintf("%s_%s_%d", label, comp, order)
}

// candidateFeatures lists the feature names in fit priority order.
func candidateFeatures(opt *SeasonalOptions, span time.Duration) []string {
	names := []string{FeatureTrend}
	if span >= 7*24*time.Hour {
		for _, order := range opt.WeeklyOrders {
			names = append(names, fourierName(labelWeekly, "sin", order), fourierName(labelWeekly, "cos", order))
		}
	}
	if span >= 365*24*time.Hour {
		for _, order := range opt.YearlyOrders {
			names = append(names, fourierName(labelYearly, "sin", order), fourierName(labelYearly, "cos", order))
		}
	}
	if opt.Holidays {
		names = append(names, FeatureHoliday)
	}
	return names
}

// generateFeatures builds the named feature columns for the time points. The trend is measured
// in days since origin and the fourier terms are anchored at the unix epoch.
func generateFeatures(names []string, t []time.Time, origin time.Time) ([][]float64, error) {
	days := make([]float64, len(t))
	for i, ts := range t {
		days[i] = float64(ts.Unix()) / secondsPerDay
	}

	var holidays event.Events
	if slices.Contains(names, FeatureHoliday) && len(t) > 0 {
		start, end := slices.MinFunc(t, time.Time.Compare), slices.MaxFunc(t, time.Time.Compare)
		holidays = event.Holidays(event.USHolidays, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	}

	cols := make([][]float64, len(names))
	for j, name := range names {
		col := make([]float64, len(t))
		switch {
		case name == FeatureTrend:
			for i, ts := range t {
				col[i] = ts.Sub(origin).Hours() / 24.0
			}
		case name == FeatureHoliday:
			col = holidays.Indicator(t)
		default:
			parts := strings.Split(name, "_")
			if len(parts) != 3 {
				return nil, fmt.Errorf("%q, %w", name, ErrUnknownFeature)
			}
			order, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("%q, %w", name, ErrUnknownFeature)
			}
			var period float64
			switch parts[0] {
			case labelWeekly:
				period = daysPerWeek
			case labelYearly:
				period = daysPerYear
			default:
				return nil, fmt.Errorf("%q, %w", name, ErrUnknownFeature)
			}
			wave := math.Sin
			if parts[1] == "cos" {
				wave = math.Cos
			}
			for i, d := range days {
				col[i] = wave(2.0 * math.Pi * float64(order) * d / period)
			}
		}
		cols[j] = col
	}
	return cols, nil
}

// selectFeatures keeps the non constant features in priority order up to maxFeatures.
func selectFeatures(names []string, cols [][]float64, maxFeatures int) ([]string, [][]float64) {
	var selNames []string
	var selCols [][]float64
	for j, name := range names {
		if len(selNames) >= maxFeatures {
			break
		}
		if v := stat.Variance(cols[j], nil); math.IsNaN(v) || v < 1e-12 {
			continue
		}
		selNames = append(selNames, name)
		selCols = append(selCols, cols[j])
	}
	return selNames, selCols
}
