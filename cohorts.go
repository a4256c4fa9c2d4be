package insights

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/aouyang1/go-forecast-insights/cohort"
	"github.com/aouyang1/go-forecast-insights/dataset"
)

type idCombination struct {
	values []any
	count  int
}

// idLabel formats an identifier value. Integral floats keep a trailing ".0" so they are not
// mistaken for integer ids.
func idLabel(v any) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return dataset.FormatValue(v)
}

// GenerateTimeSeriesCohorts returns one cohort per distinct combination of values across the
// time series identifier columns. Cohorts are ordered by descending row count with ties broken by
// the natural order of the values. Rows with a missing identifier are not counted.
func GenerateTimeSeriesCohorts(test *dataset.Frame, idColumns []string) ([]*cohort.Cohort, error) {
	if len(idColumns) == 0 {
		return []*cohort.Cohort{}, nil
	}

	cols := make([][]any, len(idColumns))
	for j, col := range idColumns {
		vals, err := test.Values(col)
		if err != nil {
			return nil, fmt.Errorf("unable to read time series id column, %w", err)
		}
		cols[j] = vals
	}

	combos := make(map[string]*idCombination)
	var order []*idCombination
	for i := 0; i < test.Nrow(); i++ {
		values := make([]any, len(idColumns))
		keys := make([]string, len(idColumns))
		missing := false
		for j := range idColumns {
			v := cols[j][i]
			if v == nil {
				missing = true
				break
			}
			values[j] = v
			keys[j] = fmt.Sprintf("%T:%s", v, dataset.FormatValue(v))
		}
		if missing {
			continue
		}
		key := strings.Join(keys, "\x00")
		c, exists := combos[key]
		if !exists {
			c = &idCombination{values: values}
			combos[key] = c
			order = append(order, c)
		}
		c.count++
	}

	slices.SortStableFunc(order, func(a, b *idCombination) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		for j := range a.values {
			if c := compareValues(a.values[j], b.values[j]); c != 0 {
				return c
			}
		}
		return 0
	})

	cohorts := make([]*cohort.Cohort, 0, len(order))
	for _, combo := range order {
		pairs := make([]string, len(idColumns))
		filters := make([]cohort.Filter, len(idColumns))
		for j, col := range idColumns {
			val := idLabel(combo.values[j])
			pairs[j] = fmt.Sprintf("%s = %s", col, val)
			filters[j] = cohort.Filter{
				Method: cohort.MethodIncludes,
				Arg:    []string{val},
				Column: col,
			}
		}

		c, err := cohort.New(strings.Join(pairs, ", "))
		if err != nil {
			return nil, err
		}
		for _, f := range filters {
			if err := c.AddFilter(f); err != nil {
				return nil, err
			}
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, nil
}

// compareValues orders numbers numerically before strings which are ordered lexically.
func compareValues(a, b any) int {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(af, bf)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return cmp.Compare(dataset.FormatValue(a), dataset.FormatValue(b))
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case float64:
		return val, true
	}
	return 0, false
}
