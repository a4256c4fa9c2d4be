// Package categorical encodes the categorical columns of a dataset as integer codes.
package categorical

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/aouyang1/go-forecast-insights/dataset"
)

var (
	ErrNoDataset      = errors.New("no dataset to process")
	ErrFeatureMissing = errors.New("categorical feature is not a dataset column")
)

// Result holds the encodings of the categorical columns. Categories and CategoricalIndexes are
// ordered by the position of the column in the feature names.
type Result struct {
	// Categories lists the sorted distinct values of each categorical column
	Categories [][]string `json:"categories"`

	// CategoricalIndexes are the positions of the categorical columns in the feature names
	CategoricalIndexes []int `json:"categorical_indexes"`

	// CategoryDictionary maps a column position to the value to code lookup of that column
	CategoryDictionary map[int]map[string]int `json:"category_dictionary"`

	// StringIndData is the dataset as rows where categorical cells are replaced by their code
	StringIndData [][]any `json:"string_ind_data"`
}

// Processor derives the categorical encodings of a dataset.
type Processor interface {
	Process(allFeatureNames, categoricalFeatures []string, data *dataset.Frame) (*Result, error)
}

// LabelEncoder assigns each distinct value of a categorical column its position among the sorted
// distinct values of that column.
type LabelEncoder struct{}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Process encodes every feature in allFeatureNames that is also listed in categoricalFeatures.
// With no categorical features the data rows are returned unchanged.
func (l *LabelEncoder) Process(allFeatureNames, categoricalFeatures []string, data *dataset.Frame) (*Result, error) {
	if data == nil {
		return nil, ErrNoDataset
	}

	sel, err := data.Select(allFeatureNames...)
	if err != nil {
		return nil, fmt.Errorf("unable to select features for categorical processing, %w", err)
	}
	rows, err := sel.Rows()
	if err != nil {
		return nil, fmt.Errorf("unable to read rows for categorical processing, %w", err)
	}

	res := &Result{
		Categories:         [][]string{},
		CategoricalIndexes: []int{},
		CategoryDictionary: make(map[int]map[string]int),
		StringIndData:      rows,
	}
	for _, feature := range categoricalFeatures {
		if !slices.Contains(allFeatureNames, feature) {
			return nil, fmt.Errorf("%q, %w", feature, ErrFeatureMissing)
		}
	}

	for j, feature := range allFeatureNames {
		if !slices.Contains(categoricalFeatures, feature) {
			continue
		}
		vals, err := sel.Values(feature)
		if err != nil {
			return nil, err
		}
		cats, codes := LabelEncode(vals)

		res.Categories = append(res.Categories, cats)
		res.CategoricalIndexes = append(res.CategoricalIndexes, j)
		res.CategoryDictionary[j] = codes
		for i, v := range vals {
			res.StringIndData[i][j] = codes[dataset.FormatValue(v)]
		}
	}
	return res, nil
}

// LabelEncode returns the sorted distinct string forms of the values and the code of each. Values
// that all parse as numbers are sorted numerically.
func LabelEncode(vals []any) ([]string, map[string]int) {
	codes := make(map[string]int)
	var cats []string
	for _, v := range vals {
		s := dataset.FormatValue(v)
		if _, exists := codes[s]; exists {
			continue
		}
		codes[s] = 0
		cats = append(cats, s)
	}

	numeric := true
	nums := make(map[string]float64, len(cats))
	for _, c := range cats {
		f, err := strconv.ParseFloat(c, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[c] = f
	}
	if numeric {
		slices.SortFunc(cats, func(a, b string) int {
			switch {
			case nums[a] < nums[b]:
				return -1
			case nums[a] > nums[b]:
				return 1
			}
			return 0
		})
	} else {
		slices.Sort(cats)
	}

	for i, c := range cats {
		codes[c] = i
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, codes
}
