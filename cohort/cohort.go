// Package cohort defines named subsets of a dataset described by a conjunction of column filters
// and a default executor applying those filters to a dataset.
package cohort

import (
	"errors"
	"fmt"
	"slices"
)

// Filter methods supported for a single column.
const (
	MethodIncludes        = "includes"
	MethodExcludes        = "excludes"
	MethodEqual           = "equal"
	MethodGreater         = "greater"
	MethodLess            = "less"
	MethodGreaterAndEqual = "greater and equal"
	MethodLessAndEqual    = "less and equal"
	MethodRange           = "in the range of"
)

// Composite filter operations.
const (
	OperationAnd = "and"
	OperationOr  = "or"
)

var (
	ErrUnknownMethod    = errors.New("unknown filter method")
	ErrUnknownOperation = errors.New("unknown composite filter operation")
	ErrInvalidArg       = errors.New("invalid filter argument")
	ErrNoName           = errors.New("no cohort name")
)

var methods = []string{
	MethodIncludes,
	MethodExcludes,
	MethodEqual,
	MethodGreater,
	MethodLess,
	MethodGreaterAndEqual,
	MethodLessAndEqual,
	MethodRange,
}

// Filter restricts a column with a method and its arguments. Arguments are stored in their
// string form and converted to the column type when applied.
type Filter struct {
	Method string   `json:"method"`
	Arg    []string `json:"arg"`
	Column string   `json:"column"`
}

// NewFilter creates a validated filter.
func NewFilter(method string, arg []string, column string) (Filter, error) {
	f := Filter{Method: method, Arg: arg, Column: column}
	if err := f.Valid(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Valid checks the method is known and the argument count fits the method.
func (f Filter) Valid() error {
	if !slices.Contains(methods, f.Method) {
		return fmt.Errorf("%q, %w", f.Method, ErrUnknownMethod)
	}
	switch f.Method {
	case MethodIncludes, MethodExcludes:
		if len(f.Arg) == 0 {
			return fmt.Errorf("%s requires at least one value, %w", f.Method, ErrInvalidArg)
		}
	case MethodRange:
		if len(f.Arg) != 2 {
			return fmt.Errorf("%s requires two values but got %d, %w", f.Method, len(f.Arg), ErrInvalidArg)
		}
	default:
		if len(f.Arg) != 1 {
			return fmt.Errorf("%s requires one value but got %d, %w", f.Method, len(f.Arg), ErrInvalidArg)
		}
	}
	return nil
}

// CompositeFilter is either a single filter or an operation over nested composite filters.
type CompositeFilter struct {
	Filter           *Filter           `json:"filter,omitempty"`
	Operation        string            `json:"operation,omitempty"`
	CompositeFilters []CompositeFilter `json:"compositeFilters,omitempty"`
}

// Valid checks the composite filter recursively.
func (c CompositeFilter) Valid() error {
	if c.Filter != nil {
		return c.Filter.Valid()
	}
	if c.Operation != OperationAnd && c.Operation != OperationOr {
		return fmt.Errorf("%q, %w", c.Operation, ErrUnknownOperation)
	}
	for _, sub := range c.CompositeFilters {
		if err := sub.Valid(); err != nil {
			return err
		}
	}
	return nil
}

// Cohort is a named subset of a dataset.
type Cohort struct {
	Name             string            `json:"name"`
	Filters          []Filter          `json:"cohort_filter_list"`
	CompositeFilters []CompositeFilter `json:"composite_filter_list,omitempty"`
}

func New(name string) (*Cohort, error) {
	if name == "" {
		return nil, ErrNoName
	}
	return &Cohort{Name: name}, nil
}

// AddFilter appends a filter to the conjunction defining the cohort.
func (c *Cohort) AddFilter(f Filter) error {
	if err := f.Valid(); err != nil {
		return fmt.Errorf("unable to add filter to cohort %q, %w", c.Name, err)
	}
	c.Filters = append(c.Filters, f)
	return nil
}
