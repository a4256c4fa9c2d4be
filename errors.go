package insights

import (
	"errors"
	"fmt"
)

var (
	ErrUserConfigValidation    = errors.New("invalid user configuration")
	ErrDashboardData           = errors.New("unable to build dashboard data")
	ErrQuantileUnsupported     = errors.New("model does not support quantile forecasts")
	ErrUnsupportedVersion      = errors.New("unsupported insights version")
	ErrUninitializedInsights   = errors.New("uninitialized insights")
	ErrUnknownPredictionSource = errors.New("unknown prediction source")
)

// UserConfigValidationError reports an input that does not satisfy a construction rule. It
// matches ErrUserConfigValidation.
type UserConfigValidationError struct {
	Msg string
	Err error
}

func newValidationError(err error, format string, args ...any) *UserConfigValidationError {
	return &UserConfigValidationError{Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *UserConfigValidationError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ", " + e.Err.Error()
}

func (e *UserConfigValidationError) Unwrap() error {
	return e.Err
}

func (e *UserConfigValidationError) Is(target error) bool {
	return target == ErrUserConfigValidation
}

// DashboardDataError reports a failure building the dashboard payload. It matches
// ErrDashboardData.
type DashboardDataError struct {
	Msg string
	Err error
}

func newDashboardError(err error, msg string) *DashboardDataError {
	return &DashboardDataError{Msg: msg, Err: err}
}

func (e *DashboardDataError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ", " + e.Err.Error()
}

func (e *DashboardDataError) Unwrap() error {
	return e.Err
}

func (e *DashboardDataError) Is(target error) bool {
	return target == ErrDashboardData
}
