// Package event describes calendar events such as public holidays used as regressors by the
// reference forecaster.
package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd = errors.New("event start time is after end time")
	ErrUnsetTime     = errors.New("unset event start or end time")
	ErrNoEventName   = errors.New("no event name")
)

// USHolidays are the observed US federal holidays modeled by default.
var USHolidays = []*cal.Holiday{
	us.NewYear,
	us.MemorialDay,
	us.IndependenceDay,
	us.LaborDay,
	us.ThanksgivingDay,
	us.ChristmasDay,
}

// Event is a named time span [Start, End).
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Contains reports whether t falls in the event span.
func (e Event) Contains(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

// Events is a set of possibly overlapping events.
type Events []Event

// Contains reports whether t falls in any of the events.
func (es Events) Contains(t time.Time) bool {
	for _, e := range es {
		if e.Contains(t) {
			return true
		}
	}
	return false
}

// Indicator returns 1 for every time point inside an event and 0 otherwise.
func (es Events) Indicator(t []time.Time) []float64 {
	res := make([]float64, len(t))
	for i, ts := range t {
		if es.Contains(ts) {
			res[i] = 1.0
		}
	}
	return res
}

// Holiday returns the observed day of the holiday for every year between start and end, widened
// by durBefore and durAfter. Days are aligned to midnight in the location of start.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) Events {
	startLoc := start.Location()

	events := Events{}
	for i := start.Year(); i <= end.Year(); i++ {
		_, observed := hol.Calc(i)
		_, offset := observed.Zone()
		_, startOffset := start.Zone()

		observed = observed.Add(time.Duration(offset) * time.Second).In(startLoc).Add(time.Duration(-startOffset) * time.Second)

		if observed.Before(start) || observed.After(end) {
			continue
		}
		events = append(events, Event{
			Name:  strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, i), " ", "_"),
			Start: observed.Add(-durBefore),
			End:   observed.Add(24 * time.Hour).Add(durAfter),
		})
	}
	return events
}

// Holidays collects the events of every holiday between start and end.
func Holidays(hols []*cal.Holiday, start, end time.Time) Events {
	events := Events{}
	for _, hol := range hols {
		events = append(events, Holiday(hol, start, end, 0, 0)...)
	}
	return events
}
