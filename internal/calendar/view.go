package calendar

import (
	"fmt"
	"strings"
)

// ViewMode is the granularity of a calendar screen.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// ParseViewMode accepts day, week or month in any case.
func ParseViewMode(s string) (ViewMode, error) {
	mode := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if err := mode.Validate(); err != nil {
		return "", err
	}
	return mode, nil
}

func (m ViewMode) Validate() error {
	switch m {
	case ViewDay, ViewWeek, ViewMonth:
		return nil
	}
	return fmt.Errorf("%w: unknown view mode %q", ErrInvalidArgument, string(m))
}

// DateRange is an inclusive span of days.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewDateRange validates both ends and their order.
func NewDateRange(start, end Date) (DateRange, error) {
	if !start.IsValid() || !end.IsValid() {
		return DateRange{}, fmt.Errorf("%w: range %s..%s has an invalid end", ErrInvalidArgument, start, end)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: range ends %s before it starts %s", ErrInvalidArgument, end, start)
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether d lies within r, ends included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days lists every date in r in ascending order.
func (r DateRange) Days() []Date {
	var days []Date
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// ComputeRange returns the dates shown by mode around ref. Weeks run Monday
// through Sunday regardless of locale.
func ComputeRange(ref Date, mode ViewMode) (DateRange, error) {
	if !ref.IsValid() {
		return DateRange{}, fmt.Errorf("%w: reference date %s is not a calendar date", ErrInvalidArgument, ref)
	}
	if err := mode.Validate(); err != nil {
		return DateRange{}, err
	}

	var start, end Date
	switch mode {
	case ViewDay:
		start, end = ref, ref
	case ViewWeek:
		offset := (int(ref.Weekday()) + 6) % 7
		start = ref.AddDays(-offset)
		end = start.AddDays(6)
	case ViewMonth:
		start, end = ref.FirstOfMonth(), ref.LastOfMonth()
	}
	return NewDateRange(start, end)
}

// Navigation holds the targets of the previous, next and today controls.
type Navigation struct {
	Previous Date `json:"previous"`
	Next     Date `json:"next"`
	Today    Date `json:"today"`
}

// ComputeNavigation shifts ref by one unit of mode in each direction. Month
// steps clamp the day-of-month into the target month.
func ComputeNavigation(ref Date, mode ViewMode, today Date) (Navigation, error) {
	if !ref.IsValid() {
		return Navigation{}, fmt.Errorf("%w: reference date %s is not a calendar date", ErrInvalidArgument, ref)
	}
	if !today.IsValid() {
		return Navigation{}, fmt.Errorf("%w: today %s is not a calendar date", ErrInvalidArgument, today)
	}
	if err := mode.Validate(); err != nil {
		return Navigation{}, err
	}

	var prev, next Date
	switch mode {
	case ViewDay:
		prev, next = ref.AddDays(-1), ref.AddDays(1)
	case ViewWeek:
		prev, next = ref.AddDays(-7), ref.AddDays(7)
	case ViewMonth:
		prev, next = ref.AddMonths(-1), ref.AddMonths(1)
	}
	if !prev.IsValid() || !next.IsValid() {
		return Navigation{}, fmt.Errorf("%w: navigating from %s leaves the supported calendar", ErrInvalidArgument, ref)
	}
	return Navigation{Previous: prev, Next: next, Today: today}, nil
}
