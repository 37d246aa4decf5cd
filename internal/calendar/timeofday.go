package calendar

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock slot label with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidArgument, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// TimeOf returns the wall-clock time of t, truncated to the minute.
func TimeOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns the minutes elapsed since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeSlots lists the slot labels from open up to, but excluding, close.
func TimeSlots(open, close TimeOfDay, step time.Duration) ([]TimeOfDay, error) {
	stepMinutes := int(step / time.Minute)
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("%w: slot step must be at least one minute", ErrInvalidArgument)
	}
	if !open.Before(close) {
		return nil, fmt.Errorf("%w: day opens at %s but closes at %s", ErrInvalidArgument, open, close)
	}

	var slots []TimeOfDay
	for m := open.Minutes(); m < close.Minutes(); m += stepMinutes {
		slots = append(slots, TimeOfDay{Hour: m / 60, Minute: m % 60})
	}
	return slots, nil
}
