package calendar

import "time"

// Clock supplies the current date so callers never read the system clock
// directly.
type Clock interface {
	Today() Date
}

// SystemClock reports today's date in Location, UTC when nil.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// FixedClock always reports the same date.
type FixedClock Date

func (c FixedClock) Today() Date { return Date(c) }

// View is everything a renderer needs for one calendar screen.
type View struct {
	Mode       ViewMode        `json:"view"`
	Reference  Date            `json:"date"`
	Range      DateRange       `json:"range"`
	Navigation Navigation      `json:"navigation"`
	Days       []Date          `json:"days"`
	Bucket     *Bucket         `json:"appointments"`
	Total      int             `json:"total"`
	Grid       []MonthGridCell `json:"grid,omitempty"`
}

// BuildView computes the range, navigation and groupings for ref in mode.
// The month grid is only filled for ViewMonth. Records outside the range are
// the caller's concern and are bucketed as given.
func BuildView(ref Date, mode ViewMode, today Date, records []AppointmentRecord) (*View, error) {
	rng, err := ComputeRange(ref, mode)
	if err != nil {
		return nil, err
	}
	nav, err := ComputeNavigation(ref, mode, today)
	if err != nil {
		return nil, err
	}

	bucket := BucketAppointments(records)
	view := &View{
		Mode:       mode,
		Reference:  ref,
		Range:      rng,
		Navigation: nav,
		Days:       rng.Days(),
		Bucket:     bucket,
		Total:      bucket.Len(),
	}
	if mode == ViewMonth {
		grid, err := BuildMonthGrid(rng, today, bucket)
		if err != nil {
			return nil, err
		}
		view.Grid = grid
	}
	return view, nil
}
