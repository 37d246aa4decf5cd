package calendar

import (
	"fmt"
	"time"
)

const (
	GridColumns = 7
	GridRows    = 6
	GridCells   = GridColumns * GridRows

	// MaxCellAppointments is how many appointments a month cell lists before
	// reporting the rest as overflow.
	MaxCellAppointments = 3
)

// MonthGridCell is one day square of the month view.
type MonthGridCell struct {
	Date           Date                `json:"date"`
	IsCurrentMonth bool                `json:"isCurrentMonth"`
	IsToday        bool                `json:"isToday"`
	Appointments   []AppointmentRecord `json:"appointments"`
	Overflow       int                 `json:"overflow"`
}

// BuildMonthGrid lays monthRange out as 6 Sunday-first weeks, padding with
// the previous month's tail and the next month's head. The result always has
// GridCells entries.
func BuildMonthGrid(monthRange DateRange, today Date, bucket *Bucket) ([]MonthGridCell, error) {
	start, end := monthRange.Start, monthRange.End
	if !start.IsValid() || !end.IsValid() {
		return nil, fmt.Errorf("%w: month range %s..%s has an invalid end", ErrInvalidArgument, start, end)
	}
	if start.Day != 1 || end != start.LastOfMonth() {
		return nil, fmt.Errorf("%w: %s..%s is not a whole calendar month", ErrInvalidArgument, start, end)
	}

	leading := int(start.Weekday() - time.Sunday)
	first := start.AddDays(-leading)
	last := first.AddDays(GridCells - 1)
	if !first.IsValid() || !last.IsValid() {
		return nil, fmt.Errorf("%w: month %s cannot be padded within the supported calendar", ErrInvalidArgument, start)
	}

	cells := make([]MonthGridCell, 0, GridCells)
	for i, d := 0, first; i < GridCells; i, d = i+1, d.AddDays(1) {
		cell := MonthGridCell{
			Date:           d,
			IsCurrentMonth: monthRange.Contains(d),
			IsToday:        d == today,
			Appointments:   []AppointmentRecord{},
		}
		recs := bucket.OnDate(d)
		if n := bucket.Count(d); n > MaxCellAppointments {
			cell.Overflow = n - MaxCellAppointments
			recs = recs[:MaxCellAppointments]
		}
		cell.Appointments = append(cell.Appointments, recs...)
		cells = append(cells, cell)
	}
	return cells, nil
}
