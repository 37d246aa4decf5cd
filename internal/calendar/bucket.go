package calendar

import (
	"encoding/json"
	"sort"
)

// AppointmentRecord is the read-only calendar projection of an appointment.
type AppointmentRecord struct {
	ID                  string    `json:"id"`
	Date                Date      `json:"date"`
	TimeSlot            TimeOfDay `json:"timeSlot"`
	PatientName         string    `json:"patientName"`
	ProviderName        string    `json:"providerName"`
	AppointmentTypeName string    `json:"appointmentTypeName"`
	LocationName        string    `json:"locationName,omitempty"`
	Status              string    `json:"status,omitempty"`
}

// Bucket groups appointment records by date and then by time slot. Within a
// slot records keep the order they were added in.
type Bucket struct {
	days  map[Date]map[TimeOfDay][]AppointmentRecord
	total int
}

// BucketAppointments groups records by date and time slot. Nothing is
// filtered, merged or dropped.
func BucketAppointments(records []AppointmentRecord) *Bucket {
	b := &Bucket{days: make(map[Date]map[TimeOfDay][]AppointmentRecord)}
	for _, r := range records {
		slots, ok := b.days[r.Date]
		if !ok {
			slots = make(map[TimeOfDay][]AppointmentRecord)
			b.days[r.Date] = slots
		}
		slots[r.TimeSlot] = append(slots[r.TimeSlot], r)
		b.total++
	}
	return b
}

// Len returns the number of records held.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return b.total
}

// Dates lists the dates that have at least one record, ascending.
func (b *Bucket) Dates() []Date {
	if b == nil {
		return nil
	}
	dates := make([]Date, 0, len(b.days))
	for d := range b.days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Slots lists the occupied time slots of d, ascending.
func (b *Bucket) Slots(d Date) []TimeOfDay {
	if b == nil {
		return nil
	}
	slots := make([]TimeOfDay, 0, len(b.days[d]))
	for s := range b.days[d] {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

// At returns the records booked on d at slot.
func (b *Bucket) At(d Date, slot TimeOfDay) []AppointmentRecord {
	if b == nil {
		return nil
	}
	return b.days[d][slot]
}

// OnDate returns every record of d, slots ascending and input order within a
// slot.
func (b *Bucket) OnDate(d Date) []AppointmentRecord {
	var out []AppointmentRecord
	for _, s := range b.Slots(d) {
		out = append(out, b.At(d, s)...)
	}
	return out
}

// Count returns the number of records on d.
func (b *Bucket) Count(d Date) int {
	if b == nil {
		return 0
	}
	n := 0
	for _, recs := range b.days[d] {
		n += len(recs)
	}
	return n
}

// MarshalJSON renders {"YYYY-MM-DD": {"HH:MM": [...]}}.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b.days)
}
