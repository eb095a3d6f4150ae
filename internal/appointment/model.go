package appointment

import "time"

// Appointment is one booked slot for one customer on a working day. The
// store owns ID and CreatedAt; Date is immutable once the row exists.
type Appointment struct {
	ID        int64
	Date      string // canonical YYYY-MM-DD key
	Name      string
	Phone     *string
	Notes     *string
	CreatedAt time.Time
}

// DayCount is the aggregated occupancy of one date. It is derived from
// Appointment rows and never stored.
type DayCount struct {
	Date  string
	Count int
}
