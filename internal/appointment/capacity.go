package appointment

// MaxAppointmentsPerDay is the capacity ceiling for one working day.
const MaxAppointmentsPerDay = 10

// CheckCapacity admits a creation for date only while the current row count
// is below the ceiling. The count must be read immediately before the
// check; strictness depends on the caller serializing count and insert.
func CheckCapacity(date string, current int) error {
	if current >= MaxAppointmentsPerDay {
		return &CapacityError{Date: date}
	}
	return nil
}
