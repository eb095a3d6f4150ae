package appointment

import "context"

// Repository contains all store interactions needed by the service. The
// contract is deliberately dialect-free: exact-date counts, grouped counts
// over an inclusive range, and id-addressed mutations reporting affected
// rows.
type Repository interface {
	Insert(ctx context.Context, a *Appointment) (*Appointment, error)
	Update(ctx context.Context, id int64, upd *Update) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)

	ListByDay(ctx context.Context, day string) ([]Appointment, error)
	CountByDate(ctx context.Context, day string) (int, error)
	CountByDateRange(ctx context.Context, start, end string) ([]DayCount, error)
}
