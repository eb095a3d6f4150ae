package appointment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/turnoshq/turnos-api/internal/lock"
)

// Service enforces the booking rules on top of the repository. It keeps no
// state of its own: every operation is request-scoped computation plus a
// store round trip.
type Service struct {
	repo  Repository
	guard lock.DayLocker
	log   *zap.Logger
}

func NewService(repo Repository, guard lock.DayLocker, log *zap.Logger) *Service {
	return &Service{repo: repo, guard: guard, log: log}
}

// Create validates the payload and admits it against the per-day capacity
// ceiling. Count and insert run under the day guard so concurrent
// creations for the same date cannot both pass the check.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	appt, err := ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	var created *Appointment
	err = s.guard.WithDayLock(ctx, appt.Date, func(lockCtx context.Context) error {
		count, err := s.repo.CountByDate(lockCtx, appt.Date)
		if err != nil {
			return fmt.Errorf("count appointments: %w", err)
		}
		if err := CheckCapacity(appt.Date, count); err != nil {
			s.log.Warn("day at capacity",
				zap.String("date", appt.Date),
				zap.Int("count", count),
			)
			return err
		}

		created, err = s.repo.Insert(lockCtx, appt)
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment created",
		zap.Int64("id", created.ID),
		zap.String("date", created.Date),
	)
	return created, nil
}

// Update applies a partial update to name, phone or notes. The date of an
// existing appointment cannot change.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) error {
	upd, err := ValidateUpdate(in)
	if err != nil {
		return err
	}

	affected, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.log.Info("appointment updated", zap.Int64("id", id))
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.log.Info("appointment deleted", zap.Int64("id", id))
	return nil
}

// ListDay returns the full rows for one date, oldest first.
func (s *Service) ListDay(ctx context.Context, day string) ([]Appointment, error) {
	return s.repo.ListByDay(ctx, day)
}

// CountRange returns per-day occupancy inside an inclusive date range.
func (s *Service) CountRange(ctx context.Context, start, end string) ([]DayCount, error) {
	return s.repo.CountByDateRange(ctx, start, end)
}
