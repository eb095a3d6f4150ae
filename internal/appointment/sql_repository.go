package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/turnoshq/turnos-api/internal/db"
)

// SQLRepository implements Repository over database/sql. Queries are built
// with squirrel so the same code serves both the SQLite and Postgres
// placeholder dialects.
type SQLRepository struct {
	db        *sql.DB
	sb        sq.StatementBuilderType
	returning bool // Postgres hands back ids via RETURNING, SQLite via LastInsertId
}

func NewSQLRepository(database *sql.DB, dialect db.Dialect) *SQLRepository {
	var format sq.PlaceholderFormat = sq.Question
	returning := false
	if dialect == db.DialectPostgres {
		format = sq.Dollar
		returning = true
	}
	return &SQLRepository{
		db:        database,
		sb:        sq.StatementBuilder.PlaceholderFormat(format),
		returning: returning,
	}
}

const createdAtLayout = time.RFC3339

func (r *SQLRepository) Insert(ctx context.Context, a *Appointment) (*Appointment, error) {
	createdAt := time.Now().UTC().Truncate(time.Second)
	builder := r.sb.Insert("appointments").
		Columns("date", "name", "phone", "notes", "created_at").
		Values(a.Date, a.Name, a.Phone, a.Notes, createdAt.Format(createdAtLayout))

	created := *a
	created.CreatedAt = createdAt

	if r.returning {
		query, args, err := builder.Suffix("RETURNING id").ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&created.ID); err != nil {
			return nil, fmt.Errorf("insert appointment: %w", err)
		}
		return &created, nil
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	created.ID = id
	return &created, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, upd *Update) (int64, error) {
	builder := r.sb.Update("appointments").Where(sq.Eq{"id": id})
	if upd.Name != nil {
		builder = builder.Set("name", *upd.Name)
	}
	if upd.Phone != nil {
		builder = builder.Set("phone", *upd.Phone)
	}
	if upd.Notes != nil {
		builder = builder.Set("notes", *upd.Notes)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update appointment: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query, args, err := r.sb.Delete("appointments").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete appointment: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLRepository) ListByDay(ctx context.Context, day string) ([]Appointment, error) {
	query, args, err := r.sb.
		Select("id", "date", "name", "phone", "notes", "created_at").
		From("appointments").
		Where(sq.Eq{"date": day}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		var (
			a         Appointment
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.Date, &a.Name, &a.Phone, &a.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.CreatedAt = parseCreatedAt(createdAt)
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *SQLRepository) CountByDate(ctx context.Context, day string) (int, error) {
	query, args, err := r.sb.
		Select("COUNT(*)").
		From("appointments").
		Where(sq.Eq{"date": day}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return count, nil
}

func (r *SQLRepository) CountByDateRange(ctx context.Context, start, end string) ([]DayCount, error) {
	query, args, err := r.sb.
		Select("date", "COUNT(*)").
		From("appointments").
		Where(sq.Expr("date BETWEEN ? AND ?", start, end)).
		GroupBy("date").
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build range count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count appointments by range: %w", err)
	}
	defer rows.Close()

	var result []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

// parseCreatedAt reads the stored text timestamp. Rows written by this code
// use RFC 3339; the SQLite column default uses the space-separated form.
func parseCreatedAt(s string) time.Time {
	if t, err := time.Parse(createdAtLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
