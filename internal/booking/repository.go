package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/explore-grabby/booking-backend/internal/calendar"
)

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]*Reservation, error)
	Count(ctx context.Context, filter Filter) (int, error)

	// WithEntityLock runs fn while holding exclusive write access to every
	// entity in entityIDs. Writes made through the repo passed to fn are
	// applied all-or-nothing: if fn returns an error nothing is persisted.
	WithEntityLock(ctx context.Context, entityIDs []string, fn func(ctx context.Context, repo Repository) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, db: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var reservationColumns = []string{
	"id", "user_id", "entity_id", "start_date", "end_date",
	"created_on", "status", "extension_count", "updated_at",
}

func (r *pgxRepository) Create(ctx context.Context, b *Reservation) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("id", "user_id", "entity_id", "start_date", "end_date", "created_on", "status", "extension_count").
		Values(b.ID, b.UserID, b.EntityID, b.Range.Start.Time(), b.Range.End.Time(), b.CreatedOn.Time(), b.Status, b.ExtensionCount).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query, args, err := psql.Select(reservationColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanReservation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Reservation) error {
	query, args, err := psql.Update("public.bookings").
		Set("end_date", b.Range.End.Time()).
		Set("status", b.Status).
		Set("extension_count", b.ExtensionCount).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	// ids are UUIDv7, so ordering by id is insertion order.
	query, args, err := applyFilter(psql.Select(reservationColumns...).From("public.bookings"), filter).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Reservation
	for rows.Next() {
		b, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) Count(ctx context.Context, filter Filter) (int, error) {
	query, args, err := applyFilter(psql.Select("count(*)").From("public.bookings"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) WithEntityLock(ctx context.Context, entityIDs []string, fn func(ctx context.Context, repo Repository) error) error {
	if r.inTx {
		return errors.New("entity lock already held by this repository")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking transaction failed: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	// Sorted acquisition keeps concurrent batches from deadlocking.
	for _, id := range sortedUnique(entityIDs) {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", id); err != nil {
			return fmt.Errorf("acquire entity lock failed: %w", err)
		}
	}

	if err := fn(ctx, &pgxRepository{pool: r.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking transaction failed: %w", err)
	}
	return nil
}

func applyFilter(q squirrel.SelectBuilder, f Filter) squirrel.SelectBuilder {
	if f.UserID != "" {
		q = q.Where(squirrel.Eq{"user_id": f.UserID})
	}
	if f.EntityID != "" {
		q = q.Where(squirrel.Eq{"entity_id": f.EntityID})
	}
	if f.ExcludeID != "" {
		q = q.Where(squirrel.NotEq{"id": f.ExcludeID})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where(squirrel.Eq{"status": statuses})
	}
	// Inclusive overlap: start <= other.end AND end >= other.start
	if f.Overlapping != nil {
		q = q.Where(squirrel.LtOrEq{"start_date": f.Overlapping.End.Time()}).
			Where(squirrel.GtOrEq{"end_date": f.Overlapping.Start.Time()})
	}
	if f.StartOn != nil {
		q = q.Where(squirrel.Eq{"start_date": f.StartOn.Time()})
	}
	if f.EndFrom != nil {
		q = q.Where(squirrel.GtOrEq{"end_date": f.EndFrom.Time()})
	}
	if f.EndTo != nil {
		q = q.Where(squirrel.LtOrEq{"end_date": f.EndTo.Time()})
	}
	return q
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var (
		b                     Reservation
		start, end, createdOn time.Time
		status                string
	)
	if err := row.Scan(
		&b.ID, &b.UserID, &b.EntityID, &start, &end,
		&createdOn, &status, &b.ExtensionCount, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Range = calendar.Range{Start: calendar.DateOf(start), End: calendar.DateOf(end)}
	b.CreatedOn = calendar.DateOf(createdOn)
	b.Status = Status(status)
	return &b, nil
}

func sortedUnique(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
