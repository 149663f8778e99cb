package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, e *Entity) error
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, filter Filter) ([]*Entity, error)
	Update(ctx context.Context, e *Entity) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var entityColumns = []string{
	"id", "kind", "name", "description", "archived", "console_type", "color", "created_at",
}

func (r *pgxRepository) Create(ctx context.Context, e *Entity) error {
	consoleType, color := flatten(e.Details)
	query, args, err := psql.Insert("public.bookable_entities").
		Columns("id", "kind", "name", "description", "archived", "console_type", "color").
		Values(e.ID, e.Kind(), e.Name, e.Description, e.Archived, consoleType, color).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create entity query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("create entity failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Entity, error) {
	query, args, err := psql.Select(entityColumns...).
		From("public.bookable_entities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get entity query failed: %w", err)
	}

	e, err := scanEntity(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get entity failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Entity, error) {
	q := psql.Select(entityColumns...).From("public.bookable_entities")
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.Archived != nil {
		q = q.Where(squirrel.Eq{"archived": *filter.Archived})
	}

	query, args, err := q.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list entities query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities failed: %w", err)
	}
	defer rows.Close()

	var result []*Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity failed: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entities failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) Update(ctx context.Context, e *Entity) error {
	consoleType, color := flatten(e.Details)
	query, args, err := psql.Update("public.bookable_entities").
		Set("name", e.Name).
		Set("description", e.Description).
		Set("archived", e.Archived).
		Set("console_type", consoleType).
		Set("color", color).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update entity query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update entity failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.bookable_entities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete entity query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrInUse
		}
		return fmt.Errorf("delete entity failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntity(row pgx.Row) (*Entity, error) {
	var (
		e                  Entity
		kind               string
		consoleType, color *string
	)
	if err := row.Scan(&e.ID, &kind, &e.Name, &e.Description, &e.Archived, &consoleType, &color, &e.CreatedAt); err != nil {
		return nil, err
	}
	details, err := unflatten(Kind(kind), consoleType, color)
	if err != nil {
		return nil, err
	}
	e.Details = details
	return &e, nil
}
