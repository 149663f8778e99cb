package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	// Upsert inserts the user or refreshes its names and LastSeenAt.
	// CreatedAt of an existing row is kept.
	Upsert(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var userColumns = []string{"id", "given_name", "family_name", "created_at", "last_seen_at"}

func (r *pgxUserRepository) Upsert(ctx context.Context, u *User) error {
	query, args, err := psql.Insert("public.users").
		Columns("id", "given_name", "family_name").
		Values(u.ID, u.GivenName, u.FamilyName).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET given_name = EXCLUDED.given_name,
			    family_name = EXCLUDED.family_name,
			    last_seen_at = now()
			RETURNING created_at, last_seen_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.CreatedAt, &u.LastSeenAt); err != nil {
		return fmt.Errorf("upsert user failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query, args, err := psql.Select(userColumns...).
		From("public.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query failed: %w", err)
	}

	var u User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.GivenName, &u.FamilyName, &u.CreatedAt, &u.LastSeenAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	return &u, nil
}

func (r *pgxUserRepository) List(ctx context.Context) ([]*User, error) {
	query, args, err := psql.Select(userColumns...).
		From("public.users").
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.GivenName, &u.FamilyName, &u.CreatedAt, &u.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan user failed: %w", err)
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	return result, nil
}
