package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/pkg/composables"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, first_name, last_name, email, phone, created_at, updated_at`

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`,
		strings.TrimSpace(email),
	)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *PgUserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		u.FirstName, u.LastName, u.Email, u.Phone,
	)
	return scanUser(row)
}

func (r *PgUserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, phone = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone,
	)
	out, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return out, err
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Phone,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
