package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/auth"
)

var (
	ErrNotFound     = apperr.Wrap("user", apperr.ErrNotFound)
	ErrAlreadyExist = apperr.Wrap("user", apperr.ErrConflict)
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		RETURNING created_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role)).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExist
		}
		return apperr.Store("user.create", err)
	}
	return nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE email=$1
	`, email)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		u    User
		role string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Store("user.get", err)
	}
	// a row with a role outside the known set cannot sign in
	if u.Role, err = auth.ParseRole(role); err != nil {
		return nil, apperr.Wrap("user.role", err)
	}
	return &u, nil
}
