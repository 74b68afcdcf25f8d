package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/car-rental/internal/domain"
)

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

// Create inserts a user. A duplicate username surfaces as
// domain.ErrUsernameTaken via the unique constraint on users.username.
func (r *pgUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (id, username, password_hash, role)
		VALUES (@id, @username, @password_hash, @role)
		RETURNING id, username, password_hash, role`

	args := pgx.NamedArgs{
		"id":            u.ID,
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
	}
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		err = mapErr(err)
		if errors.Is(err, domain.ErrConflict) {
			err = domain.ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	const q = `SELECT id, username, password_hash, role FROM users WHERE id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const q = `SELECT id, username, password_hash, role FROM users WHERE username = @username`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"username": username}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByUsername: %w", mapErr(err))
	}
	return result, nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &role); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}
