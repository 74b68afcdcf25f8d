package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/car-rental/internal/domain"
)

// pgSessionRepo is the Postgres implementation of SessionRepo.
type pgSessionRepo struct {
	db db
}

// NewSessionRepo constructs a SessionRepo backed by the provided db connection.
func NewSessionRepo(db db) SessionRepo {
	return &pgSessionRepo{db: db}
}

func (r *pgSessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	const q = `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (@id, @user_id, @created_at, @expires_at)
		RETURNING id, user_id, created_at, expires_at`

	args := pgx.NamedArgs{
		"id":         s.ID,
		"user_id":    s.UserID,
		"created_at": s.CreatedAt,
		"expires_at": s.ExpiresAt,
	}
	result, err := scanSession(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgSessionRepo) GetByID(ctx context.Context, id string) (domain.Session, error) {
	const q = `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = @id`

	result, err := scanSession(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgSessionRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.SessionRepo.Delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= @now`, pgx.NamedArgs{"now": now})
	if err != nil {
		return 0, fmt.Errorf("repo.SessionRepo.DeleteExpired: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanSession(s scanner) (domain.Session, error) {
	var sess domain.Session
	if err := s.Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}
