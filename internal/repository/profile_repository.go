package repository

import (
	"context"
	"errors"

	"stagesight/internal/model"
	apperrors "stagesight/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

type ProfileRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &ProfileRepositoryImpl{
		pool: pool,
	}
}

func (r *ProfileRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, first_name, last_name, phone, role, username, created_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Role,
		&p.Username,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}
