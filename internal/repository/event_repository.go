package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stagesight/internal/model"
	apperrors "stagesight/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `id, title, venue, date::text, time, price, category, description, image_url, available_seats, created_at`

func scanEvent(row pgx.Row, event *model.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Venue,
		&event.Date,
		&event.Time,
		&event.Price,
		&event.Category,
		&event.Description,
		&event.ImageURL,
		&event.AvailableSeats,
		&event.CreatedAt,
	)
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO shows (title, venue, date, time, price, category, description, image_url, available_seats)
		VALUES ($1, $2, $3::text::date, $4, $5, $6, $7, $8, $9)
		RETURNING ` + eventColumns

	var created model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query,
		event.Title, event.Venue, event.Date, event.Time, event.Price,
		event.Category, event.Description, event.ImageURL, event.AvailableSeats,
	), &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}
	return &created, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context) ([]*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM shows ORDER BY date ASC, created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		var event model.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM shows WHERE id = $1`

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query, id), &event)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Title != nil {
		add("title", *params.Title)
	}
	if params.Venue != nil {
		add("venue", *params.Venue)
	}
	if params.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d::text::date", argPos))
		args = append(args, *params.Date)
		argPos++
	}
	if params.Time != nil {
		add("time", *params.Time)
	}
	if params.Price != nil {
		add("price", *params.Price)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.ImageURL != nil {
		add("image_url", *params.ImageURL)
	}
	if params.AvailableSeats != nil {
		add("available_seats", *params.AvailableSeats)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE shows
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, eventColumns)

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query, args...), &event)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}
