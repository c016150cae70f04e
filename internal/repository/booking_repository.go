package repository

import (
	"context"
	"errors"
	"fmt"

	"stagesight/internal/model"
	apperrors "stagesight/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// 寫入訂位並扣除場次可售座位數，同一個 transaction 完成
	Insert(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	// 列表：附帶場次名稱與日期，新的在前
	List(ctx context.Context) ([]*model.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListByShowID(ctx context.Context, showID uuid.UUID) ([]*model.Booking, error)
	// 場次已售出的座位 ID
	BookedSeatIDs(ctx context.Context, showID uuid.UUID) ([]string, error)
	// 刪除並回傳被刪除的訂位，同時歸還場次可售座位數
	Delete(ctx context.Context, id uuid.UUID) (*model.Booking, error)
}

type BookingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &BookingRepositoryImpl{
		pool: pool,
	}
}

const bookingColumns = `
	b.id, b.show_id, b.user_id, b.seats, b.seat_ids, b.total_amount,
	COALESCE(b.customer_name, ''), COALESCE(b.customer_email, ''), COALESCE(b.customer_birthdate, ''),
	COALESCE(b.payment_reference, ''), b.payment_proof_url, COALESCE(b.confirmation_number, ''), b.created_at`

func scanBooking(row pgx.Row, b *model.Booking, extra ...interface{}) error {
	dest := []interface{}{
		&b.ID,
		&b.ShowID,
		&b.UserID,
		&b.Seats,
		&b.SeatIDs,
		&b.TotalAmount,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerBirthdate,
		&b.PaymentReference,
		&b.PaymentProofURL,
		&b.ConfirmationNumber,
		&b.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *BookingRepositoryImpl) Insert(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bookings AS b (
			show_id, user_id, seats, seat_ids, total_amount,
			customer_name, customer_email, customer_birthdate,
			payment_reference, payment_proof_url, confirmation_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + bookingColumns

	seatIDs := booking.SeatIDs
	if seatIDs == nil {
		seatIDs = []string{}
	}

	var created model.Booking
	err = scanBooking(tx.QueryRow(ctx, query,
		booking.ShowID, booking.UserID, booking.Seats, seatIDs, booking.TotalAmount,
		booking.CustomerName, booking.CustomerEmail, booking.CustomerBirthdate,
		booking.PaymentReference, booking.PaymentProofURL, booking.ConfirmationNumber,
	), &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE shows
		SET available_seats = GREATEST(available_seats - $2, 0)
		WHERE id = $1
	`, booking.ShowID, booking.Seats); err != nil {
		return nil, fmt.Errorf("failed to update available seats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *BookingRepositoryImpl) List(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `, s.title, s.date::text
		FROM bookings b
		LEFT JOIN shows s ON s.id = b.show_id
		ORDER BY b.created_at DESC
	`
	return r.queryWithShow(ctx, query)
}

func (r *BookingRepositoryImpl) ListByShowID(ctx context.Context, showID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `, s.title, s.date::text
		FROM bookings b
		LEFT JOIN shows s ON s.id = b.show_id
		WHERE b.show_id = $1
		ORDER BY b.created_at DESC
	`
	return r.queryWithShow(ctx, query, showID)
}

func (r *BookingRepositoryImpl) queryWithShow(ctx context.Context, query string, args ...interface{}) ([]*model.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var title, date *string
		if err := scanBooking(rows, &b, &title, &date); err != nil {
			return nil, err
		}
		b.Show = showSummary(b.ShowID, title, date)
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `, s.title, s.date::text, s.time, s.venue
		FROM bookings b
		LEFT JOIN shows s ON s.id = b.show_id
		WHERE b.id = $1
	`

	var b model.Booking
	var title, date, startTime, venue *string
	err := scanBooking(r.pool.QueryRow(ctx, query, id), &b, &title, &date, &startTime, &venue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	b.Show = showSummary(b.ShowID, title, date)
	if b.Show != nil {
		b.Show.Time = startTime
		b.Show.Venue = venue
	}
	return &b, nil
}

func (r *BookingRepositoryImpl) BookedSeatIDs(ctx context.Context, showID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT unnest(seat_ids)
		FROM bookings
		WHERE show_id = $1
	`
	rows, err := r.pool.Query(ctx, query, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *BookingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	// 刪除與歸還可售座位數在同一個 statement 完成
	query := `
		WITH b AS (
			DELETE FROM bookings
			WHERE id = $1
			RETURNING *
		), restored AS (
			UPDATE shows AS s
			SET available_seats = s.available_seats + b.seats
			FROM b
			WHERE s.id = b.show_id
		)
		SELECT ` + bookingColumns + `
		FROM b`

	var b model.Booking
	err := scanBooking(r.pool.QueryRow(ctx, query, id), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// showSummary LEFT JOIN 找不到場次時回傳 nil
func showSummary(showID uuid.UUID, title, date *string) *model.Event {
	if title == nil {
		return nil
	}
	show := &model.Event{ID: showID, Title: *title}
	if date != nil {
		show.Date = *date
	}
	return show
}
