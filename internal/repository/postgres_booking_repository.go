package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

// BookingRepository persists bookings and enforces the one-active-booking
// rule per (venue, date) through the partial unique index.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	HasActiveBooking(ctx context.Context, venueID, date string) (bool, error)
	Transition(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	ListByVenues(ctx context.Context, venueIDs []string, status domain.BookingStatus) ([]*domain.Booking, error)
}

// PostgresBookingRepository implements BookingRepository backed by PostgreSQL
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

var _ BookingRepository = (*PostgresBookingRepository)(nil)

// NewPostgresBookingRepository creates a new PostgreSQL booking repository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `id, venue_id, user_id, date, guests_count, price, status, notes,
	created_at, updated_at`

// bookingListLimit caps listing queries
const bookingListLimit = 200

// Create inserts a pending booking. When a concurrent writer already holds
// the (venue, date) slot the partial unique index rejects the insert and the
// error maps to ErrDateAlreadyBooked.
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repository.booking.create",
		attribute.String("booking.venue_id", booking.VenueID),
		attribute.String("booking.date", booking.Date),
	)
	defer span.End()

	query := `
		INSERT INTO bookings (id, venue_id, user_id, date, guests_count, price,
			status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		booking.ID, booking.VenueID, booking.UserID, booking.Date,
		booking.GuestsCount, booking.Price, string(booking.Status), booking.Notes,
		booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDateAlreadyBooked
		}
		span.SetStatus(codes.Error, err.Error())
		return wrapErr("create booking", err)
	}
	return nil
}

// GetByID fetches a booking by id
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.booking.get_by_id",
		attribute.String("booking.id", id),
	)
	defer span.End()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("get booking", err)
	}
	return booking, nil
}

// HasActiveBooking reports whether a pending or confirmed booking occupies
// the (venue, date) slot. This is a friendly pre-check only; the unique
// index remains the authority under concurrency.
func (r *PostgresBookingRepository) HasActiveBooking(ctx context.Context, venueID, date string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.booking.has_active",
		attribute.String("booking.venue_id", venueID),
		attribute.String("booking.date", date),
	)
	defer span.End()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE venue_id = $1 AND date = $2 AND status IN ('pending', 'confirmed')
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, venueID, date).Scan(&exists); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, wrapErr("check active booking", err)
	}
	return exists, nil
}

// Transition moves a booking to a new status with a compare-and-set: the
// update applies only while the current status is one of from. With zero
// rows affected the booking is re-read to distinguish not-found from a
// state conflict.
func (r *PostgresBookingRepository) Transition(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.booking.transition",
		attribute.String("booking.id", id),
		attribute.String("booking.to_status", string(to)),
	)
	defer span.End()

	placeholders := make([]string, len(from))
	args := []interface{}{id, string(to)}
	for i, s := range from {
		args = append(args, string(s))
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := fmt.Sprintf(`
		UPDATE bookings SET status = $2, updated_at = now()
		WHERE id = $1 AND status IN (%s)
		RETURNING `+bookingColumns, strings.Join(placeholders, ", "))

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("transition booking", err)
	}

	// No row matched: either the booking does not exist or its status is
	// outside the allowed set.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrBookingNotPending
}

// ListByUser returns bookings created by a user, oldest first, capped at
// bookingListLimit rows
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.booking.list_by_user",
		attribute.String("booking.user_id", userID),
	)
	defer span.End()

	query := fmt.Sprintf(`SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1 ORDER BY created_at LIMIT %d`, bookingListLimit)
	return r.queryBookings(ctx, span, query, userID)
}

// ListByVenues returns bookings across a set of venues, ordered by date and
// capped at bookingListLimit rows. An empty status lists every status.
func (r *PostgresBookingRepository) ListByVenues(ctx context.Context, venueIDs []string, status domain.BookingStatus) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.booking.list_by_venues",
		attribute.Int("booking.venue_count", len(venueIDs)),
	)
	defer span.End()

	if len(venueIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE venue_id = ANY($1)`
	args := []interface{}{venueIDs}
	if status != "" {
		args = append(args, string(status))
		query += ` AND status = $2`
	}
	query += fmt.Sprintf(` ORDER BY date LIMIT %d`, bookingListLimit)

	return r.queryBookings(ctx, span, query, args...)
}

func (r *PostgresBookingRepository) queryBookings(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("list bookings", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, wrapErr("scan booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("iterate bookings", err)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	err := row.Scan(
		&b.ID, &b.VenueID, &b.UserID, &b.Date, &b.GuestsCount, &b.Price,
		&status, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}
