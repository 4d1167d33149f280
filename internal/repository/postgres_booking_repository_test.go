package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuebook/venuebook/internal/domain"
)

// skipIfNoIntegration skips the test if INTEGRATION_TEST env var is not set
func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getPostgresPool creates a PostgreSQL connection pool for testing and
// applies the schema.
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("TEST_POSTGRES_USER", "postgres"),
		getEnv("TEST_POSTGRES_PASSWORD", "postgres"),
		getEnv("TEST_POSTGRES_HOST", "localhost"),
		getEnv("TEST_POSTGRES_PORT", "5432"),
		getEnv("TEST_POSTGRES_DB", "venuebook_test"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// seedUserAndVenue inserts a fresh owner and venue and removes both, with
// any bookings against them, when the test finishes.
func seedUserAndVenue(t *testing.T, pool *pgxpool.Pool, dates []string) (userID, venueID string) {
	ctx := context.Background()
	userID = uuid.New().String()
	venueID = uuid.New().String()

	users := NewPostgresUserRepository(pool)
	if err := users.Create(ctx, &domain.User{
		ID:           userID,
		Email:        userID + "@integration.test",
		FullName:     "Integration Owner",
		IsVenueOwner: true,
		Role:         domain.RoleOwner,
		AuthProvider: domain.AuthProviderPassword,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	venues := NewPostgresVenueRepository(pool)
	if err := venues.Create(ctx, &domain.Venue{
		ID:             venueID,
		OwnerID:        userID,
		Name:           "Integration Hall",
		Type:           domain.VenueTypeHall,
		Address:        "1 Test Street",
		Location:       domain.Location{Lat: 12.97, Lng: 77.59},
		Capacity:       300,
		DatesAvailable: dates,
		PriceOverrides: []domain.PriceOverride{},
		Pictures:       []string{},
		Videos:         []domain.Video{},
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Failed to seed venue: %v", err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "DELETE FROM bookings WHERE venue_id = $1", venueID)
		_, _ = pool.Exec(ctx, "DELETE FROM venues WHERE id = $1", venueID)
		_, _ = pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	})
	return userID, venueID
}

func newTestBooking(venueID, userID, date string) *domain.Booking {
	now := time.Now().UTC()
	return &domain.Booking{
		ID:          uuid.New().String(),
		VenueID:     venueID,
		UserID:      userID,
		Date:        date,
		GuestsCount: 100,
		Status:      domain.BookingStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TestPostgresBookingRepository_ConcurrentCreate races N inserts for the
// same (venue, date) slot against the uniq_active_booking partial index:
// exactly one must win, the rest must map to ErrDateAlreadyBooked.
func TestPostgresBookingRepository_ConcurrentCreate(t *testing.T) {
	pool := getPostgresPool(t)
	userID, venueID := seedUserAndVenue(t, pool, []string{"2025-09-01"})

	repo := NewPostgresBookingRepository(pool)
	ctx := context.Background()

	const writers = 16
	results := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Create(ctx, newTestBooking(venueID, userID, "2025-09-01"))
		}()
	}
	wg.Wait()
	close(results)

	created, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDateAlreadyBooked):
			conflicts++
		default:
			t.Fatalf("Create() unexpected error = %v", err)
		}
	}
	if created != 1 || conflicts != writers-1 {
		t.Errorf("created = %d, conflicts = %d; want 1 and %d", created, conflicts, writers-1)
	}

	var active int
	err := pool.QueryRow(ctx, `
		SELECT count(*) FROM bookings
		WHERE venue_id = $1 AND date = $2 AND status IN ('pending', 'confirmed')`,
		venueID, "2025-09-01").Scan(&active)
	if err != nil {
		t.Fatalf("Failed to count active bookings: %v", err)
	}
	if active != 1 {
		t.Errorf("active bookings = %d, want 1", active)
	}
}

// TestPostgresBookingRepository_CancelFreesSlot verifies the partial index
// only guards pending|confirmed rows: after a cancellation the same
// (venue, date) slot accepts a new booking.
func TestPostgresBookingRepository_CancelFreesSlot(t *testing.T) {
	pool := getPostgresPool(t)
	userID, venueID := seedUserAndVenue(t, pool, []string{"2025-09-02"})

	repo := NewPostgresBookingRepository(pool)
	ctx := context.Background()

	first := newTestBooking(venueID, userID, "2025-09-02")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, newTestBooking(venueID, userID, "2025-09-02")); !errors.Is(err, domain.ErrDateAlreadyBooked) {
		t.Fatalf("second Create() error = %v, want ErrDateAlreadyBooked", err)
	}

	cancelled, err := repo.Transition(ctx, first.ID, domain.ActiveStatuses, domain.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Errorf("Status = %v, want cancelled", cancelled.Status)
	}

	if err := repo.Create(ctx, newTestBooking(venueID, userID, "2025-09-02")); err != nil {
		t.Errorf("Create() after cancel error = %v, want success", err)
	}
}

// TestPostgresBookingRepository_TransitionCAS verifies the compare-and-set
// update: a booking outside the allowed from-set yields ErrBookingNotPending
// and an unknown id yields ErrBookingNotFound.
func TestPostgresBookingRepository_TransitionCAS(t *testing.T) {
	pool := getPostgresPool(t)
	userID, venueID := seedUserAndVenue(t, pool, []string{"2025-09-03"})

	repo := NewPostgresBookingRepository(pool)
	ctx := context.Background()

	booking := newTestBooking(venueID, userID, "2025-09-03")
	if err := repo.Create(ctx, booking); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	confirmed, err := repo.Transition(ctx, booking.ID,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusConfirmed)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if confirmed.Status != domain.BookingStatusConfirmed {
		t.Errorf("Status = %v, want confirmed", confirmed.Status)
	}

	_, err = repo.Transition(ctx, booking.ID,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusRejected)
	if !errors.Is(err, domain.ErrBookingNotPending) {
		t.Errorf("Transition() on confirmed error = %v, want ErrBookingNotPending", err)
	}

	_, err = repo.Transition(ctx, uuid.New().String(),
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusConfirmed)
	if !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("Transition() on unknown id error = %v, want ErrBookingNotFound", err)
	}
}

// TestPostgresBookingRepository_ListByUserCap verifies listings stop at
// bookingListLimit rows.
func TestPostgresBookingRepository_ListByUserCap(t *testing.T) {
	pool := getPostgresPool(t)

	total := bookingListLimit + 5
	dates := make([]string, total)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i).Format("2006-01-02")
	}
	userID, venueID := seedUserAndVenue(t, pool, dates)

	repo := NewPostgresBookingRepository(pool)
	ctx := context.Background()

	for _, date := range dates {
		if err := repo.Create(ctx, newTestBooking(venueID, userID, date)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	bookings, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(bookings) != bookingListLimit {
		t.Errorf("ListByUser() returned %d bookings, want %d", len(bookings), bookingListLimit)
	}

	byVenue, err := repo.ListByVenues(ctx, []string{venueID}, "")
	if err != nil {
		t.Fatalf("ListByVenues() error = %v", err)
	}
	if len(byVenue) != bookingListLimit {
		t.Errorf("ListByVenues() returned %d bookings, want %d", len(byVenue), bookingListLimit)
	}
}
