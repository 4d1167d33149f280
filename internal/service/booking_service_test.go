package service

import (
	"context"
	"errors"
	"testing"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/repository"
)

// MockBookingRepository implements repository.BookingRepository with
// function fields so each test wires only what it needs.
type MockBookingRepository struct {
	CreateFunc           func(ctx context.Context, booking *domain.Booking) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Booking, error)
	HasActiveBookingFunc func(ctx context.Context, venueID, date string) (bool, error)
	TransitionFunc       func(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error)
	ListByUserFunc       func(ctx context.Context, userID string) ([]*domain.Booking, error)
	ListByVenuesFunc     func(ctx context.Context, venueIDs []string, status domain.BookingStatus) ([]*domain.Booking, error)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return m.CreateFunc(ctx, booking)
}
func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *MockBookingRepository) HasActiveBooking(ctx context.Context, venueID, date string) (bool, error) {
	return m.HasActiveBookingFunc(ctx, venueID, date)
}
func (m *MockBookingRepository) Transition(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	return m.TransitionFunc(ctx, id, from, to)
}
func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return m.ListByUserFunc(ctx, userID)
}
func (m *MockBookingRepository) ListByVenues(ctx context.Context, venueIDs []string, status domain.BookingStatus) ([]*domain.Booking, error) {
	return m.ListByVenuesFunc(ctx, venueIDs, status)
}

// MockVenueRepository implements repository.VenueRepository
type MockVenueRepository struct {
	CreateFunc         func(ctx context.Context, venue *domain.Venue) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Venue, error)
	UpdateFunc         func(ctx context.Context, venue *domain.Venue) error
	SearchFunc         func(ctx context.Context, filter repository.VenueFilter) ([]*domain.Venue, error)
	ListIDsByOwnerFunc func(ctx context.Context, ownerID string) ([]string, error)
}

func (m *MockVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	return m.CreateFunc(ctx, venue)
}
func (m *MockVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *MockVenueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	return m.UpdateFunc(ctx, venue)
}
func (m *MockVenueRepository) Search(ctx context.Context, filter repository.VenueFilter) ([]*domain.Venue, error) {
	return m.SearchFunc(ctx, filter)
}
func (m *MockVenueRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	return m.ListIDsByOwnerFunc(ctx, ownerID)
}

// capturePublisher records the events a test produced
type capturePublisher struct {
	events []BookingEvent
}

func (p *capturePublisher) PublishBookingEvent(_ context.Context, event BookingEvent) error {
	p.events = append(p.events, event)
	return nil
}
func (p *capturePublisher) Close() {}

func testVenue() *domain.Venue {
	return &domain.Venue{
		ID:             "venue-1",
		OwnerID:        "owner-1",
		Name:           "Grand Hall",
		Type:           domain.VenueTypeHall,
		Capacity:       500,
		DatesAvailable: []string{"2025-09-01", "2025-09-02"},
		PriceOverrides: []domain.PriceOverride{{Date: "2025-09-01", Price: 50000}},
	}
}

func intPtr(i int) *int { return &i }

func TestBookingServiceCreate(t *testing.T) {
	booker := &domain.Principal{UserID: "booker-1"}

	tests := []struct {
		name       string
		req        *dto.CreateBookingRequest
		setupMocks func(b *MockBookingRepository, v *MockVenueRepository)
		wantErr    error
		wantValid  bool
		check      func(t *testing.T, got *domain.Booking, pub *capturePublisher)
	}{
		{
			name: "success locks the override price",
			req:  &dto.CreateBookingRequest{VenueID: "venue-1", Date: "2025-09-01", GuestsCount: intPtr(300)},
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
				b.HasActiveBookingFunc = func(ctx context.Context, venueID, date string) (bool, error) {
					return false, nil
				}
				b.CreateFunc = func(ctx context.Context, booking *domain.Booking) error {
					return nil
				}
			},
			check: func(t *testing.T, got *domain.Booking, pub *capturePublisher) {
				if got.Status != domain.BookingStatusPending {
					t.Errorf("status = %s, want pending", got.Status)
				}
				if got.Price == nil || *got.Price != 50000 {
					t.Errorf("price = %v, want 50000", got.Price)
				}
				if got.UserID != "booker-1" {
					t.Errorf("user id = %s, want booker-1", got.UserID)
				}
				if len(pub.events) != 1 || pub.events[0].Type != EventBookingCreated {
					t.Errorf("events = %v, want a single booking.created", pub.events)
				}
			},
		},
		{
			name: "date without override gets no price",
			req:  &dto.CreateBookingRequest{VenueID: "venue-1", Date: "2025-09-02", GuestsCount: intPtr(100)},
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
				b.HasActiveBookingFunc = func(ctx context.Context, venueID, date string) (bool, error) {
					return false, nil
				}
				b.CreateFunc = func(ctx context.Context, booking *domain.Booking) error {
					return nil
				}
			},
			check: func(t *testing.T, got *domain.Booking, pub *capturePublisher) {
				if got.Price != nil {
					t.Errorf("price = %v, want nil", *got.Price)
				}
			},
		},
		{
			name:      "missing fields",
			req:       &dto.CreateBookingRequest{VenueID: "venue-1"},
			wantValid: true,
		},
		{
			name:      "non-positive guests",
			req:       &dto.CreateBookingRequest{VenueID: "venue-1", Date: "2025-09-01", GuestsCount: intPtr(0)},
			wantValid: true,
		},
		{
			name: "unknown venue",
			req:  &dto.CreateBookingRequest{VenueID: "missing", Date: "2025-09-01", GuestsCount: intPtr(10)},
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return nil, domain.ErrVenueNotFound
				}
			},
			wantErr: domain.ErrVenueNotFound,
		},
		{
			name: "date not listed",
			req:  &dto.CreateBookingRequest{VenueID: "venue-1", Date: "2025-12-25", GuestsCount: intPtr(10)},
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
			},
			wantErr: domain.ErrDateUnavailable,
		},
		{
			name: "slot already occupied",
			req:  &dto.CreateBookingRequest{VenueID: "venue-1", Date: "2025-09-01", GuestsCount: intPtr(10)},
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
				b.HasActiveBookingFunc = func(ctx context.Context, venueID, date string) (bool, error) {
					return true, nil
				}
			},
			wantErr: domain.ErrDateAlreadyBooked,
		},
		{
			// The pre-check can pass and the insert still lose the race
			// on the unique index.
			name: "insert loses the race",
			req:  &dto.CreateBookingRequest{VenueID: "venue-1", Date: "2025-09-01", GuestsCount: intPtr(10)},
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
				b.HasActiveBookingFunc = func(ctx context.Context, venueID, date string) (bool, error) {
					return false, nil
				}
				b.CreateFunc = func(ctx context.Context, booking *domain.Booking) error {
					return domain.ErrDateAlreadyBooked
				}
			},
			wantErr: domain.ErrDateAlreadyBooked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := &MockBookingRepository{}
			venueRepo := &MockVenueRepository{}
			if tt.setupMocks != nil {
				tt.setupMocks(bookingRepo, venueRepo)
			}
			pub := &capturePublisher{}
			svc := NewBookingService(bookingRepo, venueRepo, pub)

			got, err := svc.Create(context.Background(), booker, tt.req)

			if tt.wantValid {
				if !domain.IsValidationError(err) {
					t.Fatalf("error = %v, want validation error", err)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, got, pub)
			}
		})
	}
}

func TestBookingServiceUpdateStatus(t *testing.T) {
	owner := &domain.Principal{UserID: "owner-1", IsVenueOwner: true}
	booker := &domain.Principal{UserID: "booker-1"}
	stranger := &domain.Principal{UserID: "intruder"}

	pendingBooking := func() *domain.Booking {
		return &domain.Booking{
			ID:      "booking-1",
			VenueID: "venue-1",
			UserID:  "booker-1",
			Date:    "2025-09-01",
			Status:  domain.BookingStatusPending,
		}
	}

	tests := []struct {
		name       string
		principal  *domain.Principal
		status     string
		setupMocks func(b *MockBookingRepository, v *MockVenueRepository)
		wantErr    error
		wantValid  bool
		wantStatus domain.BookingStatus
		wantEvent  string
	}{
		{
			name:      "owner confirms pending",
			principal: owner,
			status:    "confirmed",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return pendingBooking(), nil
				}
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
				b.TransitionFunc = func(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
					bk := pendingBooking()
					bk.Status = to
					return bk, nil
				}
			},
			wantStatus: domain.BookingStatusConfirmed,
			wantEvent:  EventBookingConfirmed,
		},
		{
			name:      "owner rejects pending",
			principal: owner,
			status:    "rejected",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return pendingBooking(), nil
				}
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
				b.TransitionFunc = func(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
					bk := pendingBooking()
					bk.Status = to
					return bk, nil
				}
			},
			wantStatus: domain.BookingStatusRejected,
			wantEvent:  EventBookingRejected,
		},
		{
			name:      "booker cannot confirm",
			principal: booker,
			status:    "confirmed",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return pendingBooking(), nil
				}
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:      "confirm non-pending conflicts",
			principal: owner,
			status:    "confirmed",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					bk := pendingBooking()
					bk.Status = domain.BookingStatusConfirmed
					return bk, nil
				}
				v.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				}
			},
			wantErr: domain.ErrBookingNotPending,
		},
		{
			name:      "booker cancels pending",
			principal: booker,
			status:    "cancelled",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return pendingBooking(), nil
				}
				b.TransitionFunc = func(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
					bk := pendingBooking()
					bk.Status = to
					return bk, nil
				}
			},
			wantStatus: domain.BookingStatusCancelled,
			wantEvent:  EventBookingCancelled,
		},
		{
			name:      "owner cannot cancel through booking endpoint",
			principal: owner,
			status:    "cancelled",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return pendingBooking(), nil
				}
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:      "cancel of cancelled is a no-op success",
			principal: booker,
			status:    "cancelled",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					bk := pendingBooking()
					bk.Status = domain.BookingStatusCancelled
					return bk, nil
				}
			},
			wantStatus: domain.BookingStatusCancelled,
		},
		{
			name:      "cancel of rejected conflicts",
			principal: booker,
			status:    "cancelled",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					bk := pendingBooking()
					bk.Status = domain.BookingStatusRejected
					return bk, nil
				}
			},
			wantErr: domain.ErrBookingNotActive,
		},
		{
			name:      "invalid status",
			principal: booker,
			status:    "archived",
			wantValid: true,
		},
		{
			name:      "unknown booking",
			principal: stranger,
			status:    "confirmed",
			setupMocks: func(b *MockBookingRepository, v *MockVenueRepository) {
				b.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return nil, domain.ErrBookingNotFound
				}
			},
			wantErr: domain.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := &MockBookingRepository{}
			venueRepo := &MockVenueRepository{}
			if tt.setupMocks != nil {
				tt.setupMocks(bookingRepo, venueRepo)
			}
			pub := &capturePublisher{}
			svc := NewBookingService(bookingRepo, venueRepo, pub)

			got, err := svc.UpdateStatus(context.Background(), tt.principal, "booking-1", tt.status)

			if tt.wantValid {
				if !domain.IsValidationError(err) {
					t.Fatalf("error = %v, want validation error", err)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if tt.wantEvent == "" {
				if len(pub.events) != 0 {
					t.Errorf("events = %v, want none", pub.events)
				}
			} else if len(pub.events) != 1 || pub.events[0].Type != tt.wantEvent {
				t.Errorf("events = %v, want a single %s", pub.events, tt.wantEvent)
			}
		})
	}
}

func TestBookingServiceWithdraw(t *testing.T) {
	booking := &domain.Booking{
		ID:      "booking-1",
		VenueID: "venue-1",
		UserID:  "booker-1",
		Status:  domain.BookingStatusConfirmed,
	}

	newMocks := func() (*MockBookingRepository, *MockVenueRepository) {
		b := &MockBookingRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
				bk := *booking
				return &bk, nil
			},
			TransitionFunc: func(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
				bk := *booking
				bk.Status = to
				return &bk, nil
			},
		}
		v := &MockVenueRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Venue, error) {
				return testVenue(), nil
			},
		}
		return b, v
	}

	t.Run("booker may withdraw", func(t *testing.T) {
		b, v := newMocks()
		svc := NewBookingService(b, v, &capturePublisher{})
		if err := svc.Withdraw(context.Background(), &domain.Principal{UserID: "booker-1"}, "booking-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("venue owner may withdraw", func(t *testing.T) {
		b, v := newMocks()
		svc := NewBookingService(b, v, &capturePublisher{})
		if err := svc.Withdraw(context.Background(), &domain.Principal{UserID: "owner-1", IsVenueOwner: true}, "booking-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		b, v := newMocks()
		svc := NewBookingService(b, v, &capturePublisher{})
		err := svc.Withdraw(context.Background(), &domain.Principal{UserID: "intruder"}, "booking-1")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("error = %v, want forbidden", err)
		}
	})
}

func TestBookingServiceVenueAvailability(t *testing.T) {
	tests := []struct {
		name          string
		date          string
		occupied      bool
		wantAvailable bool
		wantPrice     *float64
	}{
		{name: "listed and free with price", date: "2025-09-01", occupied: false, wantAvailable: true, wantPrice: floatPtr(50000)},
		{name: "listed but occupied", date: "2025-09-01", occupied: true, wantAvailable: false, wantPrice: floatPtr(50000)},
		{name: "not listed", date: "2025-12-25", wantAvailable: false, wantPrice: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := &MockBookingRepository{
				HasActiveBookingFunc: func(ctx context.Context, venueID, date string) (bool, error) {
					return tt.occupied, nil
				},
			}
			venueRepo := &MockVenueRepository{
				GetByIDFunc: func(ctx context.Context, id string) (*domain.Venue, error) {
					return testVenue(), nil
				},
			}
			svc := NewBookingService(bookingRepo, venueRepo, nil)

			got, err := svc.VenueAvailability(context.Background(), "venue-1", tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Available != tt.wantAvailable {
				t.Errorf("available = %v, want %v", got.Available, tt.wantAvailable)
			}
			switch {
			case tt.wantPrice == nil && got.Price != nil:
				t.Errorf("price = %v, want nil", *got.Price)
			case tt.wantPrice != nil && (got.Price == nil || *got.Price != *tt.wantPrice):
				t.Errorf("price = %v, want %v", got.Price, *tt.wantPrice)
			}
		})
	}

	t.Run("missing date is a validation error", func(t *testing.T) {
		svc := NewBookingService(&MockBookingRepository{}, &MockVenueRepository{}, nil)
		_, err := svc.VenueAvailability(context.Background(), "venue-1", "")
		if !domain.IsValidationError(err) {
			t.Fatalf("error = %v, want validation error", err)
		}
	})
}

func TestBookingServiceListing(t *testing.T) {
	ownerVenues := []string{"venue-1", "venue-2"}

	t.Run("owner list spans owned venues", func(t *testing.T) {
		var gotVenueIDs []string
		bookingRepo := &MockBookingRepository{
			ListByVenuesFunc: func(ctx context.Context, venueIDs []string, status domain.BookingStatus) ([]*domain.Booking, error) {
				gotVenueIDs = venueIDs
				return []*domain.Booking{{ID: "b1"}}, nil
			},
		}
		venueRepo := &MockVenueRepository{
			ListIDsByOwnerFunc: func(ctx context.Context, ownerID string) ([]string, error) {
				return ownerVenues, nil
			},
		}
		svc := NewBookingService(bookingRepo, venueRepo, nil)

		got, err := svc.List(context.Background(), &domain.Principal{UserID: "owner-1", IsVenueOwner: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || len(gotVenueIDs) != 2 {
			t.Errorf("got %d bookings over venues %v", len(got), gotVenueIDs)
		}
	})

	t.Run("booker list is their own", func(t *testing.T) {
		bookingRepo := &MockBookingRepository{
			ListByUserFunc: func(ctx context.Context, userID string) ([]*domain.Booking, error) {
				if userID != "booker-1" {
					t.Errorf("queried user %s, want booker-1", userID)
				}
				return nil, nil
			},
		}
		svc := NewBookingService(bookingRepo, &MockVenueRepository{}, nil)
		if _, err := svc.List(context.Background(), &domain.Principal{UserID: "booker-1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("owner filter rejects unknown status", func(t *testing.T) {
		svc := NewBookingService(&MockBookingRepository{}, &MockVenueRepository{}, nil)
		_, err := svc.ListForMyVenues(context.Background(), &domain.Principal{UserID: "owner-1", IsVenueOwner: true}, "archived")
		if !domain.IsValidationError(err) {
			t.Fatalf("error = %v, want validation error", err)
		}
	})
}
