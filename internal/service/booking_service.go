package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/repository"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

// BookingService implements the reservation protocol and the booking state
// machine.
type BookingService interface {
	Create(ctx context.Context, principal *domain.Principal, req *dto.CreateBookingRequest) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, principal *domain.Principal, bookingID, status string) (*domain.Booking, error)
	Withdraw(ctx context.Context, principal *domain.Principal, bookingID string) error
	List(ctx context.Context, principal *domain.Principal) ([]*domain.Booking, error)
	ListMyRequests(ctx context.Context, principal *domain.Principal) ([]*domain.Booking, error)
	ListForMyVenues(ctx context.Context, principal *domain.Principal, status string) ([]*domain.Booking, error)
	VenueAvailability(ctx context.Context, venueID, date string) (*dto.AvailabilityResponse, error)
}

type bookingService struct {
	bookings  repository.BookingRepository
	venues    repository.VenueRepository
	publisher EventPublisher
}

var _ BookingService = (*bookingService)(nil)

// NewBookingService creates a new booking service. A nil publisher falls
// back to the no-op publisher.
func NewBookingService(bookings repository.BookingRepository, venues repository.VenueRepository, publisher EventPublisher) BookingService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		bookings:  bookings,
		venues:    venues,
		publisher: publisher,
	}
}

// Create runs the reservation protocol: validate the venue lists the date,
// pre-check occupancy, resolve and lock the price, then insert. The insert
// races on the partial unique index, so a concurrent loser still comes back
// as a conflict even when the pre-check passed.
func (s *bookingService) Create(ctx context.Context, principal *domain.Principal, req *dto.CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create",
		attribute.String("booking.venue_id", req.VenueID),
		attribute.String("booking.date", req.Date),
	)
	defer span.End()

	if req.VenueID == "" || req.Date == "" || req.GuestsCount == nil {
		return nil, domain.NewValidationError("Fields 'venue_id', 'date', 'guests_count' are required.")
	}
	if *req.GuestsCount <= 0 {
		return nil, domain.NewValidationError("'guests_count' must be a positive integer.")
	}

	venue, err := s.venues.GetByID(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsListedOn(req.Date) {
		return nil, domain.ErrDateUnavailable
	}

	occupied, err := s.bookings.HasActiveBooking(ctx, venue.ID, req.Date)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, domain.ErrDateAlreadyBooked
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:          uuid.New().String(),
		VenueID:     venue.ID,
		UserID:      principal.UserID,
		Date:        req.Date,
		GuestsCount: *req.GuestsCount,
		Price:       ResolvePrice(venue, req.Date),
		Status:      domain.BookingStatusPending,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	_ = s.publisher.PublishBookingEvent(ctx, NewBookingEvent(EventBookingCreated, booking))
	return booking, nil
}

// UpdateStatus applies a state transition requested through the booking
// endpoint. Confirm and reject are owner actions on pending bookings; cancel
// is a booker action on active bookings, idempotent when already cancelled.
func (s *bookingService) UpdateStatus(ctx context.Context, principal *domain.Principal, bookingID, status string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.update_status",
		attribute.String("booking.id", bookingID),
		attribute.String("booking.to_status", status),
	)
	defer span.End()

	target := domain.BookingStatus(status)
	switch target {
	case domain.BookingStatusConfirmed, domain.BookingStatusRejected, domain.BookingStatusCancelled:
	default:
		return nil, domain.NewValidationError("Status must be one of: confirmed, rejected, cancelled.")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if target == domain.BookingStatusCancelled {
		if !principal.CanCancelBooking(booking) {
			return nil, domain.ErrForbidden
		}
		return s.cancel(ctx, booking)
	}

	venue, err := s.venues.GetByID(ctx, booking.VenueID)
	if err != nil {
		return nil, err
	}
	if !principal.CanDecideBooking(venue) {
		return nil, domain.ErrForbidden
	}
	if !booking.CanTransition(target) {
		return nil, domain.ErrBookingNotPending
	}

	updated, err := s.bookings.Transition(ctx, booking.ID, []domain.BookingStatus{domain.BookingStatusPending}, target)
	if err != nil {
		return nil, err
	}

	eventType := EventBookingConfirmed
	if target == domain.BookingStatusRejected {
		eventType = EventBookingRejected
	}
	_ = s.publisher.PublishBookingEvent(ctx, NewBookingEvent(eventType, updated))
	return updated, nil
}

// Withdraw cancels a booking through the delete endpoint, which both the
// booker and the venue owner may use. Idempotent for already-cancelled
// bookings.
func (s *bookingService) Withdraw(ctx context.Context, principal *domain.Principal, bookingID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.withdraw",
		attribute.String("booking.id", bookingID),
	)
	defer span.End()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	venue, err := s.venues.GetByID(ctx, booking.VenueID)
	if err != nil {
		return err
	}
	if !principal.CanWithdrawBooking(booking, venue) {
		return domain.ErrForbidden
	}

	_, err = s.cancel(ctx, booking)
	return err
}

// cancel moves an active booking to cancelled. A booking that is already
// cancelled succeeds without a write; rejected bookings are terminal.
func (s *bookingService) cancel(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if booking.Status == domain.BookingStatusCancelled {
		return booking, nil
	}
	if !booking.CanTransition(domain.BookingStatusCancelled) {
		return nil, domain.ErrBookingNotActive
	}

	updated, err := s.bookings.Transition(ctx, booking.ID, domain.ActiveStatuses, domain.BookingStatusCancelled)
	if err != nil {
		// A concurrent transition may have landed first; cancelled is
		// still a success for idempotence.
		if errors.Is(err, domain.ErrBookingNotPending) {
			current, getErr := s.bookings.GetByID(ctx, booking.ID)
			if getErr == nil && current.Status == domain.BookingStatusCancelled {
				return current, nil
			}
			return nil, domain.ErrBookingNotActive
		}
		return nil, err
	}

	_ = s.publisher.PublishBookingEvent(ctx, NewBookingEvent(EventBookingCancelled, updated))
	return updated, nil
}

// List returns the caller's view of the ledger: owners see bookings across
// all venues they own, everyone else sees their own bookings.
func (s *bookingService) List(ctx context.Context, principal *domain.Principal) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list")
	defer span.End()

	if principal.IsVenueOwner {
		return s.listForOwner(ctx, principal, "")
	}
	return s.bookings.ListByUser(ctx, principal.UserID)
}

// ListMyRequests returns the caller's own bookings regardless of role
func (s *bookingService) ListMyRequests(ctx context.Context, principal *domain.Principal) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_my_requests")
	defer span.End()

	return s.bookings.ListByUser(ctx, principal.UserID)
}

// ListForMyVenues returns bookings across all venues the caller owns,
// optionally filtered by status.
func (s *bookingService) ListForMyVenues(ctx context.Context, principal *domain.Principal, status string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_for_my_venues")
	defer span.End()

	if status != "" && !domain.ValidBookingStatus(domain.BookingStatus(status)) {
		return nil, domain.NewValidationError("Status must be one of: pending, confirmed, rejected, cancelled.")
	}
	return s.listForOwner(ctx, principal, domain.BookingStatus(status))
}

func (s *bookingService) listForOwner(ctx context.Context, principal *domain.Principal, status domain.BookingStatus) ([]*domain.Booking, error) {
	venueIDs, err := s.venues.ListIDsByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByVenues(ctx, venueIDs, status)
}

// VenueAvailability combines the pure availability resolution with the
// ledger's occupancy check: a date is bookable when it is listed and no
// active booking holds it.
func (s *bookingService) VenueAvailability(ctx context.Context, venueID, date string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.venue_availability",
		attribute.String("venue.id", venueID),
		attribute.String("booking.date", date),
	)
	defer span.End()

	if date == "" {
		return nil, domain.NewValidationError("Query param 'date' is required as YYYY-MM-DD.")
	}

	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}

	avail := ResolveAvailability(venue, date)
	if !avail.IsListed {
		return &dto.AvailabilityResponse{Available: false, Price: nil}, nil
	}

	occupied, err := s.bookings.HasActiveBooking(ctx, venueID, date)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{Available: !occupied, Price: avail.Price}, nil
}
