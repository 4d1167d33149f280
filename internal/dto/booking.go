package dto

import (
	"time"

	"github.com/venuebook/venuebook/internal/domain"
)

// CreateBookingRequest is the payload for reserving a venue date
type CreateBookingRequest struct {
	VenueID     string `json:"venue_id"`
	Date        string `json:"date"`
	GuestsCount *int   `json:"guests_count"`
	Notes       string `json:"notes"`
}

// CreateBookingResponse returns the new reservation
type CreateBookingResponse struct {
	BookingID string   `json:"booking_id"`
	Price     *float64 `json:"price"`
	Status    string   `json:"status"`
}

// UpdateBookingRequest carries a status transition
type UpdateBookingRequest struct {
	Status string `json:"status"`
}

// BookingResponse is the public view of a booking
type BookingResponse struct {
	ID          string    `json:"id"`
	VenueID     string    `json:"venue_id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	GuestsCount int       `json:"guests_count"`
	Price       *float64  `json:"price"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingWrapper wraps a single booking for transition responses
type BookingWrapper struct {
	Booking BookingResponse `json:"booking"`
}

// BookingListResponse wraps booking listings
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancelResponse acknowledges a cancellation
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// BookingFromDomain maps a domain booking to its public view
func BookingFromDomain(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		VenueID:     b.VenueID,
		UserID:      b.UserID,
		Date:        b.Date,
		GuestsCount: b.GuestsCount,
		Price:       b.Price,
		Status:      string(b.Status),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// BookingsFromDomain maps a slice of bookings, never returning nil so the
// JSON encodes as an empty array.
func BookingsFromDomain(bookings []*domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingFromDomain(b))
	}
	return out
}
