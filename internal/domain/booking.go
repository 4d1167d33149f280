package domain

import "time"

// BookingStatus enumerates booking lifecycle states
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s is a known status
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses are the statuses that occupy a (venue, date) slot. At most
// one booking per (venue, date) may hold one of these at any time.
var ActiveStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

// IsActive reports whether the status occupies the venue/date slot
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// Booking is a reservation request for a venue on a single date. Price is
// resolved from the venue's overrides at creation time and never recomputed.
type Booking struct {
	ID          string
	VenueID     string
	UserID      string
	Date        string
	GuestsCount int
	Price       *float64
	Status      BookingStatus
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanTransition reports whether the booking may move to the target status.
// Confirm and reject apply only to pending bookings; cancel applies to any
// active booking. Cancelling an already-cancelled booking is handled as an
// idempotent no-op by the caller, not as a transition.
func (b *Booking) CanTransition(to BookingStatus) bool {
	switch to {
	case BookingStatusConfirmed, BookingStatusRejected:
		return b.Status == BookingStatusPending
	case BookingStatusCancelled:
		return b.Status.IsActive()
	}
	return false
}
