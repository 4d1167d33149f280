package service

import "github.com/venuebook/venuebook/internal/domain"

// Availability is the result of resolving a venue and date: whether the date
// is listed at all, and the override price if one is defined. It says nothing
// about existing bookings; combine with the ledger's occupancy check for
// actual bookability.
type Availability struct {
	IsListed bool
	Price    *float64
}

// ResolveAvailability answers whether a date is listed and what it costs.
// Pure function, no side effects.
func ResolveAvailability(venue *domain.Venue, date string) Availability {
	return Availability{
		IsListed: venue.IsListedOn(date),
		Price:    ResolvePrice(venue, date),
	}
}

// ResolvePrice returns the price of the first override entry matching date,
// scanning in storage order. When duplicate dates exist the first one wins;
// dates with no override have no defined price (nil).
func ResolvePrice(venue *domain.Venue, date string) *float64 {
	for _, o := range venue.PriceOverrides {
		if o.Date == date {
			price := o.Price
			return &price
		}
	}
	return nil
}
