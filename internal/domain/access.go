package domain

// Principal is the authenticated caller extracted from a session token
type Principal struct {
	UserID       string
	Email        string
	IsVenueOwner bool
}

// CanManageVenue reports whether the principal may mutate the venue
func (p *Principal) CanManageVenue(v *Venue) bool {
	return p.IsVenueOwner && v.OwnerID == p.UserID
}

// CanDecideBooking reports whether the principal may confirm or reject a
// booking, which requires owning the booked venue.
func (p *Principal) CanDecideBooking(v *Venue) bool {
	return v.OwnerID == p.UserID
}

// CanCancelBooking reports whether the principal may cancel through the
// booking's own endpoint, which is reserved for the booker.
func (p *Principal) CanCancelBooking(b *Booking) bool {
	return b.UserID == p.UserID
}

// CanWithdrawBooking reports whether the principal may cancel through the
// delete endpoint, open to both the booker and the venue owner.
func (p *Principal) CanWithdrawBooking(b *Booking, v *Venue) bool {
	return b.UserID == p.UserID || v.OwnerID == p.UserID
}
