package domain

import "time"

// VenueType enumerates the supported venue categories
type VenueType string

const (
	VenueTypeHall       VenueType = "Hall"
	VenueTypeAuditorium VenueType = "Auditorium"
	VenueTypeBanquet    VenueType = "Banquet"
	VenueTypeLawn       VenueType = "Lawn"
)

// ValidVenueType reports whether t is a known venue type
func ValidVenueType(t VenueType) bool {
	switch t {
	case VenueTypeHall, VenueTypeAuditorium, VenueTypeBanquet, VenueTypeLawn:
		return true
	}
	return false
}

// Location is a geographic point
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Amenities is the fixed set of venue amenity flags
type Amenities struct {
	ParkingValet      bool `json:"parking_valet"`
	EntryPackage      bool `json:"entry_package"`
	Water             bool `json:"water"`
	AirConditioner    bool `json:"air_conditioner"`
	PartitionFacility bool `json:"partition_facility"`
	SoundSystem       bool `json:"sound_system"`
}

// PriceOverride is a per-date price entry. Overrides are kept in storage
// order; duplicate dates are allowed and resolved first-match on lookup.
type PriceOverride struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Video is an uploaded venue video with an optional size declared by the
// client, checked against the configured cap.
type Video struct {
	URL    string   `json:"url,omitempty"`
	SizeMB *float64 `json:"size_mb,omitempty"`
}

// Venue is a bookable listing
type Venue struct {
	ID             string
	OwnerID        string
	Name           string
	Type           VenueType
	Address        string
	Location       Location
	Capacity       int
	SpaceSqft      *float64
	DatesAvailable []string
	PriceOverrides []PriceOverride
	Amenities      Amenities
	Description    string
	Pictures       []string
	Videos         []Video
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsListedOn reports whether date is a member of the venue's available dates
func (v *Venue) IsListedOn(date string) bool {
	for _, d := range v.DatesAvailable {
		if d == date {
			return true
		}
	}
	return false
}
