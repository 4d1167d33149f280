package dto

import "github.com/venuebook/venuebook/internal/domain"

// LocationInput is a lat/lng pair supplied by the client
type LocationInput struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// PriceOverrideInput is one per-date price entry
type PriceOverrideInput struct {
	Date  string   `json:"date"`
	Price *float64 `json:"price"`
}

// RegisterVenueRequest is the payload for creating a listing. Amenity flags
// sit at the top level of the payload.
type RegisterVenueRequest struct {
	VenueName      string               `json:"venue_name"`
	Type           string               `json:"type"`
	Address        string               `json:"address"`
	MapsLocation   *LocationInput       `json:"maps_location"`
	Capacity       *int                 `json:"capacity"`
	DatesAvailable []string             `json:"dates_available"`
	PriceWithDates []PriceOverrideInput `json:"price_with_dates"`
	Space          *float64             `json:"space"`

	ParkingValet      bool `json:"parking_valet"`
	EntryPackage      bool `json:"entry_package"`
	Water             bool `json:"water"`
	AirConditioner    bool `json:"air_conditioner"`
	PartitionFacility bool `json:"partition_facility"`
	SoundSystem       bool `json:"sound_system"`

	AdditionalDescription string         `json:"additional_description"`
	Pictures              []string       `json:"pictures"`
	Videos                []domain.Video `json:"videos"`
}

// Amenities maps the flat flags into the domain struct
func (r *RegisterVenueRequest) Amenities() domain.Amenities {
	return domain.Amenities{
		ParkingValet:      r.ParkingValet,
		EntryPackage:      r.EntryPackage,
		Water:             r.Water,
		AirConditioner:    r.AirConditioner,
		PartitionFacility: r.PartitionFacility,
		SoundSystem:       r.SoundSystem,
	}
}

// UpdateVenueRequest is a partial update; nil fields are left untouched
type UpdateVenueRequest struct {
	VenueName      *string              `json:"venue_name"`
	Type           *string              `json:"type"`
	Address        *string              `json:"address"`
	MapsLocation   *LocationInput       `json:"maps_location"`
	Capacity       *int                 `json:"capacity"`
	DatesAvailable []string             `json:"dates_available"`
	PriceWithDates []PriceOverrideInput `json:"price_with_dates"`
	Space          *float64             `json:"space"`

	ParkingValet      *bool `json:"parking_valet"`
	EntryPackage      *bool `json:"entry_package"`
	Water             *bool `json:"water"`
	AirConditioner    *bool `json:"air_conditioner"`
	PartitionFacility *bool `json:"partition_facility"`
	SoundSystem       *bool `json:"sound_system"`

	AdditionalDescription *string        `json:"additional_description"`
	Pictures              []string       `json:"pictures"`
	Videos                []domain.Video `json:"videos"`
}

// SearchVenuesQuery holds the /venues/search filters
type SearchVenuesQuery struct {
	Type        string   `form:"type"`
	CapacityMin *int     `form:"capacity_min"`
	CapacityMax *int     `form:"capacity_max"`
	Date        string   `form:"date"`
	NearLat     *float64 `form:"near_lat"`
	NearLng     *float64 `form:"near_lng"`
	NearKm      *float64 `form:"near_km"`
	PriceMin    *float64 `form:"price_min"`
	PriceMax    *float64 `form:"price_max"`
}

// VenueResponse is the public view of a listing
type VenueResponse struct {
	ID                    string                 `json:"id"`
	OwnerID               string                 `json:"owner_id,omitempty"`
	VenueName             string                 `json:"venue_name"`
	Type                  string                 `json:"type"`
	Address               string                 `json:"address"`
	MapsLocation          domain.Location        `json:"maps_location"`
	Capacity              int                    `json:"capacity"`
	DatesAvailable        []string               `json:"dates_available"`
	PriceOverrides        []domain.PriceOverride `json:"price_overrides"`
	SpaceSqft             *float64               `json:"space_sqft"`
	Amenities             domain.Amenities       `json:"amenities"`
	AdditionalDescription string                 `json:"additional_description,omitempty"`
	Pictures              []string               `json:"pictures"`
	Videos                []domain.Video         `json:"videos"`
}

// VenueListResponse wraps search results
type VenueListResponse struct {
	Venues []VenueResponse `json:"venues"`
}

// RegisterVenueResponse returns the new listing id
type RegisterVenueResponse struct {
	VenueID string `json:"venue_id"`
}

// AvailabilityResponse answers /venues/{id}/availability
type AvailabilityResponse struct {
	Available bool     `json:"available"`
	Price     *float64 `json:"price"`
}

// VenueFromDomain maps a domain venue to its public view
func VenueFromDomain(v *domain.Venue) VenueResponse {
	return VenueResponse{
		ID:                    v.ID,
		OwnerID:               v.OwnerID,
		VenueName:             v.Name,
		Type:                  string(v.Type),
		Address:               v.Address,
		MapsLocation:          v.Location,
		Capacity:              v.Capacity,
		DatesAvailable:        v.DatesAvailable,
		PriceOverrides:        v.PriceOverrides,
		SpaceSqft:             v.SpaceSqft,
		Amenities:             v.Amenities,
		AdditionalDescription: v.Description,
		Pictures:              v.Pictures,
		Videos:                v.Videos,
	}
}
