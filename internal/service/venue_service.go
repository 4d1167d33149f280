package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/repository"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

// VenueService manages venue listings
type VenueService interface {
	Register(ctx context.Context, principal *domain.Principal, req *dto.RegisterVenueRequest) (*domain.Venue, error)
	Update(ctx context.Context, principal *domain.Principal, venueID string, req *dto.UpdateVenueRequest) (*domain.Venue, error)
	Search(ctx context.Context, query *dto.SearchVenuesQuery) ([]*domain.Venue, error)
}

// VenueServiceConfig holds venue service tunables
type VenueServiceConfig struct {
	MaxVideoMB  float64
	SearchLimit int
}

type venueService struct {
	venues repository.VenueRepository
	cfg    VenueServiceConfig
}

var _ VenueService = (*venueService)(nil)

// NewVenueService creates a new venue service
func NewVenueService(venues repository.VenueRepository, cfg VenueServiceConfig) VenueService {
	if cfg.MaxVideoMB <= 0 {
		cfg.MaxVideoMB = 25
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 50
	}
	return &venueService{venues: venues, cfg: cfg}
}

// Register creates a listing owned by the caller
func (s *venueService) Register(ctx context.Context, principal *domain.Principal, req *dto.RegisterVenueRequest) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.register",
		attribute.String("venue.owner_id", principal.UserID),
	)
	defer span.End()

	if !principal.IsVenueOwner {
		return nil, domain.ErrForbidden
	}

	var missing []string
	if req.VenueName == "" {
		missing = append(missing, "venue_name")
	}
	if req.Type == "" {
		missing = append(missing, "type")
	}
	if req.Address == "" {
		missing = append(missing, "address")
	}
	if req.MapsLocation == nil {
		missing = append(missing, "maps_location")
	}
	if req.Capacity == nil {
		missing = append(missing, "capacity")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("Missing fields: %s", strings.Join(missing, ", "))
	}

	venueType := domain.VenueType(req.Type)
	if !domain.ValidVenueType(venueType) {
		return nil, domain.NewValidationError("Invalid 'type'. Must be one of: Hall, Auditorium, Banquet, Lawn.")
	}
	if req.MapsLocation.Lat == nil || req.MapsLocation.Lng == nil {
		return nil, domain.NewValidationError("'maps_location' must include 'lat' and 'lng'.")
	}
	if *req.Capacity <= 0 {
		return nil, domain.NewValidationError("'capacity' must be a positive integer.")
	}

	overrides, err := buildPriceOverrides(req.PriceWithDates)
	if err != nil {
		return nil, err
	}
	if err := s.checkVideos(req.Videos); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	venue := &domain.Venue{
		ID:             uuid.New().String(),
		OwnerID:        principal.UserID,
		Name:           req.VenueName,
		Type:           venueType,
		Address:        req.Address,
		Location:       domain.Location{Lat: *req.MapsLocation.Lat, Lng: *req.MapsLocation.Lng},
		Capacity:       *req.Capacity,
		SpaceSqft:      req.Space,
		DatesAvailable: emptyIfNil(req.DatesAvailable),
		PriceOverrides: overrides,
		Amenities:      req.Amenities(),
		Description:    req.AdditionalDescription,
		Pictures:       emptyIfNil(req.Pictures),
		Videos:         emptyVideosIfNil(req.Videos),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.venues.Create(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// Update applies a partial update to a listing the caller owns
func (s *venueService) Update(ctx context.Context, principal *domain.Principal, venueID string, req *dto.UpdateVenueRequest) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.update",
		attribute.String("venue.id", venueID),
	)
	defer span.End()

	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManageVenue(venue) {
		return nil, domain.ErrForbidden
	}

	if req.VenueName != nil {
		venue.Name = *req.VenueName
	}
	if req.Type != nil {
		venueType := domain.VenueType(*req.Type)
		if !domain.ValidVenueType(venueType) {
			return nil, domain.NewValidationError("Invalid 'type'. Must be one of: Hall, Auditorium, Banquet, Lawn.")
		}
		venue.Type = venueType
	}
	if req.Address != nil {
		venue.Address = *req.Address
	}
	if req.MapsLocation != nil {
		if req.MapsLocation.Lat == nil || req.MapsLocation.Lng == nil {
			return nil, domain.NewValidationError("'maps_location' must include 'lat' and 'lng'.")
		}
		venue.Location = domain.Location{Lat: *req.MapsLocation.Lat, Lng: *req.MapsLocation.Lng}
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, domain.NewValidationError("'capacity' must be a positive integer.")
		}
		venue.Capacity = *req.Capacity
	}
	if req.DatesAvailable != nil {
		venue.DatesAvailable = req.DatesAvailable
	}
	if req.PriceWithDates != nil {
		overrides, err := buildPriceOverrides(req.PriceWithDates)
		if err != nil {
			return nil, err
		}
		venue.PriceOverrides = overrides
	}
	if req.Space != nil {
		venue.SpaceSqft = req.Space
	}
	applyAmenities(&venue.Amenities, req)
	if req.AdditionalDescription != nil {
		venue.Description = *req.AdditionalDescription
	}
	if req.Pictures != nil {
		venue.Pictures = req.Pictures
	}
	if req.Videos != nil {
		if err := s.checkVideos(req.Videos); err != nil {
			return nil, err
		}
		venue.Videos = req.Videos
	}

	if err := s.venues.Update(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// Search returns listings matching the query filters
func (s *venueService) Search(ctx context.Context, query *dto.SearchVenuesQuery) ([]*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.search")
	defer span.End()

	if query.Type != "" && !domain.ValidVenueType(domain.VenueType(query.Type)) {
		return nil, domain.NewValidationError("Invalid 'type'. Must be one of: Hall, Auditorium, Banquet, Lawn.")
	}

	filter := repository.VenueFilter{
		Type:        query.Type,
		CapacityMin: query.CapacityMin,
		CapacityMax: query.CapacityMax,
		Date:        query.Date,
		NearLat:     query.NearLat,
		NearLng:     query.NearLng,
		NearKm:      query.NearKm,
		PriceMin:    query.PriceMin,
		PriceMax:    query.PriceMax,
		Limit:       s.cfg.SearchLimit,
	}
	return s.venues.Search(ctx, filter)
}

func (s *venueService) checkVideos(videos []domain.Video) error {
	for _, v := range videos {
		if v.SizeMB != nil && *v.SizeMB > s.cfg.MaxVideoMB {
			return domain.NewValidationError("Video exceeds %s MB limit.", formatMB(s.cfg.MaxVideoMB))
		}
	}
	return nil
}

// buildPriceOverrides validates override entries and preserves their order.
// Duplicate dates are kept as-is; lookup resolves first match.
func buildPriceOverrides(inputs []dto.PriceOverrideInput) ([]domain.PriceOverride, error) {
	overrides := make([]domain.PriceOverride, 0, len(inputs))
	for _, in := range inputs {
		if in.Date == "" || in.Price == nil {
			return nil, domain.NewValidationError("'price_with_dates' items must have 'date' and 'price'.")
		}
		if *in.Price < 0 {
			return nil, domain.NewValidationError("'price' must be a non-negative number.")
		}
		overrides = append(overrides, domain.PriceOverride{Date: in.Date, Price: *in.Price})
	}
	return overrides, nil
}

func applyAmenities(a *domain.Amenities, req *dto.UpdateVenueRequest) {
	if req.ParkingValet != nil {
		a.ParkingValet = *req.ParkingValet
	}
	if req.EntryPackage != nil {
		a.EntryPackage = *req.EntryPackage
	}
	if req.Water != nil {
		a.Water = *req.Water
	}
	if req.AirConditioner != nil {
		a.AirConditioner = *req.AirConditioner
	}
	if req.PartitionFacility != nil {
		a.PartitionFacility = *req.PartitionFacility
	}
	if req.SoundSystem != nil {
		a.SoundSystem = *req.SoundSystem
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyVideosIfNil(v []domain.Video) []domain.Video {
	if v == nil {
		return []domain.Video{}
	}
	return v
}

func formatMB(mb float64) string {
	if mb == float64(int64(mb)) {
		return fmt.Sprintf("%d", int64(mb))
	}
	return fmt.Sprintf("%g", mb)
}
