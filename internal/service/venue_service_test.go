package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/repository"
)

func validRegisterRequest() *dto.RegisterVenueRequest {
	lat, lng := 18.7883, 98.9853
	return &dto.RegisterVenueRequest{
		VenueName:      "Grand Hall",
		Type:           "Hall",
		Address:        "1 Main Road",
		MapsLocation:   &dto.LocationInput{Lat: &lat, Lng: &lng},
		Capacity:       intPtr(500),
		DatesAvailable: []string{"2025-09-01"},
		PriceWithDates: []dto.PriceOverrideInput{{Date: "2025-09-01", Price: floatPtr(50000)}},
	}
}

func TestVenueServiceRegister(t *testing.T) {
	owner := &domain.Principal{UserID: "owner-1", IsVenueOwner: true}

	tests := []struct {
		name      string
		principal *domain.Principal
		mutate    func(req *dto.RegisterVenueRequest)
		wantErr   error
		wantValid string
	}{
		{name: "valid request", principal: owner},
		{
			name:      "non-owner is forbidden",
			principal: &domain.Principal{UserID: "user-1"},
			wantErr:   domain.ErrForbidden,
		},
		{
			name:      "missing required fields",
			principal: owner,
			mutate: func(req *dto.RegisterVenueRequest) {
				req.VenueName = ""
				req.Address = ""
			},
			wantValid: "Missing fields: venue_name, address",
		},
		{
			name:      "invalid type",
			principal: owner,
			mutate:    func(req *dto.RegisterVenueRequest) { req.Type = "Stadium" },
			wantValid: "Invalid 'type'",
		},
		{
			name:      "location missing lng",
			principal: owner,
			mutate:    func(req *dto.RegisterVenueRequest) { req.MapsLocation.Lng = nil },
			wantValid: "'maps_location' must include",
		},
		{
			name:      "zero capacity",
			principal: owner,
			mutate:    func(req *dto.RegisterVenueRequest) { req.Capacity = intPtr(0) },
			wantValid: "'capacity' must be a positive integer",
		},
		{
			name:      "override without price",
			principal: owner,
			mutate: func(req *dto.RegisterVenueRequest) {
				req.PriceWithDates = []dto.PriceOverrideInput{{Date: "2025-09-01"}}
			},
			wantValid: "'price_with_dates' items must have",
		},
		{
			name:      "negative override price",
			principal: owner,
			mutate: func(req *dto.RegisterVenueRequest) {
				req.PriceWithDates = []dto.PriceOverrideInput{{Date: "2025-09-01", Price: floatPtr(-1)}}
			},
			wantValid: "'price' must be a non-negative number",
		},
		{
			name:      "oversized video",
			principal: owner,
			mutate: func(req *dto.RegisterVenueRequest) {
				req.Videos = []domain.Video{{URL: "https://cdn/x.mp4", SizeMB: floatPtr(26)}}
			},
			wantValid: "Video exceeds 25 MB limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			if tt.mutate != nil {
				tt.mutate(req)
			}

			var created *domain.Venue
			repo := &MockVenueRepository{
				CreateFunc: func(ctx context.Context, venue *domain.Venue) error {
					created = venue
					return nil
				},
			}
			svc := NewVenueService(repo, VenueServiceConfig{MaxVideoMB: 25})

			got, err := svc.Register(context.Background(), tt.principal, req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantValid != "" {
				if !domain.IsValidationError(err) {
					t.Fatalf("error = %v, want validation error", err)
				}
				if !strings.Contains(err.Error(), tt.wantValid) {
					t.Fatalf("error = %q, want it to contain %q", err.Error(), tt.wantValid)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.OwnerID != "owner-1" {
				t.Errorf("owner id = %s, want owner-1", got.OwnerID)
			}
			if created == nil || created.ID == "" {
				t.Error("venue was not persisted with an id")
			}
			if created.Type != domain.VenueTypeHall {
				t.Errorf("type = %s, want Hall", created.Type)
			}
		})
	}
}

func TestVenueServiceUpdate(t *testing.T) {
	owner := &domain.Principal{UserID: "owner-1", IsVenueOwner: true}

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		stored := testVenue()
		repo := &MockVenueRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Venue, error) {
				v := *stored
				return &v, nil
			},
			UpdateFunc: func(ctx context.Context, venue *domain.Venue) error { return nil },
		}
		svc := NewVenueService(repo, VenueServiceConfig{})

		name := "Renamed Hall"
		got, err := svc.Update(context.Background(), owner, "venue-1", &dto.UpdateVenueRequest{VenueName: &name})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "Renamed Hall" {
			t.Errorf("name = %s, want Renamed Hall", got.Name)
		}
		if got.Capacity != stored.Capacity {
			t.Errorf("capacity changed to %d, want %d", got.Capacity, stored.Capacity)
		}
	})

	t.Run("override replacement keeps storage order", func(t *testing.T) {
		repo := &MockVenueRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Venue, error) {
				return testVenue(), nil
			},
			UpdateFunc: func(ctx context.Context, venue *domain.Venue) error { return nil },
		}
		svc := NewVenueService(repo, VenueServiceConfig{})

		got, err := svc.Update(context.Background(), owner, "venue-1", &dto.UpdateVenueRequest{
			PriceWithDates: []dto.PriceOverrideInput{
				{Date: "2025-09-01", Price: floatPtr(60000)},
				{Date: "2025-09-01", Price: floatPtr(70000)},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.PriceOverrides) != 2 || got.PriceOverrides[0].Price != 60000 {
			t.Errorf("overrides = %v, want both entries in given order", got.PriceOverrides)
		}
		if p := ResolvePrice(got, "2025-09-01"); p == nil || *p != 60000 {
			t.Errorf("resolved price = %v, want first entry 60000", p)
		}
	})

	t.Run("not the owner", func(t *testing.T) {
		repo := &MockVenueRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Venue, error) {
				return testVenue(), nil
			},
		}
		svc := NewVenueService(repo, VenueServiceConfig{})

		name := "Hijacked"
		_, err := svc.Update(context.Background(), &domain.Principal{UserID: "owner-2", IsVenueOwner: true}, "venue-1", &dto.UpdateVenueRequest{VenueName: &name})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("error = %v, want forbidden", err)
		}
	})

	t.Run("unknown venue", func(t *testing.T) {
		repo := &MockVenueRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Venue, error) {
				return nil, domain.ErrVenueNotFound
			},
		}
		svc := NewVenueService(repo, VenueServiceConfig{})

		_, err := svc.Update(context.Background(), owner, "missing", &dto.UpdateVenueRequest{})
		if !errors.Is(err, domain.ErrVenueNotFound) {
			t.Fatalf("error = %v, want not found", err)
		}
	})
}

func TestVenueServiceSearch(t *testing.T) {
	t.Run("filters are passed through with the configured limit", func(t *testing.T) {
		var gotFilter repository.VenueFilter
		repo := &MockVenueRepository{
			SearchFunc: func(ctx context.Context, filter repository.VenueFilter) ([]*domain.Venue, error) {
				gotFilter = filter
				return []*domain.Venue{testVenue()}, nil
			},
		}
		svc := NewVenueService(repo, VenueServiceConfig{SearchLimit: 50})

		lat, lng, km := 18.78, 98.98, 5.0
		got, err := svc.Search(context.Background(), &dto.SearchVenuesQuery{
			Type:        "Hall",
			CapacityMin: intPtr(100),
			Date:        "2025-09-01",
			NearLat:     &lat,
			NearLng:     &lng,
			NearKm:      &km,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d venues, want 1", len(got))
		}
		if gotFilter.Type != "Hall" || gotFilter.Limit != 50 || gotFilter.NearKm == nil {
			t.Errorf("filter = %+v, want type/limit/geo populated", gotFilter)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		svc := NewVenueService(&MockVenueRepository{}, VenueServiceConfig{})
		_, err := svc.Search(context.Background(), &dto.SearchVenuesQuery{Type: "Stadium"})
		if !domain.IsValidationError(err) {
			t.Fatalf("error = %v, want validation error", err)
		}
	})
}
