package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

// VenueFilter holds search criteria. Nil fields are not applied.
type VenueFilter struct {
	Type        string
	CapacityMin *int
	CapacityMax *int
	Date        string
	NearLat     *float64
	NearLng     *float64
	NearKm      *float64
	PriceMin    *float64
	PriceMax    *float64
	Limit       int
}

// VenueRepository persists venue listings
type VenueRepository interface {
	Create(ctx context.Context, venue *domain.Venue) error
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	Update(ctx context.Context, venue *domain.Venue) error
	Search(ctx context.Context, filter VenueFilter) ([]*domain.Venue, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// PostgresVenueRepository implements VenueRepository backed by PostgreSQL
type PostgresVenueRepository struct {
	pool *pgxpool.Pool
}

var _ VenueRepository = (*PostgresVenueRepository)(nil)

// NewPostgresVenueRepository creates a new PostgreSQL venue repository
func NewPostgresVenueRepository(pool *pgxpool.Pool) *PostgresVenueRepository {
	return &PostgresVenueRepository{pool: pool}
}

const venueColumns = `id, owner_id, venue_name, type, address, lat, lng, capacity,
	space_sqft, dates_available, price_overrides, amenities,
	additional_description, pictures, videos, created_at, updated_at`

// Create inserts a new listing
func (r *PostgresVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	ctx, span := telemetry.StartSpan(ctx, "repository.venue.create",
		attribute.String("venue.id", venue.ID),
		attribute.String("venue.owner_id", venue.OwnerID),
	)
	defer span.End()

	query := `
		INSERT INTO venues (id, owner_id, venue_name, type, address, lat, lng,
			capacity, space_sqft, dates_available, price_overrides, amenities,
			additional_description, pictures, videos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		venue.ID, venue.OwnerID, venue.Name, string(venue.Type), venue.Address,
		venue.Location.Lat, venue.Location.Lng, venue.Capacity, venue.SpaceSqft,
		venue.DatesAvailable, venue.PriceOverrides, venue.Amenities,
		venue.Description, venue.Pictures, venue.Videos,
		venue.CreatedAt, venue.UpdatedAt,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return wrapErr("create venue", err)
	}
	return nil
}

// GetByID fetches a listing by id
func (r *PostgresVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.venue.get_by_id",
		attribute.String("venue.id", id),
	)
	defer span.End()

	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`
	venue, err := scanVenue(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVenueNotFound
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("get venue", err)
	}
	return venue, nil
}

// Update replaces the mutable fields of a listing
func (r *PostgresVenueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	ctx, span := telemetry.StartSpan(ctx, "repository.venue.update",
		attribute.String("venue.id", venue.ID),
	)
	defer span.End()

	query := `
		UPDATE venues SET
			venue_name = $2, type = $3, address = $4, lat = $5, lng = $6,
			capacity = $7, space_sqft = $8, dates_available = $9,
			price_overrides = $10, amenities = $11, additional_description = $12,
			pictures = $13, videos = $14, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		venue.ID, venue.Name, string(venue.Type), venue.Address,
		venue.Location.Lat, venue.Location.Lng, venue.Capacity, venue.SpaceSqft,
		venue.DatesAvailable, venue.PriceOverrides, venue.Amenities,
		venue.Description, venue.Pictures, venue.Videos,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return wrapErr("update venue", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

// Search returns listings matching the filter. The geo filter uses the
// earthdistance GiST index; the price filter matches any override entry
// (scoped to the filter date when one is given).
func (r *PostgresVenueRepository) Search(ctx context.Context, filter VenueFilter) ([]*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.venue.search")
	defer span.End()

	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Type != "" {
		where = append(where, "type = "+arg(filter.Type))
	}
	if filter.CapacityMin != nil {
		where = append(where, "capacity >= "+arg(*filter.CapacityMin))
	}
	if filter.CapacityMax != nil {
		where = append(where, "capacity <= "+arg(*filter.CapacityMax))
	}
	if filter.Date != "" {
		where = append(where, "dates_available @> "+arg([]string{filter.Date}))
	}
	if filter.NearLat != nil && filter.NearLng != nil && filter.NearKm != nil {
		lat := arg(*filter.NearLat)
		lng := arg(*filter.NearLng)
		meters := arg(*filter.NearKm * 1000)
		where = append(where, fmt.Sprintf(
			"earth_box(ll_to_earth(%s, %s), %s) @> ll_to_earth(lat, lng)", lat, lng, meters))
		where = append(where, fmt.Sprintf(
			"earth_distance(ll_to_earth(%s, %s), ll_to_earth(lat, lng)) <= %s", lat, lng, meters))
	}
	if filter.PriceMin != nil || filter.PriceMax != nil {
		var conds []string
		if filter.Date != "" {
			conds = append(conds, "o->>'date' = "+arg(filter.Date))
		}
		if filter.PriceMin != nil {
			conds = append(conds, "(o->>'price')::double precision >= "+arg(*filter.PriceMin))
		}
		if filter.PriceMax != nil {
			conds = append(conds, "(o->>'price')::double precision <= "+arg(*filter.PriceMax))
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(price_overrides) o WHERE %s)",
			strings.Join(conds, " AND ")))
	}

	query := `SELECT ` + venueColumns + ` FROM venues`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at LIMIT " + arg(limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("search venues", err)
	}
	defer rows.Close()

	var venues []*domain.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, wrapErr("scan venue", err)
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("iterate venues", err)
	}

	span.SetAttributes(attribute.Int("venues.count", len(venues)))
	return venues, nil
}

// ListIDsByOwner returns the ids of all venues belonging to an owner
func (r *PostgresVenueRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.venue.list_ids_by_owner",
		attribute.String("venue.owner_id", ownerID),
	)
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT id FROM venues WHERE owner_id = $1`, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("list venues by owner", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr("scan venue id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanVenue(row pgx.Row) (*domain.Venue, error) {
	var (
		v         domain.Venue
		venueType string
	)
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Name, &venueType, &v.Address,
		&v.Location.Lat, &v.Location.Lng, &v.Capacity, &v.SpaceSqft,
		&v.DatesAvailable, &v.PriceOverrides, &v.Amenities,
		&v.Description, &v.Pictures, &v.Videos, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Type = domain.VenueType(venueType)
	return &v, nil
}
