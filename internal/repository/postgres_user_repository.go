package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

// UserRepository persists accounts
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	PromoteToOwner(ctx context.Context, id string) error
}

// PostgresUserRepository implements UserRepository backed by PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

var _ UserRepository = (*PostgresUserRepository)(nil)

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, full_name, contact_number, COALESCE(password_hash, ''),
	is_venue_owner, role, auth_provider, created_at, updated_at`

// Create inserts a new account. A duplicate email maps to ErrEmailTaken.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := telemetry.StartSpan(ctx, "repository.user.create",
		attribute.String("user.email", user.Email),
	)
	defer span.End()

	query := `
		INSERT INTO users (id, email, full_name, contact_number, password_hash,
			is_venue_owner, role, auth_provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FullName, user.ContactNumber, user.PasswordHash,
		user.IsVenueOwner, user.Role, user.AuthProvider, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		span.SetStatus(codes.Error, err.Error())
		return wrapErr("create user", err)
	}
	return nil
}

// GetByID fetches an account by id
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.user.get_by_id",
		attribute.String("user.id", id),
	)
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("get user", err)
	}
	return user, nil
}

// GetByEmail fetches an account by email. Returns nil, nil when no account
// exists so callers can branch without error plumbing.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.user.get_by_email")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapErr("get user by email", err)
	}
	return user, nil
}

// UpdatePassword replaces the account's password hash
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctx, span := telemetry.StartSpan(ctx, "repository.user.update_password",
		attribute.String("user.id", id),
	)
	defer span.End()

	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return wrapErr("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// PromoteToOwner grants the venue-owner capability
func (r *PostgresUserRepository) PromoteToOwner(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repository.user.promote_to_owner",
		attribute.String("user.id", id),
	)
	defer span.End()

	query := `UPDATE users SET is_venue_owner = TRUE, role = 'owner', updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return wrapErr("promote user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.ContactNumber, &u.PasswordHash,
		&u.IsVenueOwner, &u.Role, &u.AuthProvider, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
