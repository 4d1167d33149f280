package repository

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

// ResetTokenRepository stores single-use password-reset tokens
type ResetTokenRepository interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the user id for a token and deletes it, so a token
	// can be redeemed at most once. Unknown or expired tokens map to
	// ErrTokenInvalid.
	Consume(ctx context.Context, token string) (string, error)
}

// RedisResetTokenRepository implements ResetTokenRepository on Redis with
// TTL-based expiry.
type RedisResetTokenRepository struct {
	client *goredis.Client
}

var _ ResetTokenRepository = (*RedisResetTokenRepository)(nil)

// NewRedisResetTokenRepository creates a new Redis reset-token repository
func NewRedisResetTokenRepository(client *goredis.Client) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{client: client}
}

func resetTokenKey(token string) string {
	return "reset_token:" + token
}

// Save stores a token mapped to its user, expiring after ttl
func (r *RedisResetTokenRepository) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	ctx, span := telemetry.StartSpan(ctx, "repository.reset_token.save")
	defer span.End()

	if err := r.client.Set(ctx, resetTokenKey(token), userID, ttl).Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return wrapErr("save reset token", err)
	}
	return nil
}

// Consume redeems a token, deleting it atomically via GETDEL
func (r *RedisResetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repository.reset_token.consume")
	defer span.End()

	userID, err := r.client.GetDel(ctx, resetTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrTokenInvalid
		}
		span.SetStatus(codes.Error, err.Error())
		return "", wrapErr("consume reset token", err)
	}
	return userID, nil
}
