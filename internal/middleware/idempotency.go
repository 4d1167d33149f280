package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/venuebook/venuebook/pkg/logger"
	"github.com/venuebook/venuebook/pkg/response"
)

const (
	idempotencyHeader = "X-Idempotency-Key"
	keyPrefix         = "idempotency:"

	recordProcessing = "processing"
	recordCompleted  = "completed"
)

// IdempotencyStore is the subset of the Redis client the middleware needs
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// idempotencyRecord is what gets stored per key: a processing marker while
// the first request is in flight, then the completed response for replay.
type idempotencyRecord struct {
	State      string          `json:"state"`
	HTTPStatus int             `json:"http_status,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency makes unsafe requests carrying an X-Idempotency-Key replayable:
// the first request records its response under the key, duplicates replay it,
// and a duplicate racing the original gets a conflict. Requests without the
// header pass through untouched.
func Idempotency(store IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := keyPrefix + c.Request.Method + ":" + c.FullPath() + ":" + key

		marker, _ := json.Marshal(idempotencyRecord{State: recordProcessing})
		acquired, err := store.SetNX(ctx, redisKey, marker, ttl).Result()
		if err != nil {
			// Redis being down must not block writes
			logger.Get().Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !acquired {
			raw, err := store.Get(ctx, redisKey).Result()
			if err != nil {
				response.Error(c, http.StatusConflict, "Request with this idempotency key is already in progress.")
				c.Abort()
				return
			}
			var record idempotencyRecord
			if json.Unmarshal([]byte(raw), &record) == nil && record.State == recordCompleted {
				c.Data(record.HTTPStatus, "application/json", record.Body)
				c.Abort()
				return
			}
			response.Error(c, http.StatusConflict, "Request with this idempotency key is already in progress.")
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			// Let the client retry server failures with the same key
			if err := store.Del(ctx, redisKey).Err(); err != nil {
				logger.Get().Warn("failed to release idempotency key", zap.Error(err))
			}
			return
		}

		record, _ := json.Marshal(idempotencyRecord{
			State:      recordCompleted,
			HTTPStatus: status,
			Body:       capture.buf.Bytes(),
		})
		if err := store.Set(ctx, redisKey, record, ttl).Err(); err != nil {
			logger.Get().Warn("failed to store idempotency record", zap.Error(err))
		}
	}
}
