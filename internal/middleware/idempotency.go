package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// storedReply is the replayable response kept for an idempotency key.
type storedReply struct {
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body"`
	ContentType string          `json:"content_type"`
}

// captureWriter duplicates the response body so it can be stored after
// the handler runs.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key instead of re-running the mutation. Booking creation
// and queue joins are the main retried operations; a mobile client that
// lost the response must not create a second booking or queue entry.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		// The key is scoped per route so a reused client key cannot
		// replay a booking response onto a queue join.
		cacheKey := fmt.Sprintf("idempotency:%s:%s:%s", c.Request.Method, c.FullPath(), key)

		stored, err := loadReply(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			// Redis trouble degrades to non-idempotent behavior rather
			// than failing the request.
			c.Next()
			return
		}

		if stored != nil {
			if stored.ContentType != "" {
				c.Header("Content-Type", stored.ContentType)
			}
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		w := &captureWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// Replay client errors too; a rejected request stays rejected on
		// retry. Server errors are not stored so a retry can succeed.
		status := c.Writer.Status()
		if status >= 200 && status < 500 {
			_ = saveReply(ctx, redisClient, cacheKey, &storedReply{
				StatusCode:  status,
				Body:        w.body.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
			})
		}
	}
}

func loadReply(ctx context.Context, client *redis.Client, key string) (*storedReply, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var stored storedReply
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

func saveReply(ctx context.Context, client *redis.Client, key string, reply *storedReply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}

	return client.Set(ctx, key, data, idempotencyTTL).Err()
}
