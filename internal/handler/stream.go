package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	internalRedis "trike/internal/redis"
)

// StreamHandler exposes the live change streams as server-sent events
// for customer, driver, and admin UIs.
type StreamHandler struct {
	subscriber *internalRedis.StreamSubscriber
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(subscriber *internalRedis.StreamSubscriber) *StreamHandler {
	return &StreamHandler{subscriber: subscriber}
}

// Bookings handles GET /v1/streams/bookings
func (h *StreamHandler) Bookings(c *gin.Context) {
	ctx := c.Request.Context()

	events, err := h.subscriber.SubscribeBookings(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		booking, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("booking", toBookingResponse(&booking))
		return true
	})
}

// Queue handles GET /v1/streams/queue
func (h *StreamHandler) Queue(c *gin.Context) {
	ctx := c.Request.Context()

	snapshots, err := h.subscriber.SubscribeQueue(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		entries, ok := <-snapshots
		if !ok {
			return false
		}
		response := make([]QueueEntryResponse, 0, len(entries))
		for i := range entries {
			response = append(response, toQueueEntryResponse(&entries[i]))
		}
		c.SSEvent("queue", response)
		return true
	})
}
