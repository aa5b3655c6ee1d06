package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"trike/internal/domain"
)

const (
	bookingChannel = "bookings:events"
	queueChannel   = "queue:snapshots"
)

// StreamPublisher pushes booking and queue changes to subscribed
// observers over Redis pub/sub.
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a new StreamPublisher.
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// PublishBooking broadcasts a booking snapshot after a committed change.
func (p *StreamPublisher) PublishBooking(ctx context.Context, booking *domain.Booking) error {
	payload, err := json.Marshal(booking)
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, bookingChannel, payload).Err()
}

// PublishQueue broadcasts the full queue snapshot after a mutation.
func (p *StreamPublisher) PublishQueue(ctx context.Context, entries []*domain.QueueEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, queueChannel, payload).Err()
}

// StreamSubscriber consumes booking and queue snapshots. Consumers must
// reconcile by identifier; snapshots may arrive duplicated or out of
// order relative to their own reads.
type StreamSubscriber struct {
	client *redis.Client
}

// NewStreamSubscriber creates a new StreamSubscriber.
func NewStreamSubscriber(client *redis.Client) *StreamSubscriber {
	return &StreamSubscriber{client: client}
}

// SubscribeBookings streams booking snapshots until ctx is cancelled.
// The returned channel is closed when the subscription ends.
func (s *StreamSubscriber) SubscribeBookings(ctx context.Context) (<-chan domain.Booking, error) {
	return subscribe[domain.Booking](ctx, s.client, bookingChannel)
}

// SubscribeQueue streams queue snapshots until ctx is cancelled.
func (s *StreamSubscriber) SubscribeQueue(ctx context.Context) (<-chan []domain.QueueEntry, error) {
	return subscribe[[]domain.QueueEntry](ctx, s.client, queueChannel)
}

func subscribe[T any](ctx context.Context, client *redis.Client, channel string) (<-chan T, error) {
	sub := client.Subscribe(ctx, channel)

	// Confirm the subscription before handing out the channel.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan T)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var value T
				if err := json.Unmarshal([]byte(msg.Payload), &value); err != nil {
					continue
				}
				select {
				case out <- value:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
