package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIVE FEED
// ══════════════════════════════════════════════════════════════════════════════

// topicPrefix namespaces the per-recipient Pub/Sub topics.
const topicPrefix = "notifications:"

// TopicFor returns the Pub/Sub topic for a recipient.
func TopicFor(recipientID shared.UserID) string {
	return topicPrefix + recipientID.String()
}

// FeedMessage is the envelope published to a recipient's topic.
type FeedMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher is the subset of the Redis client the feed needs for sending.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// LiveFeed implements notification.Channel by publishing notifications to
// per-recipient Redis Pub/Sub topics.
type LiveFeed struct {
	client Publisher
}

// NewLiveFeed creates a live feed backed by the given Redis client.
func NewLiveFeed(client Publisher) *LiveFeed {
	return &LiveFeed{client: client}
}

var _ notification.Channel = (*LiveFeed)(nil)

// Send publishes the notification to the recipient's topic. A topic with
// no subscribers is not an error; the notification simply has no live
// listeners at that moment.
func (f *LiveFeed) Send(ctx context.Context, n *notification.Notification) error {
	payload, err := json.Marshal(FeedMessage{
		ID:        n.ID,
		Type:      n.Type.String(),
		Message:   n.Message,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	if err := f.client.Publish(ctx, TopicFor(n.RecipientID), payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return nil
}

// Name identifies the channel in logs.
func (f *LiveFeed) Name() string {
	return "redis-live-feed"
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBSCRIPTION
// ══════════════════════════════════════════════════════════════════════════════

// Subscriber consumes a recipient's live feed. Used by streaming endpoints
// to forward notifications to connected clients.
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber creates a feed subscriber.
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Listen subscribes to the recipient's topic and forwards decoded messages
// until the context is cancelled. The returned channel is closed when the
// subscription ends.
func (s *Subscriber) Listen(ctx context.Context, recipientID shared.UserID) (<-chan FeedMessage, error) {
	sub := s.client.Subscribe(ctx, TopicFor(recipientID))

	// Confirm the subscription before handing out the channel.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	out := make(chan FeedMessage)
	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var fm FeedMessage
				if err := json.Unmarshal([]byte(msg.Payload), &fm); err != nil {
					continue
				}
				select {
				case out <- fm:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
