package notifications

import (
	"context"
	"log/slog"
	"strconv"

	"packtrail/internal/observability"

	"github.com/redis/go-redis/v9"
)

// liveCountChannel carries live-user count changes between instances.
const liveCountChannel = "live:count"

// Notifier publishes and consumes cross-instance presence messages.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier returns a Notifier. rdb may be nil, making every call a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishCount announces a new live-user count to all instances.
func (n *Notifier) PublishCount(ctx context.Context, count int64) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, liveCountChannel, strconv.FormatInt(count, 10)).Err()
}

// SubscribeCount calls onCount for every count change published by any
// instance. Blocks until ctx is done.
func (n *Notifier) SubscribeCount(ctx context.Context, onCount func(count int64)) {
	if n.rdb == nil {
		<-ctx.Done()
		return
	}

	sub := n.rdb.Subscribe(ctx, liveCountChannel)
	defer func() { _ = sub.Close() }()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			count, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				observability.GlobalLogger.Warn("malformed live count message",
					slog.String("payload", msg.Payload))
				continue
			}
			onCount(count)
		}
	}
}
