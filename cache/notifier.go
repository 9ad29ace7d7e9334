package cache

import (
	"context"

	"CupBack/logger"
)

// changesChannel carries collection-change notifications. Every insert or
// update publishes the collection name; subscribers re-fetch and re-render.
// Best-effort eventual consistency, not a transactional read.
const changesChannel = "cupback:changes"

// Collection names published on change.
const (
	CollectionScans = "scans"
	CollectionPosts = "posts"
	CollectionUsers = "users"
)

// NotifyChanged publishes a collection-change event. Failures are logged and
// swallowed: a missed notification only delays a refresh until the next poll.
func NotifyChanged(ctx context.Context, collection string) {
	if Client == nil {
		return
	}
	if err := Client.Publish(ctx, changesChannel, collection).Err(); err != nil {
		logger.Warn("[Notify] failed to publish change event",
			logger.String("collection", collection),
			logger.ErrorField(err))
	}
}

// SubscribeChanges subscribes to collection-change events and returns a
// channel of collection names. The channel closes when ctx is cancelled.
func SubscribeChanges(ctx context.Context) <-chan string {
	out := make(chan string, 16)
	if Client == nil {
		close(out)
		return out
	}

	sub := Client.Subscribe(ctx, changesChannel)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
					// Drop rather than block: subscribers re-fetch the whole
					// view anyway, so a coalesced notification is enough.
				}
			}
		}
	}()
	return out
}
