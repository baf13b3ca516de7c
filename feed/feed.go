// Package feed delivers live task updates. Writes enqueue change notices; the
// Updater drains the queue, refreshes the read model cache and publishes on a
// redis channel; Feed subscribers receive the full current snapshot on
// subscribe and again after every published change, never a diff.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanban-board/domain"
)

// Snapshots fetches the complete task set for a user.
type Snapshots interface {
	FetchTasks(ctx context.Context, userID string) ([]domain.Task, error)
}

// Feed subscribes callers to live task updates over redis pub/sub.
type Feed struct {
	rc      *redis.Client
	store   Snapshots
	channel string
}

// New creates a Feed reading snapshots from store and listening on channel.
func New(rc *redis.Client, store Snapshots, channel string) *Feed {
	return &Feed{rc: rc, store: store, channel: channel}
}

// Subscribe blocks until ctx is cancelled, invoking onChange with the full
// current snapshot immediately and after every change notice published for
// userID. State is always replaced wholesale, so a restarted channel simply
// refetches the complete snapshot. Callers run Subscribe in its own goroutine
// and cancel ctx to release the subscription.
func (f *Feed) Subscribe(ctx context.Context, userID string, onChange func([]domain.Task)) {
	for {
		sub := f.rc.Subscribe(ctx, f.channel)
		ch := sub.Channel()

		f.deliver(ctx, userID, onChange)

	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var change domain.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					log.Errorf("unable to parse change notice: %v", err)
					continue
				}
				if change.UserID != userID {
					continue
				}
				f.deliver(ctx, userID, onChange)
			}
		}

		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		log.Error("feed channel closed, resubscribing")
		time.Sleep(time.Second)
	}
}

func (f *Feed) deliver(ctx context.Context, userID string, onChange func([]domain.Task)) {
	tasks, err := f.store.FetchTasks(ctx, userID)
	if err != nil {
		if ctx.Err() == nil {
			log.WithField("user", userID).Errorf("fetch snapshot: %v", err)
		}
		return
	}
	onChange(tasks)
}
