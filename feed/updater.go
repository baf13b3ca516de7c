package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanban-board/domain"
	"kanban-board/storage"
)

// Updater drains the change queue, refreshes the redis read model for the
// affected user and republishes the notice on the live channel.
type Updater struct {
	queue    *azqueue.QueueClient
	rc       *redis.Client
	store    Snapshots
	channel  string
	cacheTTL time.Duration
}

// NewUpdater creates an Updater. store must read from the tables, not the
// cache, so refreshed snapshots are never stale.
func NewUpdater(queue *azqueue.QueueClient, rc *redis.Client, store Snapshots, channel string, cacheTTL time.Duration) *Updater {
	return &Updater{queue: queue, rc: rc, store: store, channel: channel, cacheTTL: cacheTTL}
}

// Run dequeues change notices until ctx is cancelled.
func (u *Updater) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		resp, err := u.queue.DequeueMessage(ctx, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Errorf("receive change notice: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if len(resp.Messages) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		msg := resp.Messages[0]
		if msg.MessageText != nil {
			if err := u.processChange(ctx, *msg.MessageText); err != nil {
				log.Errorf("process change notice: %v", err)
			}
		}
		if _, err := u.queue.DeleteMessage(ctx, *msg.MessageID, *msg.PopReceipt, nil); err != nil {
			log.Errorf("delete change notice: %v", err)
		}
	}
}

// processChange refreshes the cached read model for the change's user and
// publishes the notice so live subscribers refetch.
func (u *Updater) processChange(ctx context.Context, payload string) error {
	var change domain.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return err
	}

	switch change.EntityType {
	case "task":
		tasks, err := u.store.FetchTasks(ctx, change.UserID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(tasks)
		if err != nil {
			return err
		}
		if err := u.rc.Set(ctx, storage.TasksCacheKey(change.UserID), data, u.cacheTTL).Err(); err != nil {
			log.Errorf("refresh task cache: %v", err)
		}
	case "board":
		if err := u.rc.Del(ctx, storage.BoardsCacheKey(change.UserID)).Err(); err != nil {
			log.Errorf("evict board cache: %v", err)
		}
	}

	if err := u.rc.Publish(ctx, u.channel, payload).Err(); err != nil {
		log.Errorf("unable to publish change for %s to %s", change.EntityType, u.channel)
		return err
	}
	return nil
}
