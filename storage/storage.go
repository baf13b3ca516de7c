// Package storage persists task and board documents in Azure Table storage,
// partitioned per user, and enqueues a change notice after every write so the
// live feed can refresh its subscribers.
package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	log "github.com/sirupsen/logrus"

	"kanban-board/domain"
)

// Storage provides access to the underlying persistence mechanisms.
type Storage struct {
	taskTable   *aztables.Client
	boardTable  *aztables.Client
	changeQueue *azqueue.QueueClient
}

// New creates a Storage instance from the given connection string.
func New(connStr, tasksTable, boardsTable, changeQueue string) (*Storage, error) {
	tablesClientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &tablesClientOptions)
	if err != nil {
		return nil, err
	}
	tt := svc.NewClient(tasksTable)
	bt := svc.NewClient(boardsTable)
	queueClientOptions := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	cq, err := azqueue.NewQueueClientFromConnectionString(connStr, changeQueue, &queueClientOptions)
	if err != nil {
		return nil, err
	}
	return &Storage{taskTable: tt, boardTable: bt, changeQueue: cq}, nil
}

// ChangeQueue exposes the change-notice queue for the feed updater.
func (s *Storage) ChangeQueue() *azqueue.QueueClient {
	return s.changeQueue
}

type taskEntity struct {
	aztables.Entity
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Due         string `json:"Due"`
	Tags        string `json:"Tags"`
	Subtasks    string `json:"Subtasks"`
	Status      string `json:"Status"`
	Board       string `json:"Board"`
	Created     string `json:"Created"`
}

type boardEntity struct {
	aztables.Entity
	Name string `json:"Name"`
}

func encodeTaskEntity(userID string, task domain.Task) ([]byte, error) {
	task.Normalize()
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return nil, err
	}
	subtasks, err := json.Marshal(task.Subtasks)
	if err != nil {
		return nil, err
	}
	ent := taskEntity{
		Entity:      aztables.Entity{PartitionKey: userID, RowKey: task.ID},
		Title:       task.Title,
		Description: task.Description,
		Due:         task.Due,
		Tags:        string(tags),
		Subtasks:    string(subtasks),
		Status:      string(task.Status),
		Board:       task.Board,
		Created:     task.Created,
	}
	return json.Marshal(ent)
}

func decodeTaskEntity(data []byte) (domain.Task, error) {
	var ent taskEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Task{}, err
	}
	task := domain.Task{
		ID:          ent.RowKey,
		Title:       ent.Title,
		Description: ent.Description,
		Due:         ent.Due,
		Status:      domain.Status(ent.Status),
		Board:       ent.Board,
		Created:     ent.Created,
	}
	if ent.Tags != "" {
		if err := json.Unmarshal([]byte(ent.Tags), &task.Tags); err != nil {
			return domain.Task{}, err
		}
	}
	if ent.Subtasks != "" {
		if err := json.Unmarshal([]byte(ent.Subtasks), &task.Subtasks); err != nil {
			return domain.Task{}, err
		}
	}
	task.Normalize()
	return task, nil
}

// FetchTasks retrieves all tasks for the provided user, newest first.
func (s *Storage) FetchTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + userID + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			task, err := decodeTaskEntity(e)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
	}
	sortTasksByCreatedDesc(tasks)
	return tasks, nil
}

func sortTasksByCreatedDesc(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Created > tasks[j].Created })
}

// UpsertTask writes the complete task document and enqueues a change notice.
func (s *Storage) UpsertTask(ctx context.Context, userID string, task domain.Task) error {
	payload, err := encodeTaskEntity(userID, task)
	if err != nil {
		return err
	}
	if _, err := s.taskTable.UpsertEntity(ctx, payload, nil); err != nil {
		return err
	}
	s.enqueueChange(ctx, domain.Change{
		UserID: userID, EntityID: task.ID, EntityType: "task",
		Kind: domain.ChangeTaskSaved, Timestamp: time.Now().UnixNano(),
	})
	return nil
}

// DeleteTask removes the task document and enqueues a change notice.
func (s *Storage) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := s.taskTable.DeleteEntity(ctx, userID, taskID, nil); err != nil {
		return err
	}
	s.enqueueChange(ctx, domain.Change{
		UserID: userID, EntityID: taskID, EntityType: "task",
		Kind: domain.ChangeTaskDeleted, Timestamp: time.Now().UnixNano(),
	})
	return nil
}

// FetchBoards retrieves all board documents for the provided user.
func (s *Storage) FetchBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	filter := "PartitionKey eq '" + userID + "'"
	pager := s.boardTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	boards := []domain.Board{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent boardEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			boards = append(boards, domain.Board{ID: ent.RowKey, Name: ent.Name})
		}
	}
	return boards, nil
}

// UpsertBoard writes a board document and enqueues a change notice.
func (s *Storage) UpsertBoard(ctx context.Context, userID string, board domain.Board) error {
	ent := boardEntity{
		Entity: aztables.Entity{PartitionKey: userID, RowKey: board.ID},
		Name:   board.Name,
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	if _, err := s.boardTable.UpsertEntity(ctx, payload, nil); err != nil {
		return err
	}
	s.enqueueChange(ctx, domain.Change{
		UserID: userID, EntityID: board.ID, EntityType: "board",
		Kind: domain.ChangeBoardSaved, Timestamp: time.Now().UnixNano(),
	})
	return nil
}

// DeleteBoard removes a board document. Cascading task deletion is coordinated
// by the caller, tasks first, so no orphaned-task window opens here.
func (s *Storage) DeleteBoard(ctx context.Context, userID, boardID string) error {
	if _, err := s.boardTable.DeleteEntity(ctx, userID, boardID, nil); err != nil {
		return err
	}
	s.enqueueChange(ctx, domain.Change{
		UserID: userID, EntityID: boardID, EntityType: "board",
		Kind: domain.ChangeBoardDeleted, Timestamp: time.Now().UnixNano(),
	})
	return nil
}

// enqueueChange publishes the notice that wakes the feed updater. The document
// write already succeeded at this point, so a queue failure is logged rather
// than failing the call; the next successful change resynchronizes the feed.
func (s *Storage) enqueueChange(ctx context.Context, change domain.Change) {
	data, err := json.Marshal(change)
	if err != nil {
		log.Errorf("marshal change notice: %v", err)
		return
	}
	if _, err := s.changeQueue.EnqueueMessage(ctx, string(data), nil); err != nil {
		log.WithFields(log.Fields{"user": change.UserID, "kind": change.Kind}).
			Errorf("enqueue change notice: %v", err)
	}
}
