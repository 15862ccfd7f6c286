package badger

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/storage"
)

// TaskRepository implements storage.TaskRepository for BadgerDB.
type TaskRepository struct {
	backend *Backend
}

var _ storage.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(backend *Backend) (*TaskRepository, error) {
	return &TaskRepository{
		backend: backend,
	}, nil
}

// Close releases resources. TaskRepository has no resources to release.
func (r *TaskRepository) Close() error {
	return nil
}

// UpsertTask inserts or replaces a task record.
func (r *TaskRepository) UpsertTask(ctx context.Context, task *core.Task) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	value, err := storage.MarshalTask(task)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTaskKey(task.SessionId, task.Id)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetTask retrieves a single task by session and task id.
func (r *TaskRepository) GetTask(ctx context.Context, sessionId, taskId string) (*core.Task, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var task *core.Task
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTaskKey(sessionId, taskId))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			task, err = storage.UnmarshalTask(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetSessionTasks retrieves all tasks for a session owned by ownerId,
// ordered by creation time (ties broken by task id).
func (r *TaskRepository) GetSessionTasks(ctx context.Context, sessionId, ownerId string) ([]*core.Task, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	tasks := []*core.Task{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSessionTaskPrefix(sessionId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var task *core.Task
			err := iter.Item().Value(func(val []byte) error {
				var err error
				task, err = storage.UnmarshalTask(val)
				return err
			})
			if err != nil {
				return err
			}
			if task == nil || task.OwnerId != ownerId {
				continue
			}
			tasks = append(tasks, task)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tasks, func(a, b *core.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	return tasks, nil
}
