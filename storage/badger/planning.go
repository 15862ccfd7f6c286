package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/storage"
)

// PlanningRepository implements storage.PlanningRepository for BadgerDB.
type PlanningRepository struct {
	backend *Backend
}

var _ storage.PlanningRepository = (*PlanningRepository)(nil)

// NewPlanningRepository creates a new PlanningRepository.
func NewPlanningRepository(backend *Backend) (*PlanningRepository, error) {
	return &PlanningRepository{
		backend: backend,
	}, nil
}

// Close releases resources. PlanningRepository has no resources to release.
func (r *PlanningRepository) Close() error {
	return nil
}

// SavePlanningState inserts or replaces the planning state for its session.
func (r *PlanningRepository) SavePlanningState(ctx context.Context, state *core.PlanningState) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	value, err := storage.MarshalPlanningState(state)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makePlanningKey(state.SessionId, state.OwnerId)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetPlanningState retrieves the planning state for a session.
// Returns (nil, nil) when no record exists.
func (r *PlanningRepository) GetPlanningState(ctx context.Context, sessionId, ownerId string) (*core.PlanningState, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var state *core.PlanningState
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePlanningKey(sessionId, ownerId))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			state, err = storage.UnmarshalPlanningState(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return state, nil
}
