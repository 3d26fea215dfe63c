package bolt

import (
	"context"
	"encoding/json"

	bbolt "go.etcd.io/bbolt"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

type loadRepository struct {
	db *bbolt.DB
}

// NewLoadRepository returns a bbolt-backed LoadRepository.
func NewLoadRepository(db *bbolt.DB) repository.LoadRepository {
	return &loadRepository{db: db}
}

func (r *loadRepository) Create(ctx context.Context, load *domain.Load) (*domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := load.PrepareForCreate(timeNow()); err != nil {
		return nil, err
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		loads := tx.Bucket(loadsBucket)
		if loads.Get([]byte(load.ID)) != nil {
			return domain.NewError(domain.ErrCodeConflict, "load id already exists")
		}
		if err := putJSON(loads, []byte(load.ID), load); err != nil {
			return err
		}
		return appendEvent(tx, domain.PostedEvent(load))
	})
	if err != nil {
		return nil, err
	}
	return load, nil
}

func (r *loadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var load *domain.Load
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		load, err = getLoad(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return load, nil
}

func (r *loadRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Load, error) {
	return r.filter(ctx, func(l *domain.Load) bool { return l.Status == status })
}

func (r *loadRepository) ListByShipper(ctx context.Context, shipperID string) ([]domain.Load, error) {
	return r.filter(ctx, func(l *domain.Load) bool { return l.ShipperID == shipperID })
}

func (r *loadRepository) ListByLoader(ctx context.Context, loaderID string, statuses ...domain.Status) ([]domain.Load, error) {
	return r.filter(ctx, func(l *domain.Load) bool {
		return l.AssignedTo() == loaderID && repository.MatchStatus(l.Status, statuses)
	})
}

func (r *loadRepository) CompareAndSetStatus(ctx context.Context, change domain.StatusChange) (*domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if change.At.IsZero() {
		change.At = timeNow()
	}

	var committed *domain.Load
	err := r.db.Update(func(tx *bbolt.Tx) error {
		load, err := getLoad(tx, change.LoadID)
		if err != nil {
			return err
		}
		if load.Status != change.From {
			return domain.ErrStatusConflict
		}
		load.Apply(change)
		if err := putJSON(tx.Bucket(loadsBucket), []byte(load.ID), load); err != nil {
			return err
		}
		if err := appendEvent(tx, domain.EventFor(change)); err != nil {
			return err
		}
		committed = load
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

func (r *loadRepository) History(ctx context.Context, loadID string) ([]domain.LoadEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	events := make([]domain.LoadEvent, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(loadsBucket).Get([]byte(loadID)) == nil {
			return domain.ErrLoadNotFound
		}
		bucket := tx.Bucket(eventsBucket).Bucket([]byte(loadID))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var event domain.LoadEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *loadRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(loadsBucket) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
}

func (r *loadRepository) filter(ctx context.Context, keep func(*domain.Load) bool) ([]domain.Load, error) {
	loads := make([]domain.Load, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(loadsBucket).ForEach(func(_, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var load domain.Load
			if err := json.Unmarshal(v, &load); err != nil {
				return err
			}
			if keep(&load) {
				loads = append(loads, load)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	repository.SortNewestFirst(loads)
	return loads, nil
}

func getLoad(tx *bbolt.Tx, id string) (*domain.Load, error) {
	raw := tx.Bucket(loadsBucket).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrLoadNotFound
	}
	var load domain.Load
	if err := json.Unmarshal(raw, &load); err != nil {
		return nil, err
	}
	return &load, nil
}

func appendEvent(tx *bbolt.Tx, event domain.LoadEvent) error {
	bucket, err := tx.Bucket(eventsBucket).CreateBucketIfNotExists([]byte(event.LoadID))
	if err != nil {
		return err
	}
	seq, err := bucket.NextSequence()
	if err != nil {
		return err
	}
	return putJSON(bucket, sequenceKey(seq), event)
}

func putJSON(bucket *bbolt.Bucket, key []byte, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return bucket.Put(key, payload)
}
