package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

const loadColumns = `id, shipper_id, origin, destination, material_type, weight, description, status, assigned_loader_id, posted_at, status_changed_at`

type loadRepository struct {
	pool *pgxpool.Pool
}

// NewLoadRepository returns a Postgres-backed implementation of LoadRepository.
func NewLoadRepository(pool *pgxpool.Pool) repository.LoadRepository {
	return &loadRepository{pool: pool}
}

func (r *loadRepository) Create(ctx context.Context, load *domain.Load) (*domain.Load, error) {
	if load == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := load.PrepareForCreate(timeNow()); err != nil {
		return nil, err
	}

	const query = `
	INSERT INTO loads (` + loadColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9, $10)
	`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			load.ID,
			load.ShipperID,
			load.Origin,
			load.Destination,
			load.MaterialType,
			load.Weight,
			load.Description,
			string(load.Status),
			load.PostedAt,
			load.StatusChangedAt,
		); err != nil {
			return err
		}
		return insertEvent(ctx, tx, domain.PostedEvent(load))
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, domain.Validation("shipper_id", "shipper does not exist")
		}
		return nil, err
	}
	return load, nil
}

func (r *loadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	const query = `SELECT ` + loadColumns + ` FROM loads WHERE id = $1`
	return scanLoad(r.pool.QueryRow(ctx, query, id))
}

func (r *loadRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Load, error) {
	const query = `
	SELECT ` + loadColumns + `
	FROM loads
	WHERE status = $1
	ORDER BY posted_at DESC, id DESC
	`
	return r.list(ctx, query, string(status))
}

func (r *loadRepository) ListByShipper(ctx context.Context, shipperID string) ([]domain.Load, error) {
	const query = `
	SELECT ` + loadColumns + `
	FROM loads
	WHERE shipper_id = $1
	ORDER BY posted_at DESC, id DESC
	`
	return r.list(ctx, query, shipperID)
}

func (r *loadRepository) ListByLoader(ctx context.Context, loaderID string, statuses ...domain.Status) ([]domain.Load, error) {
	const query = `
	SELECT ` + loadColumns + `
	FROM loads
	WHERE assigned_loader_id = $1
	  AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
	ORDER BY posted_at DESC, id DESC
	`
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}
	return r.list(ctx, query, loaderID, filter)
}

// CompareAndSetStatus relies on the row lock taken by UPDATE: a concurrent
// writer blocks, then re-checks the status predicate against the committed row
// and matches nothing.
func (r *loadRepository) CompareAndSetStatus(ctx context.Context, change domain.StatusChange) (*domain.Load, error) {
	const update = `
	UPDATE loads
	SET status = $3,
		assigned_loader_id = COALESCE($4, assigned_loader_id),
		status_changed_at = $5
	WHERE id = $1 AND status = $2
	RETURNING ` + loadColumns

	const exists = `SELECT EXISTS (SELECT 1 FROM loads WHERE id = $1)`

	if change.At.IsZero() {
		change.At = timeNow()
	}

	var committed *domain.Load
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		load, err := scanLoad(tx.QueryRow(ctx, update,
			change.LoadID,
			string(change.From),
			string(change.To),
			nullString(change.LoaderID),
			change.At.UTC(),
		))
		if err != nil {
			if !errors.Is(err, domain.ErrLoadNotFound) {
				return err
			}
			var found bool
			if err := tx.QueryRow(ctx, exists, change.LoadID).Scan(&found); err != nil {
				return err
			}
			if found {
				return domain.ErrStatusConflict
			}
			return domain.ErrLoadNotFound
		}
		if err := insertEvent(ctx, tx, domain.EventFor(change)); err != nil {
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
	if _, err := r.GetByID(ctx, loadID); err != nil {
		return nil, err
	}

	const query = `
	SELECT id, load_id, event, COALESCE(from_status, ''), to_status, actor_id, created_at
	FROM load_events
	WHERE load_id = $1
	ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, loadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.LoadEvent
	for rows.Next() {
		var (
			event          domain.LoadEvent
			name, from, to string
		)
		if err := rows.Scan(&event.ID, &event.LoadID, &name, &from, &to, &event.ActorID, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.Event = domain.Event(name)
		event.From = domain.Status(from)
		event.To = domain.Status(to)
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *loadRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *loadRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Load, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := make([]domain.Load, 0)
	for rows.Next() {
		load, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		loads = append(loads, *load)
	}
	return loads, rows.Err()
}

func insertEvent(ctx context.Context, tx pgx.Tx, event domain.LoadEvent) error {
	const query = `
	INSERT INTO load_events (id, load_id, event, from_status, to_status, actor_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, query,
		event.ID,
		event.LoadID,
		string(event.Event),
		nullString(string(event.From)),
		string(event.To),
		event.ActorID,
		event.CreatedAt,
	)
	return err
}

func scanLoad(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Load, error) {
	var (
		load   domain.Load
		status string
	)

	if err := row.Scan(
		&load.ID,
		&load.ShipperID,
		&load.Origin,
		&load.Destination,
		&load.MaterialType,
		&load.Weight,
		&load.Description,
		&status,
		&load.AssignedLoaderID,
		&load.PostedAt,
		&load.StatusChangedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoadNotFound
		}
		return nil, err
	}

	load.Status = domain.Status(status)
	load.PostedAt = load.PostedAt.UTC()
	load.StatusChangedAt = load.StatusChangedAt.UTC()
	return &load, nil
}
