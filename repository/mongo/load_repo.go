package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

const loadsCollection = "loads"

// loadDocument stores a load together with its history so that a status
// change and its audit entry commit in one atomic document update.
type loadDocument struct {
	domain.Load `bson:",inline"`
	History     []domain.LoadEvent `bson:"history"`
}

var withoutHistory = bson.M{"history": 0}

type loadRepository struct {
	db   *mongodrv.Database
	coll *mongodrv.Collection
}

// NewLoadRepository returns a MongoDB-backed LoadRepository.
func NewLoadRepository(db *mongodrv.Database) repository.LoadRepository {
	return &loadRepository{db: db, coll: db.Collection(loadsCollection)}
}

func (r *loadRepository) Create(ctx context.Context, load *domain.Load) (*domain.Load, error) {
	if load == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := load.PrepareForCreate(timeNow()); err != nil {
		return nil, err
	}

	doc := loadDocument{Load: *load, History: []domain.LoadEvent{domain.PostedEvent(load)}}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongodrv.IsDuplicateKeyError(err) {
			return nil, domain.NewError(domain.ErrCodeConflict, "load id already exists")
		}
		return nil, err
	}
	return load, nil
}

func (r *loadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	var load domain.Load
	opts := options.FindOne().SetProjection(withoutHistory)
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&load); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, domain.ErrLoadNotFound
		}
		return nil, err
	}
	return normalize(&load), nil
}

func (r *loadRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Load, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *loadRepository) ListByShipper(ctx context.Context, shipperID string) ([]domain.Load, error) {
	return r.find(ctx, bson.M{"shipper_id": shipperID})
}

func (r *loadRepository) ListByLoader(ctx context.Context, loaderID string, statuses ...domain.Status) ([]domain.Load, error) {
	filter := bson.M{"assigned_loader_id": loaderID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter)
}

// CompareAndSetStatus filters on the expected status inside FindOneAndUpdate,
// which MongoDB applies atomically to the single document.
func (r *loadRepository) CompareAndSetStatus(ctx context.Context, change domain.StatusChange) (*domain.Load, error) {
	if change.At.IsZero() {
		change.At = timeNow()
	}

	set := bson.M{
		"status":            change.To,
		"status_changed_at": domain.Stamp(change.At),
	}
	if change.LoaderID != "" {
		set["assigned_loader_id"] = change.LoaderID
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": domain.EventFor(change)},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutHistory)

	var load domain.Load
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": change.LoadID, "status": change.From}, update, opts).Decode(&load)
	if err == nil {
		return normalize(&load), nil
	}
	if !errors.Is(err, mongodrv.ErrNoDocuments) {
		return nil, err
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": change.LoadID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrStatusConflict
	}
	return nil, domain.ErrLoadNotFound
}

func (r *loadRepository) History(ctx context.Context, loadID string) ([]domain.LoadEvent, error) {
	var doc struct {
		History []domain.LoadEvent `bson:"history"`
	}
	opts := options.FindOne().SetProjection(bson.M{"history": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": loadID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, domain.ErrLoadNotFound
		}
		return nil, err
	}
	for i := range doc.History {
		doc.History[i].CreatedAt = doc.History[i].CreatedAt.UTC()
	}
	return doc.History, nil
}

func (r *loadRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func (r *loadRepository) find(ctx context.Context, filter bson.M) ([]domain.Load, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "posted_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(withoutHistory)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	loads := make([]domain.Load, 0)
	if err := cursor.All(ctx, &loads); err != nil {
		return nil, err
	}
	for i := range loads {
		normalize(&loads[i])
	}
	return loads, nil
}

func normalize(load *domain.Load) *domain.Load {
	load.PostedAt = load.PostedAt.UTC()
	load.StatusChangedAt = load.StatusChangedAt.UTC()
	return load
}
