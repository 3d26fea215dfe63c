package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/truckmitra/backend/domain"
)

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongodrv.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	_, err := db.Collection(loadsCollection).Indexes().CreateMany(ctx, []mongodrv.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "posted_at", Value: -1}}},
		{Keys: bson.D{{Key: "shipper_id", Value: 1}, {Key: "posted_at", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_loader_id", Value: 1}, {Key: "posted_at", Value: -1}}},
	})
	return err
}

func timeNow() time.Time {
	return domain.Stamp(time.Now())
}
