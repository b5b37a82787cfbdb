package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	reservationserrors "github.com/timschopinski/hotel-management-system/internal/reservations/errors"
	"github.com/timschopinski/hotel-management-system/pkg/config"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

const LockCollectionName = "reservation_locks"

// LockRepository persists per-room advisory locks. Mutual exclusion comes
// from the unique _id constraint: only one insert for a given room can
// succeed at a time.
type LockRepository interface {
	Create(ctx context.Context, lock *model.ReservationLock) error
	Delete(ctx context.Context, lockID string) error
}

type mongoLockRepository struct {
	collection *mongo.Collection
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoLockRepository) Create(ctx context.Context, lock *model.ReservationLock) error {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reservationserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to create reservation lock: %w", err)
	}

	return nil
}

func (r *mongoLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	if err != nil {
		return fmt.Errorf("failed to delete reservation lock: %w", err)
	}
	return nil
}
