package repository

import (
	"context"
	"fmt"

	"partshop/background-worker-service/internal/app/background-worker/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type eventArchiveRepository struct {
	collection *mongo.Collection
}

// NewEventArchiveRepository создает архив событий в указанной коллекции
func NewEventArchiveRepository(db *mongo.Database, collection string) EventArchiveRepository {
	return &eventArchiveRepository{collection: db.Collection(collection)}
}

// EnsureIndexes создает индексы архива. Уникальный event_id делает
// повторную доставку сообщения Kafka безопасной.
func (r *eventArchiveRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("event_id_uniq").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetName("product_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "event_type", Value: 1}},
			Options: options.Index().SetName("event_type_idx"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create event archive indexes: %w", err)
	}
	return nil
}

func (r *eventArchiveRepository) Save(ctx context.Context, event *entity.ArchivedEvent) (bool, error) {
	_, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to archive event: %w", err)
	}
	return true, nil
}

func (r *eventArchiveRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}
