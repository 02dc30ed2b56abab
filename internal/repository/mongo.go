package repository

import (
	"context"

	mongoInfra "github.com/RishiKendai/aegis-text/internal/infra/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository holds the database handle the collection repositories share
type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(client *mongoInfra.Client) *MongoRepository {
	return &MongoRepository{db: client.Database}
}

func (r *MongoRepository) Collection(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// Upsert sets fields on the document matching filter, inserting it when absent
func (r *MongoRepository) Upsert(ctx context.Context, collection string, filter, fields interface{}) error {
	_, err := r.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": fields}, options.Update().SetUpsert(true))
	return err
}

// FindOne decodes the first document matching filter into out.
// It returns mongo.ErrNoDocuments when nothing matches.
func (r *MongoRepository) FindOne(ctx context.Context, collection string, filter, out interface{}) error {
	return r.Collection(collection).FindOne(ctx, filter).Decode(out)
}

// FindLatest decodes up to limit documents matching filter, sorted by sortField descending, into out
func (r *MongoRepository) FindLatest(ctx context.Context, collection string, filter interface{}, sortField string, limit int64, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}}).SetLimit(limit)

	cursor, err := r.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}
