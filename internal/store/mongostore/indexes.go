package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates every index named in the persistence model: one
// per collection, matching the natural keys the repositories query by.
// Safe to call on every startup; CreateMany is a no-op for indexes that
// already exist with the same keys.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	groups := []struct {
		coll    *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{
			coll: s.contests(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "title_slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
		{
			coll: s.predicts(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "contest", Value: 1},
					{Key: "username", Value: 1},
					{Key: "user_slug", Value: 1},
					{Key: "rank", Value: 1},
					{Key: "data_region", Value: 1},
				}},
			},
		},
		{
			coll: s.archives(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "contest", Value: 1},
					{Key: "username", Value: 1},
					{Key: "user_slug", Value: 1},
					{Key: "rank", Value: 1},
					{Key: "data_region", Value: 1},
				}},
			},
		},
		{
			coll: s.questions(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "contest", Value: 1}, {Key: "question_id", Value: 1}}},
			},
		},
		{
			coll: s.submissions(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "contest", Value: 1},
					{Key: "username", Value: 1},
					{Key: "data_region", Value: 1},
					{Key: "question_id", Value: 1},
					{Key: "date", Value: 1},
				}},
			},
		},
		{
			coll: s.users(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "username", Value: 1},
					{Key: "user_slug", Value: 1},
					{Key: "data_region", Value: 1},
					{Key: "rating", Value: 1},
				}},
			},
		},
	}

	for _, g := range groups {
		if _, err := g.coll.Indexes().CreateMany(ctx, g.indexes); err != nil {
			return err
		}
	}
	return nil
}
