package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// UserRepo implements store.UserStore.
type UserRepo struct {
	coll *mongo.Collection
}

var _ store.UserStore = (*UserRepo)(nil)

func userFilter(region models.DataRegion, username string) bson.D {
	return bson.D{
		{Key: "data_region", Value: region},
		{Key: "username", Value: username},
	}
}

func (r *UserRepo) Upsert(ctx context.Context, user *models.User) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "user_slug", Value: user.UserSlug},
		{Key: "rating", Value: user.Rating},
		{Key: "attended_contests_count", Value: user.AttendedContestsCount},
		{Key: "update_time", Value: user.UpdateTime},
	}}}
	_, err := r.coll.UpdateOne(ctx, userFilter(user.DataRegion, user.Username), update, options.Update().SetUpsert(true))
	return err
}

func (r *UserRepo) Find(ctx context.Context, region models.DataRegion, username string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, userFilter(region, username)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOrDefault returns models.NewDefaultUser when the user has no prior
// record, the rating-1500/zero-attended stand-in the rating engine uses
// for first-time participants.
func (r *UserRepo) FindOrDefault(ctx context.Context, region models.DataRegion, username string) (models.User, error) {
	u, err := r.Find(ctx, region, username)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.NewDefaultUser(region, username), nil
	}
	return *u, nil
}
