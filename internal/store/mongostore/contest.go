package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// ContestRepo implements store.ContestStore.
type ContestRepo struct {
	coll *mongo.Collection
}

var _ store.ContestStore = (*ContestRepo)(nil)

// Upsert applies the Set-patch-with-on-insert-default pattern from the
// persistence model: every field is set on every call, but predict_time
// is only defaulted (left unset), never overwritten, so an in-flight
// predictContest stamp can't be clobbered by a concurrent metadata
// refresh.
func (r *ContestRepo) Upsert(ctx context.Context, contest *models.Contest) error {
	filter := bson.D{{Key: "title_slug", Value: contest.TitleSlug}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "title", Value: contest.Title},
			{Key: "start_time", Value: contest.StartTime},
			{Key: "duration", Value: contest.Duration},
			{Key: "past", Value: contest.Past},
			{Key: "update_time", Value: contest.UpdateTime},
			{Key: "user_num_us", Value: contest.UserNumUS},
			{Key: "user_num_cn", Value: contest.UserNumCN},
			{Key: "questions", Value: contest.Questions},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "title_slug", Value: contest.TitleSlug},
		}},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *ContestRepo) FindBySlug(ctx context.Context, titleSlug string) (*models.Contest, error) {
	var c models.Contest
	err := r.coll.FindOne(ctx, bson.D{{Key: "title_slug", Value: titleSlug}}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContestRepo) List(ctx context.Context, page store.Page) ([]models.Contest, error) {
	opts := options.Find().SetSkip(page.Skip).SetLimit(page.Limit).SetSort(bson.D{{Key: "start_time", Value: -1}})
	return r.find(ctx, bson.D{}, opts)
}

func (r *ContestRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

func (r *ContestRepo) RecentPast(ctx context.Context, n int) ([]models.Contest, error) {
	opts := options.Find().SetLimit(int64(n)).SetSort(bson.D{{Key: "start_time", Value: -1}})
	return r.find(ctx, bson.D{{Key: "past", Value: true}}, opts)
}

func (r *ContestRepo) Upcoming(ctx context.Context, n int) ([]models.Contest, error) {
	opts := options.Find().SetLimit(int64(n)).SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.find(ctx, bson.D{{Key: "past", Value: false}}, opts)
}

func (r *ContestRepo) UserNumLastTen(ctx context.Context) ([]models.Contest, error) {
	proj := bson.D{
		{Key: "title_slug", Value: 1},
		{Key: "start_time", Value: 1},
		{Key: "user_num_us", Value: 1},
		{Key: "user_num_cn", Value: 1},
	}
	opts := options.Find().SetLimit(10).SetSort(bson.D{{Key: "start_time", Value: -1}}).SetProjection(proj)
	return r.find(ctx, bson.D{}, opts)
}

// StampPredictTime enforces the frozen-predict invariant at the store
// layer: the filter requires predict_time to currently be unset, so a
// racing second call matches zero documents and returns no error.
func (r *ContestRepo) StampPredictTime(ctx context.Context, titleSlug string, at time.Time) error {
	filter := bson.D{
		{Key: "title_slug", Value: titleSlug},
		{Key: "predict_time", Value: bson.D{{Key: "$exists", Value: false}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "predict_time", Value: at}}}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *ContestRepo) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]models.Contest, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Contest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
