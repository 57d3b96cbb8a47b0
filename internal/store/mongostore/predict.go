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

// PredictRepo implements store.PredictRecordStore.
type PredictRepo struct {
	coll *mongo.Collection
}

var _ store.PredictRecordStore = (*PredictRepo)(nil)

func (r *PredictRepo) DeleteAllForContest(ctx context.Context, contest string, region models.DataRegion) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{
		{Key: "contest", Value: contest},
		{Key: "data_region", Value: region},
	})
	return err
}

func (r *PredictRepo) InsertMany(ctx context.Context, records []models.ContestRecordPredict) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *PredictRepo) NonZeroScoreSortedByRank(ctx context.Context, contest string) ([]models.ContestRecordPredict, error) {
	filter := bson.D{
		{Key: "contest", Value: contest},
		{Key: "score", Value: bson.D{{Key: "$ne", Value: 0}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ContestRecordPredict
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var errAlreadyFinalized = errors.New("mongostore: predict record already finalized")

// WriteBack matches only rows with predict_time unset, enforcing the same
// frozen-predict invariant as ContestRepo.StampPredictTime: a
// re-invocation after the rating engine already ran is a no-op, reported
// as errAlreadyFinalized so the lifecycle handler can distinguish it from
// a genuine store failure.
func (r *PredictRepo) WriteBack(ctx context.Context, contest string, region models.DataRegion, username string, deltaRating, newRating float64, predictTime time.Time) error {
	filter := bson.D{
		{Key: "contest", Value: contest},
		{Key: "data_region", Value: region},
		{Key: "username", Value: username},
		{Key: "predict_time", Value: bson.D{{Key: "$exists", Value: false}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "delta_rating", Value: deltaRating},
		{Key: "new_rating", Value: newRating},
		{Key: "predict_time", Value: predictTime},
	}}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errAlreadyFinalized
	}
	return nil
}

func (r *PredictRepo) FindByUser(ctx context.Context, region models.DataRegion, username string, page store.Page) ([]models.ContestRecordPredict, error) {
	filter := bson.D{{Key: "data_region", Value: region}, {Key: "username", Value: username}}
	opts := options.Find().SetSkip(page.Skip).SetLimit(page.Limit).SetSort(bson.D{{Key: "finish_time", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ContestRecordPredict
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PredictRepo) Count(ctx context.Context, contest string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{{Key: "contest", Value: contest}})
}
