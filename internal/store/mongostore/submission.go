package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// SubmissionRepo implements store.SubmissionStore.
type SubmissionRepo struct {
	coll *mongo.Collection
}

var _ store.SubmissionStore = (*SubmissionRepo)(nil)

func submissionFilter(sub *models.Submission) bson.D {
	return bson.D{
		{Key: "contest", Value: sub.Contest},
		{Key: "data_region", Value: sub.DataRegion},
		{Key: "username", Value: sub.Username},
		{Key: "question_id", Value: sub.QuestionID},
	}
}

// Merge upserts a submission, combining FailCount via $inc and keeping
// the latest accepted Date via $max, per saveSubmission's merge contract
// ("merging per-user failCount and accepted date per question").
func (r *SubmissionRepo) Merge(ctx context.Context, sub *models.Submission) error {
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "fail_count", Value: sub.FailCount}}},
		{Key: "$max", Value: bson.D{{Key: "date", Value: sub.Date}}},
		{Key: "$set", Value: bson.D{
			{Key: "credit", Value: sub.Credit},
			{Key: "update_time", Value: sub.UpdateTime},
		}},
	}
	_, err := r.coll.UpdateOne(ctx, submissionFilter(sub), update, options.Update().SetUpsert(true))
	return err
}

func (r *SubmissionRepo) FindByContest(ctx context.Context, contest string) ([]models.Submission, error) {
	cur, err := r.coll.Find(ctx, bson.D{{Key: "contest", Value: contest}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Submission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SubmissionRepo) TombstoneSweep(ctx context.Context, contest string, olderThan time.Time) (int64, error) {
	filter := bson.D{
		{Key: "contest", Value: contest},
		{Key: "update_time", Value: bson.D{{Key: "$lt", Value: olderThan}}},
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
