package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// QuestionRepo implements store.QuestionStore.
type QuestionRepo struct {
	coll *mongo.Collection
}

var _ store.QuestionStore = (*QuestionRepo)(nil)

func questionFilter(contest string, questionID int) bson.D {
	return bson.D{{Key: "contest", Value: contest}, {Key: "question_id", Value: questionID}}
}

func (r *QuestionRepo) UpsertMany(ctx context.Context, contest string, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, len(questions))
	for i, q := range questions {
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "credit", Value: q.Credit},
			{Key: "title", Value: q.Title},
			{Key: "qi", Value: q.QuestionIndex},
			{Key: "update_time", Value: q.UpdateTime},
		}}}
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(questionFilter(contest, q.QuestionID)).
			SetUpdate(update).
			SetUpsert(true)
	}
	_, err := r.coll.BulkWrite(ctx, writes)
	return err
}

func (r *QuestionRepo) FindByContest(ctx context.Context, contest string) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "qi", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "contest", Value: contest}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *QuestionRepo) SetRealTimeCount(ctx context.Context, contest string, questionID int, counts []int) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "real_time_count", Value: counts}}}}
	_, err := r.coll.UpdateOne(ctx, questionFilter(contest, questionID), update)
	return err
}
