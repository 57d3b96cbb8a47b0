package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// Aggregator implements store.SubmissionAggregator against the native
// driver's aggregation pipeline, the store-side twin of
// internal/reconstruct's pure-Go replay; cmd/server hands this one to the
// lifecycle handlers, so submissions are aggregated in the store instead
// of being pulled into memory.
type Aggregator struct {
	coll *mongo.Collection
}

var _ store.SubmissionAggregator = (*Aggregator)(nil)

// rankAtTimePointPipeline mirrors compute.go's RankAtTimePoint exactly:
// group by (username, dataRegion) over submissions with date <= t, sum
// credit and failCount, take the latest accepted date, derive
// penaltyDate = latestDate + 5*failCountSum minutes via $dateAdd, then
// sort by (creditSum desc, penaltyDate asc). Dense-rank tie handling and
// the lastRank+1 absentee rule are applied by the caller after this
// pipeline returns the sorted group, since $setWindowFields rank
// functions don't express the tie-sharing semantics this aggregation requires
// without an additional pass.
func rankAtTimePointPipeline(contest string, region models.DataRegion, t time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "contest", Value: contest},
			{Key: "data_region", Value: region},
			{Key: "date", Value: bson.D{{Key: "$lte", Value: t}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "username", Value: "$username"}, {Key: "dataRegion", Value: "$data_region"}}},
			{Key: "creditSum", Value: bson.D{{Key: "$sum", Value: "$credit"}}},
			{Key: "failCountSum", Value: bson.D{{Key: "$sum", Value: "$fail_count"}}},
			{Key: "latestDate", Value: bson.D{{Key: "$max", Value: "$date"}}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "penaltyDate", Value: bson.D{{Key: "$dateAdd", Value: bson.D{
				{Key: "startDate", Value: "$latestDate"},
				{Key: "unit", Value: "minute"},
				{Key: "amount", Value: bson.D{{Key: "$multiply", Value: bson.A{"$failCountSum", 5}}}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "creditSum", Value: -1},
			{Key: "penaltyDate", Value: 1},
		}}},
	}
}

type rankGroupRow struct {
	ID struct {
		Username   string            `bson:"username"`
		DataRegion models.DataRegion `bson:"dataRegion"`
	} `bson:"_id"`
	CreditSum    int       `bson:"creditSum"`
	FailCountSum int       `bson:"failCountSum"`
	PenaltyDate  time.Time `bson:"penaltyDate"`
}

// RankAtTimePoint runs rankAtTimePointPipeline and applies the
// tie-sharing dense rank: rows with identical (creditSum, penaltyDate)
// share the first rank in their tie-group, and rawRank still advances per
// row for the next distinct group.
func (a *Aggregator) RankAtTimePoint(ctx context.Context, contest string, region models.DataRegion, t time.Time) (map[string]int, error) {
	cur, err := a.coll.Aggregate(ctx, rankAtTimePointPipeline(contest, region, t))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []rankGroupRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	ranks := make(map[string]int, len(rows))
	rawRank := 0
	var prevCredit = -1
	var prevPenalty time.Time
	tieRank := 0
	for _, row := range rows {
		rawRank++
		if rawRank == 1 || row.CreditSum != prevCredit || !row.PenaltyDate.Equal(prevPenalty) {
			tieRank = rawRank
		}
		ranks[row.ID.Username] = tieRank
		prevCredit = row.CreditSum
		prevPenalty = row.PenaltyDate
	}
	return ranks, nil
}

// questionFinishCountRow is the $group output row for one question.
type questionFinishCountRow struct {
	ID    int `bson:"_id"`
	Count int `bson:"count"`
}

// questionFinishCountsPipeline counts accepted submissions with
// date <= t per question, no penalty offset applied.
func questionFinishCountsPipeline(contest string, region models.DataRegion, t time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "contest", Value: contest},
			{Key: "data_region", Value: region},
			{Key: "date", Value: bson.D{{Key: "$lte", Value: t}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$question_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func (a *Aggregator) QuestionFinishCounts(ctx context.Context, contest string, region models.DataRegion, t time.Time) (map[int]int, error) {
	cur, err := a.coll.Aggregate(ctx, questionFinishCountsPipeline(contest, region, t))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []questionFinishCountRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}
