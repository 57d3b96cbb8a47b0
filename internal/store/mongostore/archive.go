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

// ArchiveRepo implements store.ArchiveRecordStore.
type ArchiveRepo struct {
	coll *mongo.Collection
}

var _ store.ArchiveRecordStore = (*ArchiveRepo)(nil)

func archiveFilter(contest string, region models.DataRegion, username string) bson.D {
	return bson.D{
		{Key: "contest", Value: contest},
		{Key: "data_region", Value: region},
		{Key: "username", Value: username},
	}
}

func (r *ArchiveRepo) UpsertMany(ctx context.Context, records []models.ContestRecordArchive) error {
	if len(records) == 0 {
		return nil
	}
	models_ := make([]mongo.WriteModel, len(records))
	for i, rec := range records {
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "user_slug", Value: rec.UserSlug},
			{Key: "country_code", Value: rec.CountryCode},
			{Key: "country_name", Value: rec.CountryName},
			{Key: "rank", Value: rec.Rank},
			{Key: "score", Value: rec.Score},
			{Key: "finish_time", Value: rec.FinishTime},
			{Key: "update_time", Value: rec.UpdateTime},
		}}}
		models_[i] = mongo.NewUpdateOneModel().
			SetFilter(archiveFilter(rec.Contest, rec.DataRegion, rec.Username)).
			SetUpdate(update).
			SetUpsert(true)
	}
	_, err := r.coll.BulkWrite(ctx, models_)
	return err
}

// TombstoneSweep deletes rows whose update_time predates olderThan,
// clearing participants who dropped out of the latest ranking fetch.
func (r *ArchiveRepo) TombstoneSweep(ctx context.Context, contest string, region models.DataRegion, olderThan time.Time) (int64, error) {
	filter := bson.D{
		{Key: "contest", Value: contest},
		{Key: "data_region", Value: region},
		{Key: "update_time", Value: bson.D{{Key: "$lt", Value: olderThan}}},
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ArchiveRepo) FindByUser(ctx context.Context, region models.DataRegion, username string, page store.Page) ([]models.ContestRecordArchive, error) {
	filter := bson.D{{Key: "data_region", Value: region}, {Key: "username", Value: username}}
	opts := options.Find().SetSkip(page.Skip).SetLimit(page.Limit).SetSort(bson.D{{Key: "finish_time", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ContestRecordArchive
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArchiveRepo) Count(ctx context.Context, contest string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{{Key: "contest", Value: contest}})
}

func (r *ArchiveRepo) SetRealTimeRank(ctx context.Context, contest string, region models.DataRegion, username string, ranks []int) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "real_time_rank", Value: ranks}}}}
	_, err := r.coll.UpdateOne(ctx, archiveFilter(contest, region, username), update)
	return err
}

// NonZeroScoreParticipants returns a ParticipantKey-projected query: only
// participants with a non-zero score
// need a real_time_rank series computed.
func (r *ArchiveRepo) NonZeroScoreParticipants(ctx context.Context, contest string) ([]store.ParticipantKey, error) {
	filter := bson.D{{Key: "contest", Value: contest}, {Key: "score", Value: bson.D{{Key: "$ne", Value: 0}}}}
	opts := options.Find().SetProjection(bson.D{{Key: "data_region", Value: 1}, {Key: "username", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		DataRegion models.DataRegion `bson:"data_region"`
		Username   string            `bson:"username"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]store.ParticipantKey, len(rows))
	for i, row := range rows {
		out[i] = store.ParticipantKey{DataRegion: row.DataRegion, Username: row.Username}
	}
	return out, nil
}
