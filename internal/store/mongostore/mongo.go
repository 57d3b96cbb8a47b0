// Package mongostore implements internal/store's repository interfaces
// against go.mongodb.org/mongo-driver, grounded on the driver usage shown
// in the retrieved PRM710-Rankedterview-backend ranking service
// (bson/primitive ObjectIDs, upsert-by-key repositories) generalized to
// this module's natural-key documents (Contest keyed by titleSlug,
// records keyed by (contest, region, username) rather than ObjectID).
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/baoliay2008/lccn-predictor/internal/config"
)

const (
	contestCollection  = "contests"
	predictCollection  = "contest_records_predict"
	archiveCollection  = "contest_records_archive"
	userCollection     = "users"
	questionCollection = "questions"
	submissionColl     = "submissions"
)

// Store bundles the database handle and every per-entity repository.
// Each repository is its own type (ContestRepo, UserRepo, and so on)
// rather than a method set on Store directly, since several interfaces
// share method names (Upsert, Count, FindByContest) that would otherwise
// collide on one receiver type.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Contests    *ContestRepo
	Predicts    *PredictRepo
	Archives    *ArchiveRepo
	Users       *UserRepo
	Questions   *QuestionRepo
	Submissions *SubmissionRepo
	Aggregator  *Aggregator
}

// Dial connects to MongoDB per cfg.MongoDB, pings to fail fast on startup,
// and returns a ready Store. Callers must call Close on shutdown.
func Dial(ctx context.Context, cfg config.MongoDBConfig) (*Store, error) {
	uri := fmt.Sprintf("mongodb://%s:%d", cfg.IP, cfg.Port)
	opts := options.Client().ApplyURI(uri)
	if cfg.Username != "" {
		opts = opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	db := client.Database(cfg.DB)
	return &Store{
		client:      client,
		db:          db,
		Contests:    &ContestRepo{coll: db.Collection(contestCollection)},
		Predicts:    &PredictRepo{coll: db.Collection(predictCollection)},
		Archives:    &ArchiveRepo{coll: db.Collection(archiveCollection)},
		Users:       &UserRepo{coll: db.Collection(userCollection)},
		Questions:   &QuestionRepo{coll: db.Collection(questionCollection)},
		Submissions: &SubmissionRepo{coll: db.Collection(submissionColl)},
		Aggregator:  &Aggregator{coll: db.Collection(submissionColl)},
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// collection exposes the raw handles EnsureIndexes and the native
// aggregation pipeline need.
func (s *Store) collection(name string) *mongo.Collection { return s.db.Collection(name) }

func (s *Store) contests() *mongo.Collection    { return s.collection(contestCollection) }
func (s *Store) predicts() *mongo.Collection    { return s.collection(predictCollection) }
func (s *Store) archives() *mongo.Collection    { return s.collection(archiveCollection) }
func (s *Store) users() *mongo.Collection       { return s.collection(userCollection) }
func (s *Store) questions() *mongo.Collection   { return s.collection(questionCollection) }
func (s *Store) submissions() *mongo.Collection { return s.collection(submissionColl) }
