package models

import "time"

// ContestRecord holds the fields shared by the predict snapshot and the
// mutable archive record.
type ContestRecord struct {
	Contest     string     `bson:"contest" json:"contest"`
	DataRegion  DataRegion `bson:"data_region" json:"dataRegion"`
	Username    string     `bson:"username" json:"username"`
	UserSlug    string     `bson:"user_slug,omitempty" json:"userSlug,omitempty"`
	CountryCode string     `bson:"country_code,omitempty" json:"countryCode,omitempty"`
	CountryName string     `bson:"country_name,omitempty" json:"countryName,omitempty"`
	Rank        int        `bson:"rank" json:"rank"`
	Score       int        `bson:"score" json:"score"`
	FinishTime  time.Time  `bson:"finish_time" json:"finishTime"`
}

// ContestRecordPredict [(Contest, DataRegion, Username)] is a snapshot
// replaced wholesale by each predict-snapshot fetch until predictContest
// stamps it; once the contest's PredictTime is set the rows are frozen
// and are not overwritten.
type ContestRecordPredict struct {
	ContestRecord         `bson:",inline"`
	OldRating             float64    `bson:"old_rating" json:"oldRating"`
	AttendedContestsCount int        `bson:"attended_contests_count" json:"attendedContestsCount"`
	DeltaRating           *float64   `bson:"delta_rating,omitempty" json:"deltaRating,omitempty"`
	NewRating             *float64   `bson:"new_rating,omitempty" json:"newRating,omitempty"`
	PredictTime           *time.Time `bson:"predict_time,omitempty" json:"predictTime,omitempty"`
}

// IsFinalized reports whether the rating engine has already written back
// this row; predictContest must never mutate a finalized row.
func (p *ContestRecordPredict) IsFinalized() bool {
	return p.PredictTime != nil
}

// ContestRecordArchive [(Contest, DataRegion, Username)] is mutable and
// upserted on every archive refresh; it carries the derived real-time-rank
// vector, a 90-length series recomputed in full on every refresh.
type ContestRecordArchive struct {
	ContestRecord `bson:",inline"`
	RealTimeRank  []int     `bson:"real_time_rank,omitempty" json:"realTimeRank,omitempty"`
	UpdateTime    time.Time `bson:"update_time" json:"updateTime"`
}
