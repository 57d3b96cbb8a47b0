package models

import "time"

// Contest is keyed by TitleSlug. PredictTime is nil until predictContest
// has run exactly once for this contest; once set it is never cleared.
type Contest struct {
	TitleSlug      string     `bson:"title_slug" json:"titleSlug"`
	Title          string     `bson:"title" json:"title"`
	StartTime      time.Time  `bson:"start_time" json:"startTime"`
	Duration       int64      `bson:"duration" json:"duration"` // seconds
	Past           bool       `bson:"past" json:"past"`
	UpdateTime     time.Time  `bson:"update_time" json:"updateTime"`
	PredictTime    *time.Time `bson:"predict_time,omitempty" json:"predictTime,omitempty"`
	UserNumUS      int        `bson:"user_num_us,omitempty" json:"userNumUS,omitempty"`
	UserNumCN      int        `bson:"user_num_cn,omitempty" json:"userNumCN,omitempty"`
	Questions      []Question `bson:"questions,omitempty" json:"questions,omitempty"`
}

// EndTime is derived, never stored independently: endTime = startTime +
// duration is an invariant enforced by construction, not by a setter.
func (c *Contest) EndTime() time.Time {
	return c.StartTime.Add(time.Duration(c.Duration) * time.Second)
}

// IsPredicted reports whether predictContest has already stamped this
// contest; lifecycle handlers use this to make predictContest idempotent.
func (c *Contest) IsPredicted() bool {
	return c.PredictTime != nil
}

// IsBiweekly reports whether this contest is a biweekly contest based on
// its slug prefix, matching the upstream naming convention
// ("biweekly-contest-NNN" vs "weekly-contest-NNN").
func (c *Contest) IsBiweekly() bool {
	return len(c.TitleSlug) >= 9 && c.TitleSlug[:9] == "biweekly-"
}
