package models

import "time"

// Submission is keyed by (Contest, DataRegion, Username, QuestionID). Date
// is the accepted-submission timestamp; FailCount accumulates wrong
// submissions for the same question before the accepted one.
type Submission struct {
	Contest    string     `bson:"contest" json:"contest"`
	DataRegion DataRegion `bson:"data_region" json:"dataRegion"`
	Username   string     `bson:"username" json:"username"`
	QuestionID int        `bson:"question_id" json:"questionId"`
	Date       time.Time  `bson:"date" json:"date"`
	FailCount  int        `bson:"fail_count" json:"failCount"`
	Credit     int        `bson:"credit" json:"credit"`
	UpdateTime time.Time  `bson:"update_time" json:"updateTime"`
}
