package models

import "time"

// DefaultNewUserRating is assigned to any participant not yet present in
// the User store at prediction time.
const DefaultNewUserRating = 1500.0

// User is keyed by (DataRegion, Username) and holds the authoritative
// prior rating consumed by the next contest's predict stage.
type User struct {
	DataRegion           DataRegion `bson:"data_region" json:"dataRegion"`
	Username             string     `bson:"username" json:"username"`
	UserSlug             string     `bson:"user_slug,omitempty" json:"userSlug,omitempty"`
	Rating               float64    `bson:"rating" json:"rating"`
	AttendedContestsCount int       `bson:"attended_contests_count" json:"attendedContestsCount"`
	UpdateTime           time.Time  `bson:"update_time" json:"updateTime"`
}

// NewDefaultUser returns the zero-history user used as a stand-in when a
// participant has no prior record: rating 1500, zero attended contests.
func NewDefaultUser(region DataRegion, username string) User {
	return User{
		DataRegion:            region,
		Username:              username,
		Rating:                DefaultNewUserRating,
		AttendedContestsCount: 0,
	}
}
