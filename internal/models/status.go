package models

// PredictionStatus tracks a contest's progress through the finalization
// chain. It exists mainly for observability: the pipeline itself drives
// off Contest.PredictTime, not this field.
type PredictionStatus string

const (
	PredictionOngoing PredictionStatus = "Ongoing"
	PredictionPassed  PredictionStatus = "Passed"
	PredictionFailed  PredictionStatus = "Failed"
)
