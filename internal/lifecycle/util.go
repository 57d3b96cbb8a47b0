package lifecycle

import "time"

// epochSeconds converts an upstream epoch-seconds timestamp to UTC.
func epochSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
