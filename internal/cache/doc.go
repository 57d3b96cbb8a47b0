// Package cache provides the in-memory LRU cache used to enforce the
// 36-hour user-rating staleness rule: before refetching a user's current
// rating from an upstream adapter, the lifecycle handlers check this cache
// and skip the fetch if the user's rating was already refreshed recently.
package cache
