// Package lifecycle implements the contest lifecycle handlers:
// recurring, idempotent operations composed by the scheduler into
// weekly/biweekly prediction and archive pipelines.
package lifecycle

import (
	"context"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
)

// Job is a named, restartable unit of lifecycle work.
type Job func(ctx context.Context) error

// Reraise logs entry/success/failure and propagates the error: used for
// primary pipeline stages so the scheduler observes the failure and can
// surface it.
func Reraise(name string, fn Job) Job {
	return func(ctx context.Context) error {
		logging.Info().Str("job", name).Msg("job started")
		if err := fn(ctx); err != nil {
			logging.Error().Str("job", name).Err(err).Msg("job failed")
			return err
		}
		logging.Info().Str("job", name).Msg("job finished")
		return nil
	}
}

// Silence logs entry/success/failure but swallows the error, used for
// best-effort stages (e.g. user-rating refresh) where a partial failure
// must not abort the enclosing handler.
func Silence(name string, fn Job) Job {
	return func(ctx context.Context) error {
		logging.Info().Str("job", name).Msg("job started")
		if err := fn(ctx); err != nil {
			logging.Error().Str("job", name).Err(err).Msg("job failed, silenced")
			return nil
		}
		logging.Info().Str("job", name).Msg("job finished")
		return nil
	}
}
