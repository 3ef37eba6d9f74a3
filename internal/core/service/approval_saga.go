package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/pkg/metrics"
)

// compensation undoes one committed step of a multi-write operation.
type compensation struct {
	step string
	undo func(ctx context.Context) error
}

// saga collects compensations as steps commit and, on abort, runs them in
// reverse order. Compensations run on a context detached from the caller's
// cancellation so a dropped client cannot strand a half-applied approval.
type saga struct {
	requestID string
	steps     []compensation
	log       zerolog.Logger
}

func newSaga(requestID string, log zerolog.Logger) *saga {
	return &saga{requestID: requestID, log: log}
}

// committed registers the undo action for a step that has been written.
func (s *saga) committed(step string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, compensation{step: step, undo: undo})
}

// abort compensates every committed step and returns cause unchanged.
func (s *saga) abort(ctx context.Context, cause error) error {
	ctx = context.WithoutCancel(ctx)
	for i := len(s.steps) - 1; i >= 0; i-- {
		c := s.steps[i]
		if err := c.undo(ctx); err != nil {
			metrics.CompensationsTotal.WithLabelValues(c.step, "failed").Inc()
			s.log.Error().Err(err).
				Str("request_id", s.requestID).
				Str("step", c.step).
				AnErr("cause", cause).
				Msg("compensation failed, manual repair needed")
			continue
		}
		metrics.CompensationsTotal.WithLabelValues(c.step, "ok").Inc()
		s.log.Warn().
			Str("request_id", s.requestID).
			Str("step", c.step).
			AnErr("cause", cause).
			Msg("step compensated")
	}
	s.steps = nil
	return cause
}
