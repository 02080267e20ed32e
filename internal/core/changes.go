package core

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kanbancore/pkg/domain"
)

// ChangeSink receives the changes of every committed transaction. Sink errors
// are logged by the service and never fail the mutation.
type ChangeSink interface {
	Publish(ctx context.Context, changes []domain.Change) error
}

// LogChangeSink writes one debug entry per change.
type LogChangeSink struct {
	logger *zap.Logger
}

// NewLogChangeSink constructs a sink writing to logger.
func NewLogChangeSink(logger *zap.Logger) *LogChangeSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogChangeSink{logger: logger}
}

// Publish implements ChangeSink.
func (s *LogChangeSink) Publish(_ context.Context, changes []domain.Change) error {
	for _, c := range changes {
		s.logger.Debug("entity changed",
			zap.String("entity", string(c.Entity)),
			zap.String("action", string(c.Action)),
			zap.String("id", c.ID),
		)
	}
	return nil
}

// MultiChangeSink fans changes out to every sink and joins their errors.
type MultiChangeSink []ChangeSink

// Publish implements ChangeSink.
func (m MultiChangeSink) Publish(ctx context.Context, changes []domain.Change) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, changes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
