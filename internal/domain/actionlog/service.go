package actionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/internal/platform/metrics"
)

// Service is the audit logger. It satisfies action.Recorder.
type Service struct {
	repo    Repository
	metrics *metrics.Metrics
}

var _ action.Recorder = (*Service)(nil)

func NewService(repo Repository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m}
}

// Record appends one entry and returns its id. when is truncated to the
// millisecond, the precision it is stored at. Failures are returned, never
// swallowed.
func (s *Service) Record(ctx context.Context, actorID int, when time.Time, code action.Code, associatedID *int, note *string) (int, error) {
	if actorID <= 0 {
		return 0, fmt.Errorf("%w: actor is required", db.ErrInvalidInput)
	}
	if when.IsZero() {
		return 0, fmt.Errorf("%w: timestamp is required", db.ErrInvalidInput)
	}
	if !code.Known() {
		zerolog.Ctx(ctx).Warn().Int("action_id", int(code)).Msg("recording unknown action code")
	}

	entry := &ActionLog{
		When:         time.UnixMilli(when.UnixMilli()).UTC(),
		StaffID:      actorID,
		ActionID:     code,
		AssociatedID: associatedID,
		Note:         note,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return 0, err
	}
	s.metrics.AuditRecorded(int(code))
	return entry.ID, nil
}

func (s *Service) Get(ctx context.Context, id int) (*ActionLog, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*ActionLog, int, error) {
	return s.repo.List(ctx, limit, offset)
}
