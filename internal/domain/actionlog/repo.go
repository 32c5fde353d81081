package actionlog

import "context"

// Repository defines the persistence interface for action log entries.
// List returns entries ordered by timestamp, then id.
type Repository interface {
	Create(ctx context.Context, l *ActionLog) error
	GetByID(ctx context.Context, id int) (*ActionLog, error)
	List(ctx context.Context, limit, offset int) ([]*ActionLog, int, error)
}
