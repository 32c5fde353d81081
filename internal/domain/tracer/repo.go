package tracer

import "context"

type Repository interface {
	Create(ctx context.Context, t *Tracer) error
	GetByID(ctx context.Context, id int) (*Tracer, error)
	// Update changes name and order time; the enabled flag is left alone.
	Update(ctx context.Context, t *Tracer) error
	SetEnabled(ctx context.Context, id int, enabled bool) error
	List(ctx context.Context, enabledOnly bool) ([]*Tracer, error)
}
