package tracer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/platform/db"
)

type Service struct {
	repo  Repository
	audit action.Recorder
}

func NewService(repo Repository, audit action.Recorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func validate(t *Tracer) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: tracer name is required", db.ErrInvalidInput)
	}
	if t.OrderTime < 0 {
		return fmt.Errorf("%w: order_time must not be negative", db.ErrInvalidInput)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, t *Tracer) error {
	if err := validate(t); err != nil {
		return err
	}
	t.Enabled = true
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.CreateTracer, t.ID)
	})
}

func (s *Service) Get(ctx context.Context, id int) (*Tracer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, t *Tracer) error {
	if err := validate(t); err != nil {
		return err
	}
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.UpdateTracer, t.ID)
	})
}

func (s *Service) Disable(ctx context.Context, id int) error {
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SetEnabled(ctx, id, false); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.DisableTracer, id)
	})
}

func (s *Service) List(ctx context.Context, enabledOnly bool) ([]*Tracer, error) {
	return s.repo.List(ctx, enabledOnly)
}
