package cameratype

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

func cleanLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("%w: camera type label is required", db.ErrInvalidInput)
	}
	return label, nil
}

func (s *Service) Create(ctx context.Context, ct *CameraType) error {
	label, err := cleanLabel(ct.Label)
	if err != nil {
		return err
	}
	ct.Label = label
	ct.Enabled = true
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ct); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.CreateCameraType, ct.ID)
	})
}

func (s *Service) Get(ctx context.Context, id int) (*CameraType, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateLabel(ctx context.Context, id int, label string) error {
	label, err := cleanLabel(label)
	if err != nil {
		return err
	}
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateLabel(ctx, id, label); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.UpdateCameraType, id)
	})
}

func (s *Service) Disable(ctx context.Context, id int) error {
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SetEnabled(ctx, id, false); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.DisableCameraType, id)
	})
}

func (s *Service) List(ctx context.Context, enabledOnly bool) ([]*CameraType, error) {
	return s.repo.List(ctx, enabledOnly)
}

// Page returns the enabled camera types, ordered by label.
func (s *Service) Page(ctx context.Context) (*Page, error) {
	types, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []*CameraType{}
	}
	return &Page{CameraTypes: types}, nil
}
