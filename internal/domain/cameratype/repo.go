package cameratype

import "context"

type Repository interface {
	Create(ctx context.Context, ct *CameraType) error
	GetByID(ctx context.Context, id int) (*CameraType, error)
	UpdateLabel(ctx context.Context, id int, label string) error
	SetEnabled(ctx context.Context, id int, enabled bool) error
	// List returns camera types ordered by label.
	List(ctx context.Context, enabledOnly bool) ([]*CameraType, error)
}
