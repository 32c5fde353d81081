package therapy

import (
	"context"

	"github.com/nuclibook/nuclibook/internal/domain/cameratype"
)

// Relations lists the collections a therapy owns or references.
type Relations interface {
	ListSections(ctx context.Context, therapyID int) ([]*BookingPatternSection, error)
	ListQuestions(ctx context.Context, therapyID int) ([]*PatientQuestion, error)
	ListCameraTypes(ctx context.Context, therapyID int) ([]*cameratype.CameraType, error)
}

// Repository defines the persistence interface for therapies. Deleting a
// therapy removes its sections, questions and camera type links.
type Repository interface {
	Relations

	Create(ctx context.Context, t *Therapy) error
	GetByID(ctx context.Context, id int) (*Therapy, error)
	Update(ctx context.Context, t *Therapy) error
	SetEnabled(ctx context.Context, id int, enabled bool) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, enabledOnly bool) ([]*Therapy, error)

	ReplaceSections(ctx context.Context, therapyID int, sections []*BookingPatternSection) error
	ReplaceQuestions(ctx context.Context, therapyID int, questions []*PatientQuestion) error
	ClearCameraTypes(ctx context.Context, therapyID int) error
	AddCameraType(ctx context.Context, link TherapyCameraType) error
}
