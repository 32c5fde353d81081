package therapy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/domain/cameratype"
	"github.com/nuclibook/nuclibook/internal/domain/tracer"
	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/internal/platform/render"
)

// TracerLookup resolves tracer references.
type TracerLookup interface {
	GetByID(ctx context.Context, id int) (*tracer.Tracer, error)
}

// CameraTypeLookup resolves camera type references.
type CameraTypeLookup interface {
	GetByID(ctx context.Context, id int) (*cameratype.CameraType, error)
}

type Service struct {
	repo        Repository
	tracers     TracerLookup
	cameraTypes CameraTypeLookup
	audit       action.Recorder
	projector   *Projector
}

func NewService(repo Repository, tracers TracerLookup, cameraTypes CameraTypeLookup, audit action.Recorder, projector *Projector) *Service {
	return &Service{repo: repo, tracers: tracers, cameraTypes: cameraTypes, audit: audit, projector: projector}
}

// SectionInput is one booking pattern section as submitted by a client.
// Sequence numbers are assigned from the position in the submitted list.
type SectionInput struct {
	Busy      bool `json:"busy"`
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
}

func (s *Service) validate(ctx context.Context, t *Therapy) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: therapy name is required", db.ErrInvalidInput)
	}
	if t.TracerID <= 0 {
		return fmt.Errorf("%w: tracer_id is required", db.ErrInvalidInput)
	}
	if t.TracerDose != nil {
		dose := strings.TrimSpace(*t.TracerDose)
		if len(dose) > 32 {
			return fmt.Errorf("%w: tracer_dose is limited to 32 characters", db.ErrInvalidInput)
		}
		if dose == "" {
			t.TracerDose = nil
		} else {
			t.TracerDose = &dose
		}
	}
	tr, err := s.tracers.GetByID(ctx, t.TracerID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: tracer %d does not exist", db.ErrConstraintViolation, t.TracerID)
	}
	if err != nil {
		return err
	}
	t.Tracer = tr
	return nil
}

func (s *Service) Create(ctx context.Context, t *Therapy) error {
	t.Enabled = true
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, t); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, t); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.CreateTherapy, t.ID)
	})
}

func (s *Service) Get(ctx context.Context, id int) (*Therapy, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, enabledOnly bool) ([]*Therapy, error) {
	return s.repo.List(ctx, enabledOnly)
}

// Update writes name, tracer, dose and enabled flag.
func (s *Service) Update(ctx context.Context, t *Therapy) error {
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, t); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.UpdateTherapy, t.ID)
	})
}

func (s *Service) Disable(ctx context.Context, id int) error {
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SetEnabled(ctx, id, false); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.UpdateTherapy, id)
	})
}

// Delete removes the therapy together with its sections, questions and
// camera type links.
func (s *Service) Delete(ctx context.Context, id int) error {
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.DeleteTherapy, id)
	})
}

// ReplaceBookingPattern swaps the whole booking pattern for sections, in order.
func (s *Service) ReplaceBookingPattern(ctx context.Context, id int, in []SectionInput) ([]*BookingPatternSection, error) {
	sections := make([]*BookingPatternSection, len(in))
	for i, sec := range in {
		if sec.MinLength < 0 {
			return nil, fmt.Errorf("%w: section %d: min_length must not be negative", db.ErrInvalidInput, i+1)
		}
		if sec.MinLength > sec.MaxLength {
			return nil, fmt.Errorf("%w: section %d: min_length exceeds max_length", db.ErrInvalidInput, i+1)
		}
		sections[i] = &BookingPatternSection{
			TherapyID: id,
			Sequence:  i + 1,
			Busy:      sec.Busy,
			MinLength: sec.MinLength,
			MaxLength: sec.MaxLength,
		}
	}

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.repo.ReplaceSections(ctx, id, sections); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.SetTherapyBookingPattern, id)
	})
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// ReplacePatientQuestions swaps the screening questions for descriptions, in order.
func (s *Service) ReplacePatientQuestions(ctx context.Context, id int, descriptions []string) ([]*PatientQuestion, error) {
	questions := make([]*PatientQuestion, len(descriptions))
	for i, d := range descriptions {
		d = strings.TrimSpace(d)
		if d == "" {
			return nil, fmt.Errorf("%w: question %d: description is required", db.ErrInvalidInput, i+1)
		}
		questions[i] = &PatientQuestion{TherapyID: id, Sequence: i + 1, Description: d}
	}

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.repo.ReplaceQuestions(ctx, id, questions); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.SetTherapyPatientQuestions, id)
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// SetCameraTypes clears the therapy's camera type links and adds one per id.
// Duplicate ids are linked once.
func (s *Service) SetCameraTypes(ctx context.Context, id int, cameraTypeIDs []int) error {
	seen := make(map[int]bool, len(cameraTypeIDs))
	var ids []int
	for _, ctID := range cameraTypeIDs {
		if ctID <= 0 {
			return fmt.Errorf("%w: invalid camera type id %d", db.ErrInvalidInput, ctID)
		}
		if !seen[ctID] {
			seen[ctID] = true
			ids = append(ids, ctID)
		}
	}

	return db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.repo.ClearCameraTypes(ctx, id); err != nil {
			return err
		}
		for _, ctID := range ids {
			if _, err := s.cameraTypes.GetByID(ctx, ctID); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("%w: camera type %d does not exist", db.ErrConstraintViolation, ctID)
				}
				return err
			}
			if err := s.repo.AddCameraType(ctx, TherapyCameraType{TherapyID: id, CameraTypeID: ctID}); err != nil {
				return err
			}
		}
		return action.Log(ctx, s.audit, action.SetTherapyCameraTypes, id)
	})
}

// -- Projections --

func (s *Service) BookingPattern(ctx context.Context, id int) ([]*BookingPatternSection, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projector.OrderedBookingPattern(ctx, t), nil
}

func (s *Service) PatientQuestions(ctx context.Context, id int) ([]*PatientQuestion, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projector.OrderedPatientQuestions(ctx, t), nil
}

func (s *Service) CameraTypes(ctx context.Context, id int) ([]*cameratype.CameraType, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projector.CameraTypes(ctx, t), nil
}

// Display returns the display-field map of one therapy.
func (s *Service) Display(ctx context.Context, id int) (render.Fields, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projector.Display(ctx, t)
}

// DisplayAll returns display-field maps for every enabled therapy.
func (s *Service) DisplayAll(ctx context.Context) ([]render.Fields, error) {
	therapies, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]render.Fields, 0, len(therapies))
	for _, t := range therapies {
		f, err := s.projector.Display(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
