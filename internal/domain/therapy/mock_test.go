package therapy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/domain/cameratype"
	"github.com/nuclibook/nuclibook/internal/domain/tracer"
	"github.com/nuclibook/nuclibook/internal/platform/db"
)

// -- Mock Repositories --

type mockRepo struct {
	therapies map[int]*Therapy
	sections  map[int][]*BookingPatternSection
	questions map[int][]*PatientQuestion
	links     map[int][]int
	tracers   *mockTracers
	cameras   *mockCameraTypes
	nextID    int

	sectionsErr  error
	questionsErr error
	camerasErr   error
}

func newMockRepo(tracers *mockTracers, cameras *mockCameraTypes) *mockRepo {
	return &mockRepo{
		therapies: make(map[int]*Therapy),
		sections:  make(map[int][]*BookingPatternSection),
		questions: make(map[int][]*PatientQuestion),
		links:     make(map[int][]int),
		tracers:   tracers,
		cameras:   cameras,
	}
}

func (m *mockRepo) Create(_ context.Context, t *Therapy) error {
	if _, ok := m.tracers.tracers[t.TracerID]; !ok {
		return fmt.Errorf("%w: tracer fk", db.ErrConstraintViolation)
	}
	m.nextID++
	t.ID = m.nextID
	cp := *t
	cp.Tracer = nil
	m.therapies[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Therapy, error) {
	t, ok := m.therapies[id]
	if !ok {
		return nil, fmt.Errorf("therapy %d: %w", id, db.ErrNotFound)
	}
	cp := *t
	if tr, ok := m.tracers.tracers[t.TracerID]; ok {
		trCopy := *tr
		cp.Tracer = &trCopy
	}
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, t *Therapy) error {
	if _, ok := m.therapies[t.ID]; !ok {
		return fmt.Errorf("therapy %d: %w", t.ID, db.ErrNotFound)
	}
	cp := *t
	cp.Tracer = nil
	m.therapies[t.ID] = &cp
	return nil
}

func (m *mockRepo) SetEnabled(_ context.Context, id int, enabled bool) error {
	t, ok := m.therapies[id]
	if !ok {
		return fmt.Errorf("therapy %d: %w", id, db.ErrNotFound)
	}
	t.Enabled = enabled
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.therapies[id]; !ok {
		return fmt.Errorf("therapy %d: %w", id, db.ErrNotFound)
	}
	delete(m.therapies, id)
	delete(m.sections, id)
	delete(m.questions, id)
	delete(m.links, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, enabledOnly bool) ([]*Therapy, error) {
	var out []*Therapy
	for id, t := range m.therapies {
		if enabledOnly && !t.Enabled {
			continue
		}
		cp, _ := m.GetByID(ctx, id)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepo) ListSections(_ context.Context, therapyID int) ([]*BookingPatternSection, error) {
	if m.sectionsErr != nil {
		return nil, m.sectionsErr
	}
	return append([]*BookingPatternSection(nil), m.sections[therapyID]...), nil
}

func (m *mockRepo) ListQuestions(_ context.Context, therapyID int) ([]*PatientQuestion, error) {
	if m.questionsErr != nil {
		return nil, m.questionsErr
	}
	return append([]*PatientQuestion(nil), m.questions[therapyID]...), nil
}

func (m *mockRepo) ListCameraTypes(ctx context.Context, therapyID int) ([]*cameratype.CameraType, error) {
	if m.camerasErr != nil {
		return nil, m.camerasErr
	}
	var out []*cameratype.CameraType
	for _, id := range m.links[therapyID] {
		ct, err := m.cameras.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, nil
}

func (m *mockRepo) ReplaceSections(_ context.Context, therapyID int, sections []*BookingPatternSection) error {
	for i, s := range sections {
		s.ID = i + 1
		s.TherapyID = therapyID
	}
	m.sections[therapyID] = sections
	return nil
}

func (m *mockRepo) ReplaceQuestions(_ context.Context, therapyID int, questions []*PatientQuestion) error {
	for i, q := range questions {
		q.ID = i + 1
		q.TherapyID = therapyID
	}
	m.questions[therapyID] = questions
	return nil
}

func (m *mockRepo) ClearCameraTypes(_ context.Context, therapyID int) error {
	delete(m.links, therapyID)
	return nil
}

func (m *mockRepo) AddCameraType(_ context.Context, link TherapyCameraType) error {
	for _, id := range m.links[link.TherapyID] {
		if id == link.CameraTypeID {
			return fmt.Errorf("%w: duplicate link", db.ErrConstraintViolation)
		}
	}
	m.links[link.TherapyID] = append(m.links[link.TherapyID], link.CameraTypeID)
	return nil
}

type mockTracers struct {
	tracers map[int]*tracer.Tracer
}

func (m *mockTracers) GetByID(_ context.Context, id int) (*tracer.Tracer, error) {
	tr, ok := m.tracers[id]
	if !ok {
		return nil, fmt.Errorf("tracer %d: %w", id, db.ErrNotFound)
	}
	cp := *tr
	return &cp, nil
}

type mockCameraTypes struct {
	types map[int]*cameratype.CameraType
}

func (m *mockCameraTypes) GetByID(_ context.Context, id int) (*cameratype.CameraType, error) {
	ct, ok := m.types[id]
	if !ok {
		return nil, fmt.Errorf("camera type %d: %w", id, db.ErrNotFound)
	}
	cp := *ct
	return &cp, nil
}

type recordedAction struct {
	code  action.Code
	assoc int
}

type mockRecorder struct {
	entries []recordedAction
}

func (m *mockRecorder) Record(_ context.Context, _ int, _ time.Time, code action.Code, associatedID *int, _ *string) (int, error) {
	m.entries = append(m.entries, recordedAction{code, *associatedID})
	return len(m.entries), nil
}

func (m *mockRecorder) codes() []action.Code {
	var out []action.Code
	for _, e := range m.entries {
		out = append(out, e.code)
	}
	return out
}

type fixture struct {
	svc  *Service
	repo *mockRepo
	rec  *mockRecorder
}

// newFixture seeds tracer 1 (FDG, 1 day) and camera types 2 "A", 5 "Z", 9 "M".
func newFixture() *fixture {
	tracers := &mockTracers{tracers: map[int]*tracer.Tracer{
		1: {ID: 1, Name: "FDG", OrderTime: 1, Enabled: true},
		3: {ID: 3, Name: "Tc-99m", OrderTime: 2, Enabled: true},
	}}
	cameras := &mockCameraTypes{types: map[int]*cameratype.CameraType{
		2: {ID: 2, Label: "A", Enabled: true},
		5: {ID: 5, Label: "Z", Enabled: true},
		9: {ID: 9, Label: "M", Enabled: true},
	}}
	repo := newMockRepo(tracers, cameras)
	rec := &mockRecorder{}
	svc := NewService(repo, tracers, cameras, rec, NewProjector(repo, nil))
	return &fixture{svc: svc, repo: repo, rec: rec}
}
