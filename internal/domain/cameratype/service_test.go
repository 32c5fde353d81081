package cameratype

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/platform/auth"
	"github.com/nuclibook/nuclibook/internal/platform/db"
)

type mockRepo struct {
	types  map[int]*CameraType
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{types: make(map[int]*CameraType)}
}

func (m *mockRepo) Create(_ context.Context, ct *CameraType) error {
	m.nextID++
	ct.ID = m.nextID
	cp := *ct
	m.types[ct.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*CameraType, error) {
	ct, ok := m.types[id]
	if !ok {
		return nil, fmt.Errorf("camera type %d: %w", id, db.ErrNotFound)
	}
	cp := *ct
	return &cp, nil
}

func (m *mockRepo) UpdateLabel(_ context.Context, id int, label string) error {
	ct, ok := m.types[id]
	if !ok {
		return fmt.Errorf("camera type %d: %w", id, db.ErrNotFound)
	}
	ct.Label = label
	return nil
}

func (m *mockRepo) SetEnabled(_ context.Context, id int, enabled bool) error {
	ct, ok := m.types[id]
	if !ok {
		return fmt.Errorf("camera type %d: %w", id, db.ErrNotFound)
	}
	ct.Enabled = enabled
	return nil
}

func (m *mockRepo) List(_ context.Context, enabledOnly bool) ([]*CameraType, error) {
	var out []*CameraType
	for id := 1; id <= m.nextID; id++ {
		ct, ok := m.types[id]
		if !ok || (enabledOnly && !ct.Enabled) {
			continue
		}
		cp := *ct
		out = append(out, &cp)
	}
	SortByLabel(out)
	return out, nil
}

type mockRecorder struct {
	codes []action.Code
	assoc []int
}

func (m *mockRecorder) Record(_ context.Context, _ int, _ time.Time, code action.Code, associatedID *int, _ *string) (int, error) {
	m.codes = append(m.codes, code)
	m.assoc = append(m.assoc, *associatedID)
	return len(m.codes), nil
}

func newTestService() (*Service, *mockRecorder) {
	rec := &mockRecorder{}
	return NewService(newMockRepo(), rec), rec
}

func actorCtx() context.Context {
	return auth.WithStaffID(context.Background(), 1)
}

func TestSortByLabel(t *testing.T) {
	types := []*CameraType{
		{ID: 5, Label: "Z"},
		{ID: 2, Label: "A"},
		{ID: 9, Label: "M"},
		{ID: 3, Label: "a"},
		{ID: 4, Label: "A"},
	}
	SortByLabel(types)

	var ids []int
	for _, ct := range types {
		ids = append(ids, ct.ID)
	}
	// Upper case sorts before lower case; equal labels keep their order.
	if fmt.Sprint(ids) != "[2 4 9 5 3]" {
		t.Errorf("unexpected order %v", ids)
	}
}

func TestService_CreateAndPage(t *testing.T) {
	svc, rec := newTestService()
	ctx := actorCtx()

	for _, label := range []string{"SPECT", "Gamma", "PET-CT"} {
		if err := svc.Create(ctx, &CameraType{Label: label}); err != nil {
			t.Fatalf("Create(%q) error: %v", label, err)
		}
	}
	if err := svc.Disable(ctx, 1); err != nil {
		t.Fatalf("Disable() error: %v", err)
	}

	page, err := svc.Page(ctx)
	if err != nil {
		t.Fatalf("Page() error: %v", err)
	}
	if len(page.CameraTypes) != 2 {
		t.Fatalf("expected 2 enabled camera types, got %d", len(page.CameraTypes))
	}
	if page.CameraTypes[0].Label != "Gamma" || page.CameraTypes[1].Label != "PET-CT" {
		t.Errorf("unexpected page order: %s, %s", page.CameraTypes[0].Label, page.CameraTypes[1].Label)
	}

	want := []action.Code{action.CreateCameraType, action.CreateCameraType, action.CreateCameraType, action.DisableCameraType}
	if fmt.Sprint(rec.codes) != fmt.Sprint(want) {
		t.Errorf("logged %v, want %v", rec.codes, want)
	}
	if rec.assoc[3] != 1 {
		t.Errorf("expected disable logged against id 1, got %d", rec.assoc[3])
	}
}

func TestService_UpdateLabel(t *testing.T) {
	svc, _ := newTestService()
	ctx := actorCtx()
	ct := &CameraType{Label: "Gamma"}
	svc.Create(ctx, ct)

	if err := svc.UpdateLabel(ctx, ct.ID, "  "); !errors.Is(err, db.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank label, got %v", err)
	}
	if err := svc.UpdateLabel(ctx, ct.ID, "Gamma II"); err != nil {
		t.Fatalf("UpdateLabel() error: %v", err)
	}
	got, _ := svc.Get(ctx, ct.ID)
	if got.Label != "Gamma II" {
		t.Errorf("expected label updated, got %q", got.Label)
	}
	if err := svc.UpdateLabel(ctx, 99, "X"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Create_RequiresActor(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.Create(context.Background(), &CameraType{Label: "Gamma"}); !errors.Is(err, db.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput without an acting staff member, got %v", err)
	}
}
