package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/platform/db"
)

type Service struct {
	staff StaffRepository
	roles RoleRepository
	audit action.Recorder
}

func NewService(staff StaffRepository, roles RoleRepository, audit action.Recorder) *Service {
	return &Service{staff: staff, roles: roles, audit: audit}
}

func validateStaff(s *Staff) error {
	s.Username = strings.TrimSpace(s.Username)
	s.Name = strings.TrimSpace(s.Name)
	if s.Username == "" {
		return fmt.Errorf("%w: username is required", db.ErrInvalidInput)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", db.ErrInvalidInput)
	}
	if s.RoleID <= 0 {
		return fmt.Errorf("%w: role_id is required", db.ErrInvalidInput)
	}
	return nil
}

// -- Staff --

func (s *Service) CreateStaff(ctx context.Context, st *Staff) error {
	if err := validateStaff(st); err != nil {
		return err
	}
	st.Enabled = true
	return db.RunInTx(ctx, func(ctx context.Context) error {
		role, err := s.roles.GetByID(ctx, st.RoleID)
		if err != nil {
			return err
		}
		if err := s.staff.Create(ctx, st); err != nil {
			return err
		}
		st.Role = role
		return action.Log(ctx, s.audit, action.CreateStaff, st.ID)
	})
}

func (s *Service) GetStaff(ctx context.Context, id int) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) UpdateStaff(ctx context.Context, st *Staff) error {
	if err := validateStaff(st); err != nil {
		return err
	}
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.staff.Update(ctx, st); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.UpdateStaff, st.ID)
	})
}

// DisableStaff hides a staff member from the enabled listings. Staff rows are
// never deleted because the action log references them.
func (s *Service) DisableStaff(ctx context.Context, id int) error {
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.staff.SetEnabled(ctx, id, false); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.DisableStaff, id)
	})
}

func (s *Service) ListStaff(ctx context.Context, enabledOnly bool) ([]*Staff, error) {
	return s.staff.List(ctx, enabledOnly)
}

// -- Roles --

func (s *Service) CreateRole(ctx context.Context, role *StaffRole) error {
	role.Label = strings.TrimSpace(role.Label)
	if role.Label == "" {
		return fmt.Errorf("%w: label is required", db.ErrInvalidInput)
	}
	role.Enabled = true
	return db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.roles.Create(ctx, role); err != nil {
			return err
		}
		return action.Log(ctx, s.audit, action.CreateStaffRole, role.ID)
	})
}

func (s *Service) ListRoles(ctx context.Context, enabledOnly bool) ([]*StaffRole, error) {
	return s.roles.List(ctx, enabledOnly)
}

// Page returns enabled staff and enabled roles.
func (s *Service) Page(ctx context.Context) (*Page, error) {
	members, err := s.staff.List(ctx, true)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*Staff{}
	}
	if roles == nil {
		roles = []*StaffRole{}
	}
	return &Page{Staff: members, Roles: roles}, nil
}
