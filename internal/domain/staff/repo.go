package staff

import "context"

// StaffRepository defines the persistence interface for staff members.
type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id int) (*Staff, error)
	// Update changes username, name and role; the enabled flag is left alone.
	Update(ctx context.Context, s *Staff) error
	SetEnabled(ctx context.Context, id int, enabled bool) error
	List(ctx context.Context, enabledOnly bool) ([]*Staff, error)
}

// RoleRepository defines the persistence interface for staff roles.
type RoleRepository interface {
	Create(ctx context.Context, r *StaffRole) error
	GetByID(ctx context.Context, id int) (*StaffRole, error)
	List(ctx context.Context, enabledOnly bool) ([]*StaffRole, error)
}
