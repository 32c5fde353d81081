package staff

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuclibook/nuclibook/internal/platform/db"
)

// -- Staff Repository --

type staffRepoPG struct {
	pool *pgxpool.Pool
}

func NewStaffRepo(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const staffColumns = `s.id, s.username, s.name, s.role_id, s.enabled,
	r.id, r.label, r.enabled`

const staffFrom = ` FROM staff s JOIN staff_roles r ON r.id = s.role_id`

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff (username, name, role_id, enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.Username, s.Name, s.RoleID, s.Enabled,
	).Scan(&s.ID)
	return db.Classify(err)
}

func (r *staffRepoPG) GetByID(ctx context.Context, id int) (*Staff, error) {
	s, err := scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffColumns+staffFrom+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("staff %d: %w", id, db.Classify(err))
	}
	return s, nil
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET username = $2, name = $3, role_id = $4
		WHERE id = $1`,
		s.ID, s.Username, s.Name, s.RoleID,
	)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("staff %d: %w", s.ID, db.ErrNotFound)
	}
	return nil
}

func (r *staffRepoPG) SetEnabled(ctx context.Context, id int, enabled bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE staff SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("staff %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *staffRepoPG) List(ctx context.Context, enabledOnly bool) ([]*Staff, error) {
	query := `SELECT ` + staffColumns + staffFrom
	if enabledOnly {
		query += ` WHERE s.enabled`
	}
	query += ` ORDER BY s.name, s.id`

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, s)
	}
	return out, db.Classify(rows.Err())
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	var role StaffRole
	if err := row.Scan(
		&s.ID, &s.Username, &s.Name, &s.RoleID, &s.Enabled,
		&role.ID, &role.Label, &role.Enabled,
	); err != nil {
		return nil, err
	}
	s.Role = &role
	return &s, nil
}

// -- Role Repository --

type roleRepoPG struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) RoleRepository {
	return &roleRepoPG{pool: pool}
}

func (r *roleRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *roleRepoPG) Create(ctx context.Context, role *StaffRole) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO staff_roles (label, enabled) VALUES ($1, $2) RETURNING id`,
		role.Label, role.Enabled,
	).Scan(&role.ID)
	return db.Classify(err)
}

func (r *roleRepoPG) GetByID(ctx context.Context, id int) (*StaffRole, error) {
	var role StaffRole
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, label, enabled FROM staff_roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Label, &role.Enabled)
	if err != nil {
		return nil, fmt.Errorf("staff role %d: %w", id, db.Classify(err))
	}
	return &role, nil
}

func (r *roleRepoPG) List(ctx context.Context, enabledOnly bool) ([]*StaffRole, error) {
	query := `SELECT id, label, enabled FROM staff_roles`
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY label`

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*StaffRole
	for rows.Next() {
		var role StaffRole
		if err := rows.Scan(&role.ID, &role.Label, &role.Enabled); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, &role)
	}
	return out, db.Classify(rows.Err())
}
