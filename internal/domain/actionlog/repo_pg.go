package actionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/domain/staff"
	"github.com/nuclibook/nuclibook/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const logColumns = `l.id, l.when_ms, l.staff_id, l.action_id, l.associated_id, l.note,
	s.id, s.username, s.name, s.role_id, s.enabled,
	r.id, r.label, r.enabled`

const logFrom = ` FROM action_log l
	JOIN staff s ON s.id = l.staff_id
	JOIN staff_roles r ON r.id = s.role_id`

func (r *repoPG) Create(ctx context.Context, l *ActionLog) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO action_log (when_ms, staff_id, action_id, associated_id, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		l.When.UnixMilli(), l.StaffID, int(l.ActionID), l.AssociatedID, l.Note,
	).Scan(&l.ID)
	return db.Classify(err)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*ActionLog, error) {
	l, err := scanLog(r.conn(ctx).QueryRow(ctx, `SELECT `+logColumns+logFrom+` WHERE l.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("action log %d: %w", id, db.Classify(err))
	}
	return l, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*ActionLog, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM action_log`).Scan(&total); err != nil {
		return nil, 0, db.Classify(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+logColumns+logFrom+` ORDER BY l.when_ms, l.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err)
	}
	defer rows.Close()

	var out []*ActionLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, db.Classify(err)
		}
		out = append(out, l)
	}
	return out, total, db.Classify(rows.Err())
}

func scanLog(row pgx.Row) (*ActionLog, error) {
	var (
		l      ActionLog
		whenMS int64
		code   int
		st     staff.Staff
		role   staff.StaffRole
	)
	if err := row.Scan(
		&l.ID, &whenMS, &l.StaffID, &code, &l.AssociatedID, &l.Note,
		&st.ID, &st.Username, &st.Name, &st.RoleID, &st.Enabled,
		&role.ID, &role.Label, &role.Enabled,
	); err != nil {
		return nil, err
	}
	l.When = time.UnixMilli(whenMS).UTC()
	l.ActionID = action.Code(code)
	st.Role = &role
	l.Staff = &st
	return &l, nil
}
