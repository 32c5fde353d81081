package cameratype

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

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

func (r *repoPG) Create(ctx context.Context, ct *CameraType) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO camera_types (label, enabled) VALUES ($1, $2) RETURNING id`,
		ct.Label, ct.Enabled,
	).Scan(&ct.ID)
	return db.Classify(err)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*CameraType, error) {
	var ct CameraType
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, label, enabled FROM camera_types WHERE id = $1`, id,
	).Scan(&ct.ID, &ct.Label, &ct.Enabled)
	if err != nil {
		return nil, fmt.Errorf("camera type %d: %w", id, db.Classify(err))
	}
	return &ct, nil
}

func (r *repoPG) UpdateLabel(ctx context.Context, id int, label string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE camera_types SET label = $2 WHERE id = $1`, id, label)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("camera type %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *repoPG) SetEnabled(ctx context.Context, id int, enabled bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE camera_types SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("camera type %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, enabledOnly bool) ([]*CameraType, error) {
	query := `SELECT id, label, enabled FROM camera_types`
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY label COLLATE "C", id`

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*CameraType
	for rows.Next() {
		var ct CameraType
		if err := rows.Scan(&ct.ID, &ct.Label, &ct.Enabled); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, &ct)
	}
	return out, db.Classify(rows.Err())
}
