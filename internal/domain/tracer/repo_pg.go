package tracer

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

func (r *repoPG) Create(ctx context.Context, t *Tracer) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO tracers (name, order_time, enabled) VALUES ($1, $2, $3) RETURNING id`,
		t.Name, t.OrderTime, t.Enabled,
	).Scan(&t.ID)
	return db.Classify(err)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Tracer, error) {
	var t Tracer
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, order_time, enabled FROM tracers WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.OrderTime, &t.Enabled)
	if err != nil {
		return nil, fmt.Errorf("tracer %d: %w", id, db.Classify(err))
	}
	return &t, nil
}

func (r *repoPG) Update(ctx context.Context, t *Tracer) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE tracers SET name = $2, order_time = $3 WHERE id = $1`,
		t.ID, t.Name, t.OrderTime,
	)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tracer %d: %w", t.ID, db.ErrNotFound)
	}
	return nil
}

func (r *repoPG) SetEnabled(ctx context.Context, id int, enabled bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE tracers SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tracer %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, enabledOnly bool) ([]*Tracer, error) {
	query := `SELECT id, name, order_time, enabled FROM tracers`
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY name, id`

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*Tracer
	for rows.Next() {
		var t Tracer
		if err := rows.Scan(&t.ID, &t.Name, &t.OrderTime, &t.Enabled); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, &t)
	}
	return out, db.Classify(rows.Err())
}
