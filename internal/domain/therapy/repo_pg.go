package therapy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuclibook/nuclibook/internal/domain/cameratype"
	"github.com/nuclibook/nuclibook/internal/domain/tracer"
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

// The tracer is LEFT JOINed so a dangling reference surfaces as a nil
// Tracer rather than a missing therapy.
const therapyColumns = `t.id, t.name, t.enabled, t.tracer_required, t.tracer_dose,
	tr.id, tr.name, tr.order_time, tr.enabled`

const therapyFrom = ` FROM therapies t LEFT JOIN tracers tr ON tr.id = t.tracer_required`

func (r *repoPG) Create(ctx context.Context, t *Therapy) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO therapies (name, tracer_required, tracer_dose, enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		t.Name, t.TracerID, t.TracerDose, t.Enabled,
	).Scan(&t.ID)
	return db.Classify(err)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Therapy, error) {
	t, err := scanTherapy(r.conn(ctx).QueryRow(ctx, `SELECT `+therapyColumns+therapyFrom+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("therapy %d: %w", id, db.Classify(err))
	}
	return t, nil
}

func (r *repoPG) Update(ctx context.Context, t *Therapy) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE therapies SET name = $2, tracer_required = $3, tracer_dose = $4, enabled = $5
		WHERE id = $1`,
		t.ID, t.Name, t.TracerID, t.TracerDose, t.Enabled,
	)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("therapy %d: %w", t.ID, db.ErrNotFound)
	}
	return nil
}

func (r *repoPG) SetEnabled(ctx context.Context, id int, enabled bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE therapies SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("therapy %d: %w", id, db.ErrNotFound)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for sections, questions and links.
func (r *repoPG) Delete(ctx context.Context, id int) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM therapies WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("therapy %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, enabledOnly bool) ([]*Therapy, error) {
	query := `SELECT ` + therapyColumns + therapyFrom
	if enabledOnly {
		query += ` WHERE t.enabled`
	}
	query += ` ORDER BY t.name, t.id`

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*Therapy
	for rows.Next() {
		t, err := scanTherapy(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, t)
	}
	return out, db.Classify(rows.Err())
}

func scanTherapy(row pgx.Row) (*Therapy, error) {
	var (
		t         Therapy
		trID      *int
		trName    *string
		trOrder   *int
		trEnabled *bool
	)
	if err := row.Scan(
		&t.ID, &t.Name, &t.Enabled, &t.TracerID, &t.TracerDose,
		&trID, &trName, &trOrder, &trEnabled,
	); err != nil {
		return nil, err
	}
	if trID != nil {
		t.Tracer = &tracer.Tracer{ID: *trID, Name: *trName, OrderTime: *trOrder, Enabled: *trEnabled}
	}
	return &t, nil
}

// -- Relations --

func (r *repoPG) ListSections(ctx context.Context, therapyID int) ([]*BookingPatternSection, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, therapy_id, sequence, busy, min_length, max_length
		FROM booking_pattern_sections WHERE therapy_id = $1
		ORDER BY sequence, id`, therapyID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*BookingPatternSection
	for rows.Next() {
		var s BookingPatternSection
		if err := rows.Scan(&s.ID, &s.TherapyID, &s.Sequence, &s.Busy, &s.MinLength, &s.MaxLength); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, &s)
	}
	return out, db.Classify(rows.Err())
}

func (r *repoPG) ListQuestions(ctx context.Context, therapyID int) ([]*PatientQuestion, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, therapy_id, sequence, description
		FROM patient_questions WHERE therapy_id = $1
		ORDER BY sequence, id`, therapyID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*PatientQuestion
	for rows.Next() {
		var q PatientQuestion
		if err := rows.Scan(&q.ID, &q.TherapyID, &q.Sequence, &q.Description); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, &q)
	}
	return out, db.Classify(rows.Err())
}

func (r *repoPG) ListCameraTypes(ctx context.Context, therapyID int) ([]*cameratype.CameraType, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT c.id, c.label, c.enabled
		FROM therapy_camera_types tc JOIN camera_types c ON c.id = tc.camera_type_id
		WHERE tc.therapy_id = $1`, therapyID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []*cameratype.CameraType
	for rows.Next() {
		var ct cameratype.CameraType
		if err := rows.Scan(&ct.ID, &ct.Label, &ct.Enabled); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, &ct)
	}
	return out, db.Classify(rows.Err())
}

func (r *repoPG) ReplaceSections(ctx context.Context, therapyID int, sections []*BookingPatternSection) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM booking_pattern_sections WHERE therapy_id = $1`, therapyID); err != nil {
		return db.Classify(err)
	}
	for _, s := range sections {
		s.TherapyID = therapyID
		err := q.QueryRow(ctx, `
			INSERT INTO booking_pattern_sections (therapy_id, sequence, busy, min_length, max_length)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			therapyID, s.Sequence, s.Busy, s.MinLength, s.MaxLength,
		).Scan(&s.ID)
		if err != nil {
			return db.Classify(err)
		}
	}
	return nil
}

func (r *repoPG) ReplaceQuestions(ctx context.Context, therapyID int, questions []*PatientQuestion) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM patient_questions WHERE therapy_id = $1`, therapyID); err != nil {
		return db.Classify(err)
	}
	for _, pq := range questions {
		pq.TherapyID = therapyID
		err := q.QueryRow(ctx, `
			INSERT INTO patient_questions (therapy_id, sequence, description)
			VALUES ($1, $2, $3)
			RETURNING id`,
			therapyID, pq.Sequence, pq.Description,
		).Scan(&pq.ID)
		if err != nil {
			return db.Classify(err)
		}
	}
	return nil
}

func (r *repoPG) ClearCameraTypes(ctx context.Context, therapyID int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM therapy_camera_types WHERE therapy_id = $1`, therapyID)
	return db.Classify(err)
}

func (r *repoPG) AddCameraType(ctx context.Context, link TherapyCameraType) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO therapy_camera_types (therapy_id, camera_type_id) VALUES ($1, $2)`,
		link.TherapyID, link.CameraTypeID,
	)
	return db.Classify(err)
}
