package therapy

import (
	"github.com/nuclibook/nuclibook/internal/domain/tracer"
)

// Therapy maps to the therapies table. Tracer is resolved on read; a nil
// Tracer on a fetched therapy means the row's required tracer is missing.
type Therapy struct {
	ID         int            `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Enabled    bool           `db:"enabled" json:"enabled"`
	TracerID   int            `db:"tracer_required" json:"tracer_id"`
	Tracer     *tracer.Tracer `db:"-" json:"tracer,omitempty"`
	TracerDose *string        `db:"tracer_dose" json:"tracer_dose,omitempty"`
}

// BookingPatternSection maps to the booking_pattern_sections table. Lengths
// are in minutes. Busy sections are booked time; the rest are waits.
type BookingPatternSection struct {
	ID        int  `db:"id" json:"id"`
	TherapyID int  `db:"therapy_id" json:"therapy_id"`
	Sequence  int  `db:"sequence" json:"sequence"`
	Busy      bool `db:"busy" json:"busy"`
	MinLength int  `db:"min_length" json:"min_length"`
	MaxLength int  `db:"max_length" json:"max_length"`
}

// PatientQuestion maps to the patient_questions table.
type PatientQuestion struct {
	ID          int    `db:"id" json:"id"`
	TherapyID   int    `db:"therapy_id" json:"therapy_id"`
	Sequence    int    `db:"sequence" json:"sequence"`
	Description string `db:"description" json:"description"`
}

// TherapyCameraType maps to the therapy_camera_types join table.
type TherapyCameraType struct {
	TherapyID    int `db:"therapy_id" json:"therapy_id"`
	CameraTypeID int `db:"camera_type_id" json:"camera_type_id"`
}
