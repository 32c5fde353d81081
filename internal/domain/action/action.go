// Package action holds the shared action-code enumeration written to the
// action log, and the hook services use to record their mutations.
package action

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nuclibook/nuclibook/internal/platform/auth"
	"github.com/nuclibook/nuclibook/internal/platform/db"
)

// Code identifies what kind of action a log entry describes. Values are
// stored in the database and must never be renumbered.
type Code int

const (
	ViewedPage Code = 1

	CreateStaff  Code = 10
	UpdateStaff  Code = 11
	DisableStaff Code = 12

	CreateCameraType  Code = 20
	UpdateCameraType  Code = 21
	DisableCameraType Code = 22

	CreateTracer  Code = 30
	UpdateTracer  Code = 31
	DisableTracer Code = 32

	CreateTherapy              Code = 40
	UpdateTherapy              Code = 41
	DeleteTherapy              Code = 42
	SetTherapyBookingPattern   Code = 43
	SetTherapyPatientQuestions Code = 44
	SetTherapyCameraTypes      Code = 45

	CreateStaffRole Code = 50
)

var codeNames = map[Code]string{
	ViewedPage:                 "viewed-page",
	CreateStaff:                "create-staff",
	UpdateStaff:                "update-staff",
	DisableStaff:               "disable-staff",
	CreateCameraType:           "create-camera-type",
	UpdateCameraType:           "update-camera-type",
	DisableCameraType:          "disable-camera-type",
	CreateTracer:               "create-tracer",
	UpdateTracer:               "update-tracer",
	DisableTracer:              "disable-tracer",
	CreateTherapy:              "create-therapy",
	UpdateTherapy:              "update-therapy",
	DeleteTherapy:              "delete-therapy",
	SetTherapyBookingPattern:   "set-therapy-booking-pattern",
	SetTherapyPatientQuestions: "set-therapy-patient-questions",
	SetTherapyCameraTypes:      "set-therapy-camera-types",
	CreateStaffRole:            "create-staff-role",
}

// String returns the code's name, or its number for codes this build does
// not know about.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return strconv.Itoa(int(c))
}

// Known reports whether c is one of the codes declared above.
func (c Code) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// Recorder appends one entry to the action log.
type Recorder interface {
	Record(ctx context.Context, actorID int, when time.Time, code Code, associatedID *int, note *string) (int, error)
}

// Log records code against associatedID on behalf of the staff member acting
// on ctx.
func Log(ctx context.Context, rec Recorder, code Code, associatedID int) error {
	actor, ok := auth.StaffIDFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: acting staff member required", db.ErrInvalidInput)
	}
	if _, err := rec.Record(ctx, actor, time.Now(), code, &associatedID, nil); err != nil {
		return fmt.Errorf("recording %s: %w", code, err)
	}
	return nil
}
