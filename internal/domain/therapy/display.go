package therapy

import (
	"context"
	"strconv"

	"github.com/nuclibook/nuclibook/internal/platform/render"
)

// Display field names consumed by the therapy pages.
const (
	FieldID                     = "id"
	FieldName                   = "name"
	FieldCameraTypeIDs          = "camera-type-ids"
	FieldCameraTypeSummary      = "camera-type-summary"
	FieldPatientQuestions       = "patient-questions"
	FieldBookingPatternSections = "booking-pattern-sections"
	FieldTracerRequiredID       = "tracer-required-id"
	FieldTracerRequiredName     = "tracer-required-name"
	FieldTracerDose             = "tracer-dose"
	FieldTherapyTracerDose      = "therapy-tracer-dose"
	FieldAdvice                 = "advice"
)

// Display builds the display-field map for t. A therapy without a resolved
// tracer cannot be displayed and yields ErrInvalidState.
func (p *Projector) Display(ctx context.Context, t *Therapy) (render.Fields, error) {
	sections := p.OrderedBookingPattern(ctx, t)
	advice, err := AdviceText(t, sections)
	if err != nil {
		return nil, err
	}
	questions := p.OrderedPatientQuestions(ctx, t)
	types := p.CameraTypes(ctx, t)

	dose := ""
	if t.TracerDose != nil {
		dose = *t.TracerDose
	}

	f := render.Fields{}
	f.Plain(FieldID, strconv.Itoa(t.ID))
	f.Plain(FieldName, t.Name)
	f.IDList(FieldCameraTypeIDs, CameraTypeIDList(types))
	f.Plain(FieldCameraTypeSummary, SummarizeCameraTypes(t.ID, types).HTML())
	f.Custom(FieldPatientQuestions, PatientQuestionListEncoded(questions))
	f.Custom(FieldBookingPatternSections, BookingPatternCompactForm(sections))
	f.Plain(FieldTracerRequiredID, strconv.Itoa(t.Tracer.ID))
	f.Plain(FieldTracerRequiredName, t.Tracer.Name)
	f.Plain(FieldTracerDose, dose)
	f.Plain(FieldTherapyTracerDose, dose)
	f.Plain(FieldAdvice, advice)
	return f, nil
}
