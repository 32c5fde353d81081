package therapy

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nuclibook/nuclibook/internal/domain/cameratype"
	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/internal/platform/metrics"
)

// Projector derives the read-only display views of a therapy. Relation
// fetches that fail are logged, counted and treated as empty so one broken
// collection never blocks a page. Nothing here retries.
type Projector struct {
	rel     Relations
	metrics *metrics.Metrics
}

func NewProjector(rel Relations, m *metrics.Metrics) *Projector {
	return &Projector{rel: rel, metrics: m}
}

func (p *Projector) fallback(ctx context.Context, t *Therapy, relation string, err error) {
	zerolog.Ctx(ctx).Warn().
		Err(err).
		Int("therapy_id", t.ID).
		Str("relation", relation).
		Msg("relation fetch failed, rendering as empty")
	p.metrics.ProjectionFallback(relation)
}

// OrderedBookingPattern returns the therapy's sections by ascending sequence.
func (p *Projector) OrderedBookingPattern(ctx context.Context, t *Therapy) []*BookingPatternSection {
	sections, err := p.rel.ListSections(ctx, t.ID)
	if err != nil {
		p.fallback(ctx, t, "booking_pattern_sections", err)
		return []*BookingPatternSection{}
	}
	out := compact(sections)
	SortSections(out)
	return out
}

// OrderedPatientQuestions returns the therapy's questions by ascending sequence.
func (p *Projector) OrderedPatientQuestions(ctx context.Context, t *Therapy) []*PatientQuestion {
	questions, err := p.rel.ListQuestions(ctx, t.ID)
	if err != nil {
		p.fallback(ctx, t, "patient_questions", err)
		return []*PatientQuestion{}
	}
	out := compact(questions)
	SortQuestions(out)
	return out
}

// CameraTypes returns the camera types linked to the therapy, by label.
func (p *Projector) CameraTypes(ctx context.Context, t *Therapy) []*cameratype.CameraType {
	types, err := p.rel.ListCameraTypes(ctx, t.ID)
	if err != nil {
		p.fallback(ctx, t, "therapy_camera_types", err)
		return []*cameratype.CameraType{}
	}
	out := compact(types)
	cameratype.SortByLabel(out)
	return out
}

// compact copies in, dropping nil entries.
func compact[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// SortSections orders sections by sequence. Equal sequences keep their
// relative order.
func SortSections(sections []*BookingPatternSection) {
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Sequence < sections[j].Sequence })
}

// SortQuestions orders questions by sequence. Equal sequences keep their
// relative order.
func SortQuestions(questions []*PatientQuestion) {
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Sequence < questions[j].Sequence })
}

// BookingPatternCompactForm encodes sections as [[busy,min,max],...] with
// busy as 0 or 1. The scheduling widget parses this, so the format is fixed.
func BookingPatternCompactForm(sections []*BookingPatternSection) string {
	if len(sections) == 0 {
		return "[]"
	}
	parts := make([]string, len(sections))
	for i, s := range sections {
		busy := 0
		if s.Busy {
			busy = 1
		}
		parts[i] = fmt.Sprintf("[%d,%d,%d]", busy, s.MinLength, s.MaxLength)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// CameraTypeSummary is the structured form of the camera type column: the
// first two labels are always shown, the rest sit behind a toggle.
type CameraTypeSummary struct {
	TherapyID int
	Shown     []string
	Hidden    []string
}

const summaryShown = 2

// SummarizeCameraTypes sorts a copy of types by label and splits it into the
// shown and hidden parts.
func SummarizeCameraTypes(therapyID int, types []*cameratype.CameraType) CameraTypeSummary {
	sorted := compact(types)
	cameratype.SortByLabel(sorted)

	s := CameraTypeSummary{TherapyID: therapyID}
	for i, ct := range sorted {
		if i < summaryShown {
			s.Shown = append(s.Shown, ct.Label)
		} else {
			s.Hidden = append(s.Hidden, ct.Label)
		}
	}
	return s
}

// Truncated reports whether some labels are behind the toggle.
func (s CameraTypeSummary) Truncated() bool {
	return len(s.Hidden) > 0
}

// TargetID is the element id binding the hidden block to its toggle.
func (s CameraTypeSummary) TargetID() string {
	return "more-camera-types-" + strconv.Itoa(s.TherapyID)
}

// HTML renders the summary markup shown in the therapies table. Labels are
// inserted as stored; the page treats the whole value as markup.
func (s CameraTypeSummary) HTML() string {
	if len(s.Shown) == 0 {
		return "None"
	}
	shown := s.Shown
	if !s.Truncated() {
		return strings.Join(shown, "<br />")
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(shown, "<br />"))
	sb.WriteString("<br />")
	sb.WriteString(`<div id="` + s.TargetID() + `" style="display: none;">`)
	sb.WriteString(strings.Join(s.Hidden, "<br />"))
	sb.WriteString("</div>")
	sb.WriteString(fmt.Sprintf(
		`<span>+ %d more (<a href="javascript:;" class="more-camera-types" data-target="%s">show</a>)</span>`,
		len(s.Hidden), s.TargetID()))
	return sb.String()
}

// CameraTypeIDList returns the ids of types, comma separated in label order,
// or "0" when there are none.
func CameraTypeIDList(types []*cameratype.CameraType) string {
	sorted := compact(types)
	if len(sorted) == 0 {
		return "0"
	}
	cameratype.SortByLabel(sorted)
	ids := make([]string, len(sorted))
	for i, ct := range sorted {
		ids[i] = strconv.Itoa(ct.ID)
	}
	return strings.Join(ids, ",")
}

// PatientQuestionListEncoded renders questions as a single-quoted list,
// e.g. ['Q1','Q2']. Each embedded quote becomes \\' for the page script.
func PatientQuestionListEncoded(questions []*PatientQuestion) string {
	if len(questions) == 0 {
		return "[]"
	}
	parts := make([]string, len(questions))
	for i, q := range questions {
		parts[i] = "'" + strings.ReplaceAll(q.Description, "'", `\\'`) + "'"
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// AdviceText builds the booking hint shown beside a therapy. It fails with
// ErrInvalidState when the therapy's tracer has not been resolved.
func AdviceText(t *Therapy, sections []*BookingPatternSection) (string, error) {
	if t.Tracer == nil {
		return "", fmt.Errorf("therapy %d has no tracer: %w", t.ID, db.ErrInvalidState)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "This therapy requires %s (%d day order).\n\nThe recommended booking pattern is ",
		t.Tracer.Name, t.Tracer.OrderTime)

	if len(sections) == 0 {
		sb.WriteString("unknown.")
		return sb.String(), nil
	}
	for i, s := range sections {
		if i > 0 {
			sb.WriteString(", ")
		}
		if s.MinLength == s.MaxLength {
			sb.WriteString(strconv.Itoa(s.MinLength))
		} else {
			fmt.Fprintf(&sb, "%d-%d", s.MinLength, s.MaxLength)
		}
		if s.Busy {
			sb.WriteString(" mins booking")
		} else {
			sb.WriteString(" mins wait")
		}
	}
	sb.WriteString(".")
	return sb.String(), nil
}
