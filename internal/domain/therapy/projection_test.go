package therapy

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclibook/nuclibook/internal/domain/cameratype"
	"github.com/nuclibook/nuclibook/internal/domain/tracer"
	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/internal/platform/metrics"
)

func section(seq int, busy bool, min, max int) *BookingPatternSection {
	return &BookingPatternSection{ID: seq * 10, Sequence: seq, Busy: busy, MinLength: min, MaxLength: max}
}

func camera(id int, label string) *cameratype.CameraType {
	return &cameratype.CameraType{ID: id, Label: label, Enabled: true}
}

func fdgTherapy() *Therapy {
	return &Therapy{
		ID:       1,
		Name:     "PET scan",
		Enabled:  true,
		TracerID: 1,
		Tracer:   &tracer.Tracer{ID: 1, Name: "FDG", OrderTime: 1, Enabled: true},
	}
}

var compactFormPattern = regexp.MustCompile(`^\[(\[[01],\d+,\d+\],)*\[[01],\d+,\d+\]\]$`)

func TestBookingPatternCompactForm(t *testing.T) {
	assert.Equal(t, "[]", BookingPatternCompactForm(nil))

	got := BookingPatternCompactForm([]*BookingPatternSection{
		section(1, true, 10, 10),
		section(2, false, 5, 15),
	})
	assert.Equal(t, "[[1,10,10],[0,5,15]]", got)
	assert.Regexp(t, compactFormPattern, got)
}

func TestBookingPatternCompactForm_SingleSection(t *testing.T) {
	got := BookingPatternCompactForm([]*BookingPatternSection{section(1, false, 0, 120)})
	assert.Equal(t, "[[0,0,120]]", got)
	assert.Regexp(t, compactFormPattern, got)
}

func TestSortSections_StableAndIdempotent(t *testing.T) {
	a := section(2, true, 1, 1)
	b := section(1, true, 2, 2)
	c := section(2, false, 3, 3)
	d := section(1, false, 4, 4)
	sections := []*BookingPatternSection{a, b, c, d}

	SortSections(sections)
	assert.Equal(t, []*BookingPatternSection{b, d, a, c}, sections)

	SortSections(sections)
	assert.Equal(t, []*BookingPatternSection{b, d, a, c}, sections)
}

func TestSortQuestions_Stable(t *testing.T) {
	q1 := &PatientQuestion{ID: 1, Sequence: 3, Description: "c"}
	q2 := &PatientQuestion{ID: 2, Sequence: 1, Description: "a"}
	q3 := &PatientQuestion{ID: 3, Sequence: 3, Description: "d"}
	questions := []*PatientQuestion{q1, q2, q3}

	SortQuestions(questions)
	assert.Equal(t, []*PatientQuestion{q2, q1, q3}, questions)
}

func TestCameraTypeSummary_HTML(t *testing.T) {
	tests := []struct {
		name  string
		types []*cameratype.CameraType
		want  string
	}{
		{"none", nil, "None"},
		{"one", []*cameratype.CameraType{camera(1, "A")}, "A"},
		{"two sorted", []*cameratype.CameraType{camera(2, "B"), camera(1, "A")}, "A<br />B"},
		{"label as stored", []*cameratype.CameraType{camera(1, "SPECT & CT")}, "SPECT & CT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeCameraTypes(7, tt.types).HTML())
		})
	}
}

func TestCameraTypeSummary_Truncated(t *testing.T) {
	types := []*cameratype.CameraType{camera(4, "D"), camera(2, "B"), camera(1, "A"), camera(3, "C")}
	s := SummarizeCameraTypes(7, types)

	assert.True(t, s.Truncated())
	assert.Equal(t, []string{"A", "B"}, s.Shown)
	assert.Equal(t, []string{"C", "D"}, s.Hidden)
	assert.Equal(t, "more-camera-types-7", s.TargetID())

	want := `A<br />B<br /><div id="more-camera-types-7" style="display: none;">C<br />D</div>` +
		`<span>+ 2 more (<a href="javascript:;" class="more-camera-types" data-target="more-camera-types-7">show</a>)</span>`
	assert.Equal(t, want, s.HTML())
}

func TestCameraTypeSummary_DoesNotReorderInput(t *testing.T) {
	types := []*cameratype.CameraType{camera(2, "B"), camera(1, "A")}
	SummarizeCameraTypes(1, types)
	assert.Equal(t, "B", types[0].Label)
}

func TestCameraTypeIDList(t *testing.T) {
	assert.Equal(t, "0", CameraTypeIDList(nil))
	assert.Equal(t, "2,9,5", CameraTypeIDList([]*cameratype.CameraType{
		camera(5, "Z"), camera(2, "A"), camera(9, "M"),
	}))
}

func TestPatientQuestionListEncoded(t *testing.T) {
	assert.Equal(t, "[]", PatientQuestionListEncoded(nil))

	got := PatientQuestionListEncoded([]*PatientQuestion{
		{Sequence: 1, Description: "Are you pregnant?"},
		{Sequence: 2, Description: "Do you have O'Leary's form?"},
	})
	assert.Equal(t, `['Are you pregnant?','Do you have O\\'Leary\\'s form?']`, got)
}

func TestAdviceText(t *testing.T) {
	got, err := AdviceText(fdgTherapy(), []*BookingPatternSection{
		section(1, true, 10, 10),
		section(2, false, 5, 15),
	})
	require.NoError(t, err)
	assert.Equal(t, "This therapy requires FDG (1 day order).\n\nThe recommended booking pattern is 10 mins booking, 5-15 mins wait.", got)
}

func TestAdviceText_NoSections(t *testing.T) {
	got, err := AdviceText(fdgTherapy(), nil)
	require.NoError(t, err)
	assert.Equal(t, "This therapy requires FDG (1 day order).\n\nThe recommended booking pattern is unknown.", got)
}

func TestAdviceText_MissingTracer(t *testing.T) {
	th := fdgTherapy()
	th.Tracer = nil
	_, err := AdviceText(th, nil)
	assert.ErrorIs(t, err, db.ErrInvalidState)
}

func TestProjector_OrderedViews(t *testing.T) {
	f := newFixture()
	f.repo.sections[1] = []*BookingPatternSection{section(3, true, 1, 1), nil, section(1, false, 2, 2)}
	f.repo.questions[1] = []*PatientQuestion{{ID: 2, Sequence: 2, Description: "b"}, {ID: 1, Sequence: 1, Description: "a"}}
	f.repo.links[1] = []int{5, 2, 9}
	p := NewProjector(f.repo, nil)
	ctx := context.Background()

	sections := p.OrderedBookingPattern(ctx, fdgTherapy())
	require.Len(t, sections, 2)
	assert.Equal(t, 1, sections[0].Sequence)
	assert.Equal(t, 3, sections[1].Sequence)

	questions := p.OrderedPatientQuestions(ctx, fdgTherapy())
	require.Len(t, questions, 2)
	assert.Equal(t, "a", questions[0].Description)

	types := p.CameraTypes(ctx, fdgTherapy())
	require.Len(t, types, 3)
	assert.Equal(t, []string{"A", "M", "Z"}, []string{types[0].Label, types[1].Label, types[2].Label})
}

func TestProjector_FallbackOnFetchError(t *testing.T) {
	f := newFixture()
	fetchErr := errors.New("connection reset")
	f.repo.sectionsErr = fetchErr
	f.repo.questionsErr = fetchErr
	f.repo.camerasErr = fetchErr

	m := metrics.New()
	p := NewProjector(f.repo, m)

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	sections := p.OrderedBookingPattern(ctx, fdgTherapy())
	assert.NotNil(t, sections)
	assert.Empty(t, sections)
	assert.Empty(t, p.OrderedPatientQuestions(ctx, fdgTherapy()))
	assert.Empty(t, p.CameraTypes(ctx, fdgTherapy()))

	n, err := testutil.GatherAndCount(m.Registry(), "nuclibook_projection_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	logged := buf.String()
	assert.Contains(t, logged, `"level":"warn"`)
	assert.Contains(t, logged, `"relation":"booking_pattern_sections"`)
	assert.Contains(t, logged, `"therapy_id":1`)
	assert.Contains(t, logged, "connection reset")
}
