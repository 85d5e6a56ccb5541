package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/example/classbooker/internal/application/sequencer"
	"github.com/example/classbooker/internal/domain/booking"
	"github.com/example/classbooker/internal/domain/schedule"
)

type stubSession struct {
	failOn      string
	found       []string
	inputs      []string
	screenshots int
	closes      int
}

func (s *stubSession) Navigate(ctx context.Context, url string) error { return nil }

func (s *stubSession) Find(ctx context.Context, loc sequencer.Locator, ready sequencer.Readiness, timeout time.Duration) (sequencer.Element, error) {
	s.found = append(s.found, loc.Value)
	if s.failOn != "" && strings.Contains(loc.Value, s.failOn) {
		return nil, errors.New("element not found")
	}
	return stubElement{s: s}, nil
}

func (s *stubSession) Screenshot(ctx context.Context, path string) error {
	s.screenshots++
	return nil
}

func (s *stubSession) Close() error {
	s.closes++
	return nil
}

type stubElement struct{ s *stubSession }

func (e stubElement) Click(ctx context.Context) error { return nil }

func (e stubElement) Input(ctx context.Context, text string) error {
	e.s.inputs = append(e.s.inputs, text)
	return nil
}

func (e stubElement) ScrollIntoView(ctx context.Context) error { return nil }

func (e stubElement) Selected(ctx context.Context) (bool, error) { return false, nil }

type stubOpener struct {
	sess  *stubSession
	err   error
	opens int
}

func (o *stubOpener) Open(ctx context.Context) (sequencer.Session, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.sess, nil
}

type memRecorder struct{ runs []booking.Run }

func (m *memRecorder) Record(ctx context.Context, r booking.Run) error {
	m.runs = append(m.runs, r)
	return nil
}

func newUseCase(opener SessionOpener, rec RunRecorder) BookClass {
	seq := sequencer.New(zerolog.Nop(), "error_screenshot.png")
	seq.Sleep = func(context.Context, time.Duration) {}
	return BookClass{
		Rule:      schedule.DefaultRule(),
		Site:      booking.DefaultSite(),
		Target:    booking.DefaultTarget(),
		Creds:     booking.Credentials{Username: "ana@example.com", Password: "s3cret"},
		Browser:   opener,
		Sequencer: seq,
		Recorder:  rec,
		Log:       zerolog.Nop(),
	}
}

var (
	saturday = time.Date(2026, time.October, 17, 0, 1, 0, 0, time.UTC)
	monday   = time.Date(2026, time.October, 19, 0, 1, 0, 0, time.UTC)
)

func TestExecuteSkipsWithoutBrowser(t *testing.T) {
	opener := &stubOpener{sess: &stubSession{}}
	rec := &memRecorder{}

	run := newUseCase(opener, rec).Execute(context.Background(), monday)

	require.Equal(t, booking.StatusSkipped, run.Status)
	require.Zero(t, opener.opens)
	require.Zero(t, opener.sess.screenshots)
	require.Empty(t, rec.runs)
	require.Nil(t, run.TargetDate)
}

func TestExecuteBooksTargetDay(t *testing.T) {
	sess := &stubSession{}
	opener := &stubOpener{sess: sess}
	rec := &memRecorder{}

	run := newUseCase(opener, rec).Execute(context.Background(), saturday)

	require.Equal(t, booking.StatusCompleted, run.Status)
	require.Equal(t, 1, opener.opens)
	require.Equal(t, 1, sess.closes)
	require.Zero(t, sess.screenshots)
	require.Equal(t, 19, run.TargetDate.Day())
	require.Contains(t, sess.found, "//td[text()='19' and not(contains(@class, 'disabled'))]")
	require.Equal(t, []string{"ana@example.com", "s3cret"}, sess.inputs)
	require.Len(t, rec.runs, 1)
	require.Equal(t, run.ID, rec.runs[0].ID)
}

func TestExecuteRecordsAbort(t *testing.T) {
	sess := &stubSession{failOn: "btnConfirmCart"}
	rec := &memRecorder{}

	run := newUseCase(&stubOpener{sess: sess}, rec).Execute(context.Background(), saturday)

	require.Equal(t, booking.StatusAborted, run.Status)
	require.Equal(t, "confirm cart", run.StepName)
	require.Equal(t, "error_screenshot.png", run.Artifact)
	require.Equal(t, 1, sess.screenshots)
	require.Equal(t, 1, sess.closes)
	require.Len(t, rec.runs, 1)
	require.Equal(t, booking.StatusAborted, rec.runs[0].Status)
}

func TestExecuteLaunchFailure(t *testing.T) {
	rec := &memRecorder{}
	opener := &stubOpener{err: errors.New("no chrome")}

	uc := newUseCase(opener, rec)
	finished := saturday.Add(3 * time.Second)
	uc.Sequencer.Now = func() time.Time { return finished }

	run := uc.Execute(context.Background(), saturday)

	require.Equal(t, booking.StatusAborted, run.Status)
	require.Equal(t, finished, run.FinishedAt)
	require.Equal(t, -1, run.FailedStep)
	require.Contains(t, run.Reason, "no chrome")
	require.Empty(t, run.Artifact)
	require.Len(t, rec.runs, 1)
}

func TestExecuteWithoutRecorder(t *testing.T) {
	sess := &stubSession{}
	run := newUseCase(&stubOpener{sess: sess}, nil).Execute(context.Background(), saturday)
	require.Equal(t, booking.StatusCompleted, run.Status)
}
