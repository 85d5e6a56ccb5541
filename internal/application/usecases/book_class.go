package usecases

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/classbooker/internal/application/sequencer"
	"github.com/example/classbooker/internal/domain/booking"
	"github.com/example/classbooker/internal/domain/schedule"
)

// SessionOpener launches the browser for one run.
type SessionOpener interface {
	Open(ctx context.Context) (sequencer.Session, error)
}

type RunRecorder interface {
	Record(ctx context.Context, r booking.Run) error
}

// BookClass gates on the schedule and, when the day qualifies, drives the
// booking flow once.
type BookClass struct {
	Rule   schedule.Rule
	Site   booking.Site
	Target booking.Target
	Creds  booking.Credentials

	Browser   SessionOpener
	Sequencer *sequencer.Sequencer
	Recorder  RunRecorder // optional
	Log       zerolog.Logger
}

func (u BookClass) Execute(ctx context.Context, now time.Time) booking.Run {
	run := booking.Run{ID: uuid.NewString(), StartedAt: now, FailedStep: -1}

	dec := u.Rule.Decide(now)
	if !dec.Proceed {
		u.Log.Info().Str("weekday", now.Weekday().String()).Msg("not a run day, exiting")
		run.Status = booking.StatusSkipped
		run.FinishedAt = now
		return run
	}
	target := dec.Target
	run.TargetDate = &target
	if !slices.Contains(u.Rule.TargetDays, target.Weekday()) {
		u.Log.Warn().
			Str("target_weekday", target.Weekday().String()).
			Msg("target date falls outside configured target days; booking it anyway")
	}
	u.Log.Info().
		Str("weekday", now.Weekday().String()).
		Int("target_day", dec.TargetDay).
		Str("center", u.Target.Center).
		Str("activity", u.Target.Activity).
		Str("slot", u.Target.TimeSlot).
		Msg("booker started")

	sess, err := u.Browser.Open(ctx)
	if err != nil {
		u.Log.Error().Err(err).Msg("browser launch failed")
		run.Status = booking.StatusAborted
		run.Reason = "browser launch: " + err.Error()
		run.FinishedAt = u.clock()
		u.record(ctx, run)
		return run
	}

	out := u.Sequencer.Run(ctx, sess, Plan(u.Site, u.Target, u.Creds, dec.TargetDay))
	run.FinishedAt = out.Finished
	switch out.State {
	case sequencer.Completed:
		run.Status = booking.StatusCompleted
		u.Log.Info().Int("target_day", dec.TargetDay).Msg("booking completed")
	default:
		run.Status = booking.StatusAborted
		run.FailedStep = out.StepIndex
		run.StepName = out.StepName
		run.Reason = out.Reason
		run.Artifact = out.Artifact
	}
	u.record(ctx, run)
	return run
}

// clock shares the sequencer's time source so one record never mixes two clocks.
func (u BookClass) clock() time.Time {
	if u.Sequencer != nil && u.Sequencer.Now != nil {
		return u.Sequencer.Now()
	}
	return time.Now()
}

func (u BookClass) record(ctx context.Context, r booking.Run) {
	if u.Recorder == nil {
		return
	}
	if err := u.Recorder.Record(ctx, r); err != nil {
		u.Log.Warn().Err(err).Str("run_id", r.ID).Msg("record run failed")
	}
}
