package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const captureTimeout = 20 * time.Second

type State int

const (
	NotStarted State = iota
	Running
	Aborted
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Aborted:
		return "aborted"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Outcome is what a run reports. Failures never escape Run as errors; they
// collapse into State=Aborted with a free-text Reason.
type Outcome struct {
	State     State
	StepIndex int // failing step, -1 unless aborted
	StepName  string
	Reason    string
	Artifact  string // screenshot path, empty when none was written
	TornDown  bool
	Started   time.Time
	Finished  time.Time
}

// Sequencer executes steps in order against one session.
type Sequencer struct {
	Log          zerolog.Logger
	ArtifactPath string

	// SettleDelay follows every scroll before the element is located again.
	SettleDelay time.Duration
	// GraceDelay precedes teardown so trailing network activity can finish.
	GraceDelay time.Duration

	Sleep func(ctx context.Context, d time.Duration)
	Now   func() time.Time
}

func New(log zerolog.Logger, artifactPath string) *Sequencer {
	return &Sequencer{
		Log:          log,
		ArtifactPath: artifactPath,
		SettleDelay:  500 * time.Millisecond,
		GraceDelay:   10 * time.Second,
		Sleep:        sleepCtx,
		Now:          time.Now,
	}
}

// Run drives sess through steps and always closes sess exactly once before
// returning, whatever happened.
func (s *Sequencer) Run(ctx context.Context, sess Session, steps []Step) (out Outcome) {
	out = Outcome{State: NotStarted, StepIndex: -1, Started: s.now()}
	defer func() {
		s.teardown(ctx, sess)
		out.TornDown = true
		out.Finished = s.now()
	}()

	out.State = Running
	for i, st := range steps {
		log := s.Log.With().Int("step", i).Str("name", st.Name).Logger()
		log.Info().Str("action", st.Action.String()).Msg("step start")

		err := s.runStep(ctx, sess, st)
		if err == nil {
			log.Debug().Msg("step done")
			continue
		}
		if st.Optional {
			log.Warn().Err(err).Msg("optional step failed, continuing")
			continue
		}

		out.State = Aborted
		out.StepIndex = i
		out.StepName = st.Name
		out.Reason = err.Error()
		log.Error().Err(err).Msg("run failed")
		out.Artifact = s.capture(ctx, sess)
		return out
	}
	out.State = Completed
	s.Log.Info().Int("steps", len(steps)).Msg("run completed")
	return out
}

// runStep converts panics from the driver into step errors so the run still
// reaches capture and teardown.
func (s *Sequencer) runStep(ctx context.Context, sess Session, st Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.exec(ctx, sess, st)
}

func (s *Sequencer) exec(ctx context.Context, sess Session, st Step) error {
	find := func(ready Readiness) (Element, error) {
		el, err := sess.Find(ctx, st.Locator, ready, st.timeout())
		if err != nil {
			return nil, fmt.Errorf("%s not %s: %w", st.Locator, ready, err)
		}
		return el, nil
	}

	switch st.Action {
	case Navigate:
		if err := sess.Navigate(ctx, st.Value); err != nil {
			return fmt.Errorf("navigate %s: %w", st.Value, err)
		}
		return nil

	case Await:
		_, err := find(st.Ready)
		return err

	case Click:
		el, err := find(st.Ready)
		if err != nil {
			return err
		}
		return el.Click(ctx)

	case Input:
		el, err := find(st.Ready)
		if err != nil {
			return err
		}
		return el.Input(ctx, st.Value)

	case EnsureSelected:
		el, err := find(SelectedKnown)
		if err != nil {
			return err
		}
		selected, err := el.Selected(ctx)
		if err != nil {
			return fmt.Errorf("read selected state: %w", err)
		}
		if selected {
			s.Log.Debug().Str("name", st.Name).Msg("already selected")
			return nil
		}
		if el, err = find(Clickable); err != nil {
			return err
		}
		return el.Click(ctx)

	case ScrollClick:
		el, err := find(Present)
		if err != nil {
			return err
		}
		if err := el.ScrollIntoView(ctx); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		s.sleep(ctx, s.SettleDelay)
		// The pre-scroll handle may be detached by reflow; act on a fresh one.
		if el, err = find(Clickable); err != nil {
			return err
		}
		return el.Click(ctx)

	default:
		return fmt.Errorf("unknown action %d", st.Action)
	}
}

// capture outlives a cancelled run context so an interrupted run still
// leaves its screenshot.
func (s *Sequencer) capture(ctx context.Context, sess Session) string {
	if s.ArtifactPath == "" {
		return ""
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), captureTimeout)
	defer cancel()
	if err := sess.Screenshot(cctx, s.ArtifactPath); err != nil {
		s.Log.Error().Err(err).Msg("screenshot failed")
		return ""
	}
	s.Log.Info().Str("path", s.ArtifactPath).Msg("screenshot saved")
	return s.ArtifactPath
}

func (s *Sequencer) teardown(ctx context.Context, sess Session) {
	s.Log.Info().Dur("grace", s.GraceDelay).Msg("closing browser")
	s.sleep(ctx, s.GraceDelay)
	if err := sess.Close(); err != nil {
		s.Log.Warn().Err(err).Msg("browser close failed")
	}
}

func (s *Sequencer) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if s.Sleep != nil {
		s.Sleep(ctx, d)
		return
	}
	sleepCtx(ctx, d)
}

func (s *Sequencer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
