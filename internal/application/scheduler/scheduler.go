package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Daemon fires Job once per day at a fixed local time. Firings never overlap:
// the job runs on the loop goroutine and the next tick waits for it.
type Daemon struct {
	Hour, Minute int
	Location     *time.Location
	Interval     time.Duration
	Job          func(ctx context.Context, now time.Time)
	Log          zerolog.Logger

	Now func() time.Time
}

// ParseClock reads "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	return t.Hour(), t.Minute(), nil
}

// NextFire is the first instant at or after now that reads hour:minute in loc.
func NextFire(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if at.Before(local) {
		at = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return at
}

func (d *Daemon) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	next := NextFire(d.now(), d.Hour, d.Minute, d.Location)
	d.Log.Info().Time("next", next).Msg("daemon armed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			next = d.tick(ctx, next)
		}
	}
}

// tick runs the job when next has passed and returns the following fire time.
func (d *Daemon) tick(ctx context.Context, next time.Time) time.Time {
	now := d.now()
	if now.Before(next) {
		return next
	}
	d.Job(ctx, now.In(d.Location))
	// Skip the rest of this minute so a fast job doesn't fire twice.
	following := NextFire(now.Add(time.Minute), d.Hour, d.Minute, d.Location)
	d.Log.Info().Time("next", following).Msg("daemon rearmed")
	return following
}

func (d *Daemon) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
