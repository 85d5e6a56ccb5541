package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func madrid(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	return loc
}

func TestNextFire(t *testing.T) {
	loc := madrid(t)

	before := time.Date(2026, time.October, 17, 0, 0, 30, 0, loc)
	require.Equal(t, time.Date(2026, time.October, 17, 0, 1, 0, 0, loc), NextFire(before, 0, 1, loc))

	after := time.Date(2026, time.October, 17, 0, 2, 0, 0, loc)
	require.Equal(t, time.Date(2026, time.October, 18, 0, 1, 0, 0, loc), NextFire(after, 0, 1, loc))

	exact := time.Date(2026, time.October, 17, 0, 1, 0, 0, loc)
	require.Equal(t, exact, NextFire(exact, 0, 1, loc))
}

func TestNextFireUsesLocation(t *testing.T) {
	loc := madrid(t)
	// 22:30 UTC on Oct 16 is already 00:30 on Oct 17 in Madrid (UTC+2).
	now := time.Date(2026, time.October, 16, 22, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, time.October, 17, 8, 0, 0, 0, loc), NextFire(now, 8, 0, loc))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("00:05")
	require.NoError(t, err)
	require.Equal(t, 0, h)
	require.Equal(t, 5, m)

	_, _, err = ParseClock("25:00")
	require.Error(t, err)
}

func TestTickFiresOncePerDay(t *testing.T) {
	loc := madrid(t)
	now := time.Date(2026, time.October, 17, 0, 5, 0, 0, loc)
	var fired []time.Time
	d := &Daemon{
		Hour: 0, Minute: 5, Location: loc, Log: zerolog.Nop(),
		Now: func() time.Time { return now },
		Job: func(ctx context.Context, at time.Time) { fired = append(fired, at) },
	}

	next := NextFire(now, 0, 5, loc)
	next = d.tick(context.Background(), next)
	require.Len(t, fired, 1)
	require.Equal(t, time.Date(2026, time.October, 18, 0, 5, 0, 0, loc), next)

	now = now.Add(20 * time.Second)
	next = d.tick(context.Background(), next)
	require.Len(t, fired, 1)

	now = time.Date(2026, time.October, 18, 0, 5, 10, 0, loc)
	d.tick(context.Background(), next)
	require.Len(t, fired, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &Daemon{Location: time.UTC, Interval: time.Millisecond, Log: zerolog.Nop(), Job: func(context.Context, time.Time) {}}
	require.ErrorIs(t, d.Run(ctx), context.Canceled)
}
