package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 5, 0, 0, time.UTC)
}

func TestDecideSaturdayBooksMonday(t *testing.T) {
	// 2026-10-17 is a Saturday.
	now := day(2026, time.October, 17)
	require.Equal(t, time.Saturday, now.Weekday())

	d := DefaultRule().Decide(now)
	require.True(t, d.Proceed)
	require.Equal(t, time.Monday, d.Target.Weekday())
	require.Equal(t, 19, d.TargetDay)
}

func TestDecideMondaySkips(t *testing.T) {
	now := day(2026, time.October, 19)
	d := DefaultRule().Decide(now)
	require.False(t, d.Proceed)
	require.Zero(t, d.TargetDay)
	require.True(t, d.Target.IsZero())
}

func TestDecideEveryWeekday(t *testing.T) {
	r := DefaultRule()
	start := day(2026, time.October, 11) // Sunday
	for i := 0; i < 7; i++ {
		now := start.AddDate(0, 0, i)
		d := r.Decide(now)
		want := false
		for _, wd := range r.RunDays {
			if wd == now.Weekday() {
				want = true
			}
		}
		require.Equal(t, want, d.Proceed, now.Weekday().String())
		if d.Proceed {
			require.Equal(t, now.AddDate(0, 0, 2).Day(), d.TargetDay)
		}
	}
}

func TestDecideLeadIsConstantAcrossWeekdays(t *testing.T) {
	// Thursday target is reached from Tuesday with lead 2, but a rule that also
	// runs on Thursday still books Saturday: the lead is not per-target.
	r := Rule{
		TargetDays: Weekdays{time.Thursday},
		RunDays:    Weekdays{time.Tuesday, time.Thursday},
		LeadDays:   2,
	}
	d := r.Decide(day(2026, time.October, 22))
	require.True(t, d.Proceed)
	require.Equal(t, time.Saturday, d.Target.Weekday())
	require.Equal(t, 24, d.TargetDay)
	require.Equal(t, []time.Weekday{time.Thursday}, r.Mismatches())
}

func TestDecideMonthRollover(t *testing.T) {
	d := DefaultRule().Decide(day(2026, time.October, 31)) // Saturday
	require.True(t, d.Proceed)
	require.Equal(t, time.November, d.Target.Month())
	require.Equal(t, 2, d.TargetDay)
}

func TestDefaultRuleIsConsistent(t *testing.T) {
	require.Empty(t, DefaultRule().Mismatches())
	require.NoError(t, DefaultRule().Validate())
}

func TestValidate(t *testing.T) {
	r := DefaultRule()
	r.LeadDays = -1
	require.Error(t, r.Validate())

	r = DefaultRule()
	r.RunDays = nil
	require.Error(t, r.Validate())
}

func TestWeekdaysYAML(t *testing.T) {
	var r Rule
	err := yaml.Unmarshal([]byte("target_days: [monday, Tue]\nrun_days: [sat]\nlead_days: 2\n"), &r)
	require.NoError(t, err)
	require.Equal(t, Weekdays{time.Monday, time.Tuesday}, r.TargetDays)
	require.Equal(t, Weekdays{time.Saturday}, r.RunDays)

	err = yaml.Unmarshal([]byte("run_days: [funday]\n"), &r)
	require.Error(t, err)

	_, err = ParseWeekday("mo")
	require.Error(t, err)
}
