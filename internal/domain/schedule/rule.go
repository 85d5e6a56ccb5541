package schedule

import (
	"fmt"
	"slices"
	"time"
)

// Rule says on which weekdays the booker runs and how far ahead it books.
// Run days are expected to equal (target day - LeadDays) mod 7; that is asserted
// by configuration and only reported by Mismatches.
type Rule struct {
	TargetDays Weekdays `yaml:"target_days"`
	RunDays    Weekdays `yaml:"run_days"`
	LeadDays   int      `yaml:"lead_days"`
}

// Decision is the outcome of the gate for one instant.
type Decision struct {
	Now       time.Time
	Proceed   bool
	Target    time.Time
	TargetDay int
}

func DefaultRule() Rule {
	return Rule{
		TargetDays: Weekdays{time.Monday, time.Tuesday, time.Thursday, time.Friday},
		RunDays:    Weekdays{time.Saturday, time.Sunday, time.Tuesday, time.Wednesday},
		LeadDays:   2,
	}
}

// Decide reads nothing but now. The target is always now+LeadDays, even when
// that lands on a weekday outside TargetDays.
func (r Rule) Decide(now time.Time) Decision {
	d := Decision{Now: now}
	if !slices.Contains(r.RunDays, now.Weekday()) {
		return d
	}
	d.Proceed = true
	d.Target = now.AddDate(0, 0, r.LeadDays)
	d.TargetDay = d.Target.Day()
	return d
}

// Mismatches lists run days whose booking target falls outside TargetDays.
func (r Rule) Mismatches() []time.Weekday {
	var out []time.Weekday
	for _, wd := range r.RunDays {
		target := time.Weekday((int(wd) + r.LeadDays%7 + 7) % 7)
		if !slices.Contains(r.TargetDays, target) {
			out = append(out, wd)
		}
	}
	return out
}

func (r Rule) Validate() error {
	if len(r.RunDays) == 0 {
		return fmt.Errorf("run_days required")
	}
	if len(r.TargetDays) == 0 {
		return fmt.Errorf("target_days required")
	}
	if r.LeadDays < 0 || r.LeadDays > 30 {
		return fmt.Errorf("lead_days must be between 0 and 30 (got %d)", r.LeadDays)
	}
	return nil
}
