// Package schedule decides when passive maintenance is due, based on
// a cron expression. There is no daemon and no timers: due-ness is
// evaluated once per invocation, the way git's auto-gc piggybacks on
// ordinary commands.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts standard five-field cron expressions plus
// descriptors such as @daily.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSpec validates a cron expression
func ValidateSpec(spec string) error {
	_, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// Due reports whether a maintenance slot has passed since the last
// run. A zero lastRun means maintenance never ran and is always due.
func Due(spec string, lastRun, now time.Time) (bool, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return false, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	if lastRun.IsZero() {
		return true, nil
	}

	return !sched.Next(lastRun).After(now), nil
}
