package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec polls every ten minutes.
const DefaultSpec = "10m"

// Parse turns a poll schedule into a cron.Schedule.
//
// Accepted forms:
//   - Go duration: "10m", "90s" (fixed interval)
//   - cron descriptor: "@every 10m", "@hourly"
//   - standard cron expression: "*/10 * * * *"
func Parse(spec string) (cron.Schedule, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return nil, fmt.Errorf("schedule required")
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return nil, fmt.Errorf("interval must be > 0, got %s", d)
		}
		return cron.Every(d), nil
	}
	schedule, err := cron.ParseStandard(s)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q (use a duration like '10m' or cron like '*/10 * * * *'): %w", spec, err)
	}
	return schedule, nil
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
