// Package schedule turns per-domain cron settings into recurring crawl jobs.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCron runs a domain every two hours.
const DefaultCron = "0 */2 * * *"

// Kind is the shape of a schedule rule.
type Kind int

const (
	EveryNHours Kind = iota
	EveryHour
	DailyAt
)

// Rule is the declarative form of a domain's cron setting. Only the minute
// and hour fields are interpreted.
type Rule struct {
	Kind   Kind
	Hours  int // EveryNHours
	Hour   int // DailyAt
	Minute int // DailyAt
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseRule maps a five-field cron expression onto a Rule: "*/N" in the hour
// field means every N hours, "*" every hour, and numeric hour and minute a
// daily run at HH:MM. An empty expression means DefaultCron.
func ParseRule(expr string) (Rule, error) {
	if strings.TrimSpace(expr) == "" {
		expr = DefaultCron
	}
	fields := strings.Fields(expr)
	if len(fields) < 2 {
		return Rule{}, fmt.Errorf("schedule %q: need at least minute and hour fields", expr)
	}
	minute, hour := fields[0], fields[1]

	switch {
	case strings.HasPrefix(hour, "*/"):
		n, err := strconv.Atoi(strings.TrimPrefix(hour, "*/"))
		if err != nil || n <= 0 {
			return Rule{}, fmt.Errorf("schedule %q: invalid hour step %q", expr, hour)
		}
		return Rule{Kind: EveryNHours, Hours: n}, nil
	case hour == "*":
		return Rule{Kind: EveryHour}, nil
	}

	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return Rule{}, fmt.Errorf("schedule %q: invalid hour %q", expr, hour)
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return Rule{}, fmt.Errorf("schedule %q: invalid minute %q", expr, minute)
	}
	return Rule{Kind: DailyAt, Hour: h, Minute: m}, nil
}

// Spec renders the rule as a robfig/cron spec. Interval rules count from the
// moment the scheduler starts.
func (r Rule) Spec() string {
	switch r.Kind {
	case EveryNHours:
		return fmt.Sprintf("@every %dh", r.Hours)
	case EveryHour:
		return "@every 1h"
	default:
		return fmt.Sprintf("%d %d * * *", r.Minute, r.Hour)
	}
}

func (r Rule) String() string {
	switch r.Kind {
	case EveryNHours:
		return fmt.Sprintf("every %d hours", r.Hours)
	case EveryHour:
		return "every hour"
	default:
		return fmt.Sprintf("daily at %02d:%02d", r.Hour, r.Minute)
	}
}

// Next returns the first activation strictly after from.
func (r Rule) Next(from time.Time) (time.Time, error) {
	sched, err := parser.Parse(r.Spec())
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}
