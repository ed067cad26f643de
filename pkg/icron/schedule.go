package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type TriggerInfo struct {
	Next       time.Time
	Last       time.Time
	Expression string

	TimeSinceLast time.Duration
	TimeUntilNext time.Duration
}

// lookback windows tried in order when searching for the previous trigger
var lookbacks = []time.Duration{
	time.Hour,
	24 * time.Hour,
	7 * 24 * time.Hour,
	32 * 24 * time.Hour,
	366 * 24 * time.Hour,
}

// GetTriggerInfo evaluates a five field cron expression (descriptors such as
// @daily are accepted) around refTime. Last is zero when nothing fired in
// the past year.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	info := &TriggerInfo{
		Expression: cronExpr,
		Next:       schedule.Next(refTime),
		Last:       previous(schedule, refTime),
	}
	if !info.Last.IsZero() {
		info.TimeSinceLast = refTime.Sub(info.Last)
	}
	info.TimeUntilNext = info.Next.Sub(refTime)
	return info, nil
}

func previous(schedule cron.Schedule, refTime time.Time) time.Time {
	for _, window := range lookbacks {
		t := schedule.Next(refTime.Add(-window))
		if t.IsZero() || t.After(refTime) {
			continue
		}
		for {
			n := schedule.Next(t)
			if n.IsZero() || n.After(refTime) {
				return t
			}
			t = n
		}
	}
	return time.Time{}
}
