package resources

import (
	"context"
	"time"

	"github.com/goliatone/go-cattr/core"
)

// TimeSummary is the stable client-facing record for a tracked-time total.
type TimeSummary struct {
	Seconds int64     `json:"time"`
	StartAt time.Time `json:"start"`
	EndAt   time.Time `json:"end"`
}

func RepresentTimeSummary(raw map[string]any) TimeSummary {
	return TimeSummary{
		Seconds: readInt64(raw["time"]),
		StartAt: readTime(raw["start"]),
		EndAt:   readTime(raw["end"]),
	}
}

func (t TimeSummary) Raw() map[string]any {
	return map[string]any{
		"time":  t.Seconds,
		"start": formatTime(t.StartAt),
		"end":   formatTime(t.EndAt),
	}
}

type Time struct {
	req core.Requester
}

func NewTime(req core.Requester) *Time {
	return &Time{req: req}
}

// Total returns the tracked-time total for the current user.
func (t *Time) Total(ctx context.Context, opts core.Options) (TimeSummary, error) {
	raw, err := t.req.Get(ctx, "time/total", opts)
	if err != nil {
		return TimeSummary{}, err
	}
	return RepresentTimeSummary(decodeItem(raw)), nil
}

// PerDay returns one summary per tracked day.
func (t *Time) PerDay(ctx context.Context, opts core.Options) ([]TimeSummary, error) {
	raw, err := t.req.Get(ctx, "time/per-day", opts)
	if err != nil {
		return nil, err
	}
	items := decodeList(raw)
	out := make([]TimeSummary, 0, len(items))
	for _, item := range items {
		out = append(out, RepresentTimeSummary(item))
	}
	return out, nil
}
