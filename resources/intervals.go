package resources

import (
	"context"
	"time"

	"github.com/goliatone/go-cattr/core"
)

// Interval is the stable client-facing record for a tracked time interval.
type Interval struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	UserID       int64     `json:"user_id"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	MouseFill    int64     `json:"mouse_fill"`
	KeyboardFill int64     `json:"keyboard_fill"`
	ActivityFill int64     `json:"activity_fill"`
}

func RepresentInterval(raw map[string]any) Interval {
	return Interval{
		ID:           readInt64(raw["id"]),
		TaskID:       readInt64(raw["task_id"]),
		UserID:       readInt64(raw["user_id"]),
		StartAt:      readTime(raw["start_at"]),
		EndAt:        readTime(raw["end_at"]),
		MouseFill:    readInt64(raw["mouse_fill"]),
		KeyboardFill: readInt64(raw["keyboard_fill"]),
		ActivityFill: readInt64(raw["activity_fill"]),
	}
}

func (i Interval) Raw() map[string]any {
	return map[string]any{
		"id":            i.ID,
		"task_id":       i.TaskID,
		"user_id":       i.UserID,
		"start_at":      formatTime(i.StartAt),
		"end_at":        formatTime(i.EndAt),
		"mouse_fill":    i.MouseFill,
		"keyboard_fill": i.KeyboardFill,
		"activity_fill": i.ActivityFill,
	}
}

type Intervals struct {
	req core.Requester
}

func NewIntervals(req core.Requester) *Intervals {
	return &Intervals{req: req}
}

func (i *Intervals) List(ctx context.Context, opts core.Options) ([]Interval, error) {
	raw, err := i.req.Get(ctx, "time-intervals/list", opts)
	if err != nil {
		return nil, err
	}
	items := decodeList(raw)
	out := make([]Interval, 0, len(items))
	for _, item := range items {
		out = append(out, RepresentInterval(item))
	}
	return out, nil
}

// Create reports one tracked interval. A screenshot attachment switches the
// request to multipart encoding at the requester.
func (i *Intervals) Create(ctx context.Context, attributes map[string]any, screenshot *core.Attachment, opts core.Options) (Interval, error) {
	body := map[string]any{}
	for key, value := range attributes {
		body[key] = value
	}
	if screenshot != nil {
		body["screenshot"] = *screenshot
	}
	raw, err := i.req.Post(ctx, "time-intervals/create", body, opts)
	if err != nil {
		return Interval{}, err
	}
	return RepresentInterval(decodeItem(raw)), nil
}

func (i *Intervals) Remove(ctx context.Context, id int64, opts core.Options) (bool, error) {
	if id <= 0 {
		return false, core.NewValidationError("id", "interval id must be positive")
	}
	if _, err := i.req.Post(ctx, "time-intervals/remove", map[string]any{"id": id}, opts); err != nil {
		return false, err
	}
	return true, nil
}

func (i *Intervals) BulkRemove(ctx context.Context, ids []int64, opts core.Options) (bool, error) {
	if len(ids) == 0 {
		return false, core.NewValidationError("intervals", "at least one interval id is required")
	}
	for _, id := range ids {
		if id <= 0 {
			return false, core.NewValidationError("intervals", "interval ids must be positive")
		}
	}
	if _, err := i.req.Post(ctx, "time-intervals/bulk-remove", map[string]any{"intervals": ids}, opts); err != nil {
		return false, err
	}
	return true, nil
}
