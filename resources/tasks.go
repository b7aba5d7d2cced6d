package resources

import (
	"context"
	"strconv"
	"time"

	"github.com/goliatone/go-cattr/core"
)

// Task is the stable client-facing record for a backend task.
type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriorityID  int64     `json:"priority_id"`
	Important   bool      `json:"important"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RepresentTask maps the backend's raw field names onto the stable record.
// It is pure and idempotent over its own Raw output.
func RepresentTask(raw map[string]any) Task {
	name := readString(raw["task_name"])
	if name == "" {
		name = readString(raw["name"])
	}
	return Task{
		ID:          readInt64(raw["id"]),
		ProjectID:   readInt64(raw["project_id"]),
		Name:        name,
		Description: readString(raw["description"]),
		PriorityID:  readInt64(raw["priority_id"]),
		Important:   readBool(raw["important"]),
		URL:         readString(raw["url"]),
		CreatedAt:   readTime(raw["created_at"]),
		UpdatedAt:   readTime(raw["updated_at"]),
	}
}

// Raw round-trips the record back into the backend's field names.
func (t Task) Raw() map[string]any {
	return map[string]any{
		"id":          t.ID,
		"project_id":  t.ProjectID,
		"task_name":   t.Name,
		"description": t.Description,
		"priority_id": t.PriorityID,
		"important":   t.Important,
		"url":         t.URL,
		"created_at":  formatTime(t.CreatedAt),
		"updated_at":  formatTime(t.UpdatedAt),
	}
}

type Tasks struct {
	req core.Requester
}

func NewTasks(req core.Requester) *Tasks {
	return &Tasks{req: req}
}

func (t *Tasks) List(ctx context.Context, opts core.Options) ([]Task, error) {
	raw, err := t.req.Get(ctx, "tasks/list", opts)
	if err != nil {
		return nil, err
	}
	items := decodeList(raw)
	out := make([]Task, 0, len(items))
	for _, item := range items {
		out = append(out, RepresentTask(item))
	}
	return out, nil
}

func (t *Tasks) Show(ctx context.Context, id int64, opts core.Options) (Task, error) {
	if id <= 0 {
		return Task{}, core.NewValidationError("id", "task id must be positive")
	}
	raw, err := t.req.Get(ctx, "tasks/show?id="+strconv.FormatInt(id, 10), opts)
	if err != nil {
		return Task{}, err
	}
	return RepresentTask(decodeItem(raw)), nil
}

func (t *Tasks) Create(ctx context.Context, attributes map[string]any, opts core.Options) (Task, error) {
	raw, err := t.req.Post(ctx, "tasks/create", attributes, opts)
	if err != nil {
		return Task{}, err
	}
	return RepresentTask(decodeItem(raw)), nil
}

func (t *Tasks) Update(ctx context.Context, id int64, attributes map[string]any, opts core.Options) (Task, error) {
	if id <= 0 {
		return Task{}, core.NewValidationError("id", "task id must be positive")
	}
	body := map[string]any{"id": id}
	for key, value := range attributes {
		body[key] = value
	}
	raw, err := t.req.Post(ctx, "tasks/edit", body, opts)
	if err != nil {
		return Task{}, err
	}
	return RepresentTask(decodeItem(raw)), nil
}

func (t *Tasks) Remove(ctx context.Context, id int64, opts core.Options) (bool, error) {
	if id <= 0 {
		return false, core.NewValidationError("id", "task id must be positive")
	}
	if _, err := t.req.Post(ctx, "tasks/remove", map[string]any{"id": id}, opts); err != nil {
		return false, err
	}
	return true, nil
}
