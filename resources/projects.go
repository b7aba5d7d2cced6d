package resources

import (
	"context"
	"strconv"
	"time"

	"github.com/goliatone/go-cattr/core"
)

// Project is the stable client-facing record for a backend project.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Important   bool      `json:"important"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func RepresentProject(raw map[string]any) Project {
	return Project{
		ID:          readInt64(raw["id"]),
		Name:        readString(raw["name"]),
		Description: readString(raw["description"]),
		Important:   readBool(raw["important"]),
		Source:      readString(raw["source"]),
		CreatedAt:   readTime(raw["created_at"]),
		UpdatedAt:   readTime(raw["updated_at"]),
	}
}

func (p Project) Raw() map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"important":   p.Important,
		"source":      p.Source,
		"created_at":  formatTime(p.CreatedAt),
		"updated_at":  formatTime(p.UpdatedAt),
	}
}

type Projects struct {
	req core.Requester
}

func NewProjects(req core.Requester) *Projects {
	return &Projects{req: req}
}

func (p *Projects) List(ctx context.Context, opts core.Options) ([]Project, error) {
	raw, err := p.req.Get(ctx, "projects/list", opts)
	if err != nil {
		return nil, err
	}
	items := decodeList(raw)
	out := make([]Project, 0, len(items))
	for _, item := range items {
		out = append(out, RepresentProject(item))
	}
	return out, nil
}

func (p *Projects) Show(ctx context.Context, id int64, opts core.Options) (Project, error) {
	if id <= 0 {
		return Project{}, core.NewValidationError("id", "project id must be positive")
	}
	raw, err := p.req.Get(ctx, "projects/show?id="+strconv.FormatInt(id, 10), opts)
	if err != nil {
		return Project{}, err
	}
	return RepresentProject(decodeItem(raw)), nil
}

func (p *Projects) Create(ctx context.Context, attributes map[string]any, opts core.Options) (Project, error) {
	raw, err := p.req.Post(ctx, "projects/create", attributes, opts)
	if err != nil {
		return Project{}, err
	}
	return RepresentProject(decodeItem(raw)), nil
}

func (p *Projects) Update(ctx context.Context, id int64, attributes map[string]any, opts core.Options) (Project, error) {
	if id <= 0 {
		return Project{}, core.NewValidationError("id", "project id must be positive")
	}
	body := map[string]any{"id": id}
	for key, value := range attributes {
		body[key] = value
	}
	raw, err := p.req.Post(ctx, "projects/edit", body, opts)
	if err != nil {
		return Project{}, err
	}
	return RepresentProject(decodeItem(raw)), nil
}

func (p *Projects) Remove(ctx context.Context, id int64, opts core.Options) (bool, error) {
	if id <= 0 {
		return false, core.NewValidationError("id", "project id must be positive")
	}
	if _, err := p.req.Post(ctx, "projects/remove", map[string]any{"id": id}, opts); err != nil {
		return false, err
	}
	return true, nil
}
