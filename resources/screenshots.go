package resources

import (
	"context"
	"time"

	"github.com/goliatone/go-cattr/core"
)

// Screenshot is the stable client-facing record for a captured screenshot.
type Screenshot struct {
	ID             int64     `json:"id"`
	TimeIntervalID int64     `json:"time_interval_id"`
	Path           string    `json:"path"`
	ThumbnailPath  string    `json:"thumbnail_path"`
	CreatedAt      time.Time `json:"created_at"`
}

func RepresentScreenshot(raw map[string]any) Screenshot {
	return Screenshot{
		ID:             readInt64(raw["id"]),
		TimeIntervalID: readInt64(raw["time_interval_id"]),
		Path:           readString(raw["path"]),
		ThumbnailPath:  readString(raw["thumbnail_path"]),
		CreatedAt:      readTime(raw["created_at"]),
	}
}

func (s Screenshot) Raw() map[string]any {
	return map[string]any{
		"id":               s.ID,
		"time_interval_id": s.TimeIntervalID,
		"path":             s.Path,
		"thumbnail_path":   s.ThumbnailPath,
		"created_at":       formatTime(s.CreatedAt),
	}
}

type Screenshots struct {
	req core.Requester
}

func NewScreenshots(req core.Requester) *Screenshots {
	return &Screenshots{req: req}
}

func (s *Screenshots) List(ctx context.Context, opts core.Options) ([]Screenshot, error) {
	raw, err := s.req.Get(ctx, "screenshots/list", opts)
	if err != nil {
		return nil, err
	}
	items := decodeList(raw)
	out := make([]Screenshot, 0, len(items))
	for _, item := range items {
		out = append(out, RepresentScreenshot(item))
	}
	return out, nil
}

// Create uploads one screenshot for an interval; the image always goes over
// the wire as a multipart attachment.
func (s *Screenshots) Create(ctx context.Context, intervalID int64, image core.Attachment, opts core.Options) (Screenshot, error) {
	if intervalID <= 0 {
		return Screenshot{}, core.NewValidationError("time_interval_id", "interval id must be positive")
	}
	if len(image.Data) == 0 {
		return Screenshot{}, core.NewValidationError("screenshot", "screenshot data is required")
	}
	raw, err := s.req.Post(ctx, "screenshots/create", map[string]any{
		"time_interval_id": intervalID,
		"screenshot":       image,
	}, opts)
	if err != nil {
		return Screenshot{}, err
	}
	return RepresentScreenshot(decodeItem(raw)), nil
}

func (s *Screenshots) Remove(ctx context.Context, id int64, opts core.Options) (bool, error) {
	if id <= 0 {
		return false, core.NewValidationError("id", "screenshot id must be positive")
	}
	if _, err := s.req.Post(ctx, "screenshots/remove", map[string]any{"id": id}, opts); err != nil {
		return false, err
	}
	return true, nil
}
