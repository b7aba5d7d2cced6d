package resources

import (
	"context"

	"github.com/goliatone/go-cattr/core"
)

// CompanySettings is the stable client-facing record for the instance-wide
// configuration the backend exposes.
type CompanySettings struct {
	Timezone           string `json:"timezone"`
	Language           string `json:"language"`
	WorkTime           int64  `json:"work_time"`
	ScreenshotsEnabled bool   `json:"screenshots_enabled"`
}

func RepresentCompanySettings(raw map[string]any) CompanySettings {
	return CompanySettings{
		Timezone:           readString(raw["timezone"]),
		Language:           readString(raw["language"]),
		WorkTime:           readInt64(raw["work_time"]),
		ScreenshotsEnabled: readBool(raw["screenshots_enabled"]),
	}
}

func (c CompanySettings) Raw() map[string]any {
	return map[string]any{
		"timezone":            c.Timezone,
		"language":            c.Language,
		"work_time":           c.WorkTime,
		"screenshots_enabled": c.ScreenshotsEnabled,
	}
}

// About describes the backend instance as reported by its about endpoint.
type About struct {
	Version   string `json:"version"`
	Instance  string `json:"instance"`
	ImageMode bool   `json:"image_mode"`
}

func RepresentAbout(raw map[string]any) About {
	return About{
		Version:   readString(raw["version"]),
		Instance:  readString(raw["instance"]),
		ImageMode: readBool(raw["image_mode"]),
	}
}

type Company struct {
	req core.Requester
}

func NewCompany(req core.Requester) *Company {
	return &Company{req: req}
}

func (c *Company) About(ctx context.Context, opts core.Options) (About, error) {
	raw, err := c.req.Get(ctx, "about", opts)
	if err != nil {
		return About{}, err
	}
	return RepresentAbout(decodeItem(raw)), nil
}

func (c *Company) Settings(ctx context.Context, opts core.Options) (CompanySettings, error) {
	raw, err := c.req.Get(ctx, "company-settings", opts)
	if err != nil {
		return CompanySettings{}, err
	}
	return RepresentCompanySettings(decodeItem(raw)), nil
}

func (c *Company) Update(ctx context.Context, attributes map[string]any, opts core.Options) (CompanySettings, error) {
	if len(attributes) == 0 {
		return CompanySettings{}, core.NewValidationError("settings", "at least one setting is required")
	}
	raw, err := c.req.Patch(ctx, "company-settings", attributes, opts)
	if err != nil {
		return CompanySettings{}, err
	}
	return RepresentCompanySettings(decodeItem(raw)), nil
}
