package presets

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"clipforge/internal/api"
	"clipforge/internal/logging"
)

// MediaIDs binds a preset to social-media channel ids.
type MediaIDs struct {
	Insta   string `json:"insta"`
	YouTube string `json:"youtube"`
	TikTok  string `json:"tiktok"`
	X       string `json:"x"`
}

// Options is the fixed set of rendering knobs a preset carries.
type Options struct {
	Filter             string `json:"filter"`
	Font               string `json:"font"`
	FontSize           int    `json:"fontSize"`
	FontCapitalization bool   `json:"fontCapitalization"`
	FontPosition       string `json:"fontPosition"`
	AspectRatio        string `json:"aspectRatio"`
	BackgroundColor    string `json:"backgroundColor"`
	FontColor          string `json:"fontColor"`
	Scaling            int    `json:"scaling"`
	BrollToggle        bool   `json:"brollToggle"`
	GlowColor          string `json:"glowColor"`
	ShadowWidth        int    `json:"shadowWidth"`
	StrokeColor        string `json:"strokeColor"`
	StrokeWidth        int    `json:"strokeWidth"`
}

// Validate rejects incomplete or out-of-range options before any request.
func (o Options) Validate() error {
	required := map[string]string{
		"font":            o.Font,
		"fontPosition":    o.FontPosition,
		"aspectRatio":     o.AspectRatio,
		"backgroundColor": o.BackgroundColor,
		"fontColor":       o.FontColor,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return api.Wrap(api.ErrValidation, "preset", fmt.Sprintf("option %s is not set", field), nil)
		}
	}
	if o.Scaling < 100 || o.Scaling > 200 {
		return api.Wrap(api.ErrValidation, "preset", "scaling must be between 100 and 200", nil)
	}
	return nil
}

// Preset is a saved bundle of rendering options applied during clip
// finalization.
type Preset struct {
	ID       string   `json:"preset_id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Options  Options  `json:"options"`
	MediaIDs MediaIDs `json:"media_ids"`
	IsOwner  bool     `json:"isOwner"`
}

// Service exposes the preset REST surface.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a preset service over the shared API client.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logging.WithComponent(logger, "presets")}
}

// List fetches every preset visible to a workspace.
func (s *Service) List(ctx context.Context, spaceID string) ([]Preset, error) {
	var payload struct {
		Presets []Preset `json:"presets"`
	}
	if err := s.client.GetJSON(ctx, "/get_presets", url.Values{"space_id": {spaceID}}, &payload); err != nil {
		return nil, err
	}
	return payload.Presets, nil
}

// Create submits a new preset and returns it with the server-assigned id.
func (s *Service) Create(ctx context.Context, spaceID, name, color string, options Options, mediaIDs MediaIDs) (*Preset, error) {
	if strings.TrimSpace(name) == "" {
		return nil, api.Wrap(api.ErrValidation, "preset", "name is empty", nil)
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	body := map[string]any{
		"name":      name,
		"options":   options,
		"color":     color,
		"space_id":  spaceID,
		"media_ids": mediaIDs,
	}
	var payload struct {
		PresetID string `json:"preset_id"`
	}
	if err := s.client.PostJSON(ctx, "/create_preset", body, &payload); err != nil {
		return nil, err
	}
	return &Preset{
		ID:       payload.PresetID,
		Name:     name,
		Color:    color,
		Options:  options,
		MediaIDs: mediaIDs,
		IsOwner:  true,
	}, nil
}

// Update replaces an existing preset's fields.
func (s *Service) Update(ctx context.Context, spaceID string, preset Preset) error {
	if strings.TrimSpace(preset.Name) == "" {
		return api.Wrap(api.ErrValidation, "preset", "name is empty", nil)
	}
	if err := preset.Options.Validate(); err != nil {
		return err
	}
	body := map[string]any{
		"name":      preset.Name,
		"options":   preset.Options,
		"color":     preset.Color,
		"space_id":  spaceID,
		"preset_id": preset.ID,
		"media_ids": preset.MediaIDs,
	}
	return s.client.PostJSON(ctx, "/update_preset", body, nil)
}

// Delete removes a preset. The caller owns the confirmation gate.
func (s *Service) Delete(ctx context.Context, spaceID, presetID string) error {
	query := url.Values{
		"preset_id": {presetID},
		"space_id":  {spaceID},
	}
	return s.client.Delete(ctx, "/delete_preset", query)
}
