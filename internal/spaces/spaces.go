package spaces

import (
	"context"
	"log/slog"
	"net/url"

	"clipforge/internal/api"
	"clipforge/internal/logging"
)

// Space is a tenant-scoped container for media, presets, and tasks; the unit
// of access control.
type Space struct {
	ID    string `json:"space_id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Service fetches the workspaces accessible to a user.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a workspace service over the shared API client.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logging.WithComponent(logger, "spaces")}
}

// List returns every workspace the user can enter.
func (s *Service) List(ctx context.Context, userID string) ([]Space, error) {
	var payload struct {
		Spaces []Space `json:"spaces"`
	}
	if err := s.client.GetJSON(ctx, "/get_spaces", url.Values{"user_id": {userID}}, &payload); err != nil {
		return nil, err
	}
	return payload.Spaces, nil
}
