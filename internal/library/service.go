package library

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"clipforge/internal/api"
	"clipforge/internal/logging"
	"clipforge/internal/spaces"
)

// moveCategoryFolder is the move-endpoint category for folders; files use
// their namespace category.
const moveCategoryFolder = "folder"

// Service wraps the REST contract for the folder/file trees.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a tree service over the shared API client.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logging.WithComponent(logger, "library")}
}

// FetchFolders lists the child folders of a parent directory together with
// the owning workspace id of that directory.
func (s *Service) FetchFolders(ctx context.Context, category Category, parentID, spaceID string) ([]Folder, string, error) {
	query := url.Values{
		"parent_id": {parentID},
		"category":  {string(category)},
		"space_id":  {spaceID},
	}
	var payload struct {
		Folders []Folder `json:"folders"`
		OwnerID string   `json:"owner_id"`
	}
	if err := s.client.GetJSON(ctx, "/fetch_folders", query, &payload); err != nil {
		return nil, "", err
	}
	return payload.Folders, payload.OwnerID, nil
}

// FetchFiles lists the child files of a parent directory.
func (s *Service) FetchFiles(ctx context.Context, category Category, parentID, spaceID string) ([]File, error) {
	query := url.Values{
		"parent_id": {parentID},
		"space_id":  {spaceID},
	}
	var payload struct {
		Broll []File `json:"broll"`
		Music []File `json:"music"`
		Items []File `json:"items"`
	}
	if err := s.client.GetJSON(ctx, "/fetch_"+string(category), query, &payload); err != nil {
		return nil, err
	}
	switch {
	case payload.Broll != nil:
		return payload.Broll, nil
	case payload.Music != nil:
		return payload.Music, nil
	default:
		return payload.Items, nil
	}
}

// FetchBreadcrumbs resolves the ancestry path of a directory.
func (s *Service) FetchBreadcrumbs(ctx context.Context, id string) ([]Crumb, error) {
	var payload struct {
		Breadcrumbs []Crumb `json:"breadcrumbs"`
	}
	if err := s.client.GetJSON(ctx, "/get_breadcrumbs", url.Values{"id": {id}}, &payload); err != nil {
		return nil, err
	}
	return payload.Breadcrumbs, nil
}

// CreateFolder creates a directory and returns its server-assigned id.
func (s *Service) CreateFolder(ctx context.Context, category Category, parentID, name, spaceID string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", api.Wrap(api.ErrValidation, "create folder", "folder name is empty", nil)
	}
	body := map[string]string{
		"category":    string(category),
		"parent_id":   parentID,
		"folder_name": name,
		"space_id":    spaceID,
	}
	var payload struct {
		FolderID string `json:"folder_id"`
	}
	if err := s.client.PostJSON(ctx, "/create_folder", body, &payload); err != nil {
		return "", err
	}
	return payload.FolderID, nil
}

// MoveFolder reparents a folder under a new directory.
func (s *Service) MoveFolder(ctx context.Context, sourceID, destID string) error {
	return s.move(ctx, sourceID, destID, moveCategoryFolder)
}

// MoveFile reparents a file under a new directory.
func (s *Service) MoveFile(ctx context.Context, category Category, sourceID, destID string) error {
	return s.move(ctx, sourceID, destID, string(category))
}

func (s *Service) move(ctx context.Context, sourceID, destID, category string) error {
	body := map[string]string{
		"sour_id":  sourceID,
		"dest_id":  destID,
		"category": category,
	}
	return s.client.PostJSON(ctx, "/move", body, nil)
}

// Rename updates the display name of a folder or file.
func (s *Service) Rename(ctx context.Context, category, id, name string) error {
	body := map[string]string{
		"id":       id,
		"name":     name,
		"category": category,
	}
	return s.client.PostJSON(ctx, "/update_name", body, nil)
}

// DeleteFolder removes a directory.
func (s *Service) DeleteFolder(ctx context.Context, category Category, id, spaceID string) error {
	query := url.Values{
		"id":       {id},
		"category": {string(category)},
		"space_id": {spaceID},
	}
	return s.client.Delete(ctx, "/delete", query)
}

// DeleteFile removes a media file.
func (s *Service) DeleteFile(ctx context.Context, category Category, id string) error {
	query := url.Values{
		"id":       {id},
		"category": {string(category)},
	}
	return s.client.Delete(ctx, "/delete_video", query)
}

// SharedSpaces lists the workspaces a folder is currently shared with.
func (s *Service) SharedSpaces(ctx context.Context, folderID, spaceID string) ([]spaces.Space, error) {
	query := url.Values{
		"folder_id": {folderID},
		"space_id":  {spaceID},
	}
	var payload struct {
		Spaces []spaces.Space `json:"spaces"`
	}
	if err := s.client.GetJSON(ctx, "/fetch_shared_spaces_folders", query, &payload); err != nil {
		return nil, err
	}
	return payload.Spaces, nil
}

// SpacesOfUser resolves the workspaces reachable by an email address, used to
// pick share grant targets.
func (s *Service) SpacesOfUser(ctx context.Context, email string) ([]spaces.Space, error) {
	var payload struct {
		Spaces []spaces.Space `json:"spaces"`
	}
	if err := s.client.GetJSON(ctx, "/fetch_spaces_of_user", url.Values{"email": {email}}, &payload); err != nil {
		return nil, err
	}
	return payload.Spaces, nil
}

// GrantAccess replaces the share list of a folder with the given workspaces.
// Sharing is folder-only and owner-only; the backend enforces ownership, the
// caller enforces the folder restriction by construction.
func (s *Service) GrantAccess(ctx context.Context, category Category, folderID, spaceID string, grantees []spaces.Space) error {
	body := map[string]any{
		"folder_id": folderID,
		"space_id":  spaceID,
		"spaces":    grantees,
		"category":  string(category),
	}
	return s.client.PostJSON(ctx, "/grant_folder_access", body, nil)
}

// AllTags lists every tag known to a namespace within a workspace.
func (s *Service) AllTags(ctx context.Context, category Category, spaceID string) ([]string, error) {
	query := url.Values{
		"space_id": {spaceID},
		"category": {string(category)},
	}
	var payload struct {
		Tags []string `json:"tags"`
	}
	if err := s.client.GetJSON(ctx, "/fetch_all_tags", query, &payload); err != nil {
		return nil, err
	}
	return payload.Tags, nil
}

// EditTags replaces the tag set of a file.
func (s *Service) EditTags(ctx context.Context, category Category, fileID string, tags []string) error {
	body := map[string]any{
		"file_id":  fileID,
		"category": string(category),
		"tags":     tags,
	}
	return s.client.PostJSON(ctx, "/edit_tags", body, nil)
}
