package library

import (
	"context"
	"strings"
	"sync"

	"clipforge/internal/api"
	"clipforge/internal/spaces"
)

// Tree binds one namespace's Store to the REST service and enforces the
// operation semantics: loading flags only on first fetch of a directory,
// optimistic local mutation after server acknowledgement, staged cut/paste
// moves, and ownership guards on shared folders.
type Tree struct {
	category Category
	svc      *Service
	store    *Store

	mu             sync.Mutex
	loadingFolders bool
	loadingFiles   bool
}

// NewTree constructs a tree over a fresh store.
func NewTree(category Category, svc *Service) *Tree {
	return &Tree{
		category: category,
		svc:      svc,
		store:    NewStore(category, svc.logger),
	}
}

// Category returns the namespace this tree serves.
func (t *Tree) Category() Category { return t.category }

// Store exposes the underlying cache for read access and post-upload inserts.
func (t *Tree) Store() *Store { return t.store }

// Service exposes the REST surface for operations that bypass the cache.
func (t *Tree) Service() *Service { return t.svc }

// Reset discards all cached state. Called on workspace change and logout.
func (t *Tree) Reset() {
	t.store.Reset()
	t.mu.Lock()
	t.loadingFolders = false
	t.loadingFiles = false
	t.mu.Unlock()
}

// LoadingFolders reports whether a first-time folder fetch is in flight.
func (t *Tree) LoadingFolders() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadingFolders
}

// LoadingFiles reports whether a first-time file fetch is in flight.
func (t *Tree) LoadingFiles() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadingFiles
}

func (t *Tree) setLoadingFolders(v bool) {
	t.mu.Lock()
	t.loadingFolders = v
	t.mu.Unlock()
}

func (t *Tree) setLoadingFiles(v bool) {
	t.mu.Lock()
	t.loadingFiles = v
	t.mu.Unlock()
}

// FetchFolders loads a directory's folder listing from the server and caches
// it. The loading flag is raised only when the directory has never been
// fetched, so revisiting a cached directory does not flicker.
func (t *Tree) FetchFolders(ctx context.Context, parentID, spaceID string) ([]Folder, error) {
	if !t.store.HasFolders(parentID) {
		t.setLoadingFolders(true)
	}
	folders, ownerID, err := t.svc.FetchFolders(ctx, t.category, parentID, spaceID)
	t.setLoadingFolders(false)
	if err != nil {
		return nil, err
	}
	t.store.SetFolders(parentID, folders, ownerID)
	return folders, nil
}

// FetchFiles loads a directory's file listing from the server and caches it.
func (t *Tree) FetchFiles(ctx context.Context, parentID, spaceID string) ([]File, error) {
	if !t.store.HasFiles(parentID) {
		t.setLoadingFiles(true)
	}
	files, err := t.svc.FetchFiles(ctx, t.category, parentID, spaceID)
	t.setLoadingFiles(false)
	if err != nil {
		return nil, err
	}
	t.store.SetFiles(parentID, files)
	return files, nil
}

// FetchBreadcrumbs loads the ancestry trail for a directory. The root
// directory needs no round trip.
func (t *Tree) FetchBreadcrumbs(ctx context.Context, id string) ([]Crumb, error) {
	if id == RootID {
		t.store.SetBreadcrumbs(nil)
		return t.store.Breadcrumbs(), nil
	}
	crumbs, err := t.svc.FetchBreadcrumbs(ctx, id)
	if err != nil {
		return nil, err
	}
	t.store.SetBreadcrumbs(crumbs)
	return t.store.Breadcrumbs(), nil
}

// CreateFolder creates a directory on the server, then inserts it locally.
func (t *Tree) CreateFolder(ctx context.Context, parentID, name, spaceID string) (*Folder, error) {
	folderID, err := t.svc.CreateFolder(ctx, t.category, parentID, name, spaceID)
	if err != nil {
		return nil, err
	}
	folder := Folder{ID: folderID, Name: name, Parent: parentID, OwnerID: spaceID}
	t.store.PushFolder(folder)
	return &folder, nil
}

// RenameFolder renames a folder. An empty name is rejected before any
// request is sent, leaving local state untouched.
func (t *Tree) RenameFolder(ctx context.Context, id, parentID, name string) error {
	if strings.TrimSpace(name) == "" {
		return api.Wrap(api.ErrValidation, "rename folder", "name is empty", nil)
	}
	if err := t.svc.Rename(ctx, moveCategoryFolder, id, name); err != nil {
		return err
	}
	t.store.RenameFolder(id, parentID, name)
	return nil
}

// RenameFile renames a file. An empty name is rejected before any request is
// sent, leaving local state untouched.
func (t *Tree) RenameFile(ctx context.Context, id, parentID, name string) error {
	if strings.TrimSpace(name) == "" {
		return api.Wrap(api.ErrValidation, "rename file", "name is empty", nil)
	}
	if err := t.svc.Rename(ctx, string(t.category), id, name); err != nil {
		return err
	}
	t.store.RenameFile(id, parentID, name)
	return nil
}

// DeleteFolder removes a folder on the server, then pops it locally. The
// caller is responsible for the blocking confirmation gate.
func (t *Tree) DeleteFolder(ctx context.Context, id, parentID, spaceID string) error {
	if err := t.svc.DeleteFolder(ctx, t.category, id, spaceID); err != nil {
		return err
	}
	t.store.PopFolder(id, parentID)
	return nil
}

// DeleteFile removes a file on the server, then pops it locally.
func (t *Tree) DeleteFile(ctx context.Context, id, parentID string) error {
	if err := t.svc.DeleteFile(ctx, t.category, id); err != nil {
		return err
	}
	t.store.PopFile(id, parentID)
	return nil
}

// StageFolderMove marks a folder as pending move, replacing any prior stage.
func (t *Tree) StageFolderMove(folder Folder) {
	t.store.StageFolderMove(&folder)
}

// StageFileMove marks a file as pending move, replacing any prior stage.
func (t *Tree) StageFileMove(file File) {
	t.store.StageFileMove(&file)
}

// CompleteFolderMove finishes a staged folder move into destID. Moving into
// the folder's current parent reverts the stage without a server write.
// Moving into a directory owned by another workspace is refused.
func (t *Tree) CompleteFolderMove(ctx context.Context, destID string) error {
	staged := t.store.StagedFolderMove()
	if staged == nil {
		return api.Wrap(api.ErrValidation, "move folder", "no folder staged for move", nil)
	}
	if staged.Parent == destID {
		t.store.StageFolderMove(nil)
		return nil
	}
	if owner, ok := t.store.Owner(destID); ok && owner != staged.OwnerID {
		return api.Wrap(api.ErrForbidden, "move folder", "destination belongs to another workspace", nil)
	}
	if err := t.svc.MoveFolder(ctx, staged.ID, destID); err != nil {
		return err
	}
	t.store.PopFolder(staged.ID, staged.Parent)
	staged.Parent = destID
	t.store.PushFolder(*staged)
	t.store.StageFolderMove(nil)
	return nil
}

// CompleteFileMove finishes a staged file move into destID. Moving into the
// file's current parent reverts the stage without a server write.
func (t *Tree) CompleteFileMove(ctx context.Context, destID string) error {
	staged := t.store.StagedFileMove()
	if staged == nil {
		return api.Wrap(api.ErrValidation, "move file", "no file staged for move", nil)
	}
	if staged.Parent == destID {
		t.store.StageFileMove(nil)
		return nil
	}
	if err := t.svc.MoveFile(ctx, t.category, staged.ID, destID); err != nil {
		return err
	}
	t.store.PopFile(staged.ID, staged.Parent)
	staged.Parent = destID
	t.store.PushFile(*staged)
	t.store.StageFileMove(nil)
	return nil
}

// ChangeTags replaces a file's tags on the server, then locally.
func (t *Tree) ChangeTags(ctx context.Context, file File, tags []string) error {
	if err := t.svc.EditTags(ctx, t.category, file.ID, tags); err != nil {
		return err
	}
	t.store.ChangeTags(file.ID, file.Parent, tags)
	return nil
}

// Share replaces a folder's grant list. Only folders owned by the active
// workspace may be shared.
func (t *Tree) Share(ctx context.Context, folder Folder, spaceID string, grantees []spaces.Space) error {
	if folder.OwnerID != spaceID {
		return api.Wrap(api.ErrForbidden, "share folder", "only the owning workspace can share", nil)
	}
	return t.svc.GrantAccess(ctx, t.category, folder.ID, spaceID, grantees)
}
