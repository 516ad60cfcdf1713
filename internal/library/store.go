package library

import (
	"log/slog"
	"sync"

	"clipforge/internal/logging"
)

// Store holds the cached tree state for one namespace: a normalized mapping
// from parent directory id to its child folders and files, populated lazily
// per visited directory. Once a parent id is set it is authoritative until a
// mutation, an Invalidate, or a Reset replaces it.
//
// Mutations are local-only; callers apply them after the server acknowledges
// the corresponding request. Missing-parent mutations are logged no-ops
// rather than errors, favoring availability.
type Store struct {
	category Category
	logger   *slog.Logger

	mu           sync.Mutex
	folders      map[string][]Folder
	folderOwners map[string]string
	files        map[string][]File
	breadcrumbs  []Crumb
	moveFolder   *Folder
	moveFile     *File
}

// NewStore constructs an empty tree store for one namespace.
func NewStore(category Category, logger *slog.Logger) *Store {
	s := &Store{
		category: category,
		logger:   logging.WithComponent(logger, "tree."+string(category)),
	}
	s.reset()
	return s
}

// Category returns the namespace this store caches.
func (s *Store) Category() Category { return s.category }

// Reset discards every cached listing, owner, breadcrumb, and staged move.
// Called unconditionally when the active workspace changes.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) reset() {
	s.folders = make(map[string][]Folder)
	s.folderOwners = make(map[string]string)
	s.files = make(map[string][]File)
	s.breadcrumbs = []Crumb{{ID: RootID, Name: s.category.DisplayName()}}
	s.moveFolder = nil
	s.moveFile = nil
}

// HasFolders reports whether a directory's folder listing is cached.
func (s *Store) HasFolders(parentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.folders[parentID]
	return ok
}

// HasFiles reports whether a directory's file listing is cached.
func (s *Store) HasFiles(parentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[parentID]
	return ok
}

// SetFolders replaces the folder listing and owner for a directory.
func (s *Store) SetFolders(parentID string, folders []Folder, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[parentID] = append([]Folder(nil), folders...)
	s.folderOwners[parentID] = ownerID
}

// Folders returns the cached folder listing for a directory.
func (s *Store) Folders(parentID string) ([]Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	folders, ok := s.folders[parentID]
	if !ok {
		return nil, false
	}
	return append([]Folder(nil), folders...), true
}

// Owner returns the owning workspace id recorded for a directory.
func (s *Store) Owner(parentID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.folderOwners[parentID]
	return owner, ok
}

// SetFiles replaces the file listing for a directory.
func (s *Store) SetFiles(parentID string, files []File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[parentID] = append([]File(nil), files...)
}

// Files returns the cached file listing for a directory.
func (s *Store) Files(parentID string) ([]File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, ok := s.files[parentID]
	if !ok {
		return nil, false
	}
	return append([]File(nil), files...), true
}

// PushFolder appends a folder under its parent's cached listing.
func (s *Store) PushFolder(folder Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[folder.Parent]; !ok {
		s.logger.Debug("push folder into unfetched parent skipped", "parent", folder.Parent, "id", folder.ID)
		return
	}
	s.folders[folder.Parent] = append(s.folders[folder.Parent], folder)
}

// PopFolder removes a folder by id from a parent's cached listing. Removing
// an absent id is a no-op.
func (s *Store) PopFolder(id, parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.folders[parentID]
	if !ok {
		return
	}
	kept := listing[:0]
	for _, folder := range listing {
		if folder.ID != id {
			kept = append(kept, folder)
		}
	}
	s.folders[parentID] = kept
}

// RenameFolder updates a folder's name in place.
func (s *Store) RenameFolder(id, parentID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.folders[parentID]
	if !ok {
		s.logger.Debug("rename in unfetched parent skipped", "parent", parentID, "id", id)
		return
	}
	for i := range listing {
		if listing[i].ID == id {
			listing[i].Name = name
			return
		}
	}
	s.logger.Debug("rename target not found", "parent", parentID, "id", id)
}

// PushFile appends a file under its parent's cached listing.
func (s *Store) PushFile(file File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[file.Parent]; !ok {
		s.logger.Debug("push file into unfetched parent skipped", "parent", file.Parent, "id", file.ID)
		return
	}
	s.files[file.Parent] = append(s.files[file.Parent], file)
}

// PopFile removes a file by id from a parent's cached listing. Removing an
// absent id is a no-op.
func (s *Store) PopFile(id, parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.files[parentID]
	if !ok {
		return
	}
	kept := listing[:0]
	for _, file := range listing {
		if file.ID != id {
			kept = append(kept, file)
		}
	}
	s.files[parentID] = kept
}

// RenameFile updates a file's name in place.
func (s *Store) RenameFile(id, parentID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.files[parentID]
	if !ok {
		s.logger.Debug("rename in unfetched parent skipped", "parent", parentID, "id", id)
		return
	}
	for i := range listing {
		if listing[i].ID == id {
			listing[i].Name = name
			return
		}
	}
	s.logger.Debug("rename target not found", "parent", parentID, "id", id)
}

// ChangeTags replaces a file's tag set in place.
func (s *Store) ChangeTags(id, parentID string, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.files[parentID]
	if !ok {
		s.logger.Debug("tag change in unfetched parent skipped", "parent", parentID, "id", id)
		return
	}
	for i := range listing {
		if listing[i].ID == id {
			listing[i].Tags = append([]string(nil), tags...)
			return
		}
	}
}

// StageFolderMove stages a folder for a cut/paste move, silently replacing
// any previously staged folder. Passing nil clears the stage.
func (s *Store) StageFolderMove(folder *Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if folder == nil {
		s.moveFolder = nil
		return
	}
	staged := *folder
	s.moveFolder = &staged
}

// StagedFolderMove returns the folder currently staged for a move, if any.
func (s *Store) StagedFolderMove() *Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moveFolder == nil {
		return nil
	}
	staged := *s.moveFolder
	return &staged
}

// StageFileMove stages a file for a cut/paste move, silently replacing any
// previously staged file. Passing nil clears the stage.
func (s *Store) StageFileMove(file *File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if file == nil {
		s.moveFile = nil
		return
	}
	staged := *file
	s.moveFile = &staged
}

// StagedFileMove returns the file currently staged for a move, if any.
func (s *Store) StagedFileMove() *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moveFile == nil {
		return nil
	}
	staged := *s.moveFile
	return &staged
}

// SetBreadcrumbs replaces the breadcrumb trail, prepending the namespace root.
func (s *Store) SetBreadcrumbs(crumbs []Crumb) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trail := make([]Crumb, 0, len(crumbs)+1)
	trail = append(trail, Crumb{ID: RootID, Name: s.category.DisplayName()})
	trail = append(trail, crumbs...)
	s.breadcrumbs = trail
}

// Breadcrumbs returns the current breadcrumb trail.
func (s *Store) Breadcrumbs() []Crumb {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Crumb(nil), s.breadcrumbs...)
}

// Invalidate drops the cached listings for one directory so the next fetch
// re-enters a loading state.
func (s *Store) Invalidate(parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.folders, parentID)
	delete(s.folderOwners, parentID)
	delete(s.files, parentID)
}
