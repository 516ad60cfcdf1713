package library

import (
	"testing"

	"clipforge/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(CategoryBroll, logging.Nop())
}

func TestPushFolderRequiresFetchedParent(t *testing.T) {
	store := newTestStore(t)

	store.PushFolder(Folder{ID: "f1", Name: "Clips", Parent: RootID})
	if store.HasFolders(RootID) {
		t.Fatal("push into an unfetched directory must be a no-op")
	}

	store.SetFolders(RootID, nil, "space-a")
	store.PushFolder(Folder{ID: "f1", Name: "Clips", Parent: RootID})
	folders, ok := store.Folders(RootID)
	if !ok || len(folders) != 1 || folders[0].ID != "f1" {
		t.Fatalf("Folders(root) = %+v, %v", folders, ok)
	}
}

func TestPopFolderIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	store.SetFolders(RootID, []Folder{{ID: "f1", Parent: RootID}, {ID: "f2", Parent: RootID}}, "space-a")

	store.PopFolder("f1", RootID)
	store.PopFolder("f1", RootID)
	store.PopFolder("missing", RootID)

	folders, _ := store.Folders(RootID)
	if len(folders) != 1 || folders[0].ID != "f2" {
		t.Fatalf("after pops, folders = %+v", folders)
	}
}

func TestRenameMissingEntryIsNoOp(t *testing.T) {
	store := newTestStore(t)
	store.SetFolders(RootID, []Folder{{ID: "f1", Name: "Old", Parent: RootID}}, "space-a")

	store.RenameFolder("missing", RootID, "New")
	store.RenameFolder("f1", "unfetched-parent", "New")

	folders, _ := store.Folders(RootID)
	if folders[0].Name != "Old" {
		t.Fatalf("rename of a missing entry mutated state: %+v", folders)
	}

	store.RenameFolder("f1", RootID, "New")
	folders, _ = store.Folders(RootID)
	if folders[0].Name != "New" {
		t.Fatalf("rename did not apply: %+v", folders)
	}
}

func TestStagedMoveReplacement(t *testing.T) {
	store := newTestStore(t)

	store.StageFolderMove(&Folder{ID: "f1", Parent: RootID})
	store.StageFolderMove(&Folder{ID: "f2", Parent: RootID})

	staged := store.StagedFolderMove()
	if staged == nil || staged.ID != "f2" {
		t.Fatalf("staging a second folder must silently replace the first, got %+v", staged)
	}

	store.StageFolderMove(nil)
	if store.StagedFolderMove() != nil {
		t.Fatal("nil stage should clear the pending move")
	}
}

func TestStagedMovesAreIndependentPerKind(t *testing.T) {
	store := newTestStore(t)

	store.StageFolderMove(&Folder{ID: "f1"})
	store.StageFileMove(&File{ID: "v1"})

	if store.StagedFolderMove() == nil || store.StagedFileMove() == nil {
		t.Fatal("folder and file stages must not interfere")
	}
	store.StageFolderMove(nil)
	if store.StagedFileMove() == nil {
		t.Fatal("clearing the folder stage must leave the file stage")
	}
}

func TestChangeTagsReplacesSet(t *testing.T) {
	store := newTestStore(t)
	store.SetFiles(RootID, []File{{ID: "v1", Parent: RootID, Tags: []string{"a"}}})

	store.ChangeTags("v1", RootID, []string{"b", "c"})
	files, _ := store.Files(RootID)
	if len(files[0].Tags) != 2 || files[0].Tags[0] != "b" {
		t.Fatalf("tags = %v", files[0].Tags)
	}

	store.ChangeTags("missing", RootID, []string{"x"})
	files, _ = store.Files(RootID)
	if len(files[0].Tags) != 2 {
		t.Fatalf("tag edit of a missing file mutated state: %v", files[0].Tags)
	}
}

func TestBreadcrumbsPrependNamespaceRoot(t *testing.T) {
	store := newTestStore(t)

	store.SetBreadcrumbs([]Crumb{{ID: "f1", Name: "Clips"}})
	crumbs := store.Breadcrumbs()
	if len(crumbs) != 2 || crumbs[0].ID != RootID || crumbs[0].Name != "B-Roll" {
		t.Fatalf("crumbs = %+v", crumbs)
	}

	store.SetBreadcrumbs(nil)
	crumbs = store.Breadcrumbs()
	if len(crumbs) != 1 || crumbs[0].Name != "B-Roll" {
		t.Fatalf("root crumbs = %+v", crumbs)
	}
}

func TestInvalidateDropsSingleDirectory(t *testing.T) {
	store := newTestStore(t)
	store.SetFolders(RootID, []Folder{{ID: "f1"}}, "space-a")
	store.SetFolders("f1", []Folder{{ID: "f2"}}, "space-a")
	store.SetFiles("f1", []File{{ID: "v1"}})

	store.Invalidate("f1")

	if store.HasFolders("f1") || store.HasFiles("f1") {
		t.Fatal("invalidated directory still cached")
	}
	if !store.HasFolders(RootID) {
		t.Fatal("sibling directories must survive invalidation")
	}
}

func TestResetClearsEverything(t *testing.T) {
	store := newTestStore(t)
	store.SetFolders(RootID, []Folder{{ID: "f1"}}, "space-a")
	store.SetFiles(RootID, []File{{ID: "v1"}})
	store.StageFolderMove(&Folder{ID: "f1"})
	store.SetBreadcrumbs([]Crumb{{ID: "f1", Name: "Clips"}})

	store.Reset()

	if store.HasFolders(RootID) || store.HasFiles(RootID) {
		t.Fatal("caches survived reset")
	}
	if store.StagedFolderMove() != nil {
		t.Fatal("staged move survived reset")
	}
	if crumbs := store.Breadcrumbs(); len(crumbs) != 1 {
		t.Fatalf("breadcrumbs after reset = %+v", crumbs)
	}
}

func TestListingsAreCopies(t *testing.T) {
	store := newTestStore(t)
	store.SetFolders(RootID, []Folder{{ID: "f1", Name: "Clips"}}, "space-a")

	folders, _ := store.Folders(RootID)
	folders[0].Name = "Mutated"

	again, _ := store.Folders(RootID)
	if again[0].Name != "Clips" {
		t.Fatal("caller mutation leaked into the cache")
	}
}
