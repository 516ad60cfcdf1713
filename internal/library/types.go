package library

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RootID is the sentinel parent id for the top of each namespace tree.
const RootID = "root"

// Category identifies one of the two independently rooted media namespaces.
type Category string

const (
	CategoryBroll Category = "broll"
	CategoryMusic Category = "music"
)

// ParseCategory converts a string into a known Category.
func ParseCategory(value string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryBroll:
		return CategoryBroll, true
	case CategoryMusic:
		return CategoryMusic, true
	default:
		return "", false
	}
}

func (c Category) String() string { return string(c) }

// DisplayName returns the label used for the namespace root crumb.
func (c Category) DisplayName() string {
	if c == CategoryBroll {
		return "B-Roll"
	}
	return "Music"
}

// Extension returns the file extension uploads in this namespace must carry.
func (c Category) Extension() string {
	if c == CategoryBroll {
		return ".mp4"
	}
	return ".mp3"
}

// AspectRatio values accepted on broll files.
const (
	AspectShortform = "shortform"
	AspectLongform  = "longform"
)

// ValidAspectRatio reports whether the value is a known aspect ratio.
func ValidAspectRatio(value string) bool {
	return value == AspectShortform || value == AspectLongform
}

// Folder is a directory node within one namespace.
type Folder struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Parent  string `json:"parent"`
	OwnerID string `json:"owner_id"`
}

// File is a media leaf within one namespace.
type File struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Parent      string   `json:"parent"`
	Link        string   `json:"link,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AspectRatio string   `json:"aspect_ratio,omitempty"`
	OwnerID     string   `json:"owner_id"`
}

// Crumb is one breadcrumb entry on the path to the current directory.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var listCollator = collate.New(language.English, collate.IgnoreCase)

// SortFolders orders folders by name for display.
func SortFolders(folders []Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		return listCollator.CompareString(folders[i].Name, folders[j].Name) < 0
	})
}

// SortFiles orders files by name for display.
func SortFiles(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		return listCollator.CompareString(files[i].Name, files[j].Name) < 0
	})
}
