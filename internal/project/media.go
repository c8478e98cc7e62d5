package project

import (
	"path/filepath"
	"strings"

	"github.com/andremarcal/draftsync/internal/draft"
)

// media categories whose materials carry a file path
var mediaCategories = []string{"videos", "audios", "images"}

// MediaPath is one media file a draft's materials reference.
type MediaPath struct {
	Path string `json:"path"`
	Type string `json:"type"`
	ID   string `json:"id"`
}

// MediaPaths lists every media file the document references, in category
// then material order.
func MediaPaths(doc *draft.Document) []MediaPath {
	var paths []MediaPath
	for _, category := range mediaCategories {
		for _, mat := range doc.Materials.Category(category) {
			if mat.Path == "" {
				continue
			}
			paths = append(paths, MediaPath{Path: mat.Path, Type: mat.Type, ID: mat.ID})
		}
	}
	return paths
}

// UpdateMediaPaths rewrites material paths through the old-to-new
// mapping, leaving unmapped paths untouched.
func UpdateMediaPaths(doc *draft.Document, mapping map[string]string) int {
	updated := 0
	for _, category := range mediaCategories {
		for _, mat := range doc.Materials.Category(category) {
			if next, ok := mapping[mat.Path]; ok {
				mat.Path = next
				updated++
			}
		}
	}
	return updated
}

// absolutizeMedia turns the archive-relative media paths of an imported
// draft into absolute paths under the project folder.
func absolutizeMedia(doc *draft.Document, projectDir string) {
	for _, category := range mediaCategories {
		for _, mat := range doc.Materials.Category(category) {
			if strings.HasPrefix(mat.Path, mediaDirName+"/") || strings.HasPrefix(mat.Path, mediaDirName+`\`) {
				mat.Path = filepath.ToSlash(filepath.Join(projectDir, mat.Path))
			}
		}
	}
}
