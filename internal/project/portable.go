package project

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andremarcal/draftsync/internal/draft"
)

const (
	mediaDirName       = "medias"
	exportInfoFileName = "export_info.json"
	exportSuffix       = "_export"
)

// ExportManifest describes a portable archive, written alongside the
// draft inside the zip.
type ExportManifest struct {
	Name       string   `json:"name"`
	DraftID    string   `json:"draftId"`
	ExportedAt string   `json:"exportedAt"`
	MediaCount int      `json:"mediaCount"`
	Missing    []string `json:"missing,omitempty"`
}

// Export packs a project into a self-contained zip: every reachable
// media file is copied under medias/ and the draft rewritten to the
// archive-relative paths. Media files that cannot be read keep their
// original path and are listed in the manifest instead of failing the
// export. It returns the archive path and the manifest.
func Export(projectPath, outputPath string) (string, *ExportManifest, error) {
	contentPath, err := draft.ContentPath(projectPath)
	if err != nil {
		return "", nil, err
	}
	doc, err := draft.Load(contentPath)
	if err != nil {
		return "", nil, err
	}

	name := doc.Name
	if name == "" {
		name = filepath.Base(filepath.Dir(contentPath))
	}
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(filepath.Dir(contentPath)), name+exportSuffix+".zip")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return "", nil, &draft.IoError{Op: "create", Path: outputPath, Err: err}
	}
	defer out.Close()
	zw := zip.NewWriter(out)

	manifest := &ExportManifest{
		Name:       name,
		DraftID:    doc.ID,
		ExportedAt: time.Now().Format(time.RFC3339),
	}
	used := make(map[string]bool)
	for _, category := range mediaCategories {
		for _, mat := range doc.Materials.Category(category) {
			if mat.Path == "" {
				continue
			}
			src, err := os.Open(mat.Path)
			if err != nil {
				manifest.Missing = append(manifest.Missing, mat.Path)
				continue
			}
			archiveName := uniqueMediaName(mat.Path, used)
			w, err := zw.Create(mediaDirName + "/" + archiveName)
			if err == nil {
				_, err = io.Copy(w, src)
			}
			src.Close()
			if err != nil {
				zw.Close()
				return "", nil, &draft.IoError{Op: "write", Path: outputPath, Err: err}
			}
			mat.Path = mediaDirName + "/" + archiveName
			manifest.MediaCount++
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		zw.Close()
		return "", nil, &draft.IoError{Op: "encode", Path: contentPath, Err: err}
	}
	if err := writeZipFile(zw, draft.ContentFileName, data); err != nil {
		zw.Close()
		return "", nil, &draft.IoError{Op: "write", Path: outputPath, Err: err}
	}
	info, err := json.Marshal(manifest)
	if err == nil {
		err = writeZipFile(zw, exportInfoFileName, info)
	}
	if err != nil {
		zw.Close()
		return "", nil, &draft.IoError{Op: "write", Path: outputPath, Err: err}
	}
	if err := zw.Close(); err != nil {
		return "", nil, &draft.IoError{Op: "close", Path: outputPath, Err: err}
	}
	return outputPath, manifest, nil
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// uniqueMediaName keeps the file's base name, adding a short random
// suffix on collision so different files with the same name coexist.
func uniqueMediaName(path string, used map[string]bool) string {
	base := filepath.Base(path)
	if !used[base] {
		used[base] = true
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for {
		name := fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:6], ext)
		if !used[name] {
			used[name] = true
			return name
		}
	}
}

// Import unpacks a portable archive into a new project folder under
// outputDir and registers it with the editor. The project is named
// after the archive with any export suffix stripped, made unique with a
// numeric suffix, and gets a fresh draft ID so it never collides with
// the project it was exported from.
func Import(zipPath, outputDir string) (string, string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", "", &draft.IoError{Op: "open", Path: zipPath, Err: err}
	}
	defer zr.Close()

	name := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	name = strings.TrimSuffix(name, exportSuffix)
	name = uniqueProjectName(outputDir, name)
	projectDir := filepath.Join(outputDir, name)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return "", "", &draft.IoError{Op: "mkdir", Path: projectDir, Err: err}
	}

	var content []byte
	for _, f := range zr.File {
		clean := filepath.ToSlash(filepath.Clean(f.Name))
		if strings.HasPrefix(clean, "../") || filepath.IsAbs(clean) {
			return "", "", draft.Validationf("archive entry %q escapes the project folder", f.Name)
		}
		switch {
		case clean == draft.ContentFileName:
			content, err = readZipFile(f)
			if err != nil {
				return "", "", &draft.IoError{Op: "read", Path: zipPath, Err: err}
			}
		case strings.HasPrefix(clean, mediaDirName+"/") && !f.FileInfo().IsDir():
			if err := extractZipFile(f, filepath.Join(projectDir, filepath.FromSlash(clean))); err != nil {
				return "", "", err
			}
		}
	}
	if content == nil {
		return "", "", draft.Validationf("archive has no %s", draft.ContentFileName)
	}

	var doc draft.Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return "", "", &draft.ParseError{Path: zipPath, Err: err}
	}
	doc.ID = draft.NewID()
	doc.Name = name
	absolutizeMedia(&doc, projectDir)

	if err := draft.Save(&doc, filepath.Join(projectDir, draft.ContentFileName)); err != nil {
		return "", "", err
	}
	if err := Register(projectDir, doc.ID, name); err != nil {
		return "", "", err
	}
	return projectDir, name, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func extractZipFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return &draft.IoError{Op: "mkdir", Path: filepath.Dir(dest), Err: err}
	}
	r, err := f.Open()
	if err != nil {
		return &draft.IoError{Op: "read", Path: f.Name, Err: err}
	}
	defer r.Close()
	out, err := os.Create(dest)
	if err != nil {
		return &draft.IoError{Op: "create", Path: dest, Err: err}
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return &draft.IoError{Op: "write", Path: dest, Err: err}
	}
	return nil
}

func uniqueProjectName(dir, name string) string {
	candidate := name
	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
}
