// Package backup snapshots a draft file beside itself so every mutation
// can be undone.
package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andremarcal/draftsync/internal/draft"
)

const timestampLayout = "20060102_150405"

// Info describes one snapshot of a draft.
type Info struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

// Create copies the draft to <base>_backup_YYYYMMDD_HHMMSS.json in the
// same folder and returns the snapshot's path.
func Create(draftPath string) (string, error) {
	data, err := os.ReadFile(draftPath)
	if err != nil {
		return "", &draft.IoError{Op: "read", Path: draftPath, Err: err}
	}

	stamp := time.Now().Format(timestampLayout)
	backupPath := filepath.Join(
		filepath.Dir(draftPath),
		baseName(draftPath)+"_backup_"+stamp+".json",
	)
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", &draft.IoError{Op: "write", Path: backupPath, Err: err}
	}
	return backupPath, nil
}

// List returns the draft's snapshots, newest first.
func List(draftPath string) ([]Info, error) {
	dir := filepath.Dir(draftPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &draft.IoError{Op: "read", Path: dir, Err: err}
	}

	prefix := baseName(draftPath) + "_backup_"
	var infos []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		created, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		info := Info{Name: name, Path: filepath.Join(dir, name), CreatedAt: created}
		if fi, err := entry.Info(); err == nil {
			info.Size = fi.Size()
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].Name > infos[j].Name
	})
	return infos, nil
}

// Restore writes a snapshot's content back over the draft. An empty name
// restores the newest snapshot.
func Restore(draftPath, name string) (Info, error) {
	info, err := find(draftPath, name)
	if err != nil {
		return Info{}, err
	}
	data, err := os.ReadFile(info.Path)
	if err != nil {
		return Info{}, &draft.IoError{Op: "read", Path: info.Path, Err: err}
	}
	if err := os.WriteFile(draftPath, data, 0644); err != nil {
		return Info{}, &draft.IoError{Op: "write", Path: draftPath, Err: err}
	}
	return info, nil
}

// Delete removes one snapshot by name.
func Delete(draftPath, name string) error {
	info, err := find(draftPath, name)
	if err != nil {
		return err
	}
	if err := os.Remove(info.Path); err != nil {
		return &draft.IoError{Op: "remove", Path: info.Path, Err: err}
	}
	return nil
}

// DeleteAll removes every snapshot of the draft, returning how many.
func DeleteAll(draftPath string) (int, error) {
	infos, err := List(draftPath)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, info := range infos {
		if err := os.Remove(info.Path); err != nil {
			return removed, &draft.IoError{Op: "remove", Path: info.Path, Err: err}
		}
		removed++
	}
	return removed, nil
}

func find(draftPath, name string) (Info, error) {
	infos, err := List(draftPath)
	if err != nil {
		return Info{}, err
	}
	if len(infos) == 0 {
		return Info{}, draft.Validationf("no backups found for %s", filepath.Base(draftPath))
	}
	if name == "" {
		return infos[0], nil
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return Info{}, draft.Validationf("backup %q not found", name)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
