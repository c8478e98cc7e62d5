// Package editor talks to the video editor installation around the draft
// files: is the editor open, where does it keep its projects, and which
// projects exist.
package editor

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/andremarcal/draftsync/internal/draft"
)

const processName = "CapCut"

// Project is one editable project folder.
type Project struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	DraftPath  string    `json:"draftPath"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Size       int64     `json:"size"`
}

// IsRunning reports best-effort whether the editor process is open.
// Mutating a draft while the editor has it loaded silently loses the
// changes on the editor's next save, so callers warn or refuse.
func IsRunning() bool {
	switch runtime.GOOS {
	case "windows":
		out, err := exec.Command("tasklist", "/FI", "IMAGENAME eq "+processName+".exe", "/NH").Output()
		if err != nil {
			return false
		}
		return strings.Contains(string(out), processName+".exe")
	default:
		err := exec.Command("pgrep", "-x", processName).Run()
		return err == nil
	}
}

// DetectProjectsDir returns the editor's default projects folder for this
// OS. The folder is not required to exist.
func DetectProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(local, processName, "User Data", "Projects", "com.lveditor.draft")
	case "darwin":
		return filepath.Join(home, "Movies", processName, "User Data", "Projects", "com.lveditor.draft")
	default:
		return filepath.Join(home, "."+strings.ToLower(processName), "projects")
	}
}

// ListProjects scans dir for folders containing a draft file and returns
// them newest first.
func ListProjects(dir string) ([]Project, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &draft.IoError{Op: "read", Path: dir, Err: err}
	}

	var projects []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		draftPath := filepath.Join(dir, entry.Name(), draft.ContentFileName)
		fi, err := os.Stat(draftPath)
		if err != nil {
			continue
		}
		projects = append(projects, Project{
			Name:       entry.Name(),
			Path:       filepath.Join(dir, entry.Name()),
			DraftPath:  draftPath,
			ModifiedAt: fi.ModTime(),
			Size:       fi.Size(),
		})
	}

	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].ModifiedAt.Equal(projects[j].ModifiedAt) {
			return projects[i].ModifiedAt.After(projects[j].ModifiedAt)
		}
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}
