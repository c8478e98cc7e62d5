package draft

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ContentFileName is the draft file name fixed by the host editor.
const ContentFileName = "draft_content.json"

// Load reads and parses a draft file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &doc, nil
}

// Save serializes the document and writes it atomically: the content goes
// to a temp file in the same directory first, then replaces the target via
// rename, so a crash mid-write never leaves a truncated draft.
func Save(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &IoError{Op: "encode", Path: path, Err: err}
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".draftsync-*.json")
	if err != nil {
		return &IoError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IoError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IoError{Op: "write", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IoError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

var pathLocks sync.Map

// LockPath serializes mutating operations per draft file. It returns an
// unlock func; at most one mutation runs per path at a time.
func LockPath(path string) func() {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	muAny, _ := pathLocks.LoadOrStore(key, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ContentPath resolves a project folder or draft file path to the draft
// content file inside it.
func ContentPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &IoError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		p := filepath.Join(path, ContentFileName)
		if _, err := os.Stat(p); err != nil {
			return "", &IoError{Op: "stat", Path: p, Err: fmt.Errorf("%s not found in project folder", ContentFileName)}
		}
		return p, nil
	}
	return path, nil
}
