package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanFolder lists and parses every .srt file in a folder. Files that fail
// to parse are skipped and reported in the second return value.
func ScanFolder(folder string) ([]*File, []string, error) {
	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read folder: %w", err)
	}

	var files []*File
	var skipped []string
	for _, de := range dirEntries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".srt") {
			continue
		}
		f, err := Parse(filepath.Join(folder, de.Name()))
		if err != nil {
			skipped = append(skipped, de.Name())
			continue
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, skipped, nil
}

// ScanFolders scans several folders, deduplicating by lowercase base name.
// The first folder that contains a given name wins.
func ScanFolders(folders []string) ([]*File, []string, error) {
	seen := make(map[string]bool)
	var all []*File
	var skipped []string
	for _, folder := range folders {
		files, bad, err := ScanFolder(folder)
		if err != nil {
			return nil, nil, err
		}
		skipped = append(skipped, bad...)
		for _, f := range files {
			key := strings.ToLower(BaseName(f.Name))
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, f)
		}
	}
	return all, skipped, nil
}

// Pair links a subtitle file to the audio clip it belongs to.
type Pair struct {
	File *File
	Clip AudioClip
}

// Match pairs SRT files with audio clips whose base names are equal,
// ignoring case and extensions. "Intro.SRT" matches "intro.mp3".
func Match(files []*File, clips []AudioClip) (pairs []Pair, unmatched []*File) {
	byName := make(map[string]AudioClip, len(clips))
	for _, clip := range clips {
		key := strings.ToLower(BaseName(clip.Name))
		if _, ok := byName[key]; !ok {
			byName[key] = clip
		}
	}

	for _, f := range files {
		clip, ok := byName[strings.ToLower(BaseName(f.Name))]
		if !ok {
			unmatched = append(unmatched, f)
			continue
		}
		pairs = append(pairs, Pair{File: f, Clip: clip})
	}
	return pairs, unmatched
}
