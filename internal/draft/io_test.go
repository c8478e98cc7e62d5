package draft

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeDraft(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ContentFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write draft: %v", err)
	}
	return path
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeDraft(t, dir, sampleDraft)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc.Duration = 9_000_000

	if err := Save(doc, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Duration != 9_000_000 {
		t.Errorf("duration = %d, want 9000000", again.Duration)
	}
	if _, ok := again.Extra["canvas_config"]; !ok {
		t.Error("canvas_config lost across save/load")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want just the draft", len(entries))
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	var perr *ParseError
	_, err := Load(filepath.Join(dir, "missing.json"))
	if !errors.As(err, &perr) {
		t.Errorf("missing file: got %T, want ParseError", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	_, err = Load(bad)
	if !errors.As(err, &perr) {
		t.Errorf("invalid json: got %T, want ParseError", err)
	}
}

func TestContentPathResolvesFolder(t *testing.T) {
	dir := t.TempDir()
	path := writeDraft(t, dir, sampleDraft)

	got, err := ContentPath(dir)
	if err != nil {
		t.Fatalf("folder: %v", err)
	}
	if got != path {
		t.Errorf("ContentPath(folder) = %q, want %q", got, path)
	}

	got, err = ContentPath(path)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if got != path {
		t.Errorf("ContentPath(file) = %q, want %q", got, path)
	}

	empty := t.TempDir()
	if _, err := ContentPath(empty); err == nil {
		t.Error("folder without a draft should error")
	}
	if _, err := ContentPath(filepath.Join(dir, "nope")); err == nil {
		t.Error("missing path should error")
	}
}

func TestLockPathSerializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), ContentFileName)

	var mu sync.Mutex
	var holders, maxHolders int

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := LockPath(path)
			defer unlock()

			mu.Lock()
			holders++
			if holders > maxHolders {
				maxHolders = holders
			}
			mu.Unlock()

			mu.Lock()
			holders--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxHolders != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxHolders)
	}
}
