package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andremarcal/draftsync/internal/draft"
)

func draftFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft_content.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fakeBackup(t *testing.T, draftPath, stamp, content string) string {
	t.Helper()
	name := "draft_content_backup_" + stamp + ".json"
	path := filepath.Join(filepath.Dir(draftPath), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestCreate(t *testing.T) {
	path := draftFixture(t, `{"duration":1}`)

	backupPath, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	base := filepath.Base(backupPath)
	if !strings.HasPrefix(base, "draft_content_backup_") || !strings.HasSuffix(base, ".json") {
		t.Errorf("unexpected backup name %q", base)
	}
	data, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"duration":1}` {
		t.Errorf("backup content differs: %s", data)
	}
}

func TestCreateMissingDraft(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "nope.json"))
	var ioErr *draft.IoError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IoError, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	path := draftFixture(t, "{}")
	fakeBackup(t, path, "20240101_120000", "old")
	fakeBackup(t, path, "20250615_093000", "new")
	fakeBackup(t, path, "20241231_235959", "mid")
	// noise that must be ignored
	os.WriteFile(filepath.Join(filepath.Dir(path), "other_backup_20250101_000000.json"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(filepath.Dir(path), "draft_content_backup_garbage.json"), []byte("x"), 0644)

	infos, err := List(path)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(infos))
	}
	if infos[0].Name != "draft_content_backup_20250615_093000.json" {
		t.Errorf("newest first violated: %q", infos[0].Name)
	}
	if infos[2].Name != "draft_content_backup_20240101_120000.json" {
		t.Errorf("oldest last violated: %q", infos[2].Name)
	}
	if infos[0].CreatedAt.Year() != 2025 || infos[0].Size != 3 {
		t.Errorf("metadata not parsed: %+v", infos[0])
	}
}

func TestRestoreLatestAndNamed(t *testing.T) {
	path := draftFixture(t, "current")
	oldName := fakeBackup(t, path, "20240101_120000", "old state")
	fakeBackup(t, path, "20250101_120000", "new state")

	info, err := Restore(path, "")
	if err != nil {
		t.Fatalf("Restore latest failed: %v", err)
	}
	if info.Name != "draft_content_backup_20250101_120000.json" {
		t.Errorf("restored %q, want the newest", info.Name)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new state" {
		t.Errorf("draft content after restore: %s", data)
	}

	if _, err := Restore(path, oldName); err != nil {
		t.Fatalf("Restore named failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "old state" {
		t.Errorf("draft content after named restore: %s", data)
	}
}

func TestRestoreValidation(t *testing.T) {
	path := draftFixture(t, "{}")
	var verr *draft.ValidationError

	if _, err := Restore(path, ""); !errors.As(err, &verr) {
		t.Errorf("expected validation error with no backups, got %v", err)
	}

	fakeBackup(t, path, "20250101_120000", "x")
	if _, err := Restore(path, "draft_content_backup_29990101_000000.json"); !errors.As(err, &verr) {
		t.Errorf("expected validation error for unknown name, got %v", err)
	}
}

func TestDeleteAndDeleteAll(t *testing.T) {
	path := draftFixture(t, "{}")
	name := fakeBackup(t, path, "20250101_120000", "x")
	fakeBackup(t, path, "20250102_120000", "y")

	if err := Delete(path, name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	infos, _ := List(path)
	if len(infos) != 1 {
		t.Fatalf("expected 1 backup left, got %d", len(infos))
	}

	removed, err := DeleteAll(path)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if infos, _ = List(path); len(infos) != 0 {
		t.Errorf("backups remain: %v", infos)
	}
}
