package ops

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andremarcal/draftsync/internal/config"
	"github.com/andremarcal/draftsync/internal/draft"
	"github.com/andremarcal/draftsync/internal/logging"
)

// fixture draft: one video segment, three gapped audio segments, one
// unknown top-level field and unknown segment fields to survive the trip.
const fixtureDraft = `{
  "id": "11111111-2222-3333-4444-555555555555",
  "name": "fixture",
  "duration": 9500000,
  "canvas_config": {"height": 1920, "ratio": "original", "width": 1080},
  "tracks": [
    {
      "id": "AAAAAAAA-0000-0000-0000-000000000001",
      "type": "video",
      "attribute": 0,
      "segments": [
        {
          "id": "BBBBBBBB-0000-0000-0000-000000000001",
          "material_id": "CCCCCCCC-0000-0000-0000-000000000001",
          "render_index": 0,
          "target_timerange": {"duration": 9000000, "start": 0},
          "source_timerange": {"duration": 9000000, "start": 0}
        }
      ]
    },
    {
      "id": "AAAAAAAA-0000-0000-0000-000000000002",
      "type": "audio",
      "segments": [
        {
          "id": "BBBBBBBB-0000-0000-0000-000000000002",
          "material_id": "CCCCCCCC-0000-0000-0000-000000000002",
          "target_timerange": {"duration": 2000000, "start": 0}
        },
        {
          "id": "BBBBBBBB-0000-0000-0000-000000000003",
          "material_id": "CCCCCCCC-0000-0000-0000-000000000002",
          "target_timerange": {"duration": 3000000, "start": 2500000}
        },
        {
          "id": "BBBBBBBB-0000-0000-0000-000000000004",
          "material_id": "CCCCCCCC-0000-0000-0000-000000000002",
          "target_timerange": {"duration": 4000000, "start": 5500000}
        }
      ]
    }
  ],
  "materials": {
    "videos": [
      {"id": "CCCCCCCC-0000-0000-0000-000000000001", "name": "clip.mp4", "type": "video"}
    ],
    "audios": [
      {"id": "CCCCCCCC-0000-0000-0000-000000000002", "name": "song.mp3", "type": "extract_music"}
    ]
  }
}`

func testService(t *testing.T) *Service {
	t.Helper()
	t.Setenv(config.EnvDataDir, t.TempDir())
	cfg, err := config.New()
	if err != nil {
		t.Fatal(err)
	}
	return NewService(cfg, logging.NewLogger(false))
}

func projectFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, draft.ContentFileName)
	if err := os.WriteFile(path, []byte(fixtureDraft), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeOp(t *testing.T) {
	s := testService(t)
	resp, err := s.Analyze(context.Background(), AnalyzeRequest{Path: projectFixture(t)})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(resp.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(resp.Tracks))
	}
	if resp.Tracks[0].Name != "clip.mp4" || resp.Tracks[1].Segments != 3 {
		t.Errorf("unexpected summary: %+v", resp.Tracks)
	}
}

func TestAnalyzeMissingDraft(t *testing.T) {
	s := testService(t)
	_, err := s.Analyze(context.Background(), AnalyzeRequest{Path: filepath.Join(t.TempDir(), "x")})
	if err == nil {
		t.Fatal("expected error for missing draft")
	}
}

func TestSyncOpEndToEnd(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)

	resp, err := s.Sync(context.Background(), SyncRequest{Path: path, AudioTrackIndex: 1})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if resp.Stats.GapsRemoved != 2 {
		t.Errorf("expected 2 gaps removed, got %d", resp.Stats.GapsRemoved)
	}
	if resp.Stats.MediaModified != 3 {
		t.Errorf("expected the video segment cloned to 3, got %d", resp.Stats.MediaModified)
	}
	if resp.Backup == "" {
		t.Error("no backup reported")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), resp.Backup)); err != nil {
		t.Errorf("backup file missing: %v", err)
	}

	// reload: gaps closed, duration updated, unknown fields intact
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved draft is not valid JSON: %v", err)
	}
	if _, ok := raw["canvas_config"]; !ok {
		t.Error("unknown top-level field lost on save")
	}

	doc, err := draft.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Duration != 9_000_000 {
		t.Errorf("duration after sync %d, want 9s", doc.Duration)
	}
	video := doc.Tracks[0]
	if len(video.Segments) != 3 {
		t.Fatalf("video track has %d segments", len(video.Segments))
	}
	if _, ok := video.Segments[0].Extra["render_index"]; !ok {
		t.Error("unknown segment field lost")
	}
}

func TestSyncValidationDoesNotSave(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)
	before, _ := os.ReadFile(path)

	_, err := s.Sync(context.Background(), SyncRequest{Path: path, Mode: "bogus"})
	var verr *draft.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("draft mutated despite validation failure")
	}
}

func TestLoopMediaOp(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)

	resp, err := s.LoopMedia(context.Background(), LoopMediaRequest{
		Path: path, AudioTrackIndex: 1, Order: "sequential",
	})
	if err != nil {
		t.Fatalf("LoopMedia failed: %v", err)
	}
	// audio ends at 9.5s, video source is 9s: 2 cycles
	if resp.Stats.Cycles != 2 {
		t.Errorf("expected 2 cycles, got %d", resp.Stats.Cycles)
	}

	doc, _ := draft.Load(path)
	var total int64
	for _, seg := range doc.Tracks[0].Segments {
		total += seg.TargetRange.Duration
	}
	if total != 9_500_000 {
		t.Errorf("video total %d, want the audio end exactly", total)
	}
}

func TestInsertSrtOp(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)

	srtDir := t.TempDir()
	srt := "1\n00:00:00,500 --> 00:00:01,500\nHello\n\n2\n00:00:02,000 --> 00:00:03,000\nWorld\n"
	if err := os.WriteFile(filepath.Join(srtDir, "song.srt"), []byte(srt), 0644); err != nil {
		t.Fatal(err)
	}

	scan, err := s.ScanSrtMatches(context.Background(), ScanSrtMatchesRequest{Path: path, Folder: srtDir})
	if err != nil {
		t.Fatalf("ScanSrtMatches failed: %v", err)
	}
	// the fixture has three segments of the same song.mp3 material
	if len(scan.Matches) == 0 || scan.Matches[0].AudioName != "song.mp3" {
		t.Fatalf("expected song.mp3 match, got %+v", scan.Matches)
	}
	if scan.TotalSrt != 1 || scan.TotalAudios != 3 || scan.MatchedCount != 1 {
		t.Errorf("unexpected scan counts: %+v", scan)
	}
	if scan.Matches[0].SrtPath != filepath.Join(srtDir, "song.srt") {
		t.Errorf("match misses its file path: %+v", scan.Matches[0])
	}

	resp, err := s.InsertSrt(context.Background(), InsertSrtRequest{
		Path: path, Folders: []string{srtDir}, CreateTitle: true, SeparateTracks: true,
	})
	if err != nil {
		t.Fatalf("InsertSrt failed: %v", err)
	}
	// every clip gets the file's entries, filtered by its own duration:
	// the 2s clip keeps one, the 3s and 4s clips keep both
	if resp.TotalSubtitles != 5 || resp.TracksCreated != 3 {
		t.Errorf("unexpected result: %+v", resp)
	}

	doc, _ := draft.Load(path)
	last := doc.Tracks[len(doc.Tracks)-1]
	if last.Type != draft.TrackText {
		t.Errorf("expected a new text track, got %q", last.Type)
	}
	if len(doc.Materials.Category("texts")) != 8 { // 3 titles + 5 subtitles
		t.Errorf("expected 8 text materials, got %d", len(doc.Materials.Category("texts")))
	}
}

func TestInsertSrtBatchOp(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)

	srtDir := t.TempDir()
	srt := "1\n00:00:00,000 --> 00:00:02,000\nHello\n"
	a := filepath.Join(srtDir, "a.srt")
	b := filepath.Join(srtDir, "b.srt")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte(srt), 0644); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := s.InsertSrtBatch(context.Background(), InsertSrtBatchRequest{
		Path: path, SrtFiles: []string{a, b}, CreateTitle: true, GapMs: 500,
	})
	if err != nil {
		t.Fatalf("InsertSrtBatch failed: %v", err)
	}
	if resp.TotalSubtitles != 2 || resp.TracksCreated != 1 {
		t.Errorf("unexpected result: %+v", resp)
	}

	doc, _ := draft.Load(path)
	last := doc.Tracks[len(doc.Tracks)-1]
	if len(last.Segments) != 4 { // title + entry per file
		t.Fatalf("expected 4 segments, got %d", len(last.Segments))
	}
	// second file starts after the first's 2s span plus the 500ms gap
	if last.Segments[2].TargetRange.Start != 2_500_000 {
		t.Errorf("gap not applied in microseconds: start %d", last.Segments[2].TargetRange.Start)
	}
}

func TestCreateAndInsertSrtOp(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)

	resp, err := s.CreateAndInsertSrt(context.Background(), CreateAndInsertSrtRequest{
		Path:   path,
		Script: "Primeira frase do roteiro. Segunda frase, um pouco mais longa que a primeira.",
		Force:  true,
	})
	if err != nil {
		t.Fatalf("CreateAndInsertSrt failed: %v", err)
	}
	if resp.Entries == 0 || resp.TotalSubtitles != resp.Entries {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if _, err := os.Stat(resp.SrtPath); err != nil {
		t.Errorf("generated SRT not written: %v", err)
	}
	if !strings.HasSuffix(resp.SrtPath, ".srt") {
		t.Errorf("unexpected srt path %q", resp.SrtPath)
	}
}

func TestCreateAndInsertSrtEmptyScript(t *testing.T) {
	s := testService(t)
	_, err := s.CreateAndInsertSrt(context.Background(), CreateAndInsertSrtRequest{
		Path: projectFixture(t), Script: "   ", Force: true,
	})
	var verr *draft.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMergeProjectsOp(t *testing.T) {
	s := testService(t)
	a := projectFixture(t)
	b := projectFixture(t)
	outDir := t.TempDir()

	resp, err := s.MergeProjects(context.Background(), MergeProjectsRequest{
		Paths:      []string{filepath.Dir(a), filepath.Dir(b)},
		OutputName: "merged_demo",
		OutputDir:  outDir,
	})
	if err != nil {
		t.Fatalf("MergeProjects failed: %v", err)
	}
	if resp.ProjectCount != 2 || resp.Name != "merged_demo" {
		t.Errorf("unexpected response: %+v", resp)
	}

	doc, err := draft.Load(filepath.Join(resp.Path, draft.ContentFileName))
	if err != nil {
		t.Fatalf("merged draft unreadable: %v", err)
	}
	if doc.Duration != 19_000_000 { // two 9.5s fixtures
		t.Errorf("merged duration %d", doc.Duration)
	}

	// the new project folder is registered with the editor
	if _, err := os.Stat(filepath.Join(resp.Path, "draft_meta_info.json")); err != nil {
		t.Errorf("merged project not recognizable by the editor: %v", err)
	}
	rootMeta, err := os.ReadFile(filepath.Join(outDir, "root_meta_info.json"))
	if err != nil {
		t.Fatalf("root registry not written: %v", err)
	}
	var reg struct {
		Store []struct {
			Name string `json:"draft_name"`
		} `json:"all_draft_store"`
	}
	if err := json.Unmarshal(rootMeta, &reg); err != nil {
		t.Fatal(err)
	}
	if len(reg.Store) != 1 || reg.Store[0].Name != "merged_demo" {
		t.Errorf("merged project not in the root registry: %+v", reg.Store)
	}
}

func TestExportImportProjectOps(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)
	ctx := context.Background()

	// give the fixture's audio material a real file to pack
	mediaDir := t.TempDir()
	audioPath := filepath.Join(mediaDir, "song.mp3")
	if err := os.WriteFile(audioPath, []byte("mp3-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := draft.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	doc.Materials.Category("audios")[0].Path = audioPath
	if err := draft.Save(doc, path); err != nil {
		t.Fatal(err)
	}

	exported, err := s.ExportProject(ctx, ExportProjectRequest{
		Path:       path,
		OutputPath: filepath.Join(t.TempDir(), "fixture_export.zip"),
	})
	if err != nil {
		t.Fatalf("ExportProject failed: %v", err)
	}
	if exported.MediaCount != 1 || len(exported.Missing) != 0 {
		t.Errorf("expected exactly the audio file packed, got %+v", exported)
	}

	projectsDir := t.TempDir()
	imported, err := s.ImportProject(ctx, ImportProjectRequest{
		ZipPath:   exported.ArchivePath,
		OutputDir: projectsDir,
	})
	if err != nil {
		t.Fatalf("ImportProject failed: %v", err)
	}
	if imported.Name != "fixture" {
		t.Errorf("export suffix not stripped: %q", imported.Name)
	}

	dup, err := draft.Load(filepath.Join(imported.Path, draft.ContentFileName))
	if err != nil {
		t.Fatalf("imported draft unreadable: %v", err)
	}
	if dup.ID == doc.ID {
		t.Error("imported project kept the source draft ID")
	}
	media, err := s.MediaPaths(ctx, MediaPathsRequest{Path: imported.Path})
	if err != nil {
		t.Fatal(err)
	}
	if len(media.Media) != 1 {
		t.Fatalf("expected the packed audio file, got %+v", media.Media)
	}
	if !strings.Contains(media.Media[0].Path, "medias/") {
		t.Errorf("media not under the project folder: %q", media.Media[0].Path)
	}
	if _, err := os.Stat(filepath.FromSlash(media.Media[0].Path)); err != nil {
		t.Errorf("imported media missing on disk: %v", err)
	}

	// importing again beside the first copy uniquifies the name
	again, err := s.ImportProject(ctx, ImportProjectRequest{
		ZipPath:   exported.ArchivePath,
		OutputDir: projectsDir,
	})
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "fixture_1" {
		t.Errorf("name not uniquified: %q", again.Name)
	}
}

func TestUpdateMediaPathsOp(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)
	ctx := context.Background()

	doc, err := draft.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	doc.Materials.Category("audios")[0].Path = "/old/song.mp3"
	if err := draft.Save(doc, path); err != nil {
		t.Fatal(err)
	}

	resp, err := s.UpdateMediaPaths(ctx, UpdateMediaPathsRequest{
		Path:    path,
		Mapping: map[string]string{"/old/song.mp3": "/new/song.mp3", "/old/other.mp3": "/x"},
	})
	if err != nil {
		t.Fatalf("UpdateMediaPaths failed: %v", err)
	}
	if resp.Updated != 1 || resp.Backup == "" {
		t.Errorf("unexpected response: %+v", resp)
	}

	media, err := s.MediaPaths(ctx, MediaPathsRequest{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if len(media.Media) != 1 || media.Media[0].Path != "/new/song.mp3" {
		t.Errorf("path not rewritten: %+v", media.Media)
	}

	_, err = s.UpdateMediaPaths(ctx, UpdateMediaPathsRequest{Path: path})
	var verr *draft.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for empty mapping, got %v", err)
	}
}

func TestBackupOps(t *testing.T) {
	s := testService(t)
	path := projectFixture(t)
	ctx := context.Background()

	// a mutation creates the first snapshot
	if _, err := s.Sync(ctx, SyncRequest{Path: path, AudioTrackIndex: 1}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListBackups(ctx, ListBackupsRequest{Path: path})
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(list.Backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(list.Backups))
	}

	restored, err := s.RestoreBackup(ctx, RestoreBackupRequest{Path: path})
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if restored.Restored.Name != list.Backups[0].Name {
		t.Errorf("restored %q, want %q", restored.Restored.Name, list.Backups[0].Name)
	}

	// restored draft matches the pre-sync fixture
	doc, _ := draft.Load(path)
	if doc.Tracks[1].Segments[1].TargetRange.Start != 2_500_000 {
		t.Error("restore did not bring the gap back")
	}

	removed, err := s.DeleteAllBackups(ctx, DeleteAllBackupsRequest{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if removed.Removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed.Removed)
	}
}

func TestListProjectsOp(t *testing.T) {
	s := testService(t)
	dir := t.TempDir()
	project := filepath.Join(dir, "proj1")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, draft.ContentFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	resp, err := s.ListProjects(context.Background(), ListProjectsRequest{Dir: dir})
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(resp.Projects) != 1 || resp.Projects[0].Name != "proj1" {
		t.Errorf("unexpected projects: %+v", resp.Projects)
	}
}
