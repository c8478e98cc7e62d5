// Package ops ties the engines to the filesystem: every operation the CLI
// and the HTTP API expose lives here. Mutating operations serialize per
// draft path, snapshot the file first, and save atomically; the engines
// themselves never touch disk.
package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/andremarcal/draftsync/internal/analyze"
	"github.com/andremarcal/draftsync/internal/backup"
	"github.com/andremarcal/draftsync/internal/config"
	"github.com/andremarcal/draftsync/internal/draft"
	"github.com/andremarcal/draftsync/internal/editor"
	"github.com/andremarcal/draftsync/internal/logging"
	"github.com/andremarcal/draftsync/internal/loop"
	"github.com/andremarcal/draftsync/internal/merge"
	"github.com/andremarcal/draftsync/internal/project"
	"github.com/andremarcal/draftsync/internal/subtitle"
	"github.com/andremarcal/draftsync/internal/syncer"
)

// Service executes operations against draft files.
type Service struct {
	cfg *config.Config
	log *logging.Logger
}

func NewService(cfg *config.Config, log *logging.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// mutate runs fn on the loaded draft under the path lock, with a snapshot
// taken before and an atomic save after. It returns the snapshot's name.
func (s *Service) mutate(path string, fn func(doc *draft.Document) error) (string, error) {
	contentPath, err := draft.ContentPath(path)
	if err != nil {
		return "", err
	}
	unlock := draft.LockPath(contentPath)
	defer unlock()

	doc, err := draft.Load(contentPath)
	if err != nil {
		return "", err
	}
	backupPath, err := backup.Create(contentPath)
	if err != nil {
		return "", err
	}
	if err := fn(doc); err != nil {
		return "", err
	}
	if err := draft.Save(doc, contentPath); err != nil {
		return "", err
	}

	s.rememberProject(path)
	return filepath.Base(backupPath), nil
}

// rememberProject best-effort persists the last-used project path for the
// host UI's quick-open list.
func (s *Service) rememberProject(path string) {
	settings, err := s.cfg.LoadSettings()
	if err != nil {
		s.log.Debugw("settings unreadable", "error", err)
		settings = &config.Settings{}
	}
	settings.LastProjectPath = path
	if err := s.cfg.SaveSettings(settings); err != nil {
		s.log.Debugw("settings not saved", "error", err)
	}
}

// Analyze summarizes a draft's timeline without mutating it.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return nil, err
	}
	doc, err := draft.Load(contentPath)
	if err != nil {
		return nil, err
	}
	return &AnalyzeResponse{Tracks: analyze.Analyze(doc)}, nil
}

// Sync removes gaps and aligns media/subtitles to the reference track.
func (s *Service) Sync(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	var result *syncer.Result
	backupName, err := s.mutate(req.Path, func(doc *draft.Document) error {
		var err error
		result, err = syncer.Sync(doc, syncer.Options{
			AudioTrackIndex: req.AudioTrackIndex,
			Mode:            req.Mode,
			SyncSubtitles:   req.SyncSubtitles,
			ApplyAnimations: req.ApplyAnimations,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("sync finished",
		"path", req.Path,
		"gaps", result.GapsRemoved,
		"media", result.MediaModified,
		"subtitles", result.SubtitlesModified,
	)
	return &SyncResponse{
		Logs: result.Logs,
		Stats: SyncStats{
			GapsRemoved:       result.GapsRemoved,
			MediaModified:     result.MediaModified,
			SubtitlesModified: result.SubtitlesModified,
		},
		Backup: backupName,
	}, nil
}

// LoopMedia repeats the video track until it covers the reference audio.
func (s *Service) LoopMedia(ctx context.Context, req LoopMediaRequest) (*LoopResponse, error) {
	var result *loop.Result
	backupName, err := s.mutate(req.Path, func(doc *draft.Document) error {
		var err error
		result, err = loop.Media(doc, loop.MediaOptions{
			AudioTrackIndex: req.AudioTrackIndex,
			Order:           req.Order,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("media loop finished", "path", req.Path, "cycles", result.Cycles, "segments", result.NewCount)
	return loopResponse(result, backupName), nil
}

// LoopAudio repeats an audio track to an explicit target duration.
func (s *Service) LoopAudio(ctx context.Context, req LoopAudioRequest) (*LoopResponse, error) {
	var result *loop.Result
	backupName, err := s.mutate(req.Path, func(doc *draft.Document) error {
		var err error
		result, err = loop.Audio(doc, loop.AudioOptions{
			TrackIndex:     req.TrackIndex,
			TargetDuration: req.TargetDuration,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("audio loop finished", "path", req.Path, "cycles", result.Cycles, "segments", result.NewCount)
	return loopResponse(result, backupName), nil
}

func loopResponse(result *loop.Result, backupName string) *LoopResponse {
	return &LoopResponse{
		Logs: result.Logs,
		Stats: LoopStats{
			OriginalCount: result.OriginalCount,
			NewCount:      result.NewCount,
			Cycles:        result.Cycles,
		},
		Backup: backupName,
	}
}

// ScanSrtMatches pairs a folder's SRT files with the project's audio
// clips. Read-only.
func (s *Service) ScanSrtMatches(ctx context.Context, req ScanSrtMatchesRequest) (*ScanSrtMatchesResponse, error) {
	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return nil, err
	}
	doc, err := draft.Load(contentPath)
	if err != nil {
		return nil, err
	}
	files, skipped, err := subtitle.ScanFolder(req.Folder)
	if err != nil {
		return nil, err
	}

	clips := subtitle.CollectAudioClips(doc)
	pairs, unmatched := subtitle.Match(files, clips)

	resp := &ScanSrtMatchesResponse{
		TotalSrt:     len(files),
		TotalAudios:  len(clips),
		MatchedCount: len(pairs),
		Skipped:      skipped,
	}
	for _, pair := range pairs {
		resp.Matches = append(resp.Matches, SrtMatch{
			SrtFile:       pair.File.Name,
			SrtPath:       pair.File.Path,
			AudioName:     pair.Clip.Name,
			Entries:       len(pair.File.Entries),
			AudioDuration: pair.Clip.Duration,
		})
	}
	for _, f := range unmatched {
		resp.Unmatched = append(resp.Unmatched, f.Name)
	}
	return resp, nil
}

// InsertSrt inserts matched SRT files over their audio clips. Folders
// accumulate, deduplicated by file name.
func (s *Service) InsertSrt(ctx context.Context, req InsertSrtRequest) (*InsertResponse, error) {
	files, skipped, err := subtitle.ScanFolders(req.Folders)
	if err != nil {
		return nil, err
	}

	var result *subtitle.Result
	backupName, err := s.mutate(req.Path, func(doc *draft.Document) error {
		clips := subtitle.CollectAudioClips(doc)
		pairs, _ := subtitle.Match(files, clips)
		var err error
		result, err = subtitle.InsertMatched(doc, clips, pairs, subtitle.MatchedOptions{
			CreateTitle:    req.CreateTitle,
			SeparateTracks: req.SeparateTracks,
			Selected:       req.Selected,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, name := range skipped {
		result.Logs = append(result.Logs, fmt.Sprintf("warning: %s could not be parsed, skipped", name))
	}
	s.log.Infow("srt insertion finished", "path", req.Path, "subtitles", result.TotalSubtitles)
	return insertResponse(result, backupName), nil
}

// ScanSrtBatch lists SRT files across folders, scanning folders in
// parallel and deduplicating by base name (first folder wins).
func (s *Service) ScanSrtBatch(ctx context.Context, req ScanSrtBatchRequest) (*ScanSrtBatchResponse, error) {
	if len(req.Folders) == 0 {
		return nil, draft.Validationf("no folders to scan")
	}

	perFolder := make([][]*subtitle.File, len(req.Folders))
	perSkipped := make([][]string, len(req.Folders))
	g, _ := errgroup.WithContext(ctx)
	for i, folder := range req.Folders {
		g.Go(func() error {
			files, skipped, err := subtitle.ScanFolder(folder)
			if err != nil {
				return err
			}
			perFolder[i] = files
			perSkipped[i] = skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &ScanSrtBatchResponse{}
	seen := map[string]bool{}
	for i := range req.Folders {
		resp.Skipped = append(resp.Skipped, perSkipped[i]...)
		for _, f := range perFolder[i] {
			key := strings.ToLower(subtitle.BaseName(f.Name))
			if seen[key] {
				continue
			}
			seen[key] = true
			resp.Files = append(resp.Files, BatchFile{
				Name:     f.Name,
				Path:     f.Path,
				Entries:  len(f.Entries),
				Duration: f.Span().Microseconds(),
			})
		}
	}
	return resp, nil
}

// InsertSrtBatch concatenates the listed SRT files onto one new track,
// in the given order. Files that fail to parse are skipped with a
// warning.
func (s *Service) InsertSrtBatch(ctx context.Context, req InsertSrtBatchRequest) (*InsertResponse, error) {
	if len(req.SrtFiles) == 0 {
		return nil, draft.Validationf("no subtitle files to insert")
	}

	var files []*subtitle.File
	var skipped []string
	for _, path := range req.SrtFiles {
		f, err := subtitle.Parse(path)
		if err != nil {
			skipped = append(skipped, filepath.Base(path))
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, draft.Validationf("none of the %d subtitle files could be parsed", len(req.SrtFiles))
	}

	var result *subtitle.Result
	backupName, err := s.mutate(req.Path, func(doc *draft.Document) error {
		var err error
		result, err = subtitle.InsertBatch(doc, files, subtitle.BatchOptions{
			Gap:         req.GapMs * 1000,
			CreateTitle: req.CreateTitle,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, name := range skipped {
		result.Logs = append(result.Logs, fmt.Sprintf("warning: %s could not be parsed, skipped", name))
	}
	s.log.Infow("batch srt insertion finished", "path", req.Path, "subtitles", result.TotalSubtitles)
	return insertResponse(result, backupName), nil
}

// CreateAndInsertSrt generates timed subtitles from a plain-text script,
// writes them as an SRT file beside the draft, and inserts them. It
// refuses to run while the editor process is open unless forced, since
// the editor would overwrite the change on its next save.
func (s *Service) CreateAndInsertSrt(ctx context.Context, req CreateAndInsertSrtRequest) (*CreateAndInsertSrtResponse, error) {
	if strings.TrimSpace(req.Script) == "" {
		return nil, draft.Validationf("script is empty")
	}
	if !req.Force && editor.IsRunning() {
		return nil, draft.Validationf("the editor is running; close it or pass force")
	}

	entries := subtitle.GenerateFromScript(req.Script, req.MaxChars, req.ReadingRate)
	if len(entries) == 0 {
		return nil, draft.Validationf("script produced no subtitle entries")
	}

	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return nil, err
	}
	srtPath := req.SrtPath
	if srtPath == "" {
		srtPath = filepath.Join(filepath.Dir(contentPath), "generated_subtitles.srt")
	}
	if err := subtitle.Write(entries, srtPath); err != nil {
		return nil, &draft.IoError{Op: "write", Path: srtPath, Err: err}
	}

	var result *subtitle.Result
	backupName, err := s.mutate(contentPath, func(doc *draft.Document) error {
		var err error
		result, err = subtitle.InsertGenerated(doc, entries)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("script subtitles inserted", "path", req.Path, "entries", len(entries), "srt", srtPath)
	return &CreateAndInsertSrtResponse{
		InsertResponse: *insertResponse(result, backupName),
		SrtPath:        srtPath,
		Entries:        len(entries),
	}, nil
}

func insertResponse(result *subtitle.Result, backupName string) *InsertResponse {
	return &InsertResponse{
		Logs:           result.Logs,
		TotalSubtitles: result.TotalSubtitles,
		TracksCreated:  result.TracksCreated,
		TotalDuration:  result.TotalDuration,
		Backup:         backupName,
	}
}

// MergeProjects loads every source in parallel, merges them, and writes
// the result as a new project folder beside the first source.
func (s *Service) MergeProjects(ctx context.Context, req MergeProjectsRequest) (*MergeProjectsResponse, error) {
	if len(req.Paths) < 2 {
		return nil, draft.Validationf("merging needs at least 2 projects, got %d", len(req.Paths))
	}

	docs := make([]*draft.Document, len(req.Paths))
	g, _ := errgroup.WithContext(ctx)
	for i, path := range req.Paths {
		g.Go(func() error {
			contentPath, err := draft.ContentPath(path)
			if err != nil {
				return err
			}
			doc, err := draft.Load(contentPath)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := merge.Merge(docs, merge.Options{Mode: req.Mode, OutputName: req.OutputName})
	if err != nil {
		return nil, err
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		firstContent, err := draft.ContentPath(req.Paths[0])
		if err != nil {
			return nil, err
		}
		outputDir = filepath.Dir(filepath.Dir(firstContent))
	}
	projectDir := filepath.Join(outputDir, merged.Name)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return nil, &draft.IoError{Op: "mkdir", Path: projectDir, Err: err}
	}
	outPath := filepath.Join(projectDir, draft.ContentFileName)
	if err := draft.Save(merged, outPath); err != nil {
		return nil, err
	}
	if err := project.Register(projectDir, merged.ID, merged.Name); err != nil {
		return nil, err
	}

	s.log.Infow("projects merged", "count", len(docs), "output", outPath)
	return &MergeProjectsResponse{
		Name:         merged.Name,
		Path:         projectDir,
		ProjectCount: len(docs),
		Duration:     merged.Duration,
	}, nil
}

// MediaPaths lists every media file the draft references. Read-only.
func (s *Service) MediaPaths(ctx context.Context, req MediaPathsRequest) (*MediaPathsResponse, error) {
	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return nil, err
	}
	doc, err := draft.Load(contentPath)
	if err != nil {
		return nil, err
	}
	return &MediaPathsResponse{Media: project.MediaPaths(doc)}, nil
}

// UpdateMediaPaths rewrites material paths through the mapping, for
// projects whose media moved.
func (s *Service) UpdateMediaPaths(ctx context.Context, req UpdateMediaPathsRequest) (*UpdateMediaPathsResponse, error) {
	if len(req.Mapping) == 0 {
		return nil, draft.Validationf("path mapping is empty")
	}
	updated := 0
	backupName, err := s.mutate(req.Path, func(doc *draft.Document) error {
		updated = project.UpdateMediaPaths(doc, req.Mapping)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("media paths updated", "path", req.Path, "updated", updated)
	return &UpdateMediaPathsResponse{Updated: updated, Backup: backupName}, nil
}

// ExportProject packs the project and its media into a portable zip.
func (s *Service) ExportProject(ctx context.Context, req ExportProjectRequest) (*ExportProjectResponse, error) {
	archivePath, manifest, err := project.Export(req.Path, req.OutputPath)
	if err != nil {
		return nil, err
	}
	s.log.Infow("project exported", "path", req.Path, "archive", archivePath, "media", manifest.MediaCount)
	return &ExportProjectResponse{
		ArchivePath: archivePath,
		MediaCount:  manifest.MediaCount,
		Missing:     manifest.Missing,
	}, nil
}

// ImportProject unpacks an exported archive into the projects folder
// and registers it with the editor.
func (s *Service) ImportProject(ctx context.Context, req ImportProjectRequest) (*ImportProjectResponse, error) {
	if req.ZipPath == "" {
		return nil, draft.Validationf("archive path is required")
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.cfg.ProjectsDir()
	}
	if outputDir == "" {
		outputDir = editor.DetectProjectsDir()
	}
	if outputDir == "" {
		return nil, draft.Validationf("no projects directory configured or detected")
	}
	projectDir, name, err := project.Import(req.ZipPath, outputDir)
	if err != nil {
		return nil, err
	}
	s.log.Infow("project imported", "archive", req.ZipPath, "project", projectDir)
	return &ImportProjectResponse{Name: name, Path: projectDir}, nil
}

// ListBackups lists a draft's snapshots, newest first.
func (s *Service) ListBackups(ctx context.Context, req ListBackupsRequest) (*ListBackupsResponse, error) {
	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return nil, err
	}
	infos, err := backup.List(contentPath)
	if err != nil {
		return nil, err
	}
	return &ListBackupsResponse{Backups: infos}, nil
}

// RestoreBackup writes a snapshot back over the draft.
func (s *Service) RestoreBackup(ctx context.Context, req RestoreBackupRequest) (*RestoreBackupResponse, error) {
	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return nil, err
	}
	unlock := draft.LockPath(contentPath)
	defer unlock()

	info, err := backup.Restore(contentPath, req.Name)
	if err != nil {
		return nil, err
	}
	s.log.Infow("backup restored", "path", req.Path, "backup", info.Name)
	return &RestoreBackupResponse{Restored: info}, nil
}

// DeleteBackup removes one snapshot.
func (s *Service) DeleteBackup(ctx context.Context, req DeleteBackupRequest) error {
	if req.Name == "" {
		return draft.Validationf("backup name is required")
	}
	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return err
	}
	return backup.Delete(contentPath, req.Name)
}

// DeleteAllBackups removes every snapshot of the draft.
func (s *Service) DeleteAllBackups(ctx context.Context, req DeleteAllBackupsRequest) (*DeleteAllBackupsResponse, error) {
	contentPath, err := draft.ContentPath(req.Path)
	if err != nil {
		return nil, err
	}
	removed, err := backup.DeleteAll(contentPath)
	if err != nil {
		return nil, err
	}
	return &DeleteAllBackupsResponse{Removed: removed}, nil
}

// ListProjects scans the editor's projects folder (or an explicit dir).
func (s *Service) ListProjects(ctx context.Context, req ListProjectsRequest) (*ListProjectsResponse, error) {
	dir := req.Dir
	if dir == "" {
		dir = s.cfg.ProjectsDir()
	}
	if dir == "" {
		dir = editor.DetectProjectsDir()
	}
	if dir == "" {
		return nil, draft.Validationf("no projects directory configured or detected")
	}
	projects, err := editor.ListProjects(dir)
	if err != nil {
		return nil, err
	}
	return &ListProjectsResponse{Dir: dir, Projects: projects}, nil
}

// EditorStatus reports whether the editor is open and where its projects
// live.
func (s *Service) EditorStatus(ctx context.Context) *EditorStatusResponse {
	dir := s.cfg.ProjectsDir()
	if dir == "" {
		dir = editor.DetectProjectsDir()
	}
	return &EditorStatusResponse{Running: editor.IsRunning(), ProjectsDir: dir}
}
