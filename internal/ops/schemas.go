package ops

import (
	"github.com/andremarcal/draftsync/internal/analyze"
	"github.com/andremarcal/draftsync/internal/backup"
	"github.com/andremarcal/draftsync/internal/editor"
	"github.com/andremarcal/draftsync/internal/project"
)

// AnalyzeRequest asks for a read-only timeline summary.
type AnalyzeRequest struct {
	Path string `json:"path"`
}

type AnalyzeResponse struct {
	Tracks []analyze.TrackInfo `json:"tracks"`
}

// SyncRequest removes gaps and aligns media to a reference track.
type SyncRequest struct {
	Path            string `json:"path"`
	AudioTrackIndex int    `json:"audioTrackIndex"`
	Mode            string `json:"mode,omitempty"`
	SyncSubtitles   bool   `json:"syncSubtitles"`
	ApplyAnimations bool   `json:"applyAnimations"`
}

type SyncStats struct {
	GapsRemoved       int `json:"gapsRemoved"`
	MediaModified     int `json:"mediaModified"`
	SubtitlesModified int `json:"subtitlesModified"`
}

type SyncResponse struct {
	Logs   []string  `json:"logs"`
	Stats  SyncStats `json:"stats"`
	Backup string    `json:"backup"`
}

// LoopMediaRequest repeats the video track under the reference audio.
type LoopMediaRequest struct {
	Path            string `json:"path"`
	AudioTrackIndex int    `json:"audioTrackIndex"`
	Order           string `json:"order,omitempty"`
}

// LoopAudioRequest repeats an audio track to an explicit duration.
type LoopAudioRequest struct {
	Path           string `json:"path"`
	TrackIndex     int    `json:"trackIndex"`
	TargetDuration int64  `json:"targetDuration"`
}

type LoopStats struct {
	OriginalCount int `json:"originalCount"`
	NewCount      int `json:"newCount"`
	Cycles        int `json:"cycles"`
}

type LoopResponse struct {
	Logs   []string  `json:"logs"`
	Stats  LoopStats `json:"stats"`
	Backup string    `json:"backup"`
}

// ScanSrtMatchesRequest pairs a folder of SRT files with a project's
// audio clips without mutating anything.
type ScanSrtMatchesRequest struct {
	Path   string `json:"path"`
	Folder string `json:"srtFolder"`
}

type SrtMatch struct {
	SrtFile       string `json:"srtFile"`
	SrtPath       string `json:"srtPath"`
	AudioName     string `json:"audioName"`
	Entries       int    `json:"subtitleCount"`
	AudioDuration int64  `json:"audioDuration"`
}

type ScanSrtMatchesResponse struct {
	Matches      []SrtMatch `json:"matches"`
	Unmatched    []string   `json:"unmatched"`
	TotalSrt     int        `json:"totalSrt"`
	TotalAudios  int        `json:"totalAudios"`
	MatchedCount int        `json:"matchedCount"`
	Skipped      []string   `json:"skipped,omitempty"`
}

// InsertSrtRequest inserts matched SRT files over their audio clips.
// Folders accumulate: files appearing in several folders are taken from
// the first one that holds them.
type InsertSrtRequest struct {
	Path           string   `json:"path"`
	Folders        []string `json:"srtFolders"`
	CreateTitle    bool     `json:"createTitle"`
	SeparateTracks bool     `json:"separateTracks"`
	Selected       []string `json:"selectedFiles,omitempty"`
}

type InsertResponse struct {
	Logs           []string `json:"logs"`
	TotalSubtitles int      `json:"totalSubtitles"`
	TracksCreated  int      `json:"tracksCreated"`
	TotalDuration  int64    `json:"totalDuration"`
	Backup         string   `json:"backup"`
}

// ScanSrtBatchRequest lists SRT files across folders for batch insertion.
type ScanSrtBatchRequest struct {
	Folders []string `json:"folders"`
}

type BatchFile struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Entries  int    `json:"entries"`
	Duration int64  `json:"duration"`
}

type ScanSrtBatchResponse struct {
	Files   []BatchFile `json:"files"`
	Skipped []string    `json:"skipped,omitempty"`
}

// InsertSrtBatchRequest concatenates whole SRT files onto one track, in
// the given order, with GapMs milliseconds between files.
type InsertSrtBatchRequest struct {
	Path        string   `json:"path"`
	SrtFiles    []string `json:"srtFiles"`
	CreateTitle bool     `json:"createTitle"`
	GapMs       int64    `json:"gapMs"`
}

// CreateAndInsertSrtRequest turns a plain-text script into timed
// subtitles, writes them as an SRT file, and inserts them into the draft.
type CreateAndInsertSrtRequest struct {
	Path        string  `json:"path"`
	Script      string  `json:"script"`
	MaxChars    int     `json:"maxChars,omitempty"`
	ReadingRate float64 `json:"readingRate,omitempty"`
	SrtPath     string  `json:"srtPath,omitempty"`
	// Force proceeds even while the editor process is running.
	Force bool `json:"force"`
}

type CreateAndInsertSrtResponse struct {
	InsertResponse
	SrtPath string `json:"srtPath"`
	Entries int    `json:"entries"`
}

// MergeProjectsRequest combines several projects into a new one.
type MergeProjectsRequest struct {
	Paths      []string `json:"paths"`
	Mode       string   `json:"mode,omitempty"`
	OutputName string   `json:"outputName,omitempty"`
	OutputDir  string   `json:"outputDir,omitempty"`
}

type MergeProjectsResponse struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	ProjectCount int    `json:"projectCount"`
	Duration     int64  `json:"duration"`
}

// MediaPathsRequest lists every media file a draft references.
type MediaPathsRequest struct {
	Path string `json:"path"`
}

type MediaPathsResponse struct {
	Media []project.MediaPath `json:"media"`
}

// UpdateMediaPathsRequest rewrites material paths through an old-to-new
// mapping, for projects moved between machines.
type UpdateMediaPathsRequest struct {
	Path    string            `json:"path"`
	Mapping map[string]string `json:"mapping"`
}

type UpdateMediaPathsResponse struct {
	Updated int    `json:"updated"`
	Backup  string `json:"backup"`
}

// ExportProjectRequest packs a project and its media into a zip.
type ExportProjectRequest struct {
	Path       string `json:"path"`
	OutputPath string `json:"outputPath,omitempty"`
}

type ExportProjectResponse struct {
	ArchivePath string   `json:"archivePath"`
	MediaCount  int      `json:"mediaCount"`
	Missing     []string `json:"missing,omitempty"`
}

// ImportProjectRequest unpacks an exported archive into the projects
// folder and registers the new project with the editor.
type ImportProjectRequest struct {
	ZipPath   string `json:"zipPath"`
	OutputDir string `json:"outputDir,omitempty"`
}

type ImportProjectResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Backup management requests.
type ListBackupsRequest struct {
	Path string `json:"path"`
}

type ListBackupsResponse struct {
	Backups []backup.Info `json:"backups"`
}

type RestoreBackupRequest struct {
	Path string `json:"path"`
	// Name selects a snapshot; empty restores the newest.
	Name string `json:"name,omitempty"`
}

type RestoreBackupResponse struct {
	Restored backup.Info `json:"restored"`
}

type DeleteBackupRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type DeleteAllBackupsRequest struct {
	Path string `json:"path"`
}

type DeleteAllBackupsResponse struct {
	Removed int `json:"removed"`
}

// ListProjectsRequest scans the editor's projects folder.
type ListProjectsRequest struct {
	Dir string `json:"dir,omitempty"`
}

type ListProjectsResponse struct {
	Dir      string           `json:"dir"`
	Projects []editor.Project `json:"projects"`
}

type EditorStatusResponse struct {
	Running     bool   `json:"running"`
	ProjectsDir string `json:"projectsDir"`
}
