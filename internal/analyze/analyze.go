// Package analyze derives a read-only summary of a draft's timeline for
// display: one entry per track with resolved material names and, for text
// tracks, the visible text.
package analyze

import (
	"path/filepath"

	"github.com/andremarcal/draftsync/internal/draft"
)

// TrackInfo summarizes one track.
type TrackInfo struct {
	Index       int           `json:"index"`
	Type        string        `json:"type"`
	Segments    int           `json:"segments"`
	Duration    int64         `json:"duration"`
	DurationSec float64       `json:"durationSec"`
	Name        string        `json:"name"`
	Details     []SegmentInfo `json:"details,omitempty"`
}

// SegmentInfo is the per-segment detail used by timeline previews.
type SegmentInfo struct {
	Index        int    `json:"index"`
	Start        int64  `json:"start"`
	Duration     int64  `json:"duration"`
	MaterialName string `json:"materialName,omitempty"`
	Text         string `json:"text,omitempty"`
}

// Analyze summarizes every track in document order. Missing materials
// resolve to empty names, never an error.
func Analyze(doc *draft.Document) []TrackInfo {
	infos := make([]TrackInfo, 0, len(doc.Tracks))
	for idx, track := range doc.Tracks {
		info := TrackInfo{
			Index:    idx,
			Type:     track.Type,
			Segments: len(track.Segments),
			Duration: track.Duration(),
			Name:     trackName(doc, track),
		}
		info.DurationSec = float64(info.Duration) / 1e6

		for segIdx, seg := range track.Segments {
			detail := SegmentInfo{
				Index:    segIdx,
				Start:    seg.TargetRange.Start,
				Duration: seg.TargetRange.Duration,
			}
			if mat := doc.Materials.Lookup(seg.MaterialID); mat != nil {
				detail.MaterialName = materialName(mat)
				if track.IsTextual() {
					detail.Text = draft.ExtractText(mat.Content)
				}
			}
			info.Details = append(info.Details, detail)
		}
		infos = append(infos, info)
	}
	return infos
}

// trackName resolves a display name from the first segment's material.
// Text tracks show their first visible text and fall back to "Texto".
func trackName(doc *draft.Document, track *draft.Track) string {
	if len(track.Segments) == 0 {
		return ""
	}
	mat := doc.Materials.Lookup(track.Segments[0].MaterialID)
	if mat == nil {
		return ""
	}
	if track.IsTextual() {
		if text := draft.ExtractText(mat.Content); text != "" {
			return text
		}
		if mat.Name != "" {
			return mat.Name
		}
		return "Texto"
	}
	return materialName(mat)
}

func materialName(mat *draft.Material) string {
	if mat.Name != "" {
		return filepath.Base(mat.Name)
	}
	if mat.Path != "" {
		return filepath.Base(mat.Path)
	}
	return ""
}
