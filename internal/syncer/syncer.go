// Package syncer removes timeline gaps and aligns media and subtitle
// segments to a reference track.
package syncer

import (
	"encoding/json"
	"fmt"

	"github.com/andremarcal/draftsync/internal/draft"
)

// Alignment modes.
const (
	ModeByAudio    = "by_audio"
	ModeBySubtitle = "by_subtitle"
)

// Options selects the reference track and what to align to it.
type Options struct {
	// AudioTrackIndex addresses the reference audio track. When it does
	// not point at an audio track, the first audio track is used.
	AudioTrackIndex int
	// Mode is by_audio (default) or by_subtitle.
	Mode string
	// SyncSubtitles re-times the first text track to the reference pieces.
	SyncSubtitles bool
	// ApplyAnimations adds entrance keyframes to still photos.
	ApplyAnimations bool
}

// Result reports what the sync changed.
type Result struct {
	Logs              []string
	GapsRemoved       int
	MediaModified     int
	SubtitlesModified int
}

func (r *Result) logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

// Sync mutates doc in place. In by_audio mode the reference audio track is
// packed left-to-right from its first segment, then the first video track
// (and optionally the first text track) is re-timed one-to-one against the
// packed audio segments. In by_subtitle mode the first text track's
// positions are taken as-is and the video track follows them.
func Sync(doc *draft.Document, opts Options) (*Result, error) {
	switch opts.Mode {
	case "", ModeByAudio, ModeBySubtitle:
	default:
		return nil, draft.Validationf("unknown sync mode %q", opts.Mode)
	}

	result := &Result{}

	audioTrack := resolveAudioTrack(doc, opts.AudioTrackIndex)
	videoTrack := doc.FirstTrackOfType(draft.TrackVideo)
	subTrack := doc.FirstTrackOfType(draft.TrackText, draft.TrackSubtitle)

	if opts.Mode == ModeBySubtitle {
		if subTrack == nil || len(subTrack.Segments) == 0 {
			return nil, draft.Validationf("project has no subtitle track to sync against")
		}
		if videoTrack == nil || len(videoTrack.Segments) == 0 {
			return nil, draft.Validationf("project has no video track to sync")
		}
		pieces := trackPieces(subTrack)
		result.MediaModified = alignTrack(videoTrack, pieces)
		result.logf("media aligned to subtitles: %d", result.MediaModified)
	} else {
		if audioTrack == nil || len(audioTrack.Segments) == 0 {
			return nil, draft.Validationf("project has no audio track to sync against")
		}

		result.GapsRemoved = packTrack(audioTrack)
		result.logf("gaps removed: %d", result.GapsRemoved)
		pieces := trackPieces(audioTrack)

		if videoTrack != nil && len(videoTrack.Segments) > 0 {
			result.MediaModified = alignTrack(videoTrack, pieces)
			result.logf("media aligned: %d", result.MediaModified)
		}

		if opts.ApplyAnimations && videoTrack != nil {
			animated, err := animatePhotos(doc, videoTrack)
			if err != nil {
				result.logf("warning: animations skipped: %v", err)
			} else if animated > 0 {
				result.logf("animations applied: %d photos", animated)
			}
		}

		if opts.SyncSubtitles && subTrack != nil && len(subTrack.Segments) > 0 {
			result.SubtitlesModified = retimeSubtitles(subTrack, pieces)
			result.logf("subtitles re-timed: %d", result.SubtitlesModified)
		}
	}

	doc.RefreshDuration()
	return result, nil
}

// resolveAudioTrack prefers the addressed track when it really is audio
// and falls back to the first audio track otherwise.
func resolveAudioTrack(doc *draft.Document, index int) *draft.Track {
	if t := doc.TrackAt(index); t != nil && t.Type == draft.TrackAudio {
		return t
	}
	return doc.FirstTrackOfType(draft.TrackAudio)
}

// packTrack shifts every segment so they run back-to-back from the first
// segment's start, returning how many gaps were closed. Packing an already
// packed track is a no-op.
func packTrack(track *draft.Track) int {
	if len(track.Segments) == 0 {
		return 0
	}
	gaps := 0
	cur := track.Segments[0].TargetRange.Start
	for i, seg := range track.Segments {
		if i > 0 && seg.TargetRange.Start > cur {
			gaps++
		}
		seg.TargetRange.Start = cur
		cur += seg.TargetRange.Duration
	}
	return gaps
}

func trackPieces(track *draft.Track) []draft.TimeRange {
	pieces := make([]draft.TimeRange, len(track.Segments))
	for i, seg := range track.Segments {
		pieces[i] = seg.TargetRange
	}
	return pieces
}

// alignTrack re-times the track one-to-one against the reference pieces.
// Fewer segments than pieces cycle through clones with fresh IDs; extra
// segments are dropped. Each aligned segment adopts the piece's exact
// start and duration, and its source range is rescaled to the new duration
// while keeping its original source start.
func alignTrack(track *draft.Track, pieces []draft.TimeRange) int {
	src := track.Segments
	if len(src) == 0 || len(pieces) == 0 {
		return 0
	}
	aligned := make([]*draft.Segment, 0, len(pieces))
	for i, piece := range pieces {
		var seg *draft.Segment
		if i < len(src) {
			seg = src[i]
		} else {
			seg = src[i%len(src)].Clone()
		}
		seg.TargetRange = piece
		if seg.SourceRange != nil {
			seg.SourceRange.Duration = piece.Duration
		}
		aligned = append(aligned, seg)
	}
	track.Segments = aligned
	return len(aligned)
}

// retimeSubtitles moves existing subtitle segments onto the reference
// pieces without cloning; the shorter side bounds the work.
func retimeSubtitles(track *draft.Track, pieces []draft.TimeRange) int {
	n := len(track.Segments)
	if len(pieces) < n {
		n = len(pieces)
	}
	for i := 0; i < n; i++ {
		track.Segments[i].TargetRange = pieces[i]
	}
	return n
}

// animatePhotos attaches a shuffled entrance animation to every segment
// whose material is a still photo.
func animatePhotos(doc *draft.Document, track *draft.Track) (int, error) {
	var photos []*draft.Segment
	for _, seg := range track.Segments {
		mat := doc.Materials.Lookup(seg.MaterialID)
		if mat != nil && mat.Type == "photo" {
			photos = append(photos, seg)
		}
	}
	if len(photos) == 0 {
		return 0, nil
	}

	patterns := assignPatterns(len(photos))
	for i, seg := range photos {
		frames := patterns[i](seg.TargetRange.Duration)
		if err := seg.SetExtra("common_keyframes", frames); err != nil {
			return 0, err
		}
		if err := seg.SetExtra("enable_adjust", true); err != nil {
			return 0, err
		}
		if err := scaleClip(seg, 1.15); err != nil {
			return 0, err
		}
	}
	return len(photos), nil
}

// scaleClip sets the segment's clip scale, building a default clip when
// the segment has none.
func scaleClip(seg *draft.Segment, scale float64) error {
	clip := map[string]any{
		"alpha":     1.0,
		"flip":      map[string]bool{"horizontal": false, "vertical": false},
		"rotation":  0.0,
		"transform": map[string]float64{"x": 0.0, "y": 0.0},
	}
	if raw, ok := seg.Extra["clip"]; ok {
		if err := json.Unmarshal(raw, &clip); err != nil {
			return err
		}
	}
	clip["scale"] = map[string]float64{"x": scale, "y": scale}
	return seg.SetExtra("clip", clip)
}
