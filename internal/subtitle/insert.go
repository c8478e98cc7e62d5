package subtitle

import (
	"fmt"
	"strings"
	"time"

	"github.com/andremarcal/draftsync/internal/draft"
)

// Text placement used by the editor for imported titles and subtitles.
const (
	titleFontSize    = 7.0
	subtitleFontSize = 5.0
	titleYPos        = -0.85
	subtitleYPos     = -0.75
)

// AudioClip is an audio segment as placed on the timeline, identified by
// its material's file name.
type AudioClip struct {
	Name     string
	Start    int64
	Duration int64
}

// CollectAudioClips walks every audio track and returns the clips whose
// segments resolve to an audio material, in track order.
func CollectAudioClips(doc *draft.Document) []AudioClip {
	byID := make(map[string]*draft.Material)
	for _, mat := range doc.Materials.Category("audios") {
		byID[mat.ID] = mat
	}

	var clips []AudioClip
	for _, track := range doc.Tracks {
		if track.Type != draft.TrackAudio {
			continue
		}
		for _, seg := range track.Segments {
			mat, ok := byID[seg.MaterialID]
			if !ok {
				continue
			}
			name := mat.Name
			if name == "" {
				name = mat.Path
			}
			clips = append(clips, AudioClip{
				Name:     name,
				Start:    seg.TargetRange.Start,
				Duration: seg.TargetRange.Duration,
			})
		}
	}
	return clips
}

// MatchedOptions controls how matched SRT files are placed on the timeline.
type MatchedOptions struct {
	// CreateTitle adds a title segment spanning every audio clip, showing
	// the clip's cleaned file name, matched or not.
	CreateTitle bool
	// SeparateTracks puts each audio clip's text on its own track.
	// Required when more than one clip receives segments.
	SeparateTracks bool
	// Selected limits insertion to these SRT files, given as paths or
	// base names (case-insensitive). Empty means all matches.
	Selected []string
}

// Result reports what an insertion changed.
type Result struct {
	Logs           []string
	TotalSubtitles int
	TracksCreated  int
	TotalDuration  int64
}

func (r *Result) logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

// InsertMatched walks the audio clips in timeline order. Every clip gets
// a title segment when CreateTitle is set; clips with a matched SRT file
// additionally get its entries, offset by the clip's timeline start, with
// entries that would outlast the clip dropped.
func InsertMatched(doc *draft.Document, clips []AudioClip, pairs []Pair, opts MatchedOptions) (*Result, error) {
	if len(clips) == 0 {
		return nil, draft.Validationf("project has no audio clips to subtitle")
	}
	pairs = filterSelected(pairs, opts.Selected)

	byClip := make(map[string]*File, len(pairs))
	for _, pair := range pairs {
		key := strings.ToLower(BaseName(pair.Clip.Name))
		if _, ok := byClip[key]; !ok {
			byClip[key] = pair.File
		}
	}
	if len(byClip) == 0 && !opts.CreateTitle {
		return nil, draft.Validationf("no subtitle files matched the project's audio clips")
	}

	producing := len(clips)
	if !opts.CreateTitle {
		producing = 0
		for _, clip := range clips {
			if _, ok := byClip[strings.ToLower(BaseName(clip.Name))]; ok {
				producing++
			}
		}
	}
	if producing > 1 && !opts.SeparateTracks {
		return nil, draft.Validationf("separate tracks are required when %d clips receive text", producing)
	}

	result := &Result{}
	var mats, speeds []*draft.Material
	var shared []*draft.Segment

	for i, clip := range clips {
		var segs []*draft.Segment

		if opts.CreateTitle {
			title := draft.CleanClipName(clip.Name)
			mat := draft.NewTextMaterial(title, titleFontSize, false, "")
			seg, speed := draft.NewTextSegment(mat.ID, clip.Start, clip.Duration, titleYPos)
			mats = append(mats, mat)
			speeds = append(speeds, speed)
			segs = append(segs, seg)
		}

		if f, ok := byClip[strings.ToLower(BaseName(clip.Name))]; ok {
			groupID := fmt.Sprintf("imp_%d_%d", time.Now().UnixMilli(), i)
			dropped := 0
			for _, entry := range f.Entries {
				if entry.StartMicros()+entry.DurationMicros() > clip.Duration {
					dropped++
					continue
				}
				mat := draft.NewTextMaterial(entry.Text, subtitleFontSize, true, groupID)
				seg, speed := draft.NewTextSegment(
					mat.ID, clip.Start+entry.StartMicros(), entry.DurationMicros(), subtitleYPos,
				)
				mats = append(mats, mat)
				speeds = append(speeds, speed)
				segs = append(segs, seg)
				result.TotalSubtitles++
			}

			result.logf("%s: %d subtitles over %q", f.Name, len(f.Entries)-dropped, clip.Name)
			if dropped > 0 {
				result.logf("%s: %d entries past the clip's end dropped", f.Name, dropped)
			}
		}

		if len(segs) == 0 {
			continue
		}
		if opts.SeparateTracks {
			doc.Tracks = append(doc.Tracks, draft.NewTextTrack(segs))
			result.TracksCreated++
		} else {
			shared = append(shared, segs...)
		}
	}

	if len(shared) > 0 {
		doc.Tracks = append(doc.Tracks, draft.NewTextTrack(shared))
		result.TracksCreated++
	}

	doc.Materials.Append("texts", mats...)
	doc.Materials.Append("speeds", speeds...)
	doc.RefreshDuration()
	result.TotalDuration = doc.Duration
	return result, nil
}

// BatchOptions controls batch insertion.
type BatchOptions struct {
	// Gap is the pause between consecutive files in microseconds.
	Gap int64
	// CreateTitle adds a title segment spanning each file's block.
	CreateTitle bool
}

// InsertBatch concatenates whole SRT files onto one new track, in the
// given order, starting at zero, with a fixed gap between files.
func InsertBatch(doc *draft.Document, files []*File, opts BatchOptions) (*Result, error) {
	if len(files) == 0 {
		return nil, draft.Validationf("no subtitle files to insert")
	}
	if opts.Gap < 0 {
		return nil, draft.Validationf("gap must not be negative, got %d", opts.Gap)
	}

	result := &Result{}
	var mats, speeds []*draft.Material
	var segs []*draft.Segment

	cursor := int64(0)
	for i, f := range files {
		span := f.Span().Microseconds()
		if opts.CreateTitle {
			title := draft.CleanClipName(f.Name)
			mat := draft.NewTextMaterial(title, titleFontSize, false, "")
			seg, speed := draft.NewTextSegment(mat.ID, cursor, span, titleYPos)
			mats = append(mats, mat)
			speeds = append(speeds, speed)
			segs = append(segs, seg)
		}

		groupID := fmt.Sprintf("imp_%d_%d", time.Now().UnixMilli(), i)
		for _, entry := range f.Entries {
			mat := draft.NewTextMaterial(entry.Text, subtitleFontSize, true, groupID)
			seg, speed := draft.NewTextSegment(
				mat.ID, cursor+entry.StartMicros(), entry.DurationMicros(), subtitleYPos,
			)
			mats = append(mats, mat)
			speeds = append(speeds, speed)
			segs = append(segs, seg)
			result.TotalSubtitles++
		}
		result.logf("%s: %d subtitles at %.1fs", f.Name, len(f.Entries),
			float64(cursor)/1e6)
		cursor += span + opts.Gap
	}

	if len(segs) == 0 {
		return nil, draft.Validationf("subtitle files contain no usable entries")
	}

	doc.Tracks = append(doc.Tracks, draft.NewTextTrack(segs))
	result.TracksCreated = 1
	doc.Materials.Append("texts", mats...)
	doc.Materials.Append("speeds", speeds...)
	doc.RefreshDuration()
	result.TotalDuration = doc.Duration
	return result, nil
}

// InsertGenerated places script-generated entries on one new track at
// their own times.
func InsertGenerated(doc *draft.Document, entries []Entry) (*Result, error) {
	if len(entries) == 0 {
		return nil, draft.Validationf("script produced no subtitle entries")
	}

	result := &Result{}
	var mats, speeds []*draft.Material
	var segs []*draft.Segment

	groupID := fmt.Sprintf("imp_%d_0", time.Now().UnixMilli())
	for _, entry := range entries {
		mat := draft.NewTextMaterial(entry.Text, subtitleFontSize, true, groupID)
		seg, speed := draft.NewTextSegment(
			mat.ID, entry.StartMicros(), entry.DurationMicros(), subtitleYPos,
		)
		mats = append(mats, mat)
		speeds = append(speeds, speed)
		segs = append(segs, seg)
		result.TotalSubtitles++
	}

	doc.Tracks = append(doc.Tracks, draft.NewTextTrack(segs))
	result.TracksCreated = 1
	doc.Materials.Append("texts", mats...)
	doc.Materials.Append("speeds", speeds...)
	doc.RefreshDuration()
	result.TotalDuration = doc.Duration
	result.logf("%d generated subtitles inserted", len(entries))
	return result, nil
}

func filterSelected(pairs []Pair, selected []string) []Pair {
	if len(selected) == 0 {
		return pairs
	}
	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		want[strings.ToLower(BaseName(name))] = true
	}
	var out []Pair
	for _, pair := range pairs {
		if want[strings.ToLower(BaseName(pair.File.Name))] {
			out = append(out, pair)
		}
	}
	return out
}
