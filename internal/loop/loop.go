// Package loop fills a time span by repeating a track's segments.
package loop

import (
	"fmt"
	"math/rand"

	"github.com/andremarcal/draftsync/internal/draft"
)

// Replication orders for media loops.
const (
	OrderSequential = "sequential"
	OrderRandom     = "random"
)

// MediaOptions configures a media loop: the first video track is repeated
// until it covers the reference audio track's end.
type MediaOptions struct {
	// AudioTrackIndex addresses the reference audio track; when it does
	// not point at one, the first audio track is used.
	AudioTrackIndex int
	// Order is sequential or random (default). Random reshuffles the
	// source order on every cycle.
	Order string
}

// AudioOptions configures an audio loop on an explicit track and target.
type AudioOptions struct {
	TrackIndex     int
	TargetDuration int64
}

// Result reports a loop's outcome.
type Result struct {
	Logs          []string
	OriginalCount int
	NewCount      int
	Cycles        int
}

func (r *Result) logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

// Media replaces the first video track's segments with clones repeated
// from time zero until the reference audio track's end is covered exactly.
func Media(doc *draft.Document, opts MediaOptions) (*Result, error) {
	switch opts.Order {
	case "", OrderRandom, OrderSequential:
	default:
		return nil, draft.Validationf("unknown loop order %q", opts.Order)
	}

	target := referenceAudioEnd(doc, opts.AudioTrackIndex)
	if target <= 0 {
		return nil, draft.Validationf("no audio track sets a target duration to loop to")
	}

	video := doc.FirstTrackOfType(draft.TrackVideo)
	if video == nil || len(video.Segments) == 0 {
		return nil, draft.Validationf("project has no video segments to loop")
	}
	if video.Duration() == 0 {
		return nil, draft.Validationf("video segments have zero total duration")
	}

	shuffle := opts.Order != OrderSequential
	result := fill(video, target, shuffle)
	doc.RefreshDuration()
	result.logf("cycles: %d, segments: %d", result.Cycles, result.NewCount)
	return result, nil
}

// Audio repeats the segments of the addressed audio track until
// TargetDuration is covered exactly, always in source order.
func Audio(doc *draft.Document, opts AudioOptions) (*Result, error) {
	if opts.TargetDuration <= 0 {
		return nil, draft.Validationf("target duration must be positive, got %d", opts.TargetDuration)
	}
	track := doc.TrackAt(opts.TrackIndex)
	if track == nil {
		return nil, draft.Validationf("track %d does not exist", opts.TrackIndex)
	}
	if track.Type != draft.TrackAudio {
		return nil, draft.Validationf("track %d is %q, not audio", opts.TrackIndex, track.Type)
	}
	if len(track.Segments) == 0 {
		return nil, draft.Validationf("track %d has no segments to loop", opts.TrackIndex)
	}
	if track.Duration() == 0 {
		return nil, draft.Validationf("track %d segments have zero total duration", opts.TrackIndex)
	}

	result := fill(track, opts.TargetDuration, false)
	doc.RefreshDuration()
	result.logf("cycles: %d, segments: %d", result.Cycles, result.NewCount)
	return result, nil
}

// referenceAudioEnd returns the largest end position on the addressed
// audio track, falling back to the first audio track.
func referenceAudioEnd(doc *draft.Document, index int) int64 {
	if t := doc.TrackAt(index); t != nil && t.Type == draft.TrackAudio {
		return t.End()
	}
	if t := doc.FirstTrackOfType(draft.TrackAudio); t != nil {
		return t.End()
	}
	return 0
}

// fill rebuilds the track's segments from time zero, cycling over the
// originals (shuffled per cycle when asked) and clipping the last clone so
// the total equals target exactly.
func fill(track *draft.Track, target int64, shuffle bool) *Result {
	source := track.Segments
	result := &Result{OriginalCount: len(source)}

	var out []*draft.Segment
	var cur int64
	for cur < target {
		result.Cycles++
		order := make([]*draft.Segment, len(source))
		copy(order, source)
		if shuffle {
			rand.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}
		for _, src := range order {
			if cur >= target {
				break
			}
			clone := src.Clone()
			clone.TargetRange.Start = cur
			if remaining := target - cur; clone.TargetRange.Duration > remaining {
				clone.TargetRange.Duration = remaining
				if clone.SourceRange != nil && clone.SourceRange.Duration > remaining {
					clone.SourceRange.Duration = remaining
				}
			}
			out = append(out, clone)
			cur += clone.TargetRange.Duration
		}
	}

	track.Segments = out
	result.NewCount = len(out)
	return result
}
