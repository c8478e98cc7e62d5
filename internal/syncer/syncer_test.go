package syncer

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/andremarcal/draftsync/internal/draft"
)

func seg(start, duration int64) *draft.Segment {
	return &draft.Segment{
		ID:          draft.NewID(),
		TargetRange: draft.TimeRange{Start: start, Duration: duration},
	}
}

func segWithSource(start, duration, srcStart, srcDur int64) *draft.Segment {
	s := seg(start, duration)
	s.SourceRange = &draft.TimeRange{Start: srcStart, Duration: srcDur}
	return s
}

func doc(tracks ...*draft.Track) *draft.Document {
	d := &draft.Document{ID: draft.NewID(), Materials: draft.NewMaterials(), Tracks: tracks}
	d.RefreshDuration()
	return d
}

func track(typ string, segs ...*draft.Segment) *draft.Track {
	return &draft.Track{ID: draft.NewID(), Type: typ, Segments: segs}
}

func TestSyncRemovesGaps(t *testing.T) {
	audio := track(draft.TrackAudio,
		seg(0, 2_000_000),
		seg(3_000_000, 2_000_000), // 1s gap
		seg(6_000_000, 1_000_000), // another gap
	)
	d := doc(audio)

	res, err := Sync(d, Options{Mode: ModeByAudio})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.GapsRemoved != 2 {
		t.Errorf("expected 2 gaps removed, got %d", res.GapsRemoved)
	}

	starts := []int64{0, 2_000_000, 4_000_000}
	for i, s := range audio.Segments {
		if s.TargetRange.Start != starts[i] {
			t.Errorf("segment %d start %d, want %d", i, s.TargetRange.Start, starts[i])
		}
	}
	if d.Duration != 5_000_000 {
		t.Errorf("duration not refreshed: %d", d.Duration)
	}
}

func TestSyncPackIdempotent(t *testing.T) {
	audio := track(draft.TrackAudio, seg(1_000_000, 2_000_000), seg(5_000_000, 1_000_000))
	d := doc(audio)

	if _, err := Sync(d, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := Sync(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.GapsRemoved != 0 {
		t.Errorf("second pack should be a no-op, removed %d gaps", res.GapsRemoved)
	}
	// anchored at the first segment's original start
	if audio.Segments[0].TargetRange.Start != 1_000_000 {
		t.Errorf("pack moved the anchor: %d", audio.Segments[0].TargetRange.Start)
	}
}

func TestSyncAlignsMediaCycling(t *testing.T) {
	// one video segment, three audio segments: video must be cloned to 3
	video := track(draft.TrackVideo, segWithSource(0, 10_000_000, 500_000, 10_000_000))
	audio := track(draft.TrackAudio,
		seg(0, 2_000_000), seg(2_000_000, 3_000_000), seg(5_000_000, 4_000_000))
	d := doc(video, audio)

	res, err := Sync(d, Options{AudioTrackIndex: 1})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.MediaModified != 3 {
		t.Errorf("expected 3 media segments, got %d", res.MediaModified)
	}
	if len(video.Segments) != 3 {
		t.Fatalf("video track has %d segments", len(video.Segments))
	}

	var audioTotal, videoTotal int64
	for i := range audio.Segments {
		audioTotal += audio.Segments[i].TargetRange.Duration
		videoTotal += video.Segments[i].TargetRange.Duration
		if video.Segments[i].TargetRange != audio.Segments[i].TargetRange {
			t.Errorf("segment %d not aligned: %+v vs %+v", i,
				video.Segments[i].TargetRange, audio.Segments[i].TargetRange)
		}
	}
	if videoTotal != audioTotal {
		t.Errorf("duration not conserved: video %d audio %d", videoTotal, audioTotal)
	}

	// clones must have fresh IDs and rescaled sources at the original start
	if video.Segments[1].ID == video.Segments[0].ID {
		t.Error("clone shares the original's ID")
	}
	if sr := video.Segments[1].SourceRange; sr == nil ||
		sr.Start != 500_000 || sr.Duration != 3_000_000 {
		t.Errorf("clone source range wrong: %+v", video.Segments[1].SourceRange)
	}
}

func TestSyncTruncatesExtraMedia(t *testing.T) {
	video := track(draft.TrackVideo, seg(0, 1_000_000), seg(1_000_000, 1_000_000), seg(2_000_000, 1_000_000))
	audio := track(draft.TrackAudio, seg(0, 5_000_000))
	d := doc(video, audio)

	res, err := Sync(d, Options{AudioTrackIndex: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.MediaModified != 1 || len(video.Segments) != 1 {
		t.Errorf("expected truncation to 1 segment, got %d", len(video.Segments))
	}
	if video.Segments[0].TargetRange.Duration != 5_000_000 {
		t.Errorf("segment should take the piece's duration")
	}
}

func TestSyncSubtitles(t *testing.T) {
	audio := track(draft.TrackAudio, seg(0, 2_000_000), seg(4_000_000, 3_000_000))
	subs := track(draft.TrackText, seg(0, 1_000_000), seg(1_000_000, 1_000_000), seg(2_000_000, 1_000_000))
	d := doc(audio, subs)

	res, err := Sync(d, Options{SyncSubtitles: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.SubtitlesModified != 2 {
		t.Errorf("expected min(2,3)=2 subtitles re-timed, got %d", res.SubtitlesModified)
	}
	if subs.Segments[0].TargetRange != audio.Segments[0].TargetRange {
		t.Errorf("subtitle 0 not aligned")
	}
	if len(subs.Segments) != 3 {
		t.Errorf("subtitle segments must not be cloned or dropped")
	}
}

func TestSyncBySubtitle(t *testing.T) {
	video := track(draft.TrackVideo, segWithSource(0, 9_000_000, 0, 9_000_000))
	subs := track(draft.TrackText, seg(1_000_000, 2_000_000), seg(3_000_000, 2_500_000))
	d := doc(video, subs)

	res, err := Sync(d, Options{Mode: ModeBySubtitle})
	if err != nil {
		t.Fatal(err)
	}
	if res.MediaModified != 2 {
		t.Errorf("expected 2 media aligned, got %d", res.MediaModified)
	}
	if video.Segments[0].TargetRange.Start != 1_000_000 {
		t.Errorf("by_subtitle must keep subtitle positions as-is")
	}
	if video.Segments[1].TargetRange.Duration != 2_500_000 {
		t.Errorf("second segment duration wrong")
	}
}

func TestSyncValidation(t *testing.T) {
	var verr *draft.ValidationError

	_, err := Sync(doc(track(draft.TrackVideo, seg(0, 1))), Options{})
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error without audio, got %v", err)
	}

	_, err = Sync(doc(track(draft.TrackAudio, seg(0, 1))), Options{Mode: "sideways"})
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error for unknown mode, got %v", err)
	}

	_, err = Sync(doc(track(draft.TrackAudio, seg(0, 1))), Options{Mode: ModeBySubtitle})
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error without subtitles, got %v", err)
	}
}

func TestAnimatePhotos(t *testing.T) {
	d := &draft.Document{ID: draft.NewID(), Materials: draft.NewMaterials()}
	photo := &draft.Material{ID: draft.NewID(), Name: "img.jpg", Type: "photo"}
	movie := &draft.Material{ID: draft.NewID(), Name: "clip.mp4", Type: "video"}
	d.Materials.Append("videos", photo, movie)

	photoSeg := seg(0, 2_000_000)
	photoSeg.MaterialID = photo.ID
	movieSeg := seg(2_000_000, 2_000_000)
	movieSeg.MaterialID = movie.ID
	video := track(draft.TrackVideo, photoSeg, movieSeg)
	audio := track(draft.TrackAudio, seg(0, 2_000_000), seg(2_000_000, 2_000_000))
	d.Tracks = []*draft.Track{video, audio}

	res, err := Sync(d, Options{ApplyAnimations: true})
	if err != nil {
		t.Fatal(err)
	}
	_ = res

	if _, ok := photoSeg.Extra["common_keyframes"]; !ok {
		t.Fatal("photo segment missing keyframes")
	}
	var groups []keyframeGroup
	if err := json.Unmarshal(photoSeg.Extra["common_keyframes"], &groups); err != nil {
		t.Fatalf("keyframes not decodable: %v", err)
	}
	if len(groups) < 2 {
		t.Errorf("expected at least scale X/Y groups, got %d", len(groups))
	}

	var clip map[string]any
	if err := json.Unmarshal(photoSeg.Extra["clip"], &clip); err != nil {
		t.Fatalf("clip not decodable: %v", err)
	}
	scale := clip["scale"].(map[string]any)
	if scale["x"].(float64) != 1.15 {
		t.Errorf("clip scale not set: %v", scale)
	}

	if _, ok := movieSeg.Extra["common_keyframes"]; ok {
		t.Error("non-photo segment must not be animated")
	}
}
