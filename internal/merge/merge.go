// Package merge combines several draft documents into a new one.
package merge

import (
	"encoding/json"
	"fmt"

	"github.com/andremarcal/draftsync/internal/draft"
)

// Merge modes.
const (
	// ModeFlat appends every source's tracks onto one timeline, each
	// document shifted past the previous one.
	ModeFlat = "flat"
	// ModeGroups nests each document as a composite clip on one track.
	ModeGroups = "groups"
)

// Options configures a merge.
type Options struct {
	Mode       string
	OutputName string
}

// Merge builds a new document from the sources in input order. Sources
// are not mutated; every ID in the output is freshly generated so the
// result can live beside its sources in the same project folder.
func Merge(docs []*draft.Document, opts Options) (*draft.Document, error) {
	if len(docs) < 2 {
		return nil, draft.Validationf("merging needs at least 2 projects, got %d", len(docs))
	}

	name := opts.OutputName
	if name == "" {
		name = fmt.Sprintf("merged_%d_projects", len(docs))
	}

	switch opts.Mode {
	case "", ModeFlat:
		return mergeFlat(docs, name)
	case ModeGroups:
		return mergeGroups(docs, name)
	default:
		return nil, draft.Validationf("unknown merge mode %q", opts.Mode)
	}
}

// newTarget seeds the output document from the first source's unknown
// fields (canvas size, version markers...) so the editor accepts it.
func newTarget(first *draft.Document, name string) *draft.Document {
	out := &draft.Document{
		ID:        draft.NewID(),
		Name:      name,
		Materials: draft.NewMaterials(),
	}
	if len(first.Extra) > 0 {
		out.Extra = make(map[string]json.RawMessage, len(first.Extra))
		for k, v := range first.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	if first.Materials != nil {
		for k, v := range first.Materials.Extra {
			out.Materials.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func mergeFlat(docs []*draft.Document, name string) (*draft.Document, error) {
	out := newTarget(docs[0], name)

	var offset int64
	for _, src := range docs {
		idMap := copyMaterials(out, src)

		for _, track := range src.Tracks {
			clone := &draft.Track{ID: draft.NewID(), Type: track.Type}
			if len(track.Extra) > 0 {
				clone.Extra = make(map[string]json.RawMessage, len(track.Extra))
				for k, v := range track.Extra {
					clone.Extra[k] = append(json.RawMessage(nil), v...)
				}
			}
			for _, seg := range track.Segments {
				moved := seg.Clone()
				moved.TargetRange.Start += offset
				if mapped, ok := idMap[moved.MaterialID]; ok {
					moved.MaterialID = mapped
				}
				if err := remapRefs(moved, idMap); err != nil {
					return nil, err
				}
				clone.Segments = append(clone.Segments, moved)
			}
			out.Tracks = append(out.Tracks, clone)
		}

		offset += src.TotalDuration()
	}

	out.RefreshDuration()
	return out, nil
}

// mergeGroups keeps each source intact as a composite clip: the whole
// document is embedded in a material and placed as one segment on a
// single video track. Subtitles inside grouped clips may render
// differently once the editor expands them.
func mergeGroups(docs []*draft.Document, name string) (*draft.Document, error) {
	out := newTarget(docs[0], name)
	track := &draft.Track{ID: draft.NewID(), Type: draft.TrackVideo}

	var offset int64
	for _, src := range docs {
		embedded, err := json.Marshal(src)
		if err != nil {
			return nil, fmt.Errorf("failed to embed project %q: %w", src.Name, err)
		}
		duration := src.TotalDuration()

		mat := &draft.Material{
			ID:   draft.NewID(),
			Name: src.Name,
			Type: "combination",
			Extra: map[string]json.RawMessage{
				"draft":    embedded,
				"duration": mustJSON(duration),
			},
		}
		out.Materials.Append("drafts", mat)

		track.Segments = append(track.Segments, &draft.Segment{
			ID:          draft.NewID(),
			MaterialID:  mat.ID,
			TargetRange: draft.TimeRange{Start: offset, Duration: duration},
			SourceRange: &draft.TimeRange{Start: 0, Duration: duration},
		})
		offset += duration
	}

	out.Tracks = append(out.Tracks, track)
	out.RefreshDuration()
	return out, nil
}

// copyMaterials clones every material of src into out, returning the
// old-to-new ID mapping.
func copyMaterials(out *draft.Document, src *draft.Document) map[string]string {
	idMap := map[string]string{}
	if src.Materials == nil {
		return idMap
	}
	for category, list := range src.Materials.Categories {
		for _, mat := range list {
			clone := mat.Clone()
			idMap[mat.ID] = clone.ID
			out.Materials.Append(category, clone)
		}
	}
	return idMap
}

// remapRefs rewrites the segment's extra material references (speeds,
// animations...) through the ID map.
func remapRefs(seg *draft.Segment, idMap map[string]string) error {
	raw, ok := seg.Extra["extra_material_refs"]
	if !ok {
		return nil
	}
	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil // not a string list, leave untouched
	}
	for i, ref := range refs {
		if mapped, ok := idMap[ref]; ok {
			refs[i] = mapped
		}
	}
	return seg.SetExtra("extra_material_refs", refs)
}

func mustJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
