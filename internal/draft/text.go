package draft

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ExtractText pulls the display text out of a text material's content
// field. The editor stores content as nested JSON ({"text": ...} with a
// styles array); plain strings are returned truncated.
func ExtractText(content string) string {
	if content == "" {
		return ""
	}
	if !gjson.Valid(content) {
		if utf8.RuneCountInString(content) > 50 {
			runes := []rune(content)
			return string(runes[:50])
		}
		return content
	}
	if text := gjson.Get(content, "text"); text.Exists() && text.String() != "" {
		return text.String()
	}
	for _, style := range gjson.Get(content, "styles").Array() {
		if text := style.Get("text"); text.Exists() && text.String() != "" {
			return text.String()
		}
	}
	return ""
}

type textStyleFill struct {
	Content struct {
		RenderType string `json:"render_type"`
		Solid      struct {
			Color []float64 `json:"color"`
		} `json:"solid"`
	} `json:"content"`
}

type textStyle struct {
	Fill textStyleFill `json:"fill"`
	Font struct {
		Path string `json:"path"`
		ID   string `json:"id"`
	} `json:"font"`
	Size  float64 `json:"size"`
	Range [2]int  `json:"range"`
}

type textContent struct {
	Text   string      `json:"text"`
	Styles []textStyle `json:"styles"`
}

// NewTextMaterial builds a text (or subtitle) material in the editor's
// shape: the visible text lives in a nested content JSON with one style
// covering the full rune range.
func NewTextMaterial(text string, fontSize float64, subtitle bool, groupID string) *Material {
	var style textStyle
	style.Fill.Content.RenderType = "solid"
	style.Fill.Content.Solid.Color = []float64{1, 1, 1}
	style.Size = fontSize
	style.Range = [2]int{0, utf8.RuneCountInString(text)}
	content, _ := json.Marshal(textContent{Text: text, Styles: []textStyle{style}})

	matType := "text"
	if subtitle {
		matType = "subtitle"
	}
	mat := &Material{
		ID:      NewID(),
		Type:    matType,
		Content: string(content),
		Extra:   map[string]json.RawMessage{},
	}
	extras := map[string]any{
		"add_type":         2,
		"alignment":        1,
		"background_alpha": 1.0,
		"check_flag":       7,
		"font_size":        fontSize,
		"global_alpha":     1.0,
		"group_id":         groupID,
		"line_max_width":   0.82,
		"text_alpha":       1.0,
		"text_color":       "#FFFFFF",
		"words":            map[string][]any{"end_time": {}, "start_time": {}, "text": {}},
	}
	for k, v := range extras {
		data, _ := json.Marshal(v)
		mat.Extra[k] = data
	}
	return mat
}

// NewSpeedMaterial builds the speed entry every text segment references.
func NewSpeedMaterial() *Material {
	mat := &Material{
		ID:    NewID(),
		Type:  "speed",
		Extra: map[string]json.RawMessage{},
	}
	mat.Extra["mode"], _ = json.Marshal(0)
	mat.Extra["speed"], _ = json.Marshal(1.0)
	return mat
}

// NewTextSegment places a text material on the timeline. The returned
// speed material must be appended to the document's speeds category.
func NewTextSegment(materialID string, start, duration int64, yPos float64) (*Segment, *Material) {
	speed := NewSpeedMaterial()
	seg := &Segment{
		ID:          NewID(),
		MaterialID:  materialID,
		TargetRange: TimeRange{Start: start, Duration: duration},
		Extra:       map[string]json.RawMessage{},
	}
	seg.Extra["clip"], _ = json.Marshal(map[string]any{
		"alpha":     1.0,
		"flip":      map[string]bool{"horizontal": false, "vertical": false},
		"rotation":  0.0,
		"scale":     map[string]float64{"x": 1.0, "y": 1.0},
		"transform": map[string]float64{"x": 0.0, "y": yPos},
	})
	seg.Extra["common_keyframes"], _ = json.Marshal([]any{})
	seg.Extra["extra_material_refs"], _ = json.Marshal([]string{speed.ID})
	seg.Extra["visible"], _ = json.Marshal(true)
	return seg, speed
}

// NewTextTrack builds a text track holding the given segments.
func NewTextTrack(segments []*Segment) *Track {
	track := &Track{
		ID:       NewID(),
		Type:     TrackText,
		Segments: segments,
		Extra:    map[string]json.RawMessage{},
	}
	track.Extra["attribute"], _ = json.Marshal(0)
	track.Extra["flag"], _ = json.Marshal(0)
	track.Extra["is_default_name"], _ = json.Marshal(true)
	track.Extra["name"], _ = json.Marshal("")
	return track
}

var leadingNumberRe = regexp.MustCompile(`^\d+[-_.\s]*`)

// CleanClipName turns a media file name into a display title: extension
// stripped and any leading "01 - " style numbering removed.
func CleanClipName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimSpace(leadingNumberRe.ReplaceAllString(base, ""))
}
