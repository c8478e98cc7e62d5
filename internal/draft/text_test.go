package draft

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", ""},
		{"top level text", `{"text": "Olá mundo", "styles": []}`, "Olá mundo"},
		{"text inside styles", `{"styles": [{"text": "do estilo"}]}`, "do estilo"},
		{"plain string", "apenas texto", "apenas texto"},
		{"no text anywhere", `{"styles": [{"size": 5}]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.content); got != tt.want {
				t.Errorf("ExtractText(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractTextTruncatesLongPlainStrings(t *testing.T) {
	long := strings.Repeat("ã", 80)
	got := ExtractText(long)
	if len([]rune(got)) != 50 {
		t.Errorf("truncated to %d runes, want 50", len([]rune(got)))
	}
}

func TestCleanClipName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"02 - intro.mp3", "intro"},
		{"1_abertura.wav", "abertura"},
		{"3.encerramento.mp3", "encerramento"},
		{"voz final.mp3", "voz final"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := CleanClipName(tt.in); got != tt.want {
			t.Errorf("CleanClipName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewTextMaterialShape(t *testing.T) {
	mat := NewTextMaterial("Olá!", 7.0, false, "grp")
	if mat.Type != "text" {
		t.Errorf("type = %q, want text", mat.Type)
	}

	var content struct {
		Text   string `json:"text"`
		Styles []struct {
			Size  float64 `json:"size"`
			Range [2]int  `json:"range"`
		} `json:"styles"`
	}
	if err := json.Unmarshal([]byte(mat.Content), &content); err != nil {
		t.Fatalf("content not JSON: %v", err)
	}
	if content.Text != "Olá!" {
		t.Errorf("text = %q", content.Text)
	}
	if len(content.Styles) != 1 || content.Styles[0].Size != 7.0 {
		t.Fatalf("styles = %+v", content.Styles)
	}
	// Range counts runes, not bytes.
	if content.Styles[0].Range != [2]int{0, 4} {
		t.Errorf("range = %v, want [0 4]", content.Styles[0].Range)
	}

	if string(mat.Extra["group_id"]) != `"grp"` {
		t.Errorf("group_id = %s", mat.Extra["group_id"])
	}

	sub := NewTextMaterial("x", 5.0, true, "")
	if sub.Type != "subtitle" {
		t.Errorf("subtitle type = %q", sub.Type)
	}
}

func TestNewTextSegmentLinksSpeed(t *testing.T) {
	seg, speed := NewTextSegment("MAT-9", 1_000_000, 2_000_000, -0.75)
	if seg.MaterialID != "MAT-9" {
		t.Errorf("material id = %q", seg.MaterialID)
	}
	if seg.TargetRange != (TimeRange{Start: 1_000_000, Duration: 2_000_000}) {
		t.Errorf("target range = %+v", seg.TargetRange)
	}
	if speed.Type != "speed" {
		t.Errorf("speed type = %q", speed.Type)
	}

	var refs []string
	if err := json.Unmarshal(seg.Extra["extra_material_refs"], &refs); err != nil {
		t.Fatalf("refs: %v", err)
	}
	if len(refs) != 1 || refs[0] != speed.ID {
		t.Errorf("refs = %v, want [%s]", refs, speed.ID)
	}

	var clip struct {
		Transform struct {
			Y float64 `json:"y"`
		} `json:"transform"`
	}
	if err := json.Unmarshal(seg.Extra["clip"], &clip); err != nil {
		t.Fatalf("clip: %v", err)
	}
	if clip.Transform.Y != -0.75 {
		t.Errorf("transform.y = %v, want -0.75", clip.Transform.Y)
	}
}

func TestNewTextTrack(t *testing.T) {
	seg, _ := NewTextSegment("M", 0, 1_000_000, 0)
	track := NewTextTrack([]*Segment{seg})
	if track.Type != TrackText {
		t.Errorf("type = %q, want text", track.Type)
	}
	if len(track.Segments) != 1 {
		t.Errorf("segments = %d, want 1", len(track.Segments))
	}
	if track.ID == "" {
		t.Error("track needs an id")
	}
}
