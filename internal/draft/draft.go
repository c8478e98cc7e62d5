package draft

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Track types used by the editor.
const (
	TrackVideo    = "video"
	TrackAudio    = "audio"
	TrackText     = "text"
	TrackSubtitle = "subtitle"
	TrackEffect   = "effect"
	TrackFilter   = "filter"
	TrackSticker  = "sticker"
)

// TimeRange is a span on the timeline in microseconds.
type TimeRange struct {
	Start    int64 `json:"start"`
	Duration int64 `json:"duration"`
}

func (t TimeRange) End() int64 { return t.Start + t.Duration }

// Segment is a timed placement of one material on a track.
//
// The editor stores many fields per segment that are irrelevant to timing;
// those are kept verbatim in Extra so a round trip never loses data.
type Segment struct {
	ID          string
	MaterialID  string
	TargetRange TimeRange
	SourceRange *TimeRange
	Extra       map[string]json.RawMessage
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, key)
		return nil
	}
	if err := take("id", &s.ID); err != nil {
		return err
	}
	if err := take("material_id", &s.MaterialID); err != nil {
		return err
	}
	if err := take("target_timerange", &s.TargetRange); err != nil {
		return err
	}
	if err := take("source_timerange", &s.SourceRange); err != nil {
		return err
	}
	s.Extra = raw
	return nil
}

func (s Segment) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	var err error
	if out["id"], err = json.Marshal(s.ID); err != nil {
		return nil, err
	}
	if out["material_id"], err = json.Marshal(s.MaterialID); err != nil {
		return nil, err
	}
	if out["target_timerange"], err = json.Marshal(s.TargetRange); err != nil {
		return nil, err
	}
	if s.SourceRange != nil {
		if out["source_timerange"], err = json.Marshal(s.SourceRange); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// Clone deep-copies the segment and assigns a fresh ID.
func (s *Segment) Clone() *Segment {
	c := &Segment{
		ID:          NewID(),
		MaterialID:  s.MaterialID,
		TargetRange: s.TargetRange,
	}
	if s.SourceRange != nil {
		sr := *s.SourceRange
		c.SourceRange = &sr
	}
	if len(s.Extra) > 0 {
		c.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// SetExtra marshals v into the segment's unknown-field bag.
func (s *Segment) SetExtra(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.Extra == nil {
		s.Extra = map[string]json.RawMessage{}
	}
	s.Extra[key] = data
	return nil
}

// Track is an ordered sequence of segments of one type.
type Track struct {
	ID       string
	Type     string
	Segments []*Segment
	Extra    map[string]json.RawMessage
}

func (t *Track) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, key)
		return nil
	}
	if err := take("id", &t.ID); err != nil {
		return err
	}
	if err := take("type", &t.Type); err != nil {
		return err
	}
	if err := take("segments", &t.Segments); err != nil {
		return err
	}
	if t.Segments == nil {
		t.Segments = []*Segment{}
	}
	t.Extra = raw
	return nil
}

func (t Track) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Extra)+3)
	for k, v := range t.Extra {
		out[k] = v
	}
	var err error
	if out["id"], err = json.Marshal(t.ID); err != nil {
		return nil, err
	}
	if out["type"], err = json.Marshal(t.Type); err != nil {
		return nil, err
	}
	segs := t.Segments
	if segs == nil {
		segs = []*Segment{}
	}
	if out["segments"], err = json.Marshal(segs); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// Duration is the sum of segment durations on the track.
func (t *Track) Duration() int64 {
	var total int64
	for _, s := range t.Segments {
		total += s.TargetRange.Duration
	}
	return total
}

// End is the largest end position of any segment on the track.
func (t *Track) End() int64 {
	var end int64
	for _, s := range t.Segments {
		if e := s.TargetRange.End(); e > end {
			end = e
		}
	}
	return end
}

func (t *Track) IsTextual() bool {
	return t.Type == TrackText || t.Type == TrackSubtitle
}

// Material is the content payload segments point to. Category-specific
// fields (speed values, audio fades, keyframes...) live in Extra.
type Material struct {
	ID      string
	Name    string
	Path    string
	Type    string
	Content string
	Extra   map[string]json.RawMessage
}

func (m *Material) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, key)
		return nil
	}
	if err := take("id", &m.ID); err != nil {
		return err
	}
	if err := take("name", &m.Name); err != nil {
		return err
	}
	if err := take("path", &m.Path); err != nil {
		return err
	}
	if err := take("type", &m.Type); err != nil {
		return err
	}
	if err := take("content", &m.Content); err != nil {
		return err
	}
	m.Extra = raw
	return nil
}

func (m Material) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Extra)+5)
	for k, v := range m.Extra {
		out[k] = v
	}
	var err error
	if out["id"], err = json.Marshal(m.ID); err != nil {
		return nil, err
	}
	if m.Name != "" {
		if out["name"], err = json.Marshal(m.Name); err != nil {
			return nil, err
		}
	}
	if m.Path != "" {
		if out["path"], err = json.Marshal(m.Path); err != nil {
			return nil, err
		}
	}
	if m.Type != "" {
		if out["type"], err = json.Marshal(m.Type); err != nil {
			return nil, err
		}
	}
	if m.Content != "" {
		if out["content"], err = json.Marshal(m.Content); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// Clone deep-copies the material and assigns a fresh ID.
func (m *Material) Clone() *Material {
	c := &Material{
		ID:      NewID(),
		Name:    m.Name,
		Path:    m.Path,
		Type:    m.Type,
		Content: m.Content,
	}
	if len(m.Extra) > 0 {
		c.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// Materials is the per-category material store. Every category whose value
// is an array of objects is decoded into Categories; anything else is kept
// verbatim in Extra.
type Materials struct {
	Categories map[string][]*Material
	Extra      map[string]json.RawMessage
}

func NewMaterials() *Materials {
	return &Materials{
		Categories: map[string][]*Material{},
		Extra:      map[string]json.RawMessage{},
	}
}

func (m *Materials) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Categories = map[string][]*Material{}
	m.Extra = map[string]json.RawMessage{}
	for key, v := range raw {
		trimmed := strings.TrimSpace(string(v))
		if strings.HasPrefix(trimmed, "[") {
			var list []*Material
			if err := json.Unmarshal(v, &list); err == nil {
				m.Categories[key] = list
				continue
			}
		}
		m.Extra[key] = v
	}
	return nil
}

func (m Materials) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Categories)+len(m.Extra))
	for k, v := range m.Extra {
		out[k] = v
	}
	for key, list := range m.Categories {
		if list == nil {
			list = []*Material{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		out[key] = data
	}
	return json.Marshal(out)
}

// Lookup finds a material by ID across all categories.
func (m *Materials) Lookup(id string) *Material {
	if m == nil || id == "" {
		return nil
	}
	for _, list := range m.Categories {
		for _, mat := range list {
			if mat.ID == id {
				return mat
			}
		}
	}
	return nil
}

// Category returns the material list for one category (possibly nil).
func (m *Materials) Category(name string) []*Material {
	if m == nil {
		return nil
	}
	return m.Categories[name]
}

// Append adds materials to a category, creating it if absent.
func (m *Materials) Append(category string, mats ...*Material) {
	if m.Categories == nil {
		m.Categories = map[string][]*Material{}
	}
	m.Categories[category] = append(m.Categories[category], mats...)
}

// Document is the root of a draft file.
type Document struct {
	ID        string
	Name      string
	Duration  int64
	Tracks    []*Track
	Materials *Materials
	Extra     map[string]json.RawMessage
}

func (d *Document) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, key)
		return nil
	}
	if err := take("id", &d.ID); err != nil {
		return err
	}
	if err := take("name", &d.Name); err != nil {
		return err
	}
	if err := take("duration", &d.Duration); err != nil {
		return err
	}
	if err := take("tracks", &d.Tracks); err != nil {
		return err
	}
	if err := take("materials", &d.Materials); err != nil {
		return err
	}
	if d.Tracks == nil {
		d.Tracks = []*Track{}
	}
	if d.Materials == nil {
		d.Materials = NewMaterials()
	}
	d.Extra = raw
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Extra)+5)
	for k, v := range d.Extra {
		out[k] = v
	}
	var err error
	if out["id"], err = json.Marshal(d.ID); err != nil {
		return nil, err
	}
	if out["name"], err = json.Marshal(d.Name); err != nil {
		return nil, err
	}
	if out["duration"], err = json.Marshal(d.Duration); err != nil {
		return nil, err
	}
	tracks := d.Tracks
	if tracks == nil {
		tracks = []*Track{}
	}
	if out["tracks"], err = json.Marshal(tracks); err != nil {
		return nil, err
	}
	mats := d.Materials
	if mats == nil {
		mats = NewMaterials()
	}
	if out["materials"], err = json.Marshal(mats); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// TotalDuration is the largest end position across all tracks.
func (d *Document) TotalDuration() int64 {
	var end int64
	for _, t := range d.Tracks {
		if e := t.End(); e > end {
			end = e
		}
	}
	return end
}

// TrackAt returns the track at index, or nil when out of range.
func (d *Document) TrackAt(index int) *Track {
	if index < 0 || index >= len(d.Tracks) {
		return nil
	}
	return d.Tracks[index]
}

// FirstTrackOfType returns the first track matching any of the given types.
func (d *Document) FirstTrackOfType(types ...string) *Track {
	for _, t := range d.Tracks {
		for _, typ := range types {
			if t.Type == typ {
				return t
			}
		}
	}
	return nil
}

// RefreshDuration recomputes the document duration from its tracks.
func (d *Document) RefreshDuration() {
	d.Duration = d.TotalDuration()
}

// NewID generates an upper-case UUID, the editor's ID convention.
func NewID() string {
	return strings.ToUpper(uuid.NewString())
}
