package syncer

import (
	"math/rand"

	"github.com/andremarcal/draftsync/internal/draft"
)

// keyframes end one frame (30fps) before the segment does
const keyframeTailOffset = 33333

type keyframePoint struct {
	TimeOffset int64     `json:"time_offset"`
	Values     []float64 `json:"values"`
	CurveType  string    `json:"curveType"`
	GraphID    string    `json:"graphID"`
	LeftCtrl   point     `json:"left_control"`
	RightCtrl  point     `json:"right_control"`
	ID         string    `json:"id"`
	StringVal  string    `json:"string_value"`
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type keyframeGroup struct {
	ID           string          `json:"id"`
	MaterialID   string          `json:"material_id"`
	PropertyType string          `json:"property_type"`
	KeyframeList []keyframePoint `json:"keyframe_list"`
}

func kfGroup(property string, points ...keyframePoint) keyframeGroup {
	for i := range points {
		points[i].ID = draft.NewID()
		points[i].CurveType = "Line"
	}
	return keyframeGroup{
		ID:           draft.NewID(),
		PropertyType: property,
		KeyframeList: points,
	}
}

func rampXY(property string, from, to float64, end int64) []keyframeGroup {
	return []keyframeGroup{
		kfGroup(property+"X",
			keyframePoint{TimeOffset: 0, Values: []float64{from}},
			keyframePoint{TimeOffset: end, Values: []float64{to}},
		),
		kfGroup(property+"Y",
			keyframePoint{TimeOffset: 0, Values: []float64{from}},
			keyframePoint{TimeOffset: end, Values: []float64{to}},
		),
	}
}

func fixedScale(value float64) []keyframeGroup {
	return []keyframeGroup{
		kfGroup("KFTypeScaleX", keyframePoint{TimeOffset: 0, Values: []float64{value}}),
		kfGroup("KFTypeScaleY", keyframePoint{TimeOffset: 0, Values: []float64{value}}),
	}
}

func tail(duration int64) int64 {
	if end := duration - keyframeTailOffset; end > 0 {
		return end
	}
	return 0
}

// The six entrance animations applied to still photos: slow and strong
// zooms in both directions plus vertical and horizontal pans.
var animationPatterns = []func(duration int64) []keyframeGroup{
	func(d int64) []keyframeGroup { // soft zoom in
		return rampXY("KFTypeScale", 1.02, 1.15, tail(d))
	},
	func(d int64) []keyframeGroup { // pan down
		return append(fixedScale(1.15), kfGroup("KFTypePositionY",
			keyframePoint{TimeOffset: 0, Values: []float64{-0.12}},
			keyframePoint{TimeOffset: tail(d), Values: []float64{0.12}},
		))
	},
	func(d int64) []keyframeGroup { // zoom out
		return rampXY("KFTypeScale", 1.18, 1.05, tail(d))
	},
	func(d int64) []keyframeGroup { // strong zoom in
		return rampXY("KFTypeScale", 1.0, 1.2, tail(d))
	},
	func(d int64) []keyframeGroup { // strong pan down
		return append(fixedScale(1.2), kfGroup("KFTypePositionY",
			keyframePoint{TimeOffset: 0, Values: []float64{-0.15}},
			keyframePoint{TimeOffset: tail(d), Values: []float64{0.15}},
		))
	},
	func(d int64) []keyframeGroup { // horizontal pan
		return append(fixedScale(1.15), kfGroup("KFTypePositionX",
			keyframePoint{TimeOffset: 0, Values: []float64{-0.1}},
			keyframePoint{TimeOffset: tail(d), Values: []float64{0.1}},
		))
	},
}

// assignPatterns deals one pattern per photo, cycling through the set and
// shuffling so consecutive photos rarely share an animation.
func assignPatterns(count int) []func(int64) []keyframeGroup {
	if count == 0 {
		return nil
	}
	assigned := make([]func(int64) []keyframeGroup, 0, count)
	for len(assigned) < count {
		assigned = append(assigned, animationPatterns...)
	}
	assigned = assigned[:count]
	rand.Shuffle(len(assigned), func(i, j int) {
		assigned[i], assigned[j] = assigned[j], assigned[i]
	})
	return assigned
}
