package progress

import (
	"github.com/brightpath/brightpath-lms/internal/content"
)

// Signal is the raw consumption measurement for one item. Only the fields
// matching the item's type are read.
type Signal struct {
	// video, audio
	Position float64 `json:"position,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	// image carousel
	Index int `json:"index,omitempty"`
	Count int `json:"count,omitempty"`
	// text
	Offset float64 `json:"offset,omitempty"`
	Range  float64 `json:"range,omitempty"`
	// quiz
	Answered int `json:"answered,omitempty"`
	Total    int `json:"total,omitempty"`
}

// Percent maps (type, signal) to a consumption percent in [0,100].
// Zero-length content is trivially satisfied and reports 100.
func Percent(t content.ItemType, s Signal) float64 {
	switch t {
	case content.TypeVideo, content.TypeAudio:
		if s.Duration <= 0 {
			return 100
		}
		return clampPct(s.Position / s.Duration * 100)
	case content.TypeImage:
		if s.Count <= 0 {
			return 100
		}
		return clampPct(float64(s.Index+1) / float64(s.Count) * 100)
	case content.TypeText:
		if s.Range <= 0 {
			return 100
		}
		return clampPct(s.Offset / s.Range * 100)
	case content.TypeQuiz:
		if s.Total <= 0 {
			return 100
		}
		return clampPct(float64(s.Answered) / float64(s.Total) * 100)
	}
	return 0
}

// Thresholds holds the configurable required-percent values. Image and quiz
// items always require 100.
type Thresholds struct {
	Video float64
	Audio float64
	Text  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Video: 80, Audio: 80, Text: 80}
}

// Required returns the percent an item must reach before the forward gate
// opens past it.
func (th Thresholds) Required(t content.ItemType) float64 {
	switch t {
	case content.TypeVideo:
		return th.Video
	case content.TypeAudio:
		return th.Audio
	case content.TypeText:
		return th.Text
	case content.TypeImage, content.TypeQuiz:
		return 100
	}
	return 100
}

func clampPct(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
