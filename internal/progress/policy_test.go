package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightpath/brightpath-lms/internal/content"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name string
		typ  content.ItemType
		sig  Signal
		want float64
	}{
		{"video midway", content.TypeVideo, Signal{Position: 30, Duration: 60}, 50},
		{"video zero duration", content.TypeVideo, Signal{Position: 0, Duration: 0}, 100},
		{"video overshoot clamps", content.TypeVideo, Signal{Position: 90, Duration: 60}, 100},
		{"audio midway", content.TypeAudio, Signal{Position: 45, Duration: 90}, 50},
		{"image first of three", content.TypeImage, Signal{Index: 0, Count: 3}, 100.0 / 3},
		{"image last of three", content.TypeImage, Signal{Index: 2, Count: 3}, 100},
		{"image empty carousel", content.TypeImage, Signal{Index: 0, Count: 0}, 100},
		{"text half scrolled", content.TypeText, Signal{Offset: 500, Range: 1000}, 50},
		{"text no scrollable range", content.TypeText, Signal{Offset: 0, Range: 0}, 100},
		{"quiz three of four", content.TypeQuiz, Signal{Answered: 3, Total: 4}, 75},
		{"quiz no questions", content.TypeQuiz, Signal{Answered: 0, Total: 0}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percent(tt.typ, tt.sig), 1e-9)
		})
	}
}

func TestPercentNegativeSignalClampsToZero(t *testing.T) {
	got := Percent(content.TypeVideo, Signal{Position: -10, Duration: 60})
	assert.Equal(t, 0.0, got)
}

func TestRequired(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 80.0, th.Required(content.TypeVideo))
	assert.Equal(t, 80.0, th.Required(content.TypeAudio))
	assert.Equal(t, 80.0, th.Required(content.TypeText))
	assert.Equal(t, 100.0, th.Required(content.TypeImage))
	assert.Equal(t, 100.0, th.Required(content.TypeQuiz))
}

func TestRequiredConfigurable(t *testing.T) {
	th := Thresholds{Video: 60, Audio: 70, Text: 50}
	assert.Equal(t, 60.0, th.Required(content.TypeVideo))
	assert.Equal(t, 70.0, th.Required(content.TypeAudio))
	assert.Equal(t, 50.0, th.Required(content.TypeText))
	// image and quiz are never configurable
	assert.Equal(t, 100.0, th.Required(content.TypeImage))
	assert.Equal(t, 100.0, th.Required(content.TypeQuiz))
}
