package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/adforge/pkg/creative"
)

// VideoFormat marks a placeholder produced by [RenderVideo].
const VideoFormat = "adforge-video-placeholder"

// VideoContentType is the media type of the placeholder payload.
const VideoContentType = "application/vnd.adforge.video+json"

const (
	defaultVideoFPS      = 30
	defaultVideoDuration = 15
)

// Video is a motion placeholder. Encoding real video is left to a dedicated
// render service; the payload names the frame and its storyboard.
type Video struct {
	Format          string  `json:"format"`
	LayoutID        string  `json:"layoutId"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FPS             int     `json:"fps"`
	DurationSeconds float64 `json:"durationSeconds"`
	Scenes          []Scene `json:"scenes"`
	PosterSVG       string  `json:"posterSvg"`
}

// Scene is one beat of the storyboard.
type Scene struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Element string  `json:"element"`
	Motion  string  `json:"motion"`
}

// VideoOption configures video placeholder rendering.
type VideoOption func(*videoRenderer)

type videoRenderer struct {
	fps      int
	duration float64
}

// WithDuration sets the clip length in seconds.
func WithDuration(seconds float64) VideoOption {
	return func(r *videoRenderer) {
		if seconds > 0 {
			r.duration = seconds
		}
	}
}

// WithFPS sets the frame rate.
func WithFPS(fps int) VideoOption {
	return func(r *videoRenderer) {
		if fps > 0 {
			r.fps = fps
		}
	}
}

// RenderVideo produces the JSON placeholder for a motion channel. Each
// element gets an equal reveal slot in paint order.
func RenderVideo(v *creative.LayoutVariation, opts ...VideoOption) ([]byte, error) {
	r := videoRenderer{fps: defaultVideoFPS, duration: defaultVideoDuration}
	for _, opt := range opts {
		opt(&r)
	}

	order := paintOrder(v)
	scenes := make([]Scene, 0, len(order))
	slot := r.duration / float64(max(len(order), 1))
	for i, el := range order {
		s := Scene{Start: float64(i) * slot, End: r.duration}
		switch {
		case el.image != nil && el.image.Hero:
			s.Element, s.Motion = "image:"+el.image.AssetID, "zoom-in"
		case el.image != nil:
			s.Element, s.Motion = "image:"+el.image.AssetID, "fade-in"
		default:
			s.Element, s.Motion = "text:"+string(el.text.Role), "slide-up"
		}
		scenes = append(scenes, s)
	}

	data, err := json.MarshalIndent(Video{
		Format:          VideoFormat,
		LayoutID:        v.ID,
		Width:           v.Width,
		Height:          v.Height,
		FPS:             r.fps,
		DurationSeconds: r.duration,
		Scenes:          scenes,
		PosterSVG:       string(RenderSVG(v)),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("video: %w", err)
	}
	return data, nil
}
