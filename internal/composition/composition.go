// Package composition models the declarative video-composition request and
// the first-wins selection rules applied to it.
package composition

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultSceneDuration is applied when a scene omits its duration or
// declares a nonpositive one.
const DefaultSceneDuration = 5.0

// Element is a typed declaration within a scene or at the request root.
// Image elements are implicit: any element carrying a src inside a scene is
// treated as an image source.
type Element struct {
	Type    string `json:"type,omitempty"`
	Src     string `json:"src,omitempty"`
	Text    string `json:"text,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Scene is one segment of the output video: a single still image shown for a
// fixed duration. Transition is carried through but unused by rendering.
type Scene struct {
	Elements   []Element `json:"elements,omitempty"`
	Duration   *float64  `json:"duration,omitempty"`
	Transition string    `json:"transition,omitempty"`
}

// Request is an immutable composition request: ordered scenes plus
// root-level audio/caption declarations.
type Request struct {
	Scenes   []Scene   `json:"scenes,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Decode parses a request body. Unknown fields are ignored so clients can
// carry extra metadata without breaking submission.
func Decode(body []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, fmt.Errorf("decode composition request: %w", err)
	}
	return req, nil
}

// SceneSource describes one renderable scene after element selection.
type SceneSource struct {
	// Index is the scene's position in the original request; it names
	// downloaded files so intermediates stay traceable.
	Index    int
	ImageURL string
	Duration float64
}

// SceneDuration returns the scene's effective duration.
func (s Scene) SceneDuration() float64 {
	if s.Duration == nil || *s.Duration <= 0 {
		return DefaultSceneDuration
	}
	return *s.Duration
}

// SceneSources selects one image source per scene. Only the first element of
// each scene is consulted; scenes without elements or whose first element
// lacks a src are skipped entirely: they contribute no clip and no error.
func (r Request) SceneSources() []SceneSource {
	sources := make([]SceneSource, 0, len(r.Scenes))
	for i, scene := range r.Scenes {
		if len(scene.Elements) == 0 {
			continue
		}
		src := strings.TrimSpace(scene.Elements[0].Src)
		if src == "" {
			continue
		}
		sources = append(sources, SceneSource{
			Index:    i,
			ImageURL: src,
			Duration: scene.SceneDuration(),
		})
	}
	return sources
}

// AudioURL returns the src of the first root-level audio element; later
// audio elements are ignored.
func (r Request) AudioURL() (string, bool) {
	for _, el := range r.Elements {
		if el.Type == "audio" {
			src := strings.TrimSpace(el.Src)
			return src, src != ""
		}
	}
	return "", false
}

// CaptionText returns the text of the first root-level caption-like element
// (caption, subtitles, or text); later ones are ignored. The text field
// wins over the caption field when both are present.
func (r Request) CaptionText() (string, bool) {
	for _, el := range r.Elements {
		switch el.Type {
		case "caption", "subtitles", "text":
			text := el.Text
			if text == "" {
				text = el.Caption
			}
			return text, text != ""
		}
	}
	return "", false
}
