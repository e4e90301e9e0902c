package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoAsset is the finished bundle of generated material for one video
// story: the prompt that produced it, word-timed captions per scene, and the
// audio/image URLs the renderer assembles. Records are immutable after
// creation; the lifecycle is create then read.
type VideoAsset struct {
	ID            uuid.UUID `json:"id"`
	UserID        string    `json:"userId"`
	Prompt        string    `json:"prompt"`
	Captions      Captions  `json:"captions"`
	AudioURLs     AudioURLs `json:"audioUrls"`
	ImageURLs     ImageURLs `json:"imageUrls"`
	Content       string    `json:"content"`
	TotalDuration float64   `json:"totalDuration"`
	VideoURL      *string   `json:"videoUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Captions carries word-level timing for every scene so the player can render
// synchronized subtitles. Dialog scenes are keyed by scene name.
type Captions struct {
	FirstScene CaptionResult            `json:"firstScene"`
	Dialogs    map[string]CaptionResult `json:"dialogs"`
	LastScene  CaptionResult            `json:"lastScene"`
}

type CaptionResult struct {
	Words     []WordTiming `json:"words"`
	StartTime float64      `json:"startTime"`
	EndTime   float64      `json:"endTime"`
}

type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AudioURLs holds one narration clip per scene. Dialog entries are ordered and
// their scene names correspond to keys in Captions.Dialogs.
type AudioURLs struct {
	FirstScene string        `json:"firstScene"`
	Dialogs    []DialogAudio `json:"dialogs"`
	LastScene  string        `json:"lastScene"`
}

type DialogAudio struct {
	SceneName string `json:"sceneName"`
	AudioURL  string `json:"audioUrl"`
}

// ImageURLs holds one illustration per scene; Scenes is in narrative order.
type ImageURLs struct {
	FirstScene string   `json:"firstScene"`
	Scenes     []string `json:"scenes"`
	LastScene  string   `json:"lastScene"`
}

// CreateVideoAssetRequest is the create payload. The owning user is taken
// from the authenticated identity, never from the body; a userId field sent
// by older clients is accepted and ignored.
type CreateVideoAssetRequest struct {
	UserID        string    `json:"userId,omitempty"`
	Prompt        string    `json:"prompt"`
	Captions      Captions  `json:"captions"`
	AudioURLs     AudioURLs `json:"audioUrls"`
	ImageURLs     ImageURLs `json:"imageUrls"`
	TotalDuration float64   `json:"totalDuration"`
	Content       string    `json:"content"`
}
