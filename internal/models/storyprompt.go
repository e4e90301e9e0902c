package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryPrompt is a stored user-authored generation request, distinct from a
// finalized video asset. StorypromptID is the owning user's identifier; the
// field name is historical and kept for wire compatibility.
type StoryPrompt struct {
	ID             uuid.UUID `json:"id"`
	StorypromptID  string    `json:"storypromptId"`
	StoryTitle     string    `json:"storyTitle"`
	StoryPrompt    string    `json:"storyPrompt"`
	StoryType      string    `json:"storyType"`
	AgeGroup       string    `json:"ageGroup"`
	WritingStyle   string    `json:"writingStyle"`
	Complexity     string    `json:"complexity"`
	BookCoverImage string    `json:"bookCoverImage"`
	ChapterTexts   []string  `json:"chapterTexts"`
	ChapterImages  []string  `json:"chapterImages"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SaveStoryPromptRequest struct {
	StoryTitle     string   `json:"storyTitle"`
	StoryPrompt    string   `json:"storyPrompt"`
	StoryType      string   `json:"storyType"`
	AgeGroup       string   `json:"ageGroup"`
	WritingStyle   string   `json:"writingStyle"`
	Complexity     string   `json:"complexity"`
	BookCoverImage string   `json:"bookCoverImage"`
	ChapterTexts   []string `json:"chapterTexts"`
	ChapterImages  []string `json:"chapterImages"`
}
