package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyvid-backend/internal/models"
)

func TestScenePairs_NarrativeOrder(t *testing.T) {
	asset := &models.VideoAsset{
		AudioURLs: models.AudioURLs{
			FirstScene: "https://cdn.example.com/a/first.mp3",
			Dialogs: []models.DialogAudio{
				{SceneName: "The Market", AudioURL: "https://cdn.example.com/a/market.mp3"},
				{SceneName: "The Chase", AudioURL: "https://cdn.example.com/a/chase.mp3"},
			},
			LastScene: "https://cdn.example.com/a/last.mp3",
		},
		ImageURLs: models.ImageURLs{
			FirstScene: "https://cdn.example.com/i/first.jpg",
			Scenes: []string{
				"https://cdn.example.com/i/market.jpg",
				"https://cdn.example.com/i/chase.jpg",
			},
			LastScene: "https://cdn.example.com/i/last.jpg",
		},
	}

	pairs := scenePairs(asset)
	if len(pairs) != 4 {
		t.Fatalf("expected 4 scenes, got %d", len(pairs))
	}

	wantOrder := []string{"firstScene", "The Market", "The Chase", "lastScene"}
	for i, want := range wantOrder {
		if pairs[i].name != want {
			t.Errorf("scene %d: expected %q, got %q", i, want, pairs[i].name)
		}
	}
}

func TestScenePairs_TruncatesToShorterList(t *testing.T) {
	asset := &models.VideoAsset{
		AudioURLs: models.AudioURLs{
			Dialogs: []models.DialogAudio{
				{SceneName: "one", AudioURL: "https://cdn.example.com/1.mp3"},
				{SceneName: "two", AudioURL: "https://cdn.example.com/2.mp3"},
				{SceneName: "three", AudioURL: "https://cdn.example.com/3.mp3"},
			},
		},
		ImageURLs: models.ImageURLs{
			Scenes: []string{"https://cdn.example.com/1.jpg"},
		},
	}

	pairs := scenePairs(asset)
	if len(pairs) != 1 {
		t.Fatalf("expected dialog scenes without images to be dropped, got %d pairs", len(pairs))
	}
	if pairs[0].name != "one" {
		t.Errorf("expected scene %q, got %q", "one", pairs[0].name)
	}
}

func TestScenePairs_EmptyAsset(t *testing.T) {
	pairs := scenePairs(&models.VideoAsset{})
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs for an empty asset, got %d", len(pairs))
	}
}

func TestWriteConcatList(t *testing.T) {
	tmpDir := t.TempDir()
	listPath := filepath.Join(tmpDir, "segments.txt")

	segments := []string{
		filepath.Join(tmpDir, "segment_0.mp4"),
		filepath.Join(tmpDir, "segment_1.mp4"),
	}

	if err := writeConcatList(segments, listPath); err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}

	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("failed to read list: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "file '") {
			t.Errorf("line %d should use the concat demuxer format, got %q", i, line)
		}
	}
}
