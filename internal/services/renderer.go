package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"storyvid-backend/internal/models"
)

// RenderService assembles a video asset's scene images and narration audio
// into a single MP4. Each scene becomes a still-image segment lasting as long
// as its audio; segments are concatenated in narrative order.
type RenderService struct {
	storagePath string
	httpClient  *http.Client
}

func NewRenderService(storagePath string) *RenderService {
	return &RenderService{
		storagePath: storagePath,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

type scenePair struct {
	name     string
	audioURL string
	imageURL string
}

// Render downloads the asset's media, encodes one segment per scene and
// concatenates them. Returns the public URL of the finished file.
func (s *RenderService) Render(ctx context.Context, asset *models.VideoAsset) (string, error) {
	pairs := scenePairs(asset)
	if len(pairs) == 0 {
		return "", &UpstreamError{Message: "asset has no renderable scenes"}
	}

	tmpDir, err := os.MkdirTemp("", "render_"+asset.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var segments []string
	for i, pair := range pairs {
		imgPath := filepath.Join(tmpDir, fmt.Sprintf("image_%d.jpg", i))
		audioPath := filepath.Join(tmpDir, fmt.Sprintf("audio_%d.mp3", i))

		if err := s.downloadFile(ctx, pair.imageURL, imgPath); err != nil {
			return "", fmt.Errorf("failed to download image for scene %q: %w", pair.name, err)
		}
		if err := s.downloadFile(ctx, pair.audioURL, audioPath); err != nil {
			return "", fmt.Errorf("failed to download audio for scene %q: %w", pair.name, err)
		}

		segPath := filepath.Join(tmpDir, fmt.Sprintf("segment_%d.mp4", i))
		if err := encodeSegment(imgPath, audioPath, segPath); err != nil {
			return "", fmt.Errorf("failed to encode scene %q: %w", pair.name, err)
		}
		segments = append(segments, segPath)
	}

	if err := os.MkdirAll(s.storagePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	outName := asset.ID.String() + ".mp4"
	outPath := filepath.Join(s.storagePath, outName)
	if err := concatSegments(segments, tmpDir, outPath); err != nil {
		return "", fmt.Errorf("failed to concatenate segments: %w", err)
	}

	return "/videos/" + outName, nil
}

// scenePairs lines up audio and images in narrative order: first scene, then
// dialog scenes (audio order, paired with scene images by index), then last
// scene. Dialog scenes missing an image are dropped, mirroring how the
// generator truncates to the shorter list.
func scenePairs(asset *models.VideoAsset) []scenePair {
	var pairs []scenePair

	if asset.AudioURLs.FirstScene != "" && asset.ImageURLs.FirstScene != "" {
		pairs = append(pairs, scenePair{"firstScene", asset.AudioURLs.FirstScene, asset.ImageURLs.FirstScene})
	}

	for i, dialog := range asset.AudioURLs.Dialogs {
		if i >= len(asset.ImageURLs.Scenes) {
			break
		}
		if dialog.AudioURL == "" || asset.ImageURLs.Scenes[i] == "" {
			continue
		}
		pairs = append(pairs, scenePair{dialog.SceneName, dialog.AudioURL, asset.ImageURLs.Scenes[i]})
	}

	if asset.AudioURLs.LastScene != "" && asset.ImageURLs.LastScene != "" {
		pairs = append(pairs, scenePair{"lastScene", asset.AudioURLs.LastScene, asset.ImageURLs.LastScene})
	}

	return pairs
}

func encodeSegment(imgPath, audioPath, outPath string) error {
	image := ffmpeg.Input(imgPath, ffmpeg.KwArgs{"loop": 1, "framerate": 24})
	audio := ffmpeg.Input(audioPath)

	return ffmpeg.Output(
		[]*ffmpeg.Stream{image, audio},
		outPath,
		ffmpeg.KwArgs{
			"c:v":      "libx264",
			"tune":     "stillimage",
			"c:a":      "aac",
			"b:a":      "192k",
			"pix_fmt":  "yuv420p",
			"shortest": "",
			"preset":   "fast",
		},
	).OverWriteOutput().Run()
}

func concatSegments(segments []string, tmpDir, outPath string) error {
	listPath := filepath.Join(tmpDir, "segments.txt")
	if err := writeConcatList(segments, listPath); err != nil {
		return err
	}

	return ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		Run()
}

func writeConcatList(segments []string, listPath string) error {
	file, err := os.Create(listPath)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, seg := range segments {
		if _, err := fmt.Fprintf(file, "file '%s'\n", filepath.ToSlash(seg)); err != nil {
			return err
		}
	}
	return nil
}

func (s *RenderService) downloadFile(ctx context.Context, url string, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
