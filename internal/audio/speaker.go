// Package audio produces pronunciation audio for review items. The engine
// treats playback as a side effect: a failed or missing clip never blocks
// the quiz flow.
package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const ttsRequestTimeout = 10 * time.Second

// Speaker produces a pronunciation clip for a piece of text and returns the
// clip's filename, generating and caching it on first use.
type Speaker interface {
	Speak(ctx context.Context, text string) (string, error)
}

// TTSSpeaker fetches Mandarin audio from the Google Translate TTS endpoint
// and caches clips as MP3 files on disk.
type TTSSpeaker struct {
	audioDir string
	locale   string
	client   *http.Client
	logger   *slog.Logger
}

// NewTTSSpeaker creates a Speaker caching clips under audioDir. The locale
// is the TTS language code, zh-CN for this app.
func NewTTSSpeaker(audioDir, locale string, logger *slog.Logger) *TTSSpeaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &TTSSpeaker{
		audioDir: audioDir,
		locale:   locale,
		client:   &http.Client{Timeout: ttsRequestTimeout},
		logger:   logger.With(slog.String("component", "tts_speaker")),
	}
}

// Speak implements Speaker. An existing cached clip is returned without a
// network call.
func (s *TTSSpeaker) Speak(ctx context.Context, text string) (string, error) {
	filename := clipFilename(text)
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	if err := s.fetchClip(ctx, text, path); err != nil {
		return "", fmt.Errorf("failed to generate audio for %q: %w", text, err)
	}

	s.logger.Debug("cached pronunciation clip", "text", text, "file", filename)
	return filename, nil
}

func (s *TTSSpeaker) fetchClip(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.locale)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	fullURL := "https://translate.google.com/translate_tts?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// The endpoint rejects requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = outFile.Close() }()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}

// clipFilename maps text to a stable cache filename. Chinese characters are
// valid filename bytes on every supported filesystem.
func clipFilename(text string) string {
	sanitized := strings.ReplaceAll(strings.TrimSpace(text), " ", "_")
	return fmt.Sprintf("say_%s.mp3", sanitized)
}

// NopSpeaker discards speak requests. Used when audio output is disabled.
type NopSpeaker struct{}

// Speak implements Speaker.
func (NopSpeaker) Speak(context.Context, string) (string, error) { return "", nil }
