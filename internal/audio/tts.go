// Package audio fetches reference pronunciation audio for practice phrases.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TTSService generates reference audio files for pronunciation practice
type TTSService struct {
	audioDir string
	language string
}

const ttsRequestTimeout = 10 * time.Second

// NewTTSService creates a new TTS service. language is the BCP-47 code of
// the practice language (e.g. "de").
func NewTTSService(audioDir, language string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		language: language,
	}
}

// GenerateAudioFile converts a phrase to speech and saves it as MP3.
// Returns the filename (not full path); an existing file is reused.
func (s *TTSService) GenerateAudioFile(text string) (string, error) {
	// Sanitize text for filename. Anything outside a safe character set
	// becomes an underscore so the phrase can never escape the audio dir.
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(strings.TrimSpace(text)))

	filename := fmt.Sprintf("phrase_%s_%s.mp3", s.language, sanitized)
	outputPath := filepath.Join(s.audioDir, filename)

	// Check if file already exists
	if _, err := os.Stat(outputPath); err == nil {
		return filename, nil
	}

	if err := s.generateUsingGoogleTTS(text, outputPath); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return filename, nil
}

// generateUsingGoogleTTS uses Google Translate's text-to-speech API
// This is a simple, free option that doesn't require API keys
func (s *TTSService) generateUsingGoogleTTS(text, outputPath string) error {
	baseURL := "https://translate.google.com/translate_tts"

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	fullURL := baseURL + "?" + params.Encode()

	ctx, cancel := context.WithTimeout(context.Background(), ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	client := &http.Client{Timeout: ttsRequestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return nil
}
