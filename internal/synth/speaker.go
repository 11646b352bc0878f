package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zrn-ns/curacast/internal/config"
	"github.com/zrn-ns/curacast/internal/services"
)

// Speaker converts one piece of text into encoded audio.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// HTTPSpeaker talks to an OpenAI-compatible speech endpoint and returns
// MP3 audio.
type HTTPSpeaker struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	voice      string
}

// NewHTTPSpeaker builds a speaker from the synthesis configuration section.
func NewHTTPSpeaker(cfg config.Synthesis) *HTTPSpeaker {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPSpeaker{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		voice:      cfg.Voice,
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Speak sends the text and returns the MP3 bytes. Empty audio from the
// service is treated as an error; a silent gap in the middle of an episode
// is worse than a failed run.
func (s *HTTPSpeaker) Speak(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("encode speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: speech request: %v", services.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		marker := services.ErrExternalTool
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			marker = services.ErrTransient
		}
		return nil, fmt.Errorf("%w: speech endpoint returned %s: %s", marker, resp.Status, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: speech endpoint returned empty audio", services.ErrExternalTool)
	}
	return audio, nil
}
