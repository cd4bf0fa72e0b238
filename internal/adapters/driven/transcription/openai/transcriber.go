// Package openai provides a speech-to-text adapter using the OpenAI audio API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = domain.DefaultWhisperModel
	DefaultTimeout = 10 * time.Minute
)

// Config holds configuration for the transcriber.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the speech model (default: whisper-1).
	Model string

	// Timeout bounds a single upload and transcription (default: 10m).
	Timeout time.Duration
}

// Transcriber turns audio and video files into timed segments.
type Transcriber struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type verboseResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewTranscriber creates a new transcriber.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrInvalidConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Transcriber{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Transcribe uploads the file at path and returns its segments in time order.
func (t *Transcriber) Transcribe(ctx context.Context, path string) ([]domain.Segment, error) {
	logger.Info("Starting transcription for file %s", path)

	body, contentType, err := t.multipartBody(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, upstream("send request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstream("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstream("transcription", fmt.Errorf("status %d: %s", resp.StatusCode, string(raw)))
	}

	var parsed verboseResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, upstream("decode response", err)
	}
	if parsed.Error != nil {
		return nil, upstream("transcription", errors.New(parsed.Error.Message))
	}

	segments := make([]domain.Segment, len(parsed.Segments))
	for i, s := range parsed.Segments {
		segments[i] = domain.Segment{Text: s.Text, Start: s.Start, End: s.End}
	}

	logger.Info("Transcription completed, segments=%d", len(segments))
	return segments, nil
}

// multipartBody buffers the upload form. Whisper caps uploads at 25 MB.
func (t *Transcriber) multipartBody(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: file not found for transcription: %s", domain.ErrNotFound, path)
		}
		return nil, "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy file: %w", err)
	}
	fields := map[string]string{
		"model":           t.model,
		"response_format": "verbose_json",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// ModelName returns the speech model in use.
func (t *Transcriber) ModelName() string {
	return t.model
}

func upstream(op string, err error) error {
	return fmt.Errorf("openai: %s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
}
