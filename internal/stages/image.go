package stages

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ImageService renders still images through an OpenAI-compatible image
// generation endpoint. It backs the image tier of the visuals fallback
// chain.
type ImageService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewImageService creates an ImageService. baseURL should not include
// the /images/generations suffix.
func NewImageService(apiKey, model, baseURL string) *ImageService {
	if model == "" {
		model = "dall-e-3"
	}
	return &ImageService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 3 * time.Minute},
	}
}

// GenerateImage implements visuals.ImageGenerator: render one square
// still for the description and write it to outPath.
func (s *ImageService) GenerateImage(ctx context.Context, description, outPath string) error {
	payload, err := json.Marshal(map[string]any{
		"model":           s.model,
		"prompt":          description,
		"n":               1,
		"size":            "1024x1024",
		"response_format": "b64_json",
	})
	if err != nil {
		return fmt.Errorf("image generation: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("image generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("image generation: status %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("image generation: decode response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return fmt.Errorf("image generation: empty response")
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return fmt.Errorf("image generation: decode image data: %w", err)
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return fmt.Errorf("image generation: write %s: %w", outPath, err)
	}
	return nil
}
