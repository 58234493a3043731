package stages

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spewlabs/explainer/internal/remote"
)

// LipsyncService drives the external lip-sync backend: upload the
// persona's base video plus the narration audio, receive the synced clip.
type LipsyncService struct {
	url        string
	apiKey     string
	scratchDir string
	client     *http.Client
}

// NewLipsyncService creates a LipsyncService writing results under
// scratchDir.
func NewLipsyncService(url, apiKey, scratchDir string) *LipsyncService {
	return &LipsyncService{
		url:        url,
		apiKey:     apiKey,
		scratchDir: scratchDir,
		client:     &http.Client{Timeout: 10 * time.Minute},
	}
}

// Lipsync implements pipeline.LipsyncStage.
func (s *LipsyncService) Lipsync(ctx context.Context, baseVideo, audio remote.File) (remote.File, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	for _, f := range []struct {
		field string
		file  remote.File
	}{
		{"video", baseVideo},
		{"audio", audio},
	} {
		part, err := form.CreateFormFile(f.field, filepath.Base(f.file.Path()))
		if err != nil {
			return nil, fmt.Errorf("lipsync: build form: %w", err)
		}
		src, err := os.Open(f.file.Path())
		if err != nil {
			return nil, fmt.Errorf("lipsync: open %s: %w", f.field, err)
		}
		if _, err := io.Copy(part, src); err != nil {
			src.Close()
			return nil, fmt.Errorf("lipsync: upload %s: %w", f.field, err)
		}
		src.Close()
	}

	form.WriteField("sync_mode", "cut_off")
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("lipsync: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lipsync: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lipsync: status %d: %s", resp.StatusCode, msg)
	}

	out, err := os.CreateTemp(s.scratchDir, "narrator-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("lipsync: create output file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return nil, fmt.Errorf("lipsync: save result: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return nil, fmt.Errorf("lipsync: close output file: %w", err)
	}
	return remote.NewLocalFile(out.Name()), nil
}
