package stages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spewlabs/explainer/internal/models"
)

// SynthesizerOptions configures a Synthesizer.
type SynthesizerOptions struct {
	// TTSURL is the synthesis streaming endpoint.
	TTSURL string

	// UserID and APIKey authenticate against the TTS service.
	UserID string
	APIKey string

	// TranscribeURL is an OpenAI-compatible /audio/transcriptions
	// endpoint; TranscribeKey is its bearer token.
	TranscribeURL   string
	TranscribeKey   string
	TranscribeModel string

	// ScratchDir receives the synthesized audio file.
	ScratchDir string
}

// Synthesizer turns script text into narration audio and a timed
// transcript of that audio.
type Synthesizer struct {
	opts   SynthesizerOptions
	client *http.Client
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(opts SynthesizerOptions) *Synthesizer {
	if opts.TranscribeModel == "" {
		opts.TranscribeModel = "whisper-1"
	}
	return &Synthesizer{
		opts:   opts,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Synthesize implements pipeline.SpeechStage: synthesize the script with
// the persona's voice, then transcribe the result to timed segments. The
// audio file is left in the scratch directory for the lip-sync branch.
func (s *Synthesizer) Synthesize(ctx context.Context, scriptText, voiceLink string) (models.SpeechResult, error) {
	audioPath, err := s.synthesize(ctx, scriptText, voiceLink)
	if err != nil {
		return models.SpeechResult{}, err
	}

	transcript, err := s.transcribe(ctx, audioPath)
	if err != nil {
		os.Remove(audioPath)
		return models.SpeechResult{}, err
	}

	return models.SpeechResult{AudioPath: audioPath, Transcript: transcript}, nil
}

// synthesize streams TTS audio for the script into a scratch file and
// returns its path.
func (s *Synthesizer) synthesize(ctx context.Context, scriptText, voiceLink string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"text":          scriptText,
		"voice_engine":  "PlayDialog",
		"voice":         voiceLink,
		"output_format": "mp3",
	})
	if err != nil {
		return "", fmt.Errorf("speech synthesis: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.TTSURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-USER-ID", s.opts.UserID)
	req.Header.Set("Authorization", s.opts.APIKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("speech synthesis: status %d: %s", resp.StatusCode, body)
	}

	out, err := os.CreateTemp(s.opts.ScratchDir, "narration-*.mp3")
	if err != nil {
		return "", fmt.Errorf("speech synthesis: create audio file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("speech synthesis: save audio: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("speech synthesis: close audio file: %w", err)
	}
	return out.Name(), nil
}

// transcribe uploads the audio for verbose transcription and maps the
// response segments onto the pipeline transcript shape.
func (s *Synthesizer) transcribe(ctx context.Context, audioPath string) (models.Transcript, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return models.Transcript{}, fmt.Errorf("transcription: build form: %w", err)
	}
	audio, err := os.Open(audioPath)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("transcription: open audio: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		audio.Close()
		return models.Transcript{}, fmt.Errorf("transcription: copy audio: %w", err)
	}
	audio.Close()

	form.WriteField("model", s.opts.TranscribeModel)
	form.WriteField("response_format", "verbose_json")
	if err := form.Close(); err != nil {
		return models.Transcript{}, fmt.Errorf("transcription: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.TranscribeURL, &body)
	if err != nil {
		return models.Transcript{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.opts.TranscribeKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("transcription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Transcript{}, fmt.Errorf("transcription: status %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		Segments []struct {
			Text  string  `json:"text"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.Transcript{}, fmt.Errorf("transcription: decode response: %w", err)
	}

	transcript := models.Transcript{}
	for _, seg := range parsed.Segments {
		transcript.Segments = append(transcript.Segments, models.TranscriptSegment{
			Text:  seg.Text,
			Start: seg.Start,
			End:   seg.End,
		})
	}
	return transcript, nil
}
