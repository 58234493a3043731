package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GatewayClient implements Client against the platform gateway service,
// which fronts the social platform and owns its credentials. The gateway
// only needs a bearer token; platform authentication stays on its side.
type GatewayClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGatewayClient creates a GatewayClient. baseURL is the gateway root,
// without a trailing slash.
func NewGatewayClient(baseURL, token string) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// MentionsSince implements Client.
func (g *GatewayClient) MentionsSince(ctx context.Context, sinceID string) ([]Mention, error) {
	endpoint := g.baseURL + "/mentions"
	if sinceID != "" {
		endpoint += "?since_id=" + url.QueryEscape(sinceID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch mentions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch mentions: status %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		Mentions []struct {
			ID       string `json:"id"`
			AuthorID string `json:"author_id"`
			Text     string `json:"text"`
		} `json:"mentions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("fetch mentions: decode response: %w", err)
	}

	mentions := make([]Mention, 0, len(parsed.Mentions))
	for _, m := range parsed.Mentions {
		mentions = append(mentions, Mention{ID: m.ID, AuthorID: m.AuthorID, Text: m.Text})
	}
	return mentions, nil
}

// PostReply implements Client.
func (g *GatewayClient) PostReply(ctx context.Context, inReplyTo, message string) error {
	payload, err := json.Marshal(map[string]string{
		"in_reply_to": inReplyTo,
		"text":        message,
	})
	if err != nil {
		return fmt.Errorf("post reply: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/replies", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, "post reply")
}

// PostVideoReply implements Client: upload the video and the reply text
// in one multipart request; the gateway handles media chunking.
func (g *GatewayClient) PostVideoReply(ctx context.Context, inReplyTo, message, videoPath string) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("video", filepath.Base(videoPath))
	if err != nil {
		return fmt.Errorf("post video reply: build form: %w", err)
	}
	src, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("post video reply: open video: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		src.Close()
		return fmt.Errorf("post video reply: upload video: %w", err)
	}
	src.Close()

	form.WriteField("in_reply_to", inReplyTo)
	form.WriteField("text", message)
	if err := form.Close(); err != nil {
		return fmt.Errorf("post video reply: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/replies", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", form.FormDataContentType())

	return g.do(req, "post video reply")
}

// do executes a mutating request and folds non-2xx statuses into errors.
func (g *GatewayClient) do(req *http.Request, op string) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, msg)
	}
	return nil
}
