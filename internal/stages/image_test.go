package stages

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateImage(t *testing.T) {
	pngBytes := []byte{0x89, 'P', 'N', 'G'}
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		resp, _ := json.Marshal(map[string]any{
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString(pngBytes)},
			},
		})
		w.Write(resp)
	}))
	defer server.Close()

	svc := NewImageService("key", "image-model", server.URL)
	outPath := filepath.Join(t.TempDir(), "still.png")

	if err := svc.GenerateImage(context.Background(), "a labeled diagram of a neuron", outPath); err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}

	if gotBody["prompt"] != "a labeled diagram of a neuron" {
		t.Errorf("prompt = %v", gotBody["prompt"])
	}
	if gotBody["model"] != "image-model" {
		t.Errorf("model = %v", gotBody["model"])
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != string(pngBytes) {
		t.Errorf("decoded image = %v", data)
	}
}

func TestGenerateImageErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusBadRequest, "bad prompt"},
		{"empty data", http.StatusOK, `{"data": []}`},
		{"invalid base64", http.StatusOK, `{"data": [{"b64_json": "!!not-base64!!"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewImageService("key", "m", server.URL)
			outPath := filepath.Join(t.TempDir(), "still.png")
			if err := svc.GenerateImage(context.Background(), "x", outPath); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
