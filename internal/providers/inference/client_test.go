package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"minter/internal/domain"
)

func TestClientGenerateImage(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf-key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		var payload generationRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if payload.Inputs != "a red fox in snow" {
			t.Errorf("inputs = %q", payload.Inputs)
		}
		if !payload.Options.WaitForModel {
			t.Errorf("wait_for_model should be true")
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(png)
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "hf-key", ModelURL: ts.URL})
	got, err := client.GenerateImage(context.Background(), "  a red fox in snow ")
	if err != nil {
		t.Fatalf("GenerateImage error: %v", err)
	}
	if string(got.Data) != string(png) {
		t.Fatalf("unexpected payload: %v", got.Data)
	}
	if got.ContentType != "image/jpeg" {
		t.Fatalf("content type = %s", got.ContentType)
	}
}

func TestClientRejectsEmptyPromptWithoutCalling(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "hf-key", ModelURL: ts.URL})
	if _, err := client.GenerateImage(context.Background(), "   "); !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("err = %v, want ErrEmptyPrompt", err)
	}
	if calls != 0 {
		t.Fatalf("no request expected, got %d", calls)
	}
}

func TestClientMissingKey(t *testing.T) {
	client := NewClient(Options{})
	if _, err := client.GenerateImage(context.Background(), "fox"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model stabilityai/stable-diffusion-2 is currently loading","estimated_time":20.0}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "hf-key", ModelURL: ts.URL})
	_, err := client.GenerateImage(context.Background(), "fox")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	if !strings.Contains(err.Error(), "currently loading") || !strings.Contains(err.Error(), "503") {
		t.Fatalf("error should carry api message and status: %v", err)
	}
}

func TestClientTreatsJSONSuccessAsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"error":["Input is too long"]}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "hf-key", ModelURL: ts.URL})
	_, err := client.GenerateImage(context.Background(), "fox")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	if !strings.Contains(err.Error(), "Input is too long") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "hf-key", ModelURL: ts.URL})
	if _, err := client.GenerateImage(context.Background(), "fox"); !errors.Is(err, domain.ErrEmptyPayload) {
		t.Fatalf("err = %v, want ErrEmptyPayload", err)
	}
}
