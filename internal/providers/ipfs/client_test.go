package ipfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"minter/internal/domain"
)

func TestClientAddWrapsAndPins(t *testing.T) {
	image := []byte{0x89, 0x50, 0x4e, 0x47}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/add" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("wrap-with-directory") != "true" || q.Get("pin") != "true" {
			t.Errorf("unexpected options: %s", r.URL.RawQuery)
		}
		if got, want := r.Header.Get("Authorization"), BasicAuthorization("project", "secret"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "project" || pass != "secret" {
			t.Errorf("unexpected basic auth: %q %q %v", user, pass, ok)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("read multipart: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "image.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		got, _ := io.ReadAll(file)
		if string(got) != string(image) {
			t.Errorf("unexpected body: %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"Name":"image.png","Hash":"QmFile","Size":"12"}`)
		fmt.Fprintln(w, `{"Name":"","Hash":"Qm123","Size":"64"}`)
	}))
	defer ts.Close()

	client := NewClient(Options{APIURL: ts.URL, ProjectID: "project", ProjectSecret: "secret"})
	path, err := client.Add(context.Background(), image, domain.AddOptions{
		Filename:          "image.png",
		WrapWithDirectory: true,
		Pin:               true,
		Timeout:           5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if path != "Qm123" {
		t.Fatalf("path = %q, want wrapping directory Qm123", path)
	}
}

func TestClientAddWithoutCredentialsSendsNoAuthorization(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"Name":"metadata.json","Hash":"Qm456","Size":"80"}`)
	}))
	defer ts.Close()

	client := NewClient(Options{APIURL: ts.URL})
	path, err := client.Add(context.Background(), []byte(`{"name":"n"}`), domain.AddOptions{Filename: "metadata.json", Pin: true})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if path != "Qm456" {
		t.Fatalf("path = %q, want Qm456", path)
	}
}

func TestClientAddRejectsEmptyPayload(t *testing.T) {
	client := NewClient(Options{APIURL: "http://127.0.0.1:1"})
	if _, err := client.Add(context.Background(), nil, domain.AddOptions{}); !errors.Is(err, domain.ErrEmptyPayload) {
		t.Fatalf("err = %v, want ErrEmptyPayload", err)
	}
}

func TestClientAddHonoursTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	client := NewClient(Options{APIURL: ts.URL})
	_, err := client.Add(context.Background(), []byte("{}"), domain.AddOptions{Pin: true, Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestClientAddSurfacesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"Message":"invalid project id","Code":0,"Type":"error"}`)
	}))
	defer ts.Close()

	client := NewClient(Options{APIURL: ts.URL})
	if _, err := client.Add(context.Background(), []byte("data"), domain.AddOptions{}); err == nil {
		t.Fatalf("expected api error")
	}
}

func TestLocator(t *testing.T) {
	cases := []struct {
		gateway string
		path    string
		want    string
	}{
		{"https://host", "Qm456", "https://host/ipfs/Qm456"},
		{"https://host/", "/Qm123/image.png", "https://host/ipfs/Qm123/image.png"},
	}
	for _, tc := range cases {
		if got := Locator(tc.gateway, tc.path); got != tc.want {
			t.Fatalf("Locator(%q, %q) = %q, want %q", tc.gateway, tc.path, got, tc.want)
		}
	}
}

func TestBasicAuthorization(t *testing.T) {
	if got, want := BasicAuthorization("id", "secret"), "Basic aWQ6c2VjcmV0"; got != want {
		t.Fatalf("BasicAuthorization = %q, want %q", got, want)
	}
}
