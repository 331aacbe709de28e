package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"minter/internal/adapter/repo"
	"minter/internal/domain"
	"minter/internal/http/handlers"
	"minter/internal/infra"
	"minter/internal/workflow"
)

type blockingGenerator struct{ release chan struct{} }

func (g *blockingGenerator) GenerateImage(ctx context.Context, prompt string) (domain.ImagePayload, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return domain.ImagePayload{}, ctx.Err()
	}
	return domain.ImagePayload{}, domain.ErrEmptyPayload
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, image domain.ImagePayload, description string) (*domain.Publication, error) {
	return &domain.Publication{}, nil
}

type nopMinter struct{}

func (nopMinter) Mint(ctx context.Context, tokenURI string) (*domain.MintReceipt, error) {
	return &domain.MintReceipt{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, chan struct{}) {
	t.Helper()
	gen := &blockingGenerator{release: make(chan struct{})}
	mints := repo.NewMemoryMintRepository()
	orch := workflow.NewOrchestrator(gen, nopPublisher{}, nopMinter{}, workflow.Options{Repository: mints})
	app := &handlers.App{
		Config:   &infra.Config{DefaultLocale: "en", RateLimitPerMin: 10},
		Logger:   zerolog.Nop(),
		Workflow: orch,
		Mints:    mints,
	}
	t.Cleanup(func() {
		select {
		case <-gen.release:
		default:
			close(gen.release)
		}
	})
	return NewRouter(app), gen.release
}

func TestRouterHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}
}

func TestRouterRejectsConcurrentMint(t *testing.T) {
	router, _ := newTestRouter(t)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/mints", strings.NewReader(body)))
		return rec
	}

	first := post(`{"prompt":"a red fox in snow"}`)
	if first.Code != http.StatusAccepted {
		t.Fatalf("first submit status = %d (%s)", first.Code, first.Body.String())
	}
	var accepted struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(first.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if second := post(`{"prompt":"another"}`); second.Code != http.StatusConflict {
		t.Fatalf("second submit status = %d", second.Code)
	}
	if empty := post(`{"prompt":""}`); empty.Code != http.StatusBadRequest {
		t.Fatalf("empty prompt status = %d", empty.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	req.Header.Set("Accept-Language", "id-ID")
	router.ServeHTTP(rec, req)
	var snap workflow.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if snap.State != domain.StateGenerating || !snap.Waiting || snap.Message != "Membuat Gambar..." {
		t.Fatalf("unexpected status %+v", snap)
	}
	if snap.SubmissionID != accepted.ID {
		t.Fatalf("submission id = %q, want %q", snap.SubmissionID, accepted.ID)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mints/"+accepted.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get mint status = %d", rec.Code)
	}
}
