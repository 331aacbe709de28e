package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"minter/internal/domain"
	"minter/internal/middleware"
	"minter/internal/workflow"
)

const (
	maxMintBodyBytes = 16 << 10
	defaultListLimit = 20
	maxListLimit     = 100
)

type createMintRequest struct {
	Prompt string `json:"prompt"`
}

type createMintResponse struct {
	ID      string       `json:"id"`
	State   domain.State `json:"state"`
	Message string       `json:"message"`
}

type mintResponse struct {
	ID        string            `json:"id"`
	Prompt    string            `json:"prompt"`
	State     domain.State      `json:"state"`
	Status    domain.MintStatus `json:"status"`
	Message   string            `json:"message,omitempty"`
	ImageURI  string            `json:"image_uri,omitempty"`
	TokenURI  string            `json:"token_uri,omitempty"`
	TxHash    string            `json:"tx_hash,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CreateMint starts a generate, publish and mint run for the posted prompt.
func (a *App) CreateMint(w http.ResponseWriter, r *http.Request) {
	var req createMintRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxMintBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	id, err := a.Workflow.Start(a.baseContext(), req.Prompt)
	switch {
	case errors.Is(err, domain.ErrEmptyPrompt):
		a.error(w, http.StatusBadRequest, "empty_prompt", "prompt is required")
		return
	case errors.Is(err, domain.ErrWorkflowBusy):
		a.error(w, http.StatusConflict, "busy", "a mint is already in progress")
		return
	case err != nil:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("start mint")
		a.error(w, http.StatusInternalServerError, "internal", "failed to start mint")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	w.Header().Set("Location", "/v1/mints/"+id)
	a.json(w, http.StatusAccepted, createMintResponse{
		ID:      id,
		State:   domain.StateGenerating,
		Message: workflow.Label(domain.StateGenerating, locale),
	})
}

func (a *App) ListMints(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	mints, err := a.Mints.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list mints")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load mints")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	items := make([]mintResponse, 0, len(mints))
	for i := range mints {
		items = append(items, toMintResponse(&mints[i], locale))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) GetMint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mint, err := a.Mints.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "mint not found")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("mint_id", id).Msg("get mint")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load mint")
		return
	}
	a.json(w, http.StatusOK, toMintResponse(mint, middleware.LocaleFromContext(r.Context())))
}

func toMintResponse(m *domain.Mint, locale string) mintResponse {
	resp := mintResponse{
		ID:        m.ID,
		Prompt:    m.Prompt,
		State:     m.State,
		Status:    m.Status,
		ImageURI:  m.ImageURI,
		TokenURI:  m.TokenURI,
		TxHash:    m.TxHash,
		Error:     m.Error,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Status == domain.MintStatusRunning {
		resp.Message = workflow.Label(m.State, locale)
	}
	return resp
}
