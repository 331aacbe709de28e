package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"minter/internal/domain"
	"minter/internal/infra"
	"minter/internal/workflow"
)

// Workflow is the part of the orchestrator the HTTP layer drives.
type Workflow interface {
	Start(ctx context.Context, prompt string) (string, error)
	Snapshot() workflow.Snapshot
}

type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Workflow Workflow
	Mints    domain.MintRepository
	// BaseContext is handed to background submissions so they outlive the
	// request that started them. Defaults to context.Background.
	BaseContext context.Context
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

func (a *App) baseContext() context.Context {
	if a.BaseContext != nil {
		return a.BaseContext
	}
	return context.Background()
}
