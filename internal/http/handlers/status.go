package handlers

import (
	"net/http"

	"minter/internal/middleware"
	"minter/internal/workflow"
)

// Status reports the live workflow state with a localized message.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	snap := a.Workflow.Snapshot()
	snap.Message = workflow.Label(snap.State, middleware.LocaleFromContext(r.Context()))
	a.json(w, http.StatusOK, snap)
}
