package workspace

import (
	"net/http"

	"github.com/johnwards/leaddesk/internal/workspace"
)

// RegisterRoutes adds the workspace intent endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, ws *workspace.Workspace) {
	h := &Handler{ws: ws}

	mux.HandleFunc("GET /api/v1/workspace", h.View)
	mux.HandleFunc("PUT /api/v1/workspace/criteria", h.SetCriteria)
	mux.HandleFunc("POST /api/v1/workspace/select", h.Select)
	mux.HandleFunc("POST /api/v1/workspace/close", h.Close)
	mux.HandleFunc("POST /api/v1/workspace/add", h.OpenAdd)
	mux.HandleFunc("PATCH /api/v1/workspace/draft", h.EditDraft)
	mux.HandleFunc("PATCH /api/v1/workspace/form", h.EditForm)
	mux.HandleFunc("POST /api/v1/workspace/save", h.Save)
	mux.HandleFunc("POST /api/v1/workspace/submit", h.Submit)
	mux.HandleFunc("POST /api/v1/workspace/reload", h.Reload)
}
