package navigation

import (
	"context"
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/logger"
	"github.com/mchmarny/blogadmin/pkg/nav"
)

// Expansion is the resolver answer for a path.
type Expansion struct {
	Path     string   `json:"path"`
	Expanded []string `json:"expanded"`
}

// Handler serves the navigation resolver over HTTP:
//
//	GET /navigation/tree
//	GET /navigation/expanded?path=
//	GET /navigation/breadcrumb?path=
//
// Each request reads a fresh tree from the source.
type Handler struct {
	src     Source
	timeout time.Duration
}

// NewHandler returns a handler resolving paths against the tree from src.
func NewHandler(src Source) *Handler {
	return &Handler{src: src, timeout: api.DefaultTimeout}
}

// Register adds the resolver routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /navigation/tree", h.tree)
	mux.HandleFunc("GET /navigation/expanded", h.expanded)
	mux.HandleFunc("GET /navigation/breadcrumb", h.breadcrumb)
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	tree, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, tree)
}

func (h *Handler) expanded(w http.ResponseWriter, r *http.Request) {
	p, ok := pathParam(w, r)
	if !ok {
		return
	}

	tree, ok := h.load(w, r)
	if !ok {
		return
	}

	t := nav.NewTracker()
	t.Recompute(p, tree)

	writeJSON(w, r, http.StatusOK, Expansion{
		Path:     t.Path(),
		Expanded: t.Expanded().Sorted(),
	})
}

func (h *Handler) breadcrumb(w http.ResponseWriter, r *http.Request) {
	p, ok := pathParam(w, r)
	if !ok {
		return
	}

	tree, ok := h.load(w, r)
	if !ok {
		return
	}

	chain := nav.Breadcrumb(p, tree)
	if chain == nil {
		chain = []nav.Node{}
	}

	// the chain is rendered flat, children would repeat the subtree
	for i := range chain {
		chain[i].Children = nil
	}

	writeJSON(w, r, http.StatusOK, chain)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]nav.Node, bool) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	tree, err := h.src.Tree(ctx)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, nav.ErrDuplicateHref), errors.Is(err, nav.ErrMissingID):
			status = http.StatusUnprocessableEntity
		}
		writeError(w, r, status, api.Message(err))
		return nil, false
	}
	return tree, true
}

func pathParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeError(w, r, http.StatusBadRequest, "path query parameter is required")
		return "", false
	}
	return p, true
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logger.FromContext(r.Context()).Error("handling error response",
		"status", status,
		"path", r.URL.Path,
		"message", message,
	)

	body, _ := json.Marshal(map[string]string{"error": message})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	log := logger.FromContext(r.Context())

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error("failed to marshal JSON response", "error", err)
		writeError(w, r, http.StatusInternalServerError, "error, see logs for details")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		log.Error("failed to write JSON response", "error", err)
		return
	}

	log.Debug("json response sent", "path", r.URL.Path, "status", status)
}
