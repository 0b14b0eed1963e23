package server

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/web"
)

// PageHandler serves the submission page, the About page, and the shared fragments.
type PageHandler struct {
	pages      *web.Pages
	uploadPath string
	extensions []string
	readme     string
	logger     *log.Logger
}

// NewPageHandler creates a [PageHandler]. readme is the Markdown file shown on /about.
func NewPageHandler(pages *web.Pages, cfg *shared.Config, logger *log.Logger) *PageHandler {
	return &PageHandler{
		pages:      pages,
		uploadPath: cfg.Upload.Path,
		extensions: cfg.Upload.AllowedExtensions,
		readme:     cfg.Pages.Readme,
		logger:     logger,
	}
}

// Routes returns the page routes.
func (h *PageHandler) Routes() []string {
	return []string{"/", "/about", "/fragments/"}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case r.URL.Path == "/" || r.URL.Path == "/index.html":
		h.index(w, r)
	case r.URL.Path == "/about":
		h.about(w, r)
	case strings.HasPrefix(r.URL.Path, "/fragments/"):
		h.fragment(w, r, strings.TrimPrefix(r.URL.Path, "/fragments/"))
	default:
		http.NotFound(w, r)
	}
}

func (h *PageHandler) data(title string) web.PageData {
	return web.PageData{Title: title, UploadPath: h.uploadPath, Extensions: h.extensions}
}

func (h *PageHandler) index(w http.ResponseWriter, r *http.Request) {
	data := h.data("Submit")
	data.Rows = authors.NewEditor(nil).Rows()
	h.render(w, r, "index", data)
}

func (h *PageHandler) about(w http.ResponseWriter, r *http.Request) {
	data := h.data("About")

	src, err := os.ReadFile(h.readme)
	if err != nil {
		h.logger.Warn("failed to read about page", "path", h.readme, "error", err)
		data.Error = "About page is unavailable."
		h.render(w, r, "about", data)
		return
	}

	body, err := h.pages.Markdown(src)
	if err != nil {
		h.logger.Error("failed to render about page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.Body = body
	h.render(w, r, "about", data)
}

func (h *PageHandler) fragment(w http.ResponseWriter, r *http.Request, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := h.pages.Fragment(w, name, h.data(""))
	switch {
	case errors.Is(err, shared.ErrNotFound):
		http.NotFound(w, r)
	case err != nil:
		h.logger.Error("failed to render fragment", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, data web.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.Render(w, page, data); err != nil {
		h.logger.Error("failed to render page", "page", page, "request_id", RequestIDFromContext(r.Context()), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
