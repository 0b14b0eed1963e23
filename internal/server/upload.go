package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/models"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/upload"
)

// Form field names of the submission page.
const (
	AuthorsField       = "authors"
	AffiliationsField  = "author_affiliations"
	TitleField         = "title"
	ArticleTypeField   = "article_type"
	KeywordsField      = "keywords"
	EmailField         = "email"
	SubmittedDateField = "submitted_date"
)

// FileStore persists uploaded bytes.
type FileStore interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Delete(ctx context.Context, key string) error
	Path(key string) (string, error)
}

// SubmissionStore records accepted uploads.
type SubmissionStore interface {
	Create(s *models.Submission) error
}

// UploadResult is the JSON body of a successful upload.
type UploadResult struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Size     int64          `json:"size"`
	Authors  []authors.Pair `json:"authors"`
}

// UploadHandler accepts manuscript uploads on a single POST route.
type UploadHandler struct {
	path        string
	allowed     []string
	maxMemory   int64
	maxSize     int64
	files       FileStore
	submissions SubmissionStore
	metrics     *Metrics
	logger      *log.Logger
}

// NewUploadHandler creates an [UploadHandler] from the upload section of the config.
//
// metrics may be nil.
func NewUploadHandler(cfg shared.UploadConfig, files FileStore, submissions SubmissionStore, metrics *Metrics, logger *log.Logger) *UploadHandler {
	path := cfg.Path
	if path == "" {
		path = upload.DefaultPath
	}

	allowed := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext != "" {
			allowed = append(allowed, ext)
		}
	}

	return &UploadHandler{
		path:        path,
		allowed:     allowed,
		maxMemory:   cfg.MaxMemory(),
		maxSize:     cfg.MaxSize(),
		files:       files,
		submissions: submissions,
		metrics:     metrics,
		logger:      logger,
	}
}

// Routes returns the configured upload path.
func (h *UploadHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP stores the uploaded manuscript and records a submission.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.reject(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	if r.FormValue(upload.FlagField) != "true" {
		h.reject(w, r, http.StatusBadRequest, "missing upload flag")
		return
	}

	file, header, err := r.FormFile(upload.FileField)
	if err != nil {
		h.reject(w, r, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	filename := SanitizeFilename(header.Filename)
	if filename == "" {
		h.reject(w, r, http.StatusBadRequest, "no file uploaded")
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !h.allowedExt(ext) {
		h.reject(w, r, http.StatusBadRequest, fmt.Sprintf("please upload a %s file", strings.Join(h.allowed, " or ")))
		return
	}

	var pairs []authors.Pair
	names, affiliations := r.MultipartForm.Value[AuthorsField], r.MultipartForm.Value[AffiliationsField]
	if len(names) > 0 || len(affiliations) > 0 {
		if pairs, err = authors.Normalize(names, affiliations); err != nil {
			h.reject(w, r, http.StatusBadRequest, inputMessage(err))
			return
		}
	}

	id := shared.GenerateID()
	key := id + ext
	size, err := h.files.Save(r.Context(), key, file)
	if err != nil {
		h.fail(w, r, "failed to store upload", err)
		return
	}
	storedPath, _ := h.files.Path(key)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	submission := models.NewSubmission(filename, storedPath, contentType, size, pairs, models.Metadata{
		Title:         strings.TrimSpace(r.FormValue(TitleField)),
		ArticleType:   strings.TrimSpace(r.FormValue(ArticleTypeField)),
		Keywords:      strings.TrimSpace(r.FormValue(KeywordsField)),
		Email:         strings.TrimSpace(r.FormValue(EmailField)),
		SubmittedDate: strings.TrimSpace(r.FormValue(SubmittedDateField)),
	})
	submission.SetID(id)

	if err := h.submissions.Create(submission); err != nil {
		if derr := h.files.Delete(r.Context(), key); derr != nil {
			h.logger.Warn("failed to remove orphaned upload", "key", key, "error", derr)
		}
		h.fail(w, r, "failed to record submission", err)
		return
	}

	h.metrics.RecordUpload(UploadStored, size)
	h.logger.Info("upload stored",
		"request_id", RequestIDFromContext(r.Context()),
		"id", id,
		"filename", filename,
		"size", size,
		"authors", len(pairs),
	)

	if pairs == nil {
		pairs = []authors.Pair{}
	}
	writeJSON(w, http.StatusCreated, UploadResult{ID: id, Filename: filename, Size: size, Authors: pairs})
}

func (h *UploadHandler) allowedExt(ext string) bool {
	if len(h.allowed) == 0 {
		return true
	}
	return slices.Contains(h.allowed, ext)
}

func (h *UploadHandler) reject(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.metrics.RecordUpload(UploadRejected, 0)
	h.logger.Warn("upload rejected", "request_id", RequestIDFromContext(r.Context()), "reason", msg)
	writeError(w, status, msg)
}

func (h *UploadHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.metrics.RecordUpload(UploadFailed, 0)
	h.logger.Error(msg, "request_id", RequestIDFromContext(r.Context()), "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

// SanitizeFilename reduces a client supplied name to a safe base name.
//
// Directory components are dropped and anything outside letters, digits,
// dot, dash, and underscore becomes an underscore. Leading dots are removed
// so the result is never hidden or relative.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}
