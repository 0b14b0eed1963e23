package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/msx/internal/models"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/storage"
	tu "github.com/desertthunder/msx/internal/testing"
)

type fakeSubmissions struct {
	created []*models.Submission
	err     error
}

func (f *fakeSubmissions) Create(s *models.Submission) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, s)
	return nil
}

type testServer struct {
	router      *BasicRouter
	store       *storage.Local
	submissions *fakeSubmissions
	logs        *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	readme := filepath.Join(t.TempDir(), "README.md")
	if err := os.WriteFile(readme, []byte("# About msx\n"), 0o644); err != nil {
		t.Fatalf("failed to write readme: %v", err)
	}

	cfg := shared.DefaultConfig()
	cfg.Upload.MaxSizeMB = 1
	cfg.Pages.Readme = readme

	logs := &bytes.Buffer{}
	submissions := &fakeSubmissions{}
	router, err := New(cfg, Deps{
		Files:       store,
		Submissions: submissions,
		Logger:      shared.NewLogger(logs),
	})
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	return &testServer{router: router, store: store, submissions: submissions, logs: logs}
}

func (s *testServer) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error
}

func TestUploadHandler(t *testing.T) {
	t.Run("stores file and records submission", func(t *testing.T) {
		srv := newTestServer(t)
		body, ct := tu.MultipartBody(t, "paper.docx", []byte("manuscript bytes"), map[string][]string{
			"upload_file":         {"true"},
			"authors":             {"Curie, Marie", "  ", "Bohr, Niels"},
			"author_affiliations": {"Sorbonne", "", "Copenhagen"},
			"title":               {"  Radioactivity  "},
		})

		rec := srv.do(http.MethodPost, "/upload", body, ct)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body = %s", rec.Code, rec.Body.String())
		}

		var result UploadResult
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if result.Filename != "paper.docx" || result.Size != int64(len("manuscript bytes")) {
			t.Errorf("result = %+v", result)
		}
		if len(result.Authors) != 2 || result.Authors[1].Name != "Bohr, Niels" {
			t.Errorf("authors = %+v", result.Authors)
		}

		if len(srv.submissions.created) != 1 {
			t.Fatalf("created %d submissions, want 1", len(srv.submissions.created))
		}
		sub := srv.submissions.created[0]
		if sub.ID() != result.ID {
			t.Errorf("submission ID = %q, response ID = %q", sub.ID(), result.ID)
		}
		if sub.Metadata.Title != "Radioactivity" {
			t.Errorf("title = %q, want trimmed", sub.Metadata.Title)
		}
		if got := tu.MustReadFile(t, sub.StoredPath); got != "manuscript bytes" {
			t.Errorf("stored content = %q", got)
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("response should carry a request ID")
		}
	})

	t.Run("authors are optional", func(t *testing.T) {
		srv := newTestServer(t)
		body, ct := tu.MultipartBody(t, "paper.docx", []byte("x"), map[string][]string{"upload_file": {"true"}})

		rec := srv.do(http.MethodPost, "/upload", body, ct)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"authors":[]`) {
			t.Errorf("body = %s, want empty authors array", rec.Body.String())
		}
	})

	tests := []struct {
		name     string
		filename string
		fields   map[string][]string
		want     string
	}{
		{"missing flag", "paper.docx", nil, "missing upload flag"},
		{"wrong flag", "paper.docx", map[string][]string{"upload_file": {"false"}}, "missing upload flag"},
		{"missing file", "", map[string][]string{"upload_file": {"true"}}, "no file uploaded"},
		{"wrong extension", "paper.pdf", map[string][]string{"upload_file": {"true"}}, "please upload a .docx file"},
		{
			"unbalanced authors", "paper.docx",
			map[string][]string{"upload_file": {"true"}, "authors": {"A"}, "author_affiliations": {"X", "Y"}},
			"author names and affiliations must match",
		},
		{
			"author without affiliation", "paper.docx",
			map[string][]string{"upload_file": {"true"}, "authors": {"A"}, "author_affiliations": {" "}},
			"each author needs an affiliation",
		},
		{
			"only blank authors", "paper.docx",
			map[string][]string{"upload_file": {"true"}, "authors": {""}, "author_affiliations": {""}},
			"please provide at least one author",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			body, ct := tu.MultipartBody(t, tt.filename, []byte("x"), tt.fields)

			rec := srv.do(http.MethodPost, "/upload", body, ct)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeError(t, rec); got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
			if len(srv.submissions.created) != 0 {
				t.Error("rejected upload should not be recorded")
			}
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		srv := newTestServer(t)
		rec := srv.do(http.MethodPost, "/upload", strings.NewReader("{}"), "application/json")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		srv := newTestServer(t)
		body, ct := tu.MultipartBody(t, "paper.docx", bytes.Repeat([]byte("x"), 2<<20), map[string][]string{"upload_file": {"true"}})

		rec := srv.do(http.MethodPost, "/upload", body, ct)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("GET not allowed", func(t *testing.T) {
		srv := newTestServer(t)
		rec := srv.do(http.MethodGet, "/upload", nil, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
		if rec.Header().Get("Allow") != http.MethodPost {
			t.Errorf("Allow = %q", rec.Header().Get("Allow"))
		}
	})

	t.Run("record failure removes stored file", func(t *testing.T) {
		srv := newTestServer(t)
		srv.submissions.err = errors.New("database is locked")
		body, ct := tu.MultipartBody(t, "paper.docx", []byte("x"), map[string][]string{"upload_file": {"true"}})

		rec := srv.do(http.MethodPost, "/upload", body, ct)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}

		entries, _ := os.ReadDir(srv.store.Dir())
		if len(entries) != 0 {
			t.Errorf("storage has %d entries, want 0", len(entries))
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"paper.docx", "paper.docx"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\My Paper.docx`, "My_Paper.docx"},
		{".hidden.docx", "hidden.docx"},
		{"résumé.docx", "r_sum_.docx"},
		{"", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPageHandler(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"index", "/", http.StatusOK, `id="auth-0"`},
		{"about", "/about", http.StatusOK, "<h1>About msx</h1>"},
		{"topnav fragment", "/fragments/topnav", http.StatusOK, `id="topnav"`},
		{"footer fragment", "/fragments/footer", http.StatusOK, ".docx"},
		{"missing fragment", "/fragments/sidebar", http.StatusNotFound, ""},
		{"unknown page", "/nope", http.StatusNotFound, ""},
		{"health", "/healthz", http.StatusOK, `"status":"ok"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodGet, tt.path, nil, "")
			if rec.Code != tt.status {
				t.Fatalf("GET %s status = %d, want %d", tt.path, rec.Code, tt.status)
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("GET %s body missing %q", tt.path, tt.want)
			}
		})
	}

	t.Run("POST to page not allowed", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/about", nil, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("missing readme degrades", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Pages.Readme = filepath.Join(t.TempDir(), "missing.md")
		router, err := New(cfg, Deps{Files: srv.store, Submissions: &fakeSubmissions{}, Logger: shared.NewLogger(io.Discard)})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "unavailable") {
			t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)

	body, ct := tu.MultipartBody(t, "paper.docx", []byte("x"), map[string][]string{"upload_file": {"true"}})
	srv.do(http.MethodPost, "/upload", body, ct)
	srv.do(http.MethodGet, "/fragments/topnav", nil, "")

	rec := srv.do(http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	out := rec.Body.String()
	for _, want := range []string{
		`msx_upload_total{result="stored"} 1`,
		`msx_http_requests_total{method="POST",path="/upload",status="201"} 1`,
		`path="/fragments/{name}"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("request ID is propagated", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
			t.Errorf("seen = %q header = %q", seen, rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("access log records status", func(t *testing.T) {
		var logs bytes.Buffer
		h := AccessLog(shared.NewLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))
		if !strings.Contains(logs.String(), "status=418") || !strings.Contains(logs.String(), "path=/brew") {
			t.Errorf("log = %q", logs.String())
		}
	})

	t.Run("recover turns panic into 500", func(t *testing.T) {
		h := Recover(shared.NewLogger(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	router := NewBasicRouter()
	var order []string
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "outer")
			next.ServeHTTP(w, r)
		})
	}, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "inner")
			next.ServeHTTP(w, r)
		})
	})
	router.HandleFunc(http.MethodGet, "/items", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "get")
	})
	router.HandleFunc(http.MethodDelete, "/items", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "delete")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
	if strings.Join(order, ",") != "outer,inner,get" {
		t.Errorf("order = %v", order)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/items", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != "DELETE, GET" {
		t.Errorf("Allow = %q", rec.Header().Get("Allow"))
	}

	if got := router.Patterns(); len(got) != 1 || got[0] != "/items" {
		t.Errorf("Patterns() = %v", got)
	}
}
