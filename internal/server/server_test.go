package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/akolanti/PDFChat/internal/api"
	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/data/store"
	"github.com/akolanti/PDFChat/internal/handlers"
	"github.com/akolanti/PDFChat/internal/job"
	"github.com/akolanti/PDFChat/internal/rag"
	"github.com/akolanti/PDFChat/internal/rag/ingest"
	"github.com/akolanti/PDFChat/internal/worker"
)

type fakeRag struct {
	mu           sync.Mutex
	answerErr    error
	files        []string
	resetFor     []string
	deleted      []string
	ingestedPath []string
	skip         bool
}

func (f *fakeRag) Ingest(ctx context.Context, path string) (ingest.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return ingest.Result{}, appErrors.Internal("fake.Ingest", err)
	}
	f.ingestedPath = append(f.ingestedPath, path)
	return ingest.Result{SourceFile: ingest.SourceFileName(path), Chunks: 2, Skipped: f.skip}, nil
}

func (f *fakeRag) Answer(ctx context.Context, sessionId, question string) (rag.Answer, error) {
	if f.answerErr != nil {
		return rag.Answer{}, f.answerErr
	}
	return rag.Answer{Text: "answer: " + question, Sources: []string{"a.pdf"}}, nil
}

func (f *fakeRag) ListFiles(ctx context.Context) ([]string, error) {
	if f.files == nil {
		return []string{}, nil
	}
	return f.files, nil
}

func (f *fakeRag) DeleteFile(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeRag) ResetConversation(ctx context.Context, sessionId string) error {
	f.resetFor = append(f.resetFor, sessionId)
	return nil
}

type testEnv struct {
	router       http.Handler
	rag          *fakeRag
	jobs         *job.Service
	pool         *worker.Pool
	uploadFolder string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fr := &fakeRag{}
	jobs := job.InitJobService(store.InitInMemoryJobStore())
	pool := worker.NewPool(worker.DefaultPoolConfig(), jobs, fr)
	pool.Start()
	t.Cleanup(pool.Stop)

	uploadFolder := filepath.Join(t.TempDir(), "uploads")
	h, err := handlers.NewRequestHandler(jobs, pool, fr, uploadFolder)
	if err != nil {
		t.Fatalf("NewRequestHandler failed: %v", err)
	}
	return &testEnv{router: NewRouter(h, nil), rag: fr, jobs: jobs, pool: pool, uploadFolder: uploadFolder}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/chat" {
		t.Errorf("index got %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/chat", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "PDF Chat") {
		t.Errorf("chat page got %d", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/static/chatbot.js", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("static asset got %d", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics got %d", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "History is kept per session") {
		t.Errorf("swagger doc got %d, session note missing", rec.Code)
	}
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		body        string
		header      string
		expectCode  int
		expectError string
		expectSess  string
		expectNew   bool
	}{
		{name: "missing question", body: `{}`, expectCode: 400, expectError: "No question provided"},
		{name: "malformed body", body: `not json`, expectCode: 400, expectError: "No question provided"},
		{name: "new session", body: `{"question":"hi"}`, expectCode: 200, expectNew: true},
		{name: "session in body", body: `{"question":"hi","session_id":"abc"}`, expectCode: 200, expectSess: "abc"},
		{name: "session in header", body: `{"question":"hi"}`, header: "from-header", expectCode: 200, expectSess: "from-header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPost, "/api/chat", tt.body)
			if tt.header != "" {
				req.Header.Set(config.SessionHeaderName, tt.header)
			}
			rec := env.do(req)

			if rec.Code != tt.expectCode {
				t.Fatalf("status got %d want %d body %s", rec.Code, tt.expectCode, rec.Body.String())
			}
			if rec.Header().Get(config.TraceHeaderName) == "" {
				t.Error("trace header missing")
			}
			if tt.expectError != "" {
				body := decode[api.ErrorResponse](t, rec)
				if body.Success || body.Error != tt.expectError {
					t.Errorf("error body %+v", body)
				}
				return
			}

			body := decode[api.ChatResponse](t, rec)
			if !body.Success || body.Response != "answer: hi" || body.Question != "hi" || len(body.Sources) != 1 {
				t.Errorf("unexpected body %+v", body)
			}
			if tt.expectSess != "" && body.SessionId != tt.expectSess {
				t.Errorf("session got %q want %q", body.SessionId, tt.expectSess)
			}
			hasCookie := strings.Contains(rec.Header().Get("Set-Cookie"), config.SessionCookieName+"=")
			if tt.expectNew != hasCookie {
				t.Errorf("cookie set=%v want %v", hasCookie, tt.expectNew)
			}
			if tt.expectNew && body.SessionId == "" {
				t.Error("new session id missing")
			}
		})
	}
}

func TestChat_UsesCookieSession(t *testing.T) {
	env := newTestEnv(t)
	req := jsonRequest(http.MethodPost, "/api/chat", `{"question":"hi"}`)
	req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: "cookie-session"})

	body := decode[api.ChatResponse](t, env.do(req))
	if body.SessionId != "cookie-session" {
		t.Errorf("session got %q", body.SessionId)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{appErrors.Upstream("llm", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{appErrors.Upstream("llm", os.ErrClosed), http.StatusInternalServerError},
		{appErrors.Validation("rag", "No question provided"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		env := newTestEnv(t)
		env.rag.answerErr = tt.err
		rec := env.do(jsonRequest(http.MethodPost, "/api/chat", `{"question":"q"}`))
		if rec.Code != tt.code {
			t.Errorf("%v: status got %d want %d", tt.err, rec.Code, tt.code)
		}
		if body := decode[api.ErrorResponse](t, rec); body.Success || body.Error == "" {
			t.Errorf("error body %+v", body)
		}
	}
}

func TestResetChat(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(http.MethodPost, "/api/chat/reset", `{"session_id":"s1"}`))
	body := decode[api.MessageResponse](t, rec)
	if rec.Code != 200 || !body.Success || body.Message != "Conversation reset" || body.SessionId != "s1" {
		t.Errorf("reset got %d %+v", rec.Code, body)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/chat/reset", nil)
	req.Header.Set(config.SessionHeaderName, "s2")
	if rec = env.do(req); rec.Code != 200 {
		t.Errorf("empty body reset got %d", rec.Code)
	}
	if len(env.rag.resetFor) != 2 || env.rag.resetFor[0] != "s1" || env.rag.resetFor[1] != "s2" {
		t.Errorf("reset sessions %v", env.rag.resetFor)
	}
}

func TestFileNamesAndDelete(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/get/file_names", nil))
	if rec.Code != 200 || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list got %d %q", rec.Code, rec.Body.String())
	}

	env.rag.files = []string{"a.pdf", "b.pdf"}
	if names := decode[[]string](t, env.do(httptest.NewRequest(http.MethodGet, "/api/get/file_names", nil))); len(names) != 2 {
		t.Errorf("names %v", names)
	}

	rec = env.do(jsonRequest(http.MethodPost, "/api/delete/file", `{}`))
	if rec.Code != 400 || decode[api.ErrorResponse](t, rec).Error != "No file name provided" {
		t.Errorf("missing name got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(jsonRequest(http.MethodPost, "/api/delete/file", `{"file_name":"a.pdf"}`))
	body := decode[api.MessageResponse](t, rec)
	if rec.Code != 200 || body.Message != "File a.pdf deleted successfully" {
		t.Errorf("delete got %d %+v", rec.Code, body)
	}
}

func multipartRequest(t *testing.T, field, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, fileName)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(content)
	} else {
		_ = mw.WriteField("other", "value")
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload/pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		req         *http.Request
		expectCode  int
		expectError string
	}{
		{"no multipart", jsonRequest(http.MethodPost, "/api/upload/pdf", `{}`), 400, "No file uploaded"},
		{"no file field", multipartRequest(t, "", "", nil), 400, "No file uploaded"},
		{"empty filename", multipartRequest(t, "pdf", "", []byte("x")), 400, "No selected file"},
		{"not a pdf", multipartRequest(t, "pdf", "notes.txt", []byte("x")), 400, "Only PDF files allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.req)
			if rec.Code != tt.expectCode {
				t.Fatalf("status got %d want %d (%s)", rec.Code, tt.expectCode, rec.Body.String())
			}
			if body := decode[api.ErrorResponse](t, rec); body.Error != tt.expectError {
				t.Errorf("error got %q want %q", body.Error, tt.expectError)
			}
		})
	}

	rec := env.do(multipartRequest(t, "pdf", "../My Report.PDF", []byte("%PDF-1.4")))
	if rec.Code != 200 {
		t.Fatalf("upload got %d %s", rec.Code, rec.Body.String())
	}
	body := decode[api.UploadResponse](t, rec)
	if body.Message != "File uploaded" || body.SourceFile != "My_Report.PDF" || body.Skipped {
		t.Errorf("unexpected upload body %+v", body)
	}
	if body.Path != filepath.Join(env.uploadFolder, "My_Report.PDF") {
		t.Errorf("path got %q", body.Path)
	}
	if _, err := os.Stat(body.Path); !os.IsNotExist(err) {
		t.Error("uploaded file should be removed after ingestion")
	}
	if len(env.rag.ingestedPath) != 1 {
		t.Errorf("ingested %v", env.rag.ingestedPath)
	}

	body = decode[api.UploadResponse](t, env.do(multipartRequest(t, "pdf", "отчет.pdf", []byte("%PDF-1.4"))))
	if !strings.HasSuffix(body.SourceFile, ".pdf") || len(body.SourceFile) <= len(".pdf") {
		t.Errorf("non-ascii pdf name should be accepted with a generated stem, got %+v", body)
	}

	env.rag.skip = true
	body = decode[api.UploadResponse](t, env.do(multipartRequest(t, "pdf", "again.pdf", []byte("%PDF"))))
	if !body.Skipped {
		t.Error("expected skipped upload")
	}
}

func TestJobStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	j, err := env.pool.Submit(ctx, env.jobs.NewQueryJob(ctx, "s", "status?"))
	if err != nil {
		t.Fatal(err)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/jobs/"+j.Id, nil))
	if rec.Code != 200 {
		t.Fatalf("status got %d", rec.Code)
	}
	body := decode[api.JobResponse](t, rec)
	if body.Id != j.Id || body.Status != "COMPLETE" || body.Result == nil || body.Result.Answer != "answer: status?" {
		t.Errorf("unexpected job body %+v", body)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/jobs/unknown", nil))
	if rec.Code != 404 || decode[api.ErrorResponse](t, rec).Error != "Job not found" {
		t.Errorf("unknown job got %d %s", rec.Code, rec.Body.String())
	}
}
