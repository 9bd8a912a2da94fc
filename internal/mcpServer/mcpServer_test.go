package mcpServer

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/PDFChat/internal/data/store"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
	"github.com/akolanti/PDFChat/internal/job"
	"github.com/akolanti/PDFChat/internal/rag"
	"github.com/akolanti/PDFChat/internal/rag/ingest"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mockRunner struct {
	OnSubmit func(ctx context.Context, j jobModel.Job) (jobModel.Job, error)
}

func (m *mockRunner) Submit(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
	return m.OnSubmit(ctx, j)
}

type mockRag struct {
	files   []string
	deleted []string
}

func (m *mockRag) Ingest(ctx context.Context, path string) (ingest.Result, error) {
	return ingest.Result{}, nil
}
func (m *mockRag) Answer(ctx context.Context, sessionId, question string) (rag.Answer, error) {
	return rag.Answer{}, nil
}
func (m *mockRag) ListFiles(ctx context.Context) ([]string, error) { return m.files, nil }
func (m *mockRag) DeleteFile(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("No file name provided")
	}
	m.deleted = append(m.deleted, name)
	return nil
}
func (m *mockRag) ResetConversation(ctx context.Context, sessionId string) error { return nil }

func connect(t *testing.T, runner JobRunner, ragService rag.Service) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := NewServer(job.InitJobService(store.InitInMemoryJobStore()), runner, ragService)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestListTools(t *testing.T) {
	session := connect(t, &mockRunner{}, &mockRag{})

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"ask_question", "list_files", "delete_file"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}

func TestAskQuestion(t *testing.T) {
	var submitted jobModel.Job
	runner := &mockRunner{OnSubmit: func(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
		submitted = j
		j.JobPayload.Answer = "forty two"
		j.JobPayload.Sources = []string{"guide.pdf"}
		return j, nil
	}}
	session := connect(t, runner, &mockRag{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "ask_question",
		Arguments: map[string]any{"question": "meaning of life", "session_id": "s-1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if submitted.JobType != jobModel.JobTypeQuery || submitted.SessionId != "s-1" || submitted.JobPayload.Question != "meaning of life" {
		t.Errorf("unexpected submitted job %+v", submitted)
	}
	out, ok := res.StructuredContent.(map[string]any)
	if !ok || out["answer"] != "forty two" || out["session_id"] != "s-1" {
		t.Errorf("unexpected structured content %#v", res.StructuredContent)
	}
}

func TestAskQuestion_Empty(t *testing.T) {
	session := connect(t, &mockRunner{}, &mockRag{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "ask_question",
		Arguments: map[string]any{"question": ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error for empty question")
	}
}

func TestListAndDeleteFiles(t *testing.T) {
	ragService := &mockRag{files: []string{"a.pdf", "b.pdf"}}
	session := connect(t, &mockRunner{}, ragService)
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "list_files", Arguments: map[string]any{}})
	if err != nil || res.IsError {
		t.Fatalf("list_files failed: %v %+v", err, res)
	}
	out, _ := res.StructuredContent.(map[string]any)
	if files, _ := out["files"].([]any); len(files) != 2 {
		t.Errorf("unexpected files %#v", res.StructuredContent)
	}

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "delete_file", Arguments: map[string]any{"file_name": "a.pdf"}})
	if err != nil || res.IsError {
		t.Fatalf("delete_file failed: %v %+v", err, res)
	}
	if len(ragService.deleted) != 1 || ragService.deleted[0] != "a.pdf" {
		t.Errorf("deleted %v", ragService.deleted)
	}
}
