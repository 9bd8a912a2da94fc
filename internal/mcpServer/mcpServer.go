package mcpServer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/PDFChat/internal/adapter/utils"
	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
	"github.com/akolanti/PDFChat/internal/job"
	"github.com/akolanti/PDFChat/internal/rag"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "pdfchat"
	serverVersion = "v1.0.0"
)

// JobRunner is satisfied by *worker.Pool.
type JobRunner interface {
	Submit(ctx context.Context, job jobModel.Job) (jobModel.Job, error)
}

type askInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the uploaded documents"`
	SessionId string `json:"session_id,omitempty" jsonschema:"conversation to continue, a new one is started when empty"`
}

type askOutput struct {
	Answer    string   `json:"answer"`
	SessionId string   `json:"session_id"`
	Sources   []string `json:"sources"`
}

type listFilesInput struct{}

type listFilesOutput struct {
	Files []string `json:"files"`
}

type deleteFileInput struct {
	FileName string `json:"file_name" jsonschema:"name of the ingested file to remove"`
}

type deleteFileOutput struct {
	Message string `json:"message"`
}

type tools struct {
	jobs   *job.Service
	runner JobRunner
	rag    rag.Service
	logger *logger_i.Logger
}

// NewServer registers the chat tools on a fresh MCP server.
func NewServer(jobs *job.Service, runner JobRunner, ragService rag.Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	t := &tools{jobs: jobs, runner: runner, rag: ragService, logger: logger_i.NewLogger("MCP")}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question using the uploaded PDF documents. Pass session_id to keep conversation history.",
	}, t.askQuestion)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_files",
		Description: "List the names of the ingested PDF files.",
	}, t.listFiles)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_file",
		Description: "Remove an ingested PDF file and all of its chunks.",
	}, t.deleteFile)
	return server
}

// NewHandler serves server over streamable HTTP.
func NewHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

func (t *tools) askQuestion(ctx context.Context, _ *mcp.CallToolRequest, in askInput) (*mcp.CallToolResult, askOutput, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, askOutput{}, toolError(appErrors.Validation("mcp.ask_question", "No question provided"))
	}
	sessionId := in.SessionId
	if sessionId == "" {
		sessionId = utils.GetNewUUID()
	}

	j := t.jobs.NewQueryJob(ctx, sessionId, in.Question)
	t.logger.FromContext(ctx).Info("MCP ask_question", "jobId", j.Id, "sessionId", sessionId)
	result, err := t.runner.Submit(ctx, j)
	if err != nil {
		return nil, askOutput{}, toolError(err)
	}

	sources := result.JobPayload.Sources
	if sources == nil {
		sources = []string{}
	}
	return nil, askOutput{Answer: result.JobPayload.Answer, SessionId: sessionId, Sources: sources}, nil
}

func (t *tools) listFiles(ctx context.Context, _ *mcp.CallToolRequest, _ listFilesInput) (*mcp.CallToolResult, listFilesOutput, error) {
	files, err := t.rag.ListFiles(ctx)
	if err != nil {
		return nil, listFilesOutput{}, toolError(err)
	}
	return nil, listFilesOutput{Files: files}, nil
}

func (t *tools) deleteFile(ctx context.Context, _ *mcp.CallToolRequest, in deleteFileInput) (*mcp.CallToolResult, deleteFileOutput, error) {
	if err := t.rag.DeleteFile(ctx, in.FileName); err != nil {
		return nil, deleteFileOutput{}, toolError(err)
	}
	return nil, deleteFileOutput{Message: fmt.Sprintf("File %s deleted successfully", in.FileName)}, nil
}

// toolError keeps the client facing text the same as the HTTP error body.
func toolError(err error) error {
	return errors.New(appErrors.PublicMessage(err))
}
