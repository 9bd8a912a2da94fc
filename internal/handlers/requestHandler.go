package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/PDFChat/internal/adapter"
	"github.com/akolanti/PDFChat/internal/api"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/job"
	"github.com/akolanti/PDFChat/internal/rag"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

const maxJSONBody = 1 << 20

type RequestHandler struct {
	jobs         *job.Service
	runner       JobRunner
	rag          rag.Service
	uploadFolder string
	page         *template.Template
	logger       *logger_i.Logger
}

func NewRequestHandler(jobs *job.Service, runner JobRunner, ragService rag.Service, uploadFolder string) (*RequestHandler, error) {
	page, err := parseChatPage()
	if err != nil {
		return nil, err
	}
	return &RequestHandler{
		jobs:         jobs,
		runner:       runner,
		rag:          ragService,
		uploadFolder: uploadFolder,
		page:         page,
		logger:       logRH,
	}, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the request body", "error", err)
		}
	}(r.Body)
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
}

func (h *RequestHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/chat", http.StatusFound)
}

// ChatHandler godoc
// @Summary      Ask a question about the uploaded documents
// @Description  Retrieves relevant chunks, asks the model and records the turn in the caller's session.
// @Description  History is kept per session. The session is taken from session_id, then the X-Session-Id header, then the chat_session cookie.
// @Description  A request carrying none of these starts a new session with no history; reuse the returned session_id to continue a conversation.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest    true  "Question and optional session id"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "No question provided"
// @Failure      500      {object}  api.ErrorResponse
// @Failure      504      {object}  api.ErrorResponse
// @Router       /api/chat [post]
func (h *RequestHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	log := h.logger.FromContext(r.Context())

	var requestData api.ChatRequest
	if err := decodeJSON(w, r, &requestData); err != nil || requestData.Question == "" {
		log.Warn("Bad chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "No question provided")
		return
	}

	sessionId, isNew := resolveSession(r, requestData.SessionId)
	if isNew {
		setSessionCookie(w, sessionId)
	}
	w.Header().Set(config.SessionHeaderName, sessionId)

	result, err := h.runQuery(r.Context(), sessionId, requestData.Question)
	if err != nil {
		log.Error("Chat request failed", "jobId", result.Id, "error", err)
		writeError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(result))
}

// ResetChatHandler godoc
// @Summary      Reset the conversation
// @Description  Clears the stored turns of the caller's session.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ResetRequest  false  "Optional session id"
// @Success      200      {object}  api.MessageResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/chat/reset [post]
func (h *RequestHandler) ResetChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	var requestData api.ResetRequest
	if err := decodeJSON(w, r, &requestData); err != nil && !errors.Is(err, io.EOF) {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionId, isNew := resolveSession(r, requestData.SessionId)
	if isNew {
		setSessionCookie(w, sessionId)
	}
	if err := h.rag.ResetConversation(r.Context(), sessionId); err != nil {
		writeError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Success: true, Message: "Conversation reset", SessionId: sessionId})
}

// FileNamesHandler godoc
// @Summary      List ingested files
// @Tags         Files
// @Produce      json
// @Success      200  {array}   string
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/get/file_names [get]
func (h *RequestHandler) FileNamesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	files, err := h.rag.ListFiles(r.Context())
	if err != nil {
		h.logger.FromContext(r.Context()).Error("Listing files failed", "error", err)
		writeError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, files)
}

// DeleteFileHandler godoc
// @Summary      Delete an ingested file
// @Description  Removes every chunk of the file from the vector store and the uploaded copy if present.
// @Tags         Files
// @Accept       json
// @Produce      json
// @Param        request  body      api.DeleteFileRequest  true  "File to delete"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse  "No file name provided"
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/delete/file [post]
func (h *RequestHandler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	var requestData api.DeleteFileRequest
	if err := decodeJSON(w, r, &requestData); err != nil || requestData.FileName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "No file name provided")
		return
	}
	if err := h.rag.DeleteFile(r.Context(), requestData.FileName); err != nil {
		h.logger.FromContext(r.Context()).Error("Delete failed", "file", requestData.FileName, "error", err)
		writeError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("File %s deleted successfully", requestData.FileName),
	})
}

// UploadPDFHandler godoc
// @Summary      Upload a PDF for ingestion
// @Description  Saves the file, chunks and embeds it, then removes the uploaded copy. Already ingested names are skipped.
// @Tags         Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        pdf  formData  file  true  "The PDF file to upload"
// @Success      200  {object}  api.UploadResponse
// @Failure      400  {object}  api.ErrorResponse  "No file uploaded, no selected file or not a PDF"
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/upload/pdf [post]
func (h *RequestHandler) UploadPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	log := h.logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusBadRequest, "File too large")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fileReader, fileMetadata, err := r.FormFile("pdf")
	if err != nil {
		// a part named pdf with an empty filename arrives as a plain value
		if _, ok := r.MultipartForm.Value["pdf"]; ok {
			WriteErrorResponse(w, http.StatusBadRequest, "No selected file")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer fileReader.Close()

	if fileMetadata.Filename == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !isPDF(fileMetadata.Filename) {
		WriteErrorResponse(w, http.StatusBadRequest, "Only PDF files allowed")
		return
	}
	fileName := sanitizeFileName(fileMetadata.Filename)

	if err := os.MkdirAll(h.uploadFolder, 0o750); err != nil {
		log.Error("Couldn't create upload folder", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	path := filepath.Join(h.uploadFolder, fileName)
	if err := saveUpload(path, fileReader); err != nil {
		log.Error("Couldn't save upload", "path", path, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Couldn't remove uploaded file", "path", path, "error", err)
		}
	}()

	result, err := h.runIngest(r.Context(), fileName, path)
	if err != nil {
		log.Error("Ingestion failed", "jobId", result.Id, "error", err)
		writeError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(result))
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
