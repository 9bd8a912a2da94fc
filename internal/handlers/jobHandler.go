package handlers

import (
	"context"
	"net/http"

	"github.com/akolanti/PDFChat/internal/adapter"
	"github.com/akolanti/PDFChat/internal/adapter/utils"
	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
)

// JobRunner is satisfied by *worker.Pool.
type JobRunner interface {
	Submit(ctx context.Context, job jobModel.Job) (jobModel.Job, error)
}

func (h *RequestHandler) runQuery(ctx context.Context, sessionId string, question string) (jobModel.Job, error) {
	j := h.jobs.NewQueryJob(ctx, sessionId, question)
	h.logger.FromContext(ctx).Info("Submitting query job", "jobId", j.Id, "sessionId", sessionId)
	return h.runner.Submit(ctx, j)
}

func (h *RequestHandler) runIngest(ctx context.Context, fileName string, path string) (jobModel.Job, error) {
	j := h.jobs.NewIngestJob(ctx, fileName, path)
	h.logger.FromContext(ctx).Info("Submitting ingest job", "jobId", j.Id, "file", fileName)
	return h.runner.Submit(ctx, j)
}

// GetJobStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the recorded state of a chat or ingest job.
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /api/jobs/{id} [get]
func (h *RequestHandler) GetJobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		writeError(w, appErrors.NotFound("jobs.get", "Job not found"))
		return
	}
	result, found := h.jobs.GetJob(r.Context(), id)
	if !found {
		writeError(w, appErrors.NotFound("jobs.get", "Job not found"))
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
