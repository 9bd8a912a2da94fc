package adapter

import (
	"github.com/akolanti/PDFChat/internal/api"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
)

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Kind:    job.Error.Kind,
			Message: job.Error.Message,
		}
	}

	return api.JobResponse{
		Id:          job.Id,
		SessionId:   job.SessionId,
		Type:        string(job.JobType),
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Result:      toJobResult(job.JobPayload),
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
		EndTime:     job.EndTime,
	}
}

func toJobResult(payload jobModel.JobPayload) *api.JobResult {
	if payload.Answer == "" && payload.SourceFile == "" {
		return nil
	}
	return &api.JobResult{
		Question:   payload.Question,
		Answer:     payload.Answer,
		Sources:    payload.Sources,
		SourceFile: payload.SourceFile,
		Chunks:     payload.ChunkCount,
		Skipped:    payload.Skipped,
	}
}

func ToChatResponse(job jobModel.Job) api.ChatResponse {
	sources := job.JobPayload.Sources
	if sources == nil {
		sources = []string{}
	}
	return api.ChatResponse{
		Success:   true,
		Question:  job.JobPayload.Question,
		Response:  job.JobPayload.Answer,
		SessionId: job.SessionId,
		Sources:   sources,
	}
}

func ToUploadResponse(job jobModel.Job) api.UploadResponse {
	return api.UploadResponse{
		Message:    "File uploaded",
		Path:       job.JobPayload.IngestPath,
		SourceFile: job.JobPayload.SourceFile,
		Skipped:    job.JobPayload.Skipped,
	}
}

func ErrorBody(message string) api.ErrorResponse {
	return api.ErrorResponse{Success: false, Error: message}
}
