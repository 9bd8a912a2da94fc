package api

import "time"

// requests---------------------

type ChatRequest struct {
	Question  string `json:"question" validate:"required" example:"What is the refund policy?"`
	SessionId string `json:"session_id,omitempty" example:"3f1c2a8e-3a8e-4a61-9d2b-7a0c3c1a9f10"`
}

type ResetRequest struct {
	SessionId string `json:"session_id,omitempty"`
}

type DeleteFileRequest struct {
	FileName string `json:"file_name" validate:"required" example:"report.pdf"`
}

// responses---------------------

type ChatResponse struct {
	Success   bool     `json:"success" example:"true"`
	Question  string   `json:"question"`
	Response  string   `json:"response"`
	SessionId string   `json:"session_id"`
	Sources   []string `json:"sources"`
}

type MessageResponse struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"File report.pdf deleted successfully"`
	SessionId string `json:"session_id,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"No question provided"`
}

type UploadResponse struct {
	Message    string `json:"message" example:"File uploaded"`
	Path       string `json:"path" example:"uploads/report.pdf"`
	SourceFile string `json:"source_file" example:"report.pdf"`
	Skipped    bool   `json:"skipped"`
}

type JobResponse struct {
	Id          string            `json:"id" example:"job_cz109"`
	SessionId   string            `json:"session_id,omitempty" example:"chat_550"`
	Type        string            `json:"type" example:"Query"`
	Status      string            `json:"status" example:"COMPLETE"`
	CurrentStep string            `json:"current_step"`
	Result      *JobResult        `json:"result,omitempty"`
	Error       *JobOutgoingError `json:"error,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"500"`
	Kind    string `json:"kind" example:"UPSTREAM"`
	Message string `json:"message" example:"upstream service failed"`
}

type JobResult struct {
	Question   string   `json:"question,omitempty"`
	Answer     string   `json:"answer,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	SourceFile string   `json:"source_file,omitempty"`
	Chunks     int      `json:"chunks,omitempty"`
	Skipped    bool     `json:"skipped,omitempty"`
}
