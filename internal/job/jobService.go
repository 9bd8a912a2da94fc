package job

import (
	"context"
	"time"

	"github.com/akolanti/PDFChat/internal/adapter/utils"
	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

// Service creates jobs and records their state transitions.
type Service struct {
	JobStore jobModel.JobStore
	logger   *logger_i.Logger
}

func InitJobService(store jobModel.JobStore) *Service {
	return &Service{
		JobStore: store,
		logger:   logger_i.NewLogger("JobService"),
	}
}

func newJob(ctx context.Context, jobType jobModel.JobType, step jobModel.InternalStatus) jobModel.Job {
	return jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     logger_i.TraceId(ctx),
		JobType:     jobType,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: step,
	}
}

func (s *Service) NewQueryJob(ctx context.Context, sessionId string, question string) jobModel.Job {
	j := newJob(ctx, jobModel.JobTypeQuery, jobModel.UserQueryInit)
	j.SessionId = sessionId
	j.JobPayload.Question = question
	return j
}

func (s *Service) NewIngestJob(ctx context.Context, fileName string, path string) jobModel.Job {
	j := newJob(ctx, jobModel.JobTypeIngest, jobModel.IngestInit)
	j.JobPayload.IngestFileName = fileName
	j.JobPayload.IngestPath = path
	return j
}

func (s *Service) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return s.JobStore.GetJob(ctx, jobId)
}

// SaveState stamps status on job and persists it. A store failure is logged
// and never fails the job itself.
func (s *Service) SaveState(ctx context.Context, job jobModel.Job, status jobModel.JobStatus) jobModel.Job {
	job.Status = status
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		s.logger.FromContext(ctx).Error("Failed to update job status", "jobId", job.Id, "status", status, "err", err)
	}
	return job
}

// MarkFailed copies the typed error onto the job.
func MarkFailed(job jobModel.Job, err error) jobModel.Job {
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{
		Code:    appErrors.HTTPStatus(err),
		Kind:    string(appErrors.KindOf(err)),
		Message: appErrors.PublicMessage(err),
	}
	return job
}
