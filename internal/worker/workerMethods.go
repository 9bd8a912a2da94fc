package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
	"github.com/akolanti/PDFChat/internal/job"
	"github.com/akolanti/PDFChat/internal/metrics"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

func (p *Pool) executeJob(env envelope) {
	j := env.job
	start := time.Now()

	ctxTrace := context.WithValue(env.ctx, config.TRACE_ID_KEY, j.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.cfg.JobTimeout)
	defer cancel()
	log := p.logger.FromContext(ctx).With("jobId", j.Id, "jobType", j.JobType)
	log.Debug("Processing job")

	var err error
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = appErrors.Internal("worker.executeJob", fmt.Errorf("panic: %v", r))
		}
		j.EndTime = time.Now()
		status := jobModel.JobStatusComplete
		if err != nil {
			j = job.MarkFailed(j, err)
			status = jobModel.JobStatusError
		} else {
			j.CurrentStep = jobModel.Complete
		}
		// the request context may already be gone, the record should still land
		saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), config.RedisDialTimeout)
		j = p.jobService.SaveState(saveCtx, j, status)
		saveCancel()

		metrics.CaptureJobMetrics(string(status), time.Since(start))
		env.result <- outcome{job: j, err: err}
	}()

	j = p.jobService.SaveState(ctx, j, jobModel.JobStatusRunning)

	if j.JobType == jobModel.JobTypeIngest {
		j, err = p.ingestDocument(ctx, j, log)
	} else {
		j, err = p.processQuery(ctx, j, log)
	}
}

func (p *Pool) ingestDocument(ctx context.Context, j jobModel.Job, log *logger_i.Logger) (jobModel.Job, error) {
	j.CurrentStep = jobModel.IngestProcessing
	res, err := p.ragService.Ingest(ctx, j.JobPayload.IngestPath)
	j.JobPayload.SourceFile = res.SourceFile
	if err != nil {
		return j, err
	}
	j.JobPayload.ChunkCount = res.Chunks
	j.JobPayload.Skipped = res.Skipped
	if res.Skipped {
		j.CurrentStep = jobModel.IngestSkipped
	}
	log.Debug("Ingest finished", "sourceFile", res.SourceFile, "chunks", res.Chunks, "skipped", res.Skipped)
	return j, nil
}

func (p *Pool) processQuery(ctx context.Context, j jobModel.Job, log *logger_i.Logger) (jobModel.Job, error) {
	j.CurrentStep = jobModel.RetrieveCall
	answer, err := p.ragService.Answer(ctx, j.SessionId, j.JobPayload.Question)
	if err != nil {
		return j, err
	}
	j.CurrentStep = jobModel.LLMCall
	j.JobPayload.Answer = answer.Text
	j.JobPayload.Context = answer.Context
	j.JobPayload.Sources = answer.Sources
	log.Debug("Query answered", "sources", len(answer.Sources))
	return j, nil
}
