package worker

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/nkapoor/docuchat/internal/config"
	jobmodel "github.com/nkapoor/docuchat/internal/domain/jobModel"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/metrics"
	"github.com/nkapoor/docuchat/internal/rag/docload"
	"github.com/nkapoor/docuchat/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)

	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	saveJobState(ctxTrace, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeIngest {
		ctx, cancel := context.WithTimeout(ctxTrace, config.IngestTimeout)
		job = ingestDocument(ctx, job, log)
		cancel()
	} else {
		ctx, cancel := context.WithTimeout(ctxTrace, config.QueryTimeout)
		job = processQuery(ctx, job, log)
		cancel()
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
		job.CurrentStep = jobmodel.Complete
	}
	if err := _jobService.JobStore.SaveJob(ctxTrace, job); err != nil {
		log.Error("Failed to persist finished job", "err", err)
	}
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

// ingestDocument extracts the staged upload and indexes it into the job's
// session. The staged temp file is removed whatever the outcome.
func ingestDocument(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	path := job.JobPayload.IngestFilePath
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("Failed to remove staged upload", "path", path, "err", err)
		}
	}()

	job.CurrentStep = jobmodel.IngestExtracting
	text, meta, err := docload.Load(path, job.JobPayload.IngestFileName)
	if err != nil {
		return failJob(job, err, log)
	}

	job.CurrentStep = jobmodel.IngestIndexing
	session := _jobService.Sessions.Session(job.ChatId)
	chunkCount, err := session.Ingest(ctx, text, meta)
	if err != nil {
		return failJob(job, err, log)
	}

	job.JobPayload.ChunkCount = chunkCount
	log.Info("Document indexed", "chatId", job.ChatId, "chunks", chunkCount)
	return job
}

func processQuery(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = jobmodel.RetrieveCall
	session := _jobService.Sessions.Session(job.ChatId)

	answer, err := session.Ask(ctx, job.JobPayload.Question)
	if err != nil {
		return failJob(job, err, log)
	}

	job.JobPayload.Answer = answer.Text
	job.JobPayload.Sources = answer.Sources
	return job
}

func failJob(job jobmodel.Job, cause error, log *logger_i.Logger) jobmodel.Job {
	log.Error("Job failed", "err", cause)
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	job.Error = jobmodel.JobError{
		Code:    errorCode(cause),
		Message: cause.Error(),
		Retry:   retryable(cause),
	}
	return job
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, ragerr.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, ragerr.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ragerr.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ragerr.ErrEmbedding), errors.Is(err, ragerr.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// upstream gateway hiccups are worth retrying, client mistakes are not
func retryable(err error) bool {
	return errors.Is(err, ragerr.ErrEmbedding) || errors.Is(err, ragerr.ErrGateway)
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "err", err)
	}
}
