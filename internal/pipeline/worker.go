package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/md2docx/internal/metrics"
)

// Worker processes a single conversion job.
type Worker struct {
	conv    *Converter
	log     *slog.Logger
	metrics *metrics.Recorder
}

func NewWorker(conv *Converter, log *slog.Logger, m *metrics.Recorder) *Worker {
	return &Worker{conv: conv, log: log, metrics: m}
}

// Process converts the job's source and stores the package on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Convert
	job.SetStatus(StatusConverting, "converting")
	data, doc, err := w.conv.ConvertToDocx(ctx, job.Source(), job.Style)
	if err != nil {
		log.Warn("conversion failed", "error", err)
		job.Fail("converting", err)
		w.metrics.IncJob(string(StatusFailed))
		return
	}

	// Phase 2: Publish the result
	job.Complete(data, doc.Meta.Title, len(doc.Blocks))
	w.metrics.IncJob(string(StatusCompleted))
	log.Info("job completed", "blocks", len(doc.Blocks), "bytes", len(data))
}
