package export

import (
	"context"
	"log"
	"time"

	"gridlink/internal/constants"
	"gridlink/internal/job"
	"gridlink/internal/source"
	"gridlink/internal/utils"
)

// Pipeline runs export jobs in the background. Each submitted job is
// processed by exactly one run; a semaphore caps how many exports are
// in flight at once. Progress and outcome are communicated only
// through the job store, never back to the submitting request.
type Pipeline struct {
	jobs *job.Store
	src  source.Source
	sem  chan struct{}
}

func NewPipeline(jobs *job.Store, src source.Source, workers int) *Pipeline {
	if workers <= 0 {
		workers = constants.DefaultExportWorkers
	}
	return &Pipeline{
		jobs: jobs,
		src:  src,
		sem:  make(chan struct{}, workers),
	}
}

// Submit marks the job running and dispatches it. The caller never
// blocks on completion.
func (p *Pipeline) Submit(jobID string, opts source.QueryOptions) {
	p.update(jobID, job.Patch{
		State:    job.Ptr(job.StateRunning),
		Progress: job.Ptr(0.0),
	})

	go func() {
		p.sem <- struct{}{}
		defer func() { <-p.sem }()
		p.run(context.Background(), jobID, opts)
	}()
}

func (p *Pipeline) run(ctx context.Context, jobID string, opts source.QueryOptions) {
	log.Printf("📊 Starting export job %s from %s to %s", jobID, opts.Start, opts.End)

	p.update(jobID, job.Patch{
		Progress: job.Ptr(0.2),
		Status:   job.Ptr("Querying data source..."),
	})

	rows, err := p.src.Query(ctx, opts)
	if err != nil {
		log.Printf("❌ Export job %s failed: %v", jobID, err)
		p.update(jobID, job.Patch{
			State:  job.Ptr(job.StateError),
			Status: job.Ptr(err.Error()),
			Error:  job.Ptr(err.Error()),
		})
		return
	}

	if len(rows) == 0 {
		p.update(jobID, job.Patch{
			State:    job.Ptr(job.StateDone),
			Progress: job.Ptr(1.0),
			RowCount: job.Ptr(0),
			Status:   job.Ptr("No data found"),
		})
		log.Printf("✅ Export job %s completed: 0 rows", jobID)
		return
	}

	rowCount := len(rows)
	p.update(jobID, job.Patch{
		Progress: job.Ptr(0.5),
		RowCount: job.Ptr(rowCount),
		Status:   job.Ptr("Processing data..."),
	})

	outputFile := jobID + ".jsonl"

	canonical, err := Canonicalize(rows)
	if err != nil {
		// The export itself succeeded; only the digest is unavailable.
		log.Printf("Error calculating hash for job %s: %v", jobID, err)
		p.update(jobID, job.Patch{
			State:      job.Ptr(job.StateDone),
			Progress:   job.Ptr(1.0),
			RowCount:   job.Ptr(rowCount),
			Status:     job.Ptr("Export completed"),
			OutputFile: job.Ptr(outputFile),
			SHA256:     job.Ptr(DigestUnavailable),
			Data:       rows,
		})
		return
	}

	p.update(jobID, job.Patch{
		State:      job.Ptr(job.StateDone),
		Progress:   job.Ptr(1.0),
		RowCount:   job.Ptr(rowCount),
		Status:     job.Ptr("Export completed"),
		OutputFile: job.Ptr(outputFile),
		SHA256:     job.Ptr(Digest(canonical)),
		Data:       rows,
		Metadata: &job.Metadata{
			MachineIP:   utils.MachineIP(),
			ExportedAt:  time.Now().UTC(),
			RowCount:    rowCount,
			Measurement: opts.Measurement,
			Filters:     opts.Filters,
		},
	})

	log.Printf("✅ Export job %s completed: %d rows", jobID, rowCount)
}

func (p *Pipeline) update(jobID string, patch job.Patch) {
	if _, err := p.jobs.Update(jobID, patch); err != nil {
		log.Printf("Failed to update job %s: %v", jobID, err)
	}
}
