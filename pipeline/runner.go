package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/core"
)

// docTask identifies one document inside a stage run.
type docTask struct {
	partition core.Partition
	id        core.DocID
	key       string // blob key of the stage's input
}

// docStatus is the outcome of one document's processing.
type docStatus int

const (
	docProcessed docStatus = iota
	docSkipped
)

// docFunc processes a single document. A returned error marks the document
// failed in the stage report; the stage keeps going.
type docFunc func(ctx context.Context, task docTask) (docStatus, error)

// runDocStage is the shared driver for the store-to-store stages: list the
// upstream outputs, fan the documents out to the pool, report.
func (p *Pipeline) runDocStage(ctx context.Context, stage, upstream core.Stage, cfg RunConfig, fn docFunc) (*core.StageReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tasks, err := p.listInputs(ctx, upstream, cfg.Partitions)
	if err != nil {
		return nil, err
	}

	p.logger.Info("stage starting",
		"stage", stage.String(),
		"documents", len(tasks),
		"skipExisting", cfg.SkipExisting,
	)
	report := p.forEachDoc(ctx, stage, cfg, tasks, fn)
	return report, ctx.Err()
}

// listInputs lists the upstream stage's outputs for the selected
// partitions. An empty result means there is nothing to consume and the
// stage must not run (ErrStageNotReady).
func (p *Pipeline) listInputs(ctx context.Context, upstream core.Stage, partitions []core.Partition) ([]docTask, error) {
	var tasks []docTask
	for _, part := range partitions {
		keys, err := p.store.List(ctx, blob.StagePrefix(upstream, part))
		if err != nil {
			return nil, fmt.Errorf("list %s outputs: %w", upstream, err)
		}
		for _, key := range keys {
			id, err := blob.DocIDFromKey(key)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, docTask{partition: part, id: id, key: key})
		}
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no %s output for the selected partitions", ErrStageNotReady, upstream)
	}
	return tasks, nil
}

// forEachDoc fans tasks out to the worker pool and aggregates the stage
// report. Submission stops between documents once ctx is cancelled;
// documents interrupted mid-flight stay uncounted, and because their
// outputs are absent or unmarked the next run picks them up again.
func (p *Pipeline) forEachDoc(ctx context.Context, stage core.Stage, cfg RunConfig, tasks []docTask, fn docFunc) *core.StageReport {
	report := &core.StageReport{
		Stage:      stage,
		Partitions: cfg.Partitions,
		StartedAt:  time.Now().UTC(),
	}
	tracker := NewProgressTracker(p.progressWriter(), len(tasks), p.progressInterval)
	tracker.Start()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			status, err := fn(ctx, task)
			if err != nil && isCancellation(err) {
				return
			}
			if err != nil {
				p.logger.Warn("document failed", "stage", stage.String(), "doc", task.id, "err", err)
			}

			mu.Lock()
			switch {
			case err != nil:
				report.Failed = append(report.Failed, core.FailedDoc{Id: task.id, Reason: err.Error()})
			case status == docSkipped:
				report.Skipped++
			default:
				report.Succeeded++
			}
			mu.Unlock()
			tracker.Increment(1)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			report.Failed = append(report.Failed, core.FailedDoc{Id: task.id, Reason: submitErr.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()

	if ctx.Err() == nil {
		tracker.Finish()
	}
	sortFailed(report.Failed)
	report.Duration = time.Since(report.StartedAt)
	p.logStageDone(report)
	return report
}

func (p *Pipeline) progressWriter() io.Writer {
	if p.progress == nil {
		return io.Discard
	}
	return p.progress
}

func (p *Pipeline) logStageDone(report *core.StageReport) {
	p.logger.Info("stage finished",
		"stage", report.Stage.String(),
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
		"duration", report.Duration,
	)
}

// sortFailed keeps failure lists deterministic regardless of worker
// interleaving.
func sortFailed(failed []core.FailedDoc) {
	sort.Slice(failed, func(i, j int) bool { return failed[i].Id < failed[j].Id })
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
