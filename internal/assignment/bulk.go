package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	errors "github.com/frahmantamala/role-assignment/internal"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
)

type bulkJob struct {
	index int
	row   BulkRow
}

type bulkWorker struct {
	id         int
	workerPool chan chan bulkJob
	jobChannel chan bulkJob
	logger     *slog.Logger
}

func newBulkWorker(id int, workerPool chan chan bulkJob, logger *slog.Logger) *bulkWorker {
	return &bulkWorker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan bulkJob),
		logger:     logger,
	}
}

func (w *bulkWorker) start(ctx context.Context, wg *sync.WaitGroup, process func(bulkJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("bulk worker processing row", "worker_id", w.id, "row_id", job.row.RowID)
				process(job)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// BulkCreate saves each row independently on a bounded pool. Results keep
// input order; partial success is never rolled back. Rows not yet started
// when ctx ends are reported as failed.
func (s *Service) BulkCreate(ctx context.Context, actor *coreUser.User, rows []BulkRow) (*BulkResponse, error) {
	if len(rows) == 0 {
		return nil, errors.NewValidationError("at least one row is required", errors.ErrCodeInvalidRequest)
	}
	if len(rows) > s.maxRows {
		return nil, errors.NewValidationError(fmt.Sprintf("at most %d rows can be saved at once", s.maxRows), errors.ErrCodeInvalidRequest)
	}

	results := make([]BulkResult, len(rows))
	workers := s.maxWorkers
	if workers > len(rows) {
		workers = len(rows)
	}

	poolCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var (
		workersWG sync.WaitGroup
		pending   sync.WaitGroup
	)
	workerPool := make(chan chan bulkJob, workers)
	process := func(job bulkJob) {
		defer pending.Done()
		results[job.index] = s.createRow(ctx, actor, job.row)
	}
	for i := 0; i < workers; i++ {
		newBulkWorker(i, workerPool, s.logger).start(poolCtx, &workersWG, process)
	}

dispatch:
	for i, row := range rows {
		select {
		case jobChannel := <-workerPool:
			pending.Add(1)
			jobChannel <- bulkJob{index: i, row: row}
		case <-ctx.Done():
			for j := i; j < len(rows); j++ {
				results[j] = BulkResult{RowID: rows[j].RowID, Status: BulkStatusFailed, Error: "request cancelled"}
			}
			break dispatch
		}
	}

	pending.Wait()
	stopWorkers()
	workersWG.Wait()

	resp := &BulkResponse{Results: results}
	for _, r := range results {
		if r.Status == BulkStatusCreated {
			resp.Created++
		} else {
			resp.Failed++
		}
	}
	s.logger.Info("bulk assignment finished",
		"rows", len(rows), "created", resp.Created, "failed", resp.Failed, "workers", workers)
	return resp, nil
}

func (s *Service) createRow(ctx context.Context, actor *coreUser.User, row BulkRow) BulkResult {
	view, err := s.Create(ctx, actor, CreateRequest{
		EmployeeID:           row.EmployeeID,
		OrganizationDetailID: row.OrganizationDetailID,
		FieldValues:          row.FieldValues,
	})
	if err != nil {
		message := "failed to save row"
		if appErr, ok := errors.IsAppError(err); ok {
			message = appErr.GetDetailedMessage()
		}
		return BulkResult{RowID: row.RowID, Status: BulkStatusFailed, Error: message}
	}
	return BulkResult{RowID: row.RowID, Status: BulkStatusCreated, Assignment: view}
}
