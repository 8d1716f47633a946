// Package dispatcher implements the request dispatcher: fan a
// multi-partition batch of row updates out across bounded concurrency,
// collect per-partition results (first failure per partition wins), and
// aggregate whatever yielded columns individual rows produced.
package dispatcher

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cuemby/graphd/pkg/executor"
	"github.com/cuemby/graphd/pkg/log"
	"github.com/cuemby/graphd/pkg/metrics"
	"github.com/cuemby/graphd/pkg/types"
	"github.com/cuemby/graphd/pkg/workerpool"
)

// Dispatcher fans a batch of row requests out across a bounded pool of
// per-row executors.
type Dispatcher struct {
	exec *executor.Executor
	pool *workerpool.Pool
}

// New builds a Dispatcher over exec, running at most concurrency rows at
// once.
func New(exec *executor.Executor, concurrency int) *Dispatcher {
	return &Dispatcher{exec: exec, pool: workerpool.New(concurrency)}
}

// BatchRequest is a set of row updates scoped to one space but possibly
// many partitions. Rows may repeat a partition; the dispatcher accepts
// more than one row per partition per call.
type BatchRequest struct {
	Space     types.SpaceID
	Rows      []executor.Request
	RequestID string
}

// RowOutcome is one row's result, keyed back to its position in
// BatchRequest.Rows.
type RowOutcome struct {
	Index  int
	Part   types.PartitionID
	Code   executor.Code
	Yields map[string]types.Value
	Err    *executor.StorageError
}

// PartitionResult is the per-partition status: partitions reporting any
// failure are recorded once, and only the first failure per partition is
// surfaced.
type PartitionResult struct {
	Part   types.PartitionID
	Code   executor.Code
	Leader string
}

// BatchResult is the dispatcher's finalized response: every row's
// outcome plus the de-duplicated per-partition failure vector.
type BatchResult struct {
	Rows       []RowOutcome
	Partitions []PartitionResult
}

// Dispatch runs every row in req, respecting ctx's deadline, and
// aggregates the result.
func (d *Dispatcher) Dispatch(ctx context.Context, req BatchRequest) BatchResult {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DispatchDuration)

	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	dispatchLog := log.WithComponent("dispatcher")
	dispatchLog.Debug().Str("request_id", req.RequestID).Int("rows", len(req.Rows)).Msg("dispatching batch")

	outcomes := make([]RowOutcome, len(req.Rows))
	fns := make([]func(), len(req.Rows))
	for i, row := range req.Rows {
		i, row := i, row
		fns[i] = func() {
			row.Space = req.Space
			res, err := d.exec.Execute(ctx, row)
			outcomes[i] = toOutcome(i, row.Part, res, err)
		}
	}
	d.pool.Run(fns)

	result := BatchResult{Rows: outcomes}
	seen := make(map[types.PartitionID]bool)
	for _, o := range outcomes {
		recordMetric(o.Code)
		if o.Err == nil {
			continue
		}
		if seen[o.Part] {
			continue
		}
		seen[o.Part] = true
		result.Partitions = append(result.Partitions, PartitionResult{
			Part:   o.Part,
			Code:   o.Err.Code,
			Leader: o.Err.Leader,
		})
	}
	return result
}

func toOutcome(index int, part types.PartitionID, res executor.Result, err error) RowOutcome {
	if err != nil {
		var se *executor.StorageError
		if errors.As(err, &se) {
			return RowOutcome{Index: index, Part: part, Code: se.Code, Err: se}
		}
		return RowOutcome{Index: index, Part: part, Code: executor.CodeKVEngineError, Err: &executor.StorageError{Code: executor.CodeKVEngineError, Reason: err.Error()}}
	}
	return RowOutcome{Index: index, Part: part, Code: res.Code, Yields: res.Yields}
}

func recordMetric(code executor.Code) {
	metrics.ExecutorOutcomesTotal.WithLabelValues(code.String()).Inc()
}
