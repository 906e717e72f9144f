package scheduler

import (
	"context"
	"time"

	"cajachica/internal/model"

	"go.uber.org/zap"
)

// ReviewStates are the states in which a request sits in someone's queue
var ReviewStates = []model.RequestState{
	model.StatePendingAdminApproval,
	model.StateObservedByAdmin,
	model.StateRebuttalSubmittedToAdmin,
	model.StatePendingManagerApproval,
	model.StateObservedByManager,
	model.StateRebuttalSubmittedToManager,
}

// BacklogSource is satisfied by repository.FundRequestRepository
type BacklogSource interface {
	CountStaleByState(ctx context.Context, states []model.RequestState, before time.Time) (map[model.RequestState]int64, error)
}

type BacklogReport struct {
	Cutoff time.Time
	Counts map[model.RequestState]int64
	Total  int64
}

// BacklogReporter logs requests that have not moved for longer than staleAfter
type BacklogReporter struct {
	source     BacklogSource
	staleAfter time.Duration
	now        func() time.Time
	log        *zap.Logger
}

func NewBacklogReporter(source BacklogSource, staleAfter time.Duration, log *zap.Logger) *BacklogReporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &BacklogReporter{source: source, staleAfter: staleAfter, now: time.Now, log: log}
}

func (r *BacklogReporter) Run(ctx context.Context) (*BacklogReport, error) {
	cutoff := r.now().Add(-r.staleAfter)
	counts, err := r.source.CountStaleByState(ctx, ReviewStates, cutoff)
	if err != nil {
		r.log.Error("backlog report failed", zap.Error(err))
		return nil, err
	}

	report := &BacklogReport{Cutoff: cutoff, Counts: counts}
	for _, state := range ReviewStates {
		n := counts[state]
		if n == 0 {
			continue
		}
		report.Total += n
		r.log.Warn("fund requests waiting",
			zap.String("state", string(state)),
			zap.Int64("count", n),
			zap.Duration("older_than", r.staleAfter),
		)
	}
	if report.Total == 0 {
		r.log.Info("no stale fund requests", zap.Time("cutoff", cutoff))
	}
	return report, nil
}
