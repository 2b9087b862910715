package engine

import (
	"context"
	"sync"

	"github.com/openmailtools/zmigrate/internal/account"
)

// Partition splits accounts into contiguous batches, one per worker, decided
// once up front. Every account lands in exactly one batch; the last worker
// takes the remainder. Fewer accounts than workers yields fewer batches.
func Partition(accounts []*account.Record, workers int) [][]*account.Record {
	if workers < 1 {
		workers = 1
	}
	if workers > len(accounts) {
		workers = len(accounts)
	}
	if workers == 0 {
		return nil
	}

	per := len(accounts) / workers
	batches := make([][]*account.Record, 0, workers)
	for i := 0; i < workers; i++ {
		start := i * per
		end := start + per
		if i == workers-1 {
			end = len(accounts)
		}
		batches = append(batches, accounts[start:end])
	}
	return batches
}

// Pool runs the engine over a static partition of the account list. Workers
// share nothing but the session ledger, so a simple wait-for-all join is the
// only coordination needed. A run is not cancellable mid-flight: each worker
// finishes its batch before the pool is considered joined.
type Pool struct {
	Engine  *Engine
	Workers int
}

// Run partitions the accounts and processes every batch concurrently,
// returning once all workers have finished.
func (p *Pool) Run(ctx context.Context, accounts []*account.Record, opts Options) {
	batches := Partition(accounts, p.Workers)
	log := p.Engine.logger()

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(worker int, batch []*account.Record) {
			defer wg.Done()
			wlog := log.With("worker", worker)
			wlog.Info("worker starting", "accounts", len(batch))

			e := *p.Engine
			e.Log = wlog
			e.Run(ctx, batch, opts)

			wlog.Info("worker finished")
		}(i, batch)
	}
	wg.Wait()
}
