package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// BalanceStore is what the rebuild needs from the transaction store and the balance cache.
type BalanceStore interface {
	DocumentSource
	ListParties(ctx context.Context, role models.PartyRole) ([]models.Party, error)
	FindParty(ctx context.Context, ref models.PartyRef) (models.Party, error)
	UpdatePartyBalance(ctx context.Context, businessId string, ref models.PartyRef, balance decimal.Decimal) error
}

type RebuildOptions struct {
	// Interval between scheduled runs. Defaults to config.DefaultRebuildInterval.
	Interval time.Duration
	// Concurrency bounds per-party work inside one run. 1 means sequential.
	Concurrency int
	// RunOnStart fires one scheduled run as soon as Start is called.
	RunOnStart bool
	// Lock optionally serializes runs across processes.
	Lock RunLock
}

// BalanceRebuildScheduler periodically recomputes every party balance and writes it
// into the balance cache. At most one run is active per scheduler (and per RunLock).
type BalanceRebuildScheduler struct {
	store       BalanceStore
	calc        *BalanceCalculator
	logger      *logrus.Logger
	interval    time.Duration
	concurrency int
	runOnStart  bool
	lock        RunLock

	running      atomic.Bool
	runStartedAt atomic.Int64

	mu           sync.Mutex
	started      bool
	stop         chan struct{}
	loopDone     sync.WaitGroup
	lastRunTime  *time.Time
	lastRunStats *models.RunStats
	lastAbort    *models.RunStats
}

func NewBalanceRebuildScheduler(store BalanceStore, calc *BalanceCalculator, logger *logrus.Logger, opts RebuildOptions) *BalanceRebuildScheduler {
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultRebuildInterval
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = config.GetLogger()
	}
	return &BalanceRebuildScheduler{
		store:       store,
		calc:        calc,
		logger:      logger,
		interval:    opts.Interval,
		concurrency: opts.Concurrency,
		runOnStart:  opts.RunOnStart,
		lock:        opts.Lock,
	}
}

// Start begins the periodic timer. Calling it on a started scheduler is a no-op.
func (s *BalanceRebuildScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stop = make(chan struct{})

	ticker := time.NewTicker(s.interval)
	s.loopDone.Add(1)
	go s.loop(ctx, ticker, s.stop)

	s.logger.WithFields(logrus.Fields{
		"field":    "BalanceRebuild",
		"interval": s.interval.String(),
	}).Info("balance rebuild scheduler started")
}

// Stop cancels future ticks. A run already in flight finishes on its own.
func (s *BalanceRebuildScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	s.mu.Unlock()

	s.loopDone.Wait()
	s.logger.WithFields(logrus.Fields{"field": "BalanceRebuild"}).Info("balance rebuild scheduler stopped")
}

func (s *BalanceRebuildScheduler) loop(ctx context.Context, ticker *time.Ticker, stop <-chan struct{}) {
	defer s.loopDone.Done()
	defer ticker.Stop()

	if s.runOnStart {
		go s.RunOnce(ctx)
	}
	for {
		select {
		case <-ticker.C:
			// Runs detach from the ticker so a slow run never delays Stop.
			go s.RunOnce(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce is the scheduled path: when a run is already in flight it logs and returns
// stats flagged Skipped instead of an error.
func (s *BalanceRebuildScheduler) RunOnce(ctx context.Context) models.RunStats {
	stats, err := s.guardedRun(ctx, TriggerScheduled)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"field":   "BalanceRebuild",
			"trigger": TriggerScheduled,
		}).Info("skipping scheduled balance rebuild: " + err.Error())
		return models.RunStats{Trigger: TriggerScheduled, Skipped: true}
	}
	return stats
}

// TriggerManual runs a rebuild out-of-band. It fails with *utils.AlreadyRunningError
// when a run is in flight and never starts a second one.
func (s *BalanceRebuildScheduler) TriggerManual(ctx context.Context) (models.RunStats, error) {
	return s.guardedRun(ctx, TriggerManual)
}

// RebuildParty recomputes and stores one party's balance. It is not guarded by the run
// flag: cache writes are last-writer-wins and converge on the same value.
func (s *BalanceRebuildScheduler) RebuildParty(ctx context.Context, ref models.PartyRef) (decimal.Decimal, error) {
	party, err := s.store.FindParty(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := s.calc.ComputeBalance(ctx, party.BusinessId, ref)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.Equal(party.CurrentBalance) {
		return balance, nil
	}
	if err := s.store.UpdatePartyBalance(ctx, party.BusinessId, ref, balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *BalanceRebuildScheduler) Status() models.RebuildStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.RebuildStatus{
		IsInitialized: s.started,
		IsRunning:     s.running.Load(),
		Schedule:      fmt.Sprintf("every %s", s.interval),
	}
	if s.lastRunTime != nil {
		t := *s.lastRunTime
		st.LastRunTime = &t
	}
	if s.lastRunStats != nil {
		rs := *s.lastRunStats
		st.LastRunStats = &rs
	}
	if s.lastAbort != nil {
		ab := *s.lastAbort
		st.LastAbort = &ab
	}
	return st
}

func (s *BalanceRebuildScheduler) guardedRun(ctx context.Context, trigger string) (models.RunStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return models.RunStats{}, &utils.AlreadyRunningError{StartedAt: time.Unix(0, s.runStartedAt.Load())}
	}
	defer s.running.Store(false)
	s.runStartedAt.Store(time.Now().UnixNano())

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx)
		switch {
		case errors.Is(err, ErrRunLockHeld):
			return models.RunStats{}, &utils.AlreadyRunningError{}
		case err != nil:
			// The distributed lock is an optimization; the local flag already holds.
			s.logger.WithFields(logrus.Fields{
				"field":   "BalanceRebuild",
				"trigger": trigger,
			}).Warn("could not obtain rebuild lock; proceeding with local lock only: " + err.Error())
		default:
			defer release()
		}
	}
	return s.execute(ctx, trigger), nil
}

type runCounters struct {
	updated   atomic.Int64
	unchanged atomic.Int64
	errors    atomic.Int64
}

func (s *BalanceRebuildScheduler) execute(ctx context.Context, trigger string) models.RunStats {
	cid := uuid.NewString()
	ctx = utils.SetCorrelationIdInContext(ctx, cid)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)
	ctx, span := tracer.Start(ctx, "balance.rebuild", trace.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("correlation_id", cid),
	))
	defer span.End()

	stats := models.RunStats{
		CorrelationId: cid,
		Trigger:       trigger,
		StartedAt:     time.Now().UTC(),
	}

	var parties []models.Party
	for _, role := range []models.PartyRole{models.PartyRoleCustomer, models.PartyRoleSupplier} {
		ps, err := s.store.ListParties(ctx, role)
		if err != nil {
			fatal := &utils.FatalEnumerationError{What: string(role) + "s", Err: err}
			config.LogError(s.logger, "balanceRebuild.go", "execute", "Enumerating parties", cid, fatal)
			span.RecordError(fatal)
			span.SetStatus(codes.Error, "enumeration failed")
			stats.Aborted = true
			stats.AbortReason = fatal.Error()
			s.finish(&stats)
			s.recordAbort(stats)
			return stats
		}
		parties = append(parties, ps...)
	}
	stats.Parties = len(parties)

	var counters runCounters
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, p := range parties {
		p := p
		g.Go(func() error {
			s.rebuildOne(ctx, p, &counters)
			return nil
		})
	}
	_ = g.Wait()

	stats.Updated = int(counters.updated.Load())
	stats.Unchanged = int(counters.unchanged.Load())
	stats.Errors = int(counters.errors.Load())
	s.finish(&stats)
	s.recordSuccess(stats)

	span.SetAttributes(
		attribute.Int("parties", stats.Parties),
		attribute.Int("updated", stats.Updated),
		attribute.Int("errors", stats.Errors),
	)
	s.logger.WithFields(logrus.Fields{
		"field":          "BalanceRebuild",
		"trigger":        trigger,
		"correlation_id": cid,
		"parties":        stats.Parties,
		"updated":        stats.Updated,
		"unchanged":      stats.Unchanged,
		"errors":         stats.Errors,
		"duration":       stats.Duration.String(),
	}).Info("balance rebuild completed")
	return stats
}

// rebuildOne contains every failure to the party it happened on.
func (s *BalanceRebuildScheduler) rebuildOne(ctx context.Context, p models.Party, counters *runCounters) {
	balance, err := s.calc.ComputeBalance(ctx, p.BusinessId, p.Ref)
	if err != nil {
		counters.errors.Add(1)
		config.LogError(s.logger, "balanceRebuild.go", "rebuildOne", "Computing balance", p.Ref.String(), err)
		return
	}
	if balance.Equal(p.CurrentBalance) {
		counters.unchanged.Add(1)
		return
	}
	if err := s.store.UpdatePartyBalance(ctx, p.BusinessId, p.Ref, balance); err != nil {
		counters.errors.Add(1)
		config.LogError(s.logger, "balanceRebuild.go", "rebuildOne", "Updating balance cache", p.Ref.String(), err)
		return
	}
	counters.updated.Add(1)
}

func (s *BalanceRebuildScheduler) finish(stats *models.RunStats) {
	stats.FinishedAt = time.Now().UTC()
	stats.Duration = stats.FinishedAt.Sub(stats.StartedAt)
}

func (s *BalanceRebuildScheduler) recordSuccess(stats models.RunStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := stats.FinishedAt
	s.lastRunTime = &t
	s.lastRunStats = &stats
}

// recordAbort leaves the last successful run untouched.
func (s *BalanceRebuildScheduler) recordAbort(stats models.RunStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAbort = &stats
}
