package workflow

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestScheduler(f *fakeStore, opts RebuildOptions) *BalanceRebuildScheduler {
	return NewBalanceRebuildScheduler(f, NewBalanceCalculator(f), quietLogger(), opts)
}

func TestRunOnce_WritesComputedBalances(t *testing.T) {
	f := newFakeStore()
	cust := models.CustomerRef(7)
	supp := models.SupplierRef(9)
	f.addParty(biz, cust, decimal.Zero)
	f.addParty(biz, supp, dec("12"))
	seedCustomerHistory(f, cust)

	stats := newTestScheduler(f, RebuildOptions{}).RunOnce(context.Background())

	if stats.Skipped || stats.Aborted {
		t.Fatalf("unexpected skip/abort: %+v", stats)
	}
	if stats.Parties != 2 || stats.Updated != 2 || stats.Errors != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if got := f.balanceOf(cust); !got.Equal(dec("650")) {
		t.Fatalf("expected customer balance 650, got %s", got)
	}
	if got := f.balanceOf(supp); !got.IsZero() {
		t.Fatalf("expected supplier balance 0, got %s", got)
	}
	if stats.CorrelationId == "" || stats.Trigger != TriggerScheduled {
		t.Fatalf("expected correlation id and scheduled trigger, got %+v", stats)
	}
}

func TestRunOnce_SecondRunLeavesCacheUnchanged(t *testing.T) {
	f := newFakeStore()
	cust := models.CustomerRef(7)
	f.addParty(biz, cust, decimal.Zero)
	seedCustomerHistory(f, cust)
	s := newTestScheduler(f, RebuildOptions{})

	s.RunOnce(context.Background())
	writes := f.balanceWrites
	second := s.RunOnce(context.Background())

	if second.Updated != 0 || second.Unchanged != 1 {
		t.Fatalf("expected no updates on second run, got %+v", second)
	}
	if f.balanceWrites != writes {
		t.Fatalf("expected no cache writes on second run, got %d more", f.balanceWrites-writes)
	}
	if got := f.balanceOf(cust); !got.Equal(dec("650")) {
		t.Fatalf("expected balance to stay 650, got %s", got)
	}
}

func TestRunOnce_PartyFailureDoesNotAbortBatch(t *testing.T) {
	f := newFakeStore()
	broken := models.CustomerRef(1)
	failingWrite := models.CustomerRef(2)
	healthy := models.CustomerRef(3)
	f.addParty(biz, broken, decimal.Zero)
	f.addParty(biz, failingWrite, decimal.Zero)
	f.addParty(biz, healthy, decimal.Zero)
	f.docErr[broken] = errStoreDown
	f.balanceErr[failingWrite] = errStoreDown
	f.sales = append(f.sales,
		&models.Sale{ID: 1, BusinessId: biz, PartyRef: failingWrite, Total: ndec("10")},
		&models.Sale{ID: 2, BusinessId: biz, PartyRef: healthy, Total: ndec("40")},
	)

	stats := newTestScheduler(f, RebuildOptions{Concurrency: 3}).RunOnce(context.Background())

	if stats.Errors != 2 || stats.Updated != 1 {
		t.Fatalf("expected 2 errors and 1 update, got %+v", stats)
	}
	if got := f.balanceOf(healthy); !got.Equal(dec("40")) {
		t.Fatalf("expected healthy party updated to 40, got %s", got)
	}
}

func TestRunOnce_EnumerationFailureKeepsLastSuccessfulStats(t *testing.T) {
	f := newFakeStore()
	f.addParty(biz, models.CustomerRef(1), decimal.Zero)
	s := newTestScheduler(f, RebuildOptions{})

	good := s.RunOnce(context.Background())
	f.listPartiesErr = errStoreDown
	bad := s.RunOnce(context.Background())

	if !bad.Aborted || bad.AbortReason == "" {
		t.Fatalf("expected aborted run, got %+v", bad)
	}
	st := s.Status()
	if st.LastRunStats == nil || st.LastRunStats.CorrelationId != good.CorrelationId {
		t.Fatalf("expected last successful stats preserved, got %+v", st.LastRunStats)
	}
	if st.LastAbort == nil || st.LastAbort.CorrelationId != bad.CorrelationId {
		t.Fatalf("expected abort recorded, got %+v", st.LastAbort)
	}
	if st.IsRunning {
		t.Fatalf("expected scheduler idle after abort")
	}
}

func TestTriggerManual_FailsWhileRunInFlight(t *testing.T) {
	f := newFakeStore()
	f.addParty(biz, models.CustomerRef(1), decimal.Zero)
	f.gate = make(chan struct{})
	f.entered = make(chan struct{}, 4)
	s := newTestScheduler(f, RebuildOptions{})

	done := make(chan models.RunStats, 1)
	go func() {
		stats, err := s.TriggerManual(context.Background())
		if err != nil {
			t.Errorf("first trigger failed: %v", err)
		}
		done <- stats
	}()
	<-f.entered

	if !s.Status().IsRunning {
		t.Fatalf("expected IsRunning while a run is in flight")
	}
	for i := 0; i < 5; i++ {
		_, err := s.TriggerManual(context.Background())
		if !utils.IsAlreadyRunning(err) {
			t.Fatalf("attempt %d: expected AlreadyRunningError, got %v", i, err)
		}
	}
	if skipped := s.RunOnce(context.Background()); !skipped.Skipped {
		t.Fatalf("expected scheduled run to skip, got %+v", skipped)
	}

	close(f.gate)
	first := <-done
	if first.Trigger != TriggerManual || first.Parties != 1 {
		t.Fatalf("unexpected stats from the only run: %+v", first)
	}
	if s.Status().IsRunning {
		t.Fatalf("expected idle after run")
	}
}

type fakeRunLock struct {
	err      error
	acquired atomic.Int32
	released atomic.Int32
}

func (l *fakeRunLock) Acquire(ctx context.Context) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired.Add(1)
	return func() { l.released.Add(1) }, nil
}

func TestTriggerManual_HeldRunLockReportsAlreadyRunning(t *testing.T) {
	f := newFakeStore()
	lock := &fakeRunLock{err: ErrRunLockHeld}
	s := newTestScheduler(f, RebuildOptions{Lock: lock})

	_, err := s.TriggerManual(context.Background())
	if !utils.IsAlreadyRunning(err) {
		t.Fatalf("expected AlreadyRunningError, got %v", err)
	}
	if s.Status().IsRunning {
		t.Fatalf("expected local flag released")
	}
}

func TestTriggerManual_LockBackendErrorFallsBackToLocalFlag(t *testing.T) {
	f := newFakeStore()
	f.addParty(biz, models.CustomerRef(1), decimal.Zero)
	s := newTestScheduler(f, RebuildOptions{Lock: &fakeRunLock{err: errors.New("redis: connection refused")}})

	stats, err := s.TriggerManual(context.Background())
	if err != nil {
		t.Fatalf("expected run to proceed, got %v", err)
	}
	if stats.Parties != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestTriggerManual_ReleasesRunLock(t *testing.T) {
	f := newFakeStore()
	lock := &fakeRunLock{}
	s := newTestScheduler(f, RebuildOptions{Lock: lock})

	if _, err := s.TriggerManual(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lock.acquired.Load() != 1 || lock.released.Load() != 1 {
		t.Fatalf("expected one acquire and one release, got %d/%d", lock.acquired.Load(), lock.released.Load())
	}
}

func TestRebuildParty(t *testing.T) {
	f := newFakeStore()
	cust := models.CustomerRef(7)
	f.addParty(biz, cust, dec("1"))
	seedCustomerHistory(f, cust)
	s := newTestScheduler(f, RebuildOptions{})

	got, err := s.RebuildParty(context.Background(), cust)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("650")) || !f.balanceOf(cust).Equal(dec("650")) {
		t.Fatalf("expected 650 returned and stored, got %s / %s", got, f.balanceOf(cust))
	}

	if _, err := s.RebuildParty(context.Background(), models.SupplierRef(404)); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStartStop(t *testing.T) {
	f := newFakeStore()
	f.addParty(biz, models.CustomerRef(1), decimal.Zero)
	s := newTestScheduler(f, RebuildOptions{Interval: 5 * time.Millisecond})

	s.Start(context.Background())
	s.Start(context.Background())
	if !s.Status().IsInitialized {
		t.Fatalf("expected initialized after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Status().LastRunTime == nil {
		if time.Now().After(deadline) {
			t.Fatalf("no scheduled run within deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Stop()
	s.Stop()
	if s.Status().IsInitialized {
		t.Fatalf("expected not initialized after Stop")
	}
	if got := s.Status().Schedule; got != "every 5ms" {
		t.Fatalf("unexpected schedule %q", got)
	}
}

func TestStart_RunOnStartRunsBeforeFirstTick(t *testing.T) {
	f := newFakeStore()
	f.addParty(biz, models.CustomerRef(1), decimal.Zero)
	s := newTestScheduler(f, RebuildOptions{Interval: time.Hour, RunOnStart: true})

	s.Start(context.Background())
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for s.Status().LastRunTime == nil {
		if time.Now().After(deadline) {
			t.Fatalf("expected a run right after Start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := s.Status().LastRunStats; got == nil || got.Trigger != TriggerScheduled || got.Parties != 1 {
		t.Fatalf("unexpected start-up run: %+v", got)
	}
}
