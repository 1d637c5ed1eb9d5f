package workflow

import (
	"time"

	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/sirupsen/logrus"
)

// LedgerServices bundles the four ledger components over one store so the HTTP server and
// the CLI build them identically.
type LedgerServices struct {
	Calculator *BalanceCalculator
	Scheduler  *BalanceRebuildScheduler
	Auditor    *ReconciliationAuditor
	Validator  *LedgerIntegrityValidator
}

func NewLedgerServices(store *models.Store, settings *config.Settings, logger *logrus.Logger) *LedgerServices {
	calc := NewBalanceCalculator(store)
	opts := RebuildOptions{
		Interval:    settings.RebuildInterval,
		Concurrency: settings.RebuildConcurrency,
		RunOnStart:  settings.RebuildRunOnStart,
	}
	if config.RedisConfigured() {
		opts.Lock = NewRedisRunLock(config.GetRedisLock, 30*time.Second, logger)
	}
	return &LedgerServices{
		Calculator: calc,
		Scheduler:  NewBalanceRebuildScheduler(store, calc, logger, opts),
		Auditor:    NewReconciliationAuditor(store, settings.Tolerance, logger),
		Validator:  NewLedgerIntegrityValidator(store, settings.Tolerance, logger),
	}
}
