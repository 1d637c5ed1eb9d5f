package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/workflow"
	"github.com/sirupsen/logrus"
)

type Globals struct {
	Services *workflow.LedgerServices `kong:"-"`
	Out      io.Writer                `kong:"-"`
}

type RebuildCmd struct{}

func (cmd *RebuildCmd) Run(g *Globals) error {
	stats, err := g.Services.Scheduler.TriggerManual(context.Background())
	if err != nil {
		return err
	}
	return printJSON(g.Out, stats)
}

type RebuildPartyCmd struct {
	Role string `arg:"" enum:"customer,supplier" help:"Party role (customer or supplier)."`
	ID   int    `arg:"" help:"Party id."`
}

func (cmd *RebuildPartyCmd) Run(g *Globals) error {
	ref := models.PartyRef{Role: models.PartyRole(cmd.Role), RefId: cmd.ID}
	balance, err := g.Services.Scheduler.RebuildParty(context.Background(), ref)
	if err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}
	return printJSON(g.Out, map[string]any{"party": ref, "balance": balance})
}

type ReconcileCmd struct {
	Fix        bool   `help:"Apply fixable findings as targeted field updates."`
	BusinessID string `name:"business-id" help:"Limit the pass to one business."`
}

func (cmd *ReconcileCmd) Run(g *Globals) error {
	report := g.Services.Auditor.Reconcile(context.Background(), workflow.ReconcileOptions{
		Fix:        cmd.Fix,
		BusinessId: cmd.BusinessID,
	})
	return printJSON(g.Out, report)
}

type IntegrityCmd struct {
	BusinessID string `name:"business-id" help:"Limit validation to one business."`
}

func (cmd *IntegrityCmd) Run(g *Globals) error {
	report := g.Services.Validator.Validate(context.Background(), workflow.ValidateOptions{BusinessId: cmd.BusinessID})
	if err := printJSON(g.Out, report); err != nil {
		return err
	}
	if !report.Valid {
		return fmt.Errorf("ledger integrity: %d issue(s)", len(report.Issues))
	}
	return nil
}

type CLI struct {
	Rebuild      RebuildCmd      `cmd:"" help:"Recompute every party balance once."`
	RebuildParty RebuildPartyCmd `cmd:"" name:"rebuild-party" help:"Recompute one party balance."`
	Reconcile    ReconcileCmd    `cmd:"" help:"Audit document identities and optionally fix drift."`
	Integrity    IntegrityCmd    `cmd:"" help:"Validate double-entry ledger invariants."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ledgerctl"),
		kong.Description("Operator tooling for POS ledger balances, reconciliation and integrity."),
		kong.UsageOnError(),
	)

	settings, err := config.LoadSettings()
	ctx.FatalIfErrorf(err)
	logger := config.GetLogger()
	ctx.FatalIfErrorf(config.ConfigureLogger(logger, settings))
	// Reports go to stdout; keep logs off it.
	logger.SetOutput(os.Stderr)

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		ctx.Fatalf("database not initialized")
	}
	// One-shot runs must not hang on an absent redis; without it the lock stays local.
	if err := config.ConnectRedisWithRetry(context.Background(), 3); err != nil {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("continuing without redis: " + err.Error())
	}

	globals := &Globals{
		Services: workflow.NewLedgerServices(models.NewStore(db), settings, logger),
		Out:      os.Stdout,
	}
	logger.WithFields(logrus.Fields{"field": "ledgerctl", "command": ctx.Command()}).Debug("running")
	ctx.FatalIfErrorf(ctx.Run(globals))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
