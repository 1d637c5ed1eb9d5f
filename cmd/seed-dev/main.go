// seed-dev writes a small demo book (one customer, one supplier, their documents and
// the balanced ledger behind them) so the admin endpoints have something to work on.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev --business-id demo
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
)

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func main() {
	// Env-first, flags override env.
	businessId := flag.String("business-id", getenv("SEED_BUSINESS_ID", "dev-demo"), "Business id to seed under")
	migrate := flag.Bool("migrate", getenv("SKIP_MIGRATIONS", "") == "", "Run schema migrations before seeding")
	flag.Parse()

	if strings.TrimSpace(*businessId) == "" {
		fmt.Fprintln(os.Stderr, "missing business id: set SEED_BUSINESS_ID or pass --business-id")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	if *migrate {
		if err := models.MigrateTable(db); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
	}

	ctx := utils.SetBusinessIdInContext(context.Background(), *businessId)
	if err := models.SeedDemoLedger(ctx, db, *businessId); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded demo ledger for business %s\n", *businessId)
	fmt.Println("next: POST /admin/balances/rebuild, then GET /admin/ledger/integrity")
}
