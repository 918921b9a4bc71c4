package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/kabbani-home/inventory-api/internal/config"
	"github.com/kabbani-home/inventory-api/internal/postgres"
	"github.com/kabbani-home/inventory-api/internal/reservation"
)

// reconcile sweeps every product and checks the ledger invariants: quantity
// conserved against retained reservations and total_value consistent with
// quantity*price. Run on demand or from cron; exits non-zero on violations.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	v := &reservation.Verifier{DB: db}
	violations, err := v.Run(ctx)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	if len(violations) == 0 {
		log.Println("ledger consistent: no violations")
		return
	}
	for _, viol := range violations {
		log.Printf("VIOLATION product=%s (%s): %s", viol.ProductID, viol.Name, viol.Reason)
	}
	os.Exit(1)
}
