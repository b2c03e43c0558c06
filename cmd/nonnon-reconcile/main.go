// nonnon-reconcile scans every vaccination record and backfills reminder
// triplets that lost members to a crash between writes. Run it as a
// scheduled batch job; it exits non-zero when the scan could not finish.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	firestorestore "github.com/thebenzza/nonnon/internal/adapters/storage/firestore"
	"github.com/thebenzza/nonnon/internal/app/reminders"
	"github.com/thebenzza/nonnon/internal/config"
	"github.com/thebenzza/nonnon/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.StorageBackend != "firestore" {
		log.Fatal("reconcile only makes sense against firestore; set NONNON_STORAGE_BACKEND=firestore")
	}

	client, err := firestorestore.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		log.Fatalf("error initializing Firestore: %v", err)
	}
	defer client.Close()

	rec := reminders.NewReconciler(client.Vaccinations(), client.Reminders())

	report, err := rec.Run(ctx)
	if err != nil {
		observability.Logger().Error("reconcile failed", "error", err)
		os.Exit(1)
	}

	observability.Logger().Info("reconcile done",
		"scanned", report.Scanned,
		"incomplete", report.Incomplete,
		"backfilled", report.Backfilled)
}
