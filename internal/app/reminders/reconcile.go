package reminders

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/thebenzza/nonnon/internal/domain"
	"github.com/thebenzza/nonnon/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Reconciler backfills vaccination records whose reminder triplet is
// incomplete. New records are written atomically with their triplet, so
// this scan only ever finds data from crashes of older deployments. Those
// rows would otherwise never get their reminders.
type Reconciler struct {
	vaccinations domain.VaccinationStore
	reminders    domain.ReminderStore
	now          func() time.Time

	// Concurrency bounds the per-record reminder lookups; the scan is
	// read-heavy and the backend tolerates parallel point reads well.
	Concurrency int
}

func NewReconciler(vaccinations domain.VaccinationStore, reminders domain.ReminderStore) *Reconciler {
	return &Reconciler{
		vaccinations: vaccinations,
		reminders:    reminders,
		now:          time.Now,
		Concurrency:  8,
	}
}

// Report summarizes one reconcile run.
type Report struct {
	Scanned    int
	Incomplete int
	Backfilled int
}

// Run scans every vaccination record, finds incomplete triplets and writes
// exactly the missing legs. Already-present reminders are never touched, so
// re-running the scan is safe.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	log := observability.LoggerFromContext(ctx)

	records, err := r.vaccinations.ListAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing vaccination records: %w", err)
	}

	var incomplete, backfilled atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)

	for _, rec := range records {
		g.Go(func() error {
			existing, err := r.reminders.ListByVaccination(gctx, rec.ID)
			if err != nil {
				return fmt.Errorf("listing reminders for %s: %w", rec.ID, err)
			}

			missing := missingTypes(existing)
			if len(missing) == 0 {
				return nil
			}
			incomplete.Add(1)

			batch := Missing(rec, missing, r.now())
			if err := r.reminders.CreateBatch(gctx, batch); err != nil {
				return fmt.Errorf("backfilling %s: %w", rec.ID, err)
			}
			backfilled.Add(int64(len(batch)))

			log.Info("backfilled reminder triplet",
				"vaccination_id", rec.ID,
				"missing", len(batch))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return Report{
		Scanned:    len(records),
		Incomplete: int(incomplete.Load()),
		Backfilled: int(backfilled.Load()),
	}, nil
}

func missingTypes(existing []*domain.Reminder) []domain.ReminderType {
	have := make(map[domain.ReminderType]bool, len(existing))
	for _, rem := range existing {
		have[rem.Type] = true
	}
	var missing []domain.ReminderType
	for _, typ := range domain.ReminderTriplet {
		if !have[typ] {
			missing = append(missing, typ)
		}
	}
	return missing
}
