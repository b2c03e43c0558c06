package reminders_test

import (
	"context"
	"testing"
	"time"

	memstore "github.com/thebenzza/nonnon/internal/adapters/storage/memory"
	"github.com/thebenzza/nonnon/internal/app/reminders"
	"github.com/thebenzza/nonnon/internal/domain"
)

func seedRecord(t *testing.T, vaccs *memstore.VaccinationStore, id domain.VaccinationID, legs []domain.ReminderType) *domain.VaccinationRecord {
	t.Helper()

	administered := time.Date(2025, 11, 3, 0, 0, 0, 0, domain.BangkokZone)
	rec := &domain.VaccinationRecord{
		ID:           id,
		OwnerID:      "u1",
		PetID:        "pet-1",
		Vaccine:      "Rabies",
		Administered: administered,
		NextDue:      administered.AddDate(0, 0, 365),
		CycleDays:    365,
		CreatedAt:    time.Now(),
	}
	// Seeding through CreateWithReminders with a short batch mimics a
	// record left behind by a crash between the two legacy writes.
	if err := vaccs.CreateWithReminders(context.Background(), rec, reminders.Missing(rec, legs, time.Now())); err != nil {
		t.Fatalf("seeding %s: %v", id, err)
	}
	return rec
}

func TestReconcilerBackfillsMissingLegs(t *testing.T) {
	ctx := context.Background()
	rems := memstore.NewReminderStore()
	vaccs := memstore.NewVaccinationStore(rems)

	full := seedRecord(t, vaccs, "vac-full", domain.ReminderTriplet)
	partial := seedRecord(t, vaccs, "vac-partial", []domain.ReminderType{domain.ReminderD7, domain.ReminderD0})
	bare := seedRecord(t, vaccs, "vac-bare", nil)

	fullBefore, err := rems.ListByVaccination(ctx, full.ID)
	if err != nil {
		t.Fatalf("ListByVaccination error: %v", err)
	}

	rec := reminders.NewReconciler(vaccs, rems)
	report, err := rec.Run(ctx)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if report.Scanned != 3 {
		t.Fatalf("Scanned = %d, want 3", report.Scanned)
	}
	if report.Incomplete != 2 {
		t.Fatalf("Incomplete = %d, want 2", report.Incomplete)
	}
	if report.Backfilled != 4 {
		t.Fatalf("Backfilled = %d, want 4 (one D-1 leg plus a whole triplet)", report.Backfilled)
	}

	// The complete record keeps its original reminders untouched.
	fullAfter, err := rems.ListByVaccination(ctx, full.ID)
	if err != nil {
		t.Fatalf("ListByVaccination error: %v", err)
	}
	if len(fullAfter) != 3 {
		t.Fatalf("full record has %d reminders after reconcile, want 3", len(fullAfter))
	}
	ids := map[domain.ReminderID]bool{}
	for _, r := range fullBefore {
		ids[r.ID] = true
	}
	for _, r := range fullAfter {
		if !ids[r.ID] {
			t.Fatalf("reconcile replaced reminder %s on a complete record", r.ID)
		}
	}

	for _, rec := range []*domain.VaccinationRecord{partial, bare} {
		legs, err := rems.ListByVaccination(ctx, rec.ID)
		if err != nil {
			t.Fatalf("ListByVaccination error: %v", err)
		}
		if len(legs) != 3 {
			t.Fatalf("%s has %d reminders after reconcile, want 3", rec.ID, len(legs))
		}
		seen := map[domain.ReminderType]int{}
		for _, l := range legs {
			seen[l.Type]++
		}
		for _, typ := range domain.ReminderTriplet {
			if seen[typ] != 1 {
				t.Fatalf("%s has %d reminders of type %s, want exactly 1", rec.ID, seen[typ], typ)
			}
		}
	}
}

func TestReconcilerIsRepeatable(t *testing.T) {
	ctx := context.Background()
	rems := memstore.NewReminderStore()
	vaccs := memstore.NewVaccinationStore(rems)

	seedRecord(t, vaccs, "vac-1", []domain.ReminderType{domain.ReminderD0})

	rec := reminders.NewReconciler(vaccs, rems)
	if _, err := rec.Run(ctx); err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	report, err := rec.Run(ctx)
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if report.Incomplete != 0 || report.Backfilled != 0 {
		t.Fatalf("second run backfilled again: %+v", report)
	}

	legs, err := rems.ListByVaccination(ctx, "vac-1")
	if err != nil {
		t.Fatalf("ListByVaccination error: %v", err)
	}
	if len(legs) != 3 {
		t.Fatalf("got %d reminders after double reconcile, want 3", len(legs))
	}
}
