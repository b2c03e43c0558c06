package reminders_test

import (
	"testing"
	"time"

	"github.com/thebenzza/nonnon/internal/app/reminders"
	"github.com/thebenzza/nonnon/internal/domain"
)

func testRecord() *domain.VaccinationRecord {
	administered := time.Date(2025, 11, 3, 0, 0, 0, 0, domain.BangkokZone)
	return &domain.VaccinationRecord{
		ID:           "vac-1",
		OwnerID:      "u1",
		PetID:        "pet-1",
		Vaccine:      "Rabies",
		Administered: administered,
		NextDue:      administered.AddDate(0, 0, 365),
		CycleDays:    365,
	}
}

func TestTripletOffsetsAndClock(t *testing.T) {
	now := time.Date(2025, 11, 3, 14, 0, 0, 0, domain.BangkokZone)
	got := reminders.Triplet(testRecord(), now)

	if len(got) != 3 {
		t.Fatalf("expected 3 reminders, got %d", len(got))
	}

	want := []struct {
		typ domain.ReminderType
		at  time.Time
	}{
		{domain.ReminderD7, time.Date(2026, 10, 27, 9, 0, 0, 0, domain.BangkokZone)},
		{domain.ReminderD1, time.Date(2026, 11, 2, 9, 0, 0, 0, domain.BangkokZone)},
		{domain.ReminderD0, time.Date(2026, 11, 3, 9, 0, 0, 0, domain.BangkokZone)},
	}
	for i, w := range want {
		r := got[i]
		if r.Type != w.typ {
			t.Fatalf("reminder[%d].Type = %s, want %s", i, r.Type, w.typ)
		}
		if !r.ScheduledAt.Equal(w.at) {
			t.Fatalf("reminder[%d].ScheduledAt = %v, want %v", i, r.ScheduledAt, w.at)
		}
		if r.Sent {
			t.Fatalf("reminder[%d] born sent", i)
		}
		if r.VaccinationID != "vac-1" || r.OwnerID != "u1" || r.PetID != "pet-1" {
			t.Fatalf("reminder[%d] lost its record references: %+v", i, r)
		}
	}

	if got[0].ID == got[1].ID || got[1].ID == got[2].ID {
		t.Fatalf("reminder IDs collide")
	}
}

func TestMissingGeneratesOnlyNamedLegs(t *testing.T) {
	now := time.Now()
	got := reminders.Missing(testRecord(), []domain.ReminderType{domain.ReminderD1}, now)

	if len(got) != 1 || got[0].Type != domain.ReminderD1 {
		t.Fatalf("Missing = %+v, want exactly the D-1 leg", got)
	}

	// Order follows the triplet even when asked out of order.
	got = reminders.Missing(testRecord(), []domain.ReminderType{domain.ReminderD0, domain.ReminderD7}, now)
	if len(got) != 2 || got[0].Type != domain.ReminderD7 || got[1].Type != domain.ReminderD0 {
		t.Fatalf("Missing order = %v, %v, want D-7 then D0", got[0].Type, got[1].Type)
	}
}
