package reminders

import (
	"time"

	"github.com/google/uuid"
	"github.com/thebenzza/nonnon/internal/domain"
)

// reminderHour is the civil time-of-day every reminder fires at (09:00
// UTC+7), regardless of when the vaccination was recorded.
const reminderHour = 9

// dayOffsets maps each triplet leg to its distance from next-due.
var dayOffsets = map[domain.ReminderType]int{
	domain.ReminderD7: -7,
	domain.ReminderD1: -1,
	domain.ReminderD0: 0,
}

// Triplet derives the three reminders for a vaccination record. Pure: same
// record in, same schedule out (IDs aside). It is NOT idempotent against
// the store: calling it twice for one record and persisting both batches
// creates duplicates, so creation paths call it exactly once and the
// reconciler asks for specific missing legs instead.
func Triplet(rec *domain.VaccinationRecord, now time.Time) []*domain.Reminder {
	out := make([]*domain.Reminder, 0, len(domain.ReminderTriplet))
	for _, typ := range domain.ReminderTriplet {
		out = append(out, newReminder(rec, typ, now))
	}
	return out
}

// Missing derives only the named legs, preserving triplet order.
func Missing(rec *domain.VaccinationRecord, want []domain.ReminderType, now time.Time) []*domain.Reminder {
	wanted := make(map[domain.ReminderType]bool, len(want))
	for _, t := range want {
		wanted[t] = true
	}
	var out []*domain.Reminder
	for _, typ := range domain.ReminderTriplet {
		if wanted[typ] {
			out = append(out, newReminder(rec, typ, now))
		}
	}
	return out
}

func newReminder(rec *domain.VaccinationRecord, typ domain.ReminderType, now time.Time) *domain.Reminder {
	return &domain.Reminder{
		ID:            domain.ReminderID(uuid.NewString()),
		VaccinationID: rec.ID,
		OwnerID:       rec.OwnerID,
		PetID:         rec.PetID,
		Type:          typ,
		ScheduledAt:   scheduleAt(rec.NextDue, dayOffsets[typ]),
		Sent:          false,
		CreatedAt:     now,
	}
}

// scheduleAt pins the instant to 09:00 of the offset civil day. The zone
// is fixed UTC+7, so AddDate never crosses a DST seam.
func scheduleAt(nextDue time.Time, offsetDays int) time.Time {
	day := domain.CivilDate(nextDue).AddDate(0, 0, offsetDays)
	return time.Date(day.Year(), day.Month(), day.Day(), reminderHour, 0, 0, 0, domain.BangkokZone)
}
