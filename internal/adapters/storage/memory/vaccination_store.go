package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/thebenzza/nonnon/internal/domain"
)

// VaccinationStore keeps vaccination records and owns the in-memory side of
// the atomic record+reminders write, so it needs a reminder sink.
type VaccinationStore struct {
	mu        sync.RWMutex
	records   map[domain.VaccinationID]*domain.VaccinationRecord
	reminders *ReminderStore
}

func NewVaccinationStore(reminders *ReminderStore) *VaccinationStore {
	return &VaccinationStore{
		records:   make(map[domain.VaccinationID]*domain.VaccinationRecord),
		reminders: reminders,
	}
}

func (s *VaccinationStore) CreateWithReminders(ctx context.Context, rec *domain.VaccinationRecord, reminders []*domain.Reminder) error {
	s.mu.Lock()
	cp := *rec
	s.records[rec.ID] = &cp
	s.mu.Unlock()

	// Both maps live in the same process; a half-written pair can only
	// happen on a crash, which loses the whole process anyway.
	return s.reminders.CreateBatch(ctx, reminders)
}

func (s *VaccinationStore) ListByPet(ctx context.Context, owner domain.UserID, pet domain.PetID) ([]*domain.VaccinationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.VaccinationRecord
	for _, r := range s.records {
		if r.OwnerID == owner && r.PetID == pet {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextDue.Before(out[j].NextDue)
	})
	return out, nil
}

func (s *VaccinationStore) ListAll(ctx context.Context) ([]*domain.VaccinationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.VaccinationRecord, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
