package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thebenzza/nonnon/internal/domain"
)

type ReminderStore struct {
	mu        sync.RWMutex
	reminders map[domain.ReminderID]*domain.Reminder
}

func NewReminderStore() *ReminderStore {
	return &ReminderStore{
		reminders: make(map[domain.ReminderID]*domain.Reminder),
	}
}

func (s *ReminderStore) CreateBatch(ctx context.Context, reminders []*domain.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reminders {
		cp := *r
		s.reminders[r.ID] = &cp
	}
	return nil
}

func (s *ReminderStore) ListByVaccination(ctx context.Context, rec domain.VaccinationID) ([]*domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Reminder
	for _, r := range s.reminders {
		if r.VaccinationID == rec {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (s *ReminderStore) ListDue(ctx context.Context, until time.Time) ([]*domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Reminder
	for _, r := range s.reminders {
		if !r.Sent && !r.ScheduledAt.After(until) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (s *ReminderStore) MarkSent(ctx context.Context, id domain.ReminderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return domain.ErrReminderNotFound
	}
	r.Sent = true
	return nil
}
