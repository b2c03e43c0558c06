package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/thebenzza/nonnon/internal/domain"
)

type TreatmentStore struct {
	mu      sync.RWMutex
	records map[domain.TreatmentID]*domain.TreatmentRecord
}

func NewTreatmentStore() *TreatmentStore {
	return &TreatmentStore{
		records: make(map[domain.TreatmentID]*domain.TreatmentRecord),
	}
}

func (s *TreatmentStore) Create(ctx context.Context, rec *domain.TreatmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *TreatmentStore) ListByPet(ctx context.Context, owner domain.UserID, pet domain.PetID) ([]*domain.TreatmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TreatmentRecord
	for _, r := range s.records {
		if r.OwnerID == owner && r.PetID == pet {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Treated.Before(out[j].Treated)
	})
	return out, nil
}
