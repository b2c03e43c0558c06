package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/thebenzza/nonnon/internal/domain"
)

type PetStore struct {
	mu   sync.RWMutex
	pets map[domain.PetID]*domain.Pet
}

func NewPetStore() *PetStore {
	return &PetStore{
		pets: make(map[domain.PetID]*domain.Pet),
	}
}

func (s *PetStore) Create(ctx context.Context, pet *domain.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *pet
	s.pets[pet.ID] = &cp
	return nil
}

func (s *PetStore) Update(ctx context.Context, pet *domain.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pets[pet.ID]; !ok {
		return domain.ErrPetNotFound
	}
	cp := *pet
	s.pets[pet.ID] = &cp
	return nil
}

// FindByName matches case-insensitively within one owner's pets, the same
// comparison the executor's find-or-create path relies on.
func (s *PetStore) FindByName(ctx context.Context, owner domain.UserID, name string) (*domain.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range s.pets {
		if p.OwnerID == owner && strings.ToLower(p.Name) == want {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPetNotFound
}

func (s *PetStore) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Pet
	for _, p := range s.pets {
		if p.OwnerID == owner {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
