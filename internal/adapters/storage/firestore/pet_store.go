package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/thebenzza/nonnon/internal/domain"
)

type PetStore struct {
	client *firestore.Client
}

// petDoc carries a lowercased copy of the name so name lookups can stay
// case-insensitive; Firestore has no fold-aware equality.
type petDoc struct {
	OwnerID   string     `firestore:"owner_id"`
	Name      string     `firestore:"name"`
	NameFold  string     `firestore:"name_fold"`
	Species   string     `firestore:"species"`
	Breed     string     `firestore:"breed"`
	Sex       string     `firestore:"sex"`
	BirthDate *time.Time `firestore:"birth_date"`
	Neutered  *bool      `firestore:"neutered"`
	Markings  string     `firestore:"markings"`
	PhotoRef  string     `firestore:"photo_ref"`
	CreatedAt time.Time  `firestore:"created_at"`
	UpdatedAt time.Time  `firestore:"updated_at"`
}

func (s *PetStore) col() *firestore.CollectionRef {
	return s.client.Collection(colPets)
}

func (s *PetStore) Create(ctx context.Context, pet *domain.Pet) error {
	if _, err := s.col().Doc(string(pet.ID)).Create(ctx, toPetDoc(pet)); err != nil {
		return fmt.Errorf("firestore CreatePet: %w", err)
	}
	return nil
}

func (s *PetStore) Update(ctx context.Context, pet *domain.Pet) error {
	if _, err := s.col().Doc(string(pet.ID)).Set(ctx, toPetDoc(pet)); err != nil {
		return fmt.Errorf("firestore UpdatePet: %w", err)
	}
	return nil
}

func (s *PetStore) FindByName(ctx context.Context, owner domain.UserID, name string) (*domain.Pet, error) {
	iter := s.col().
		Where("owner_id", "==", string(owner)).
		Where("name_fold", "==", strings.ToLower(strings.TrimSpace(name))).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrPetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore FindPetByName: %w", err)
	}
	return fromPetSnap(snap)
}

func (s *PetStore) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Pet, error) {
	iter := s.col().
		Where("owner_id", "==", string(owner)).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []*domain.Pet
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListPetsByOwner: %w", err)
		}
		pet, err := fromPetSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, pet)
	}
	return out, nil
}

func toPetDoc(p *domain.Pet) petDoc {
	return petDoc{
		OwnerID:   string(p.OwnerID),
		Name:      p.Name,
		NameFold:  strings.ToLower(strings.TrimSpace(p.Name)),
		Species:   string(p.Species),
		Breed:     p.Breed,
		Sex:       string(p.Sex),
		BirthDate: p.BirthDate,
		Neutered:  p.Neutered,
		Markings:  p.Markings,
		PhotoRef:  p.PhotoRef,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromPetSnap(snap *firestore.DocumentSnapshot) (*domain.Pet, error) {
	var doc petDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode petDoc: %w", err)
	}
	return &domain.Pet{
		ID:        domain.PetID(snap.Ref.ID),
		OwnerID:   domain.UserID(doc.OwnerID),
		Name:      doc.Name,
		Species:   domain.Species(doc.Species),
		Breed:     doc.Breed,
		Sex:       domain.Sex(doc.Sex),
		BirthDate: doc.BirthDate,
		Neutered:  doc.Neutered,
		Markings:  doc.Markings,
		PhotoRef:  doc.PhotoRef,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
