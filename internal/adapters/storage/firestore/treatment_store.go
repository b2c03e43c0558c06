package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/thebenzza/nonnon/internal/domain"
)

type TreatmentStore struct {
	client *firestore.Client
}

type treatmentDoc struct {
	OwnerID   string    `firestore:"owner_id"`
	PetID     string    `firestore:"pet_id"`
	Name      string    `firestore:"name"`
	Treated   time.Time `firestore:"treated"`
	Note      string    `firestore:"note"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (s *TreatmentStore) col() *firestore.CollectionRef {
	return s.client.Collection(colTreatments)
}

func (s *TreatmentStore) Create(ctx context.Context, rec *domain.TreatmentRecord) error {
	doc := treatmentDoc{
		OwnerID:   string(rec.OwnerID),
		PetID:     string(rec.PetID),
		Name:      rec.Name,
		Treated:   rec.Treated,
		Note:      rec.Note,
		CreatedAt: rec.CreatedAt,
	}
	if _, err := s.col().Doc(string(rec.ID)).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore CreateTreatment: %w", err)
	}
	return nil
}

func (s *TreatmentStore) ListByPet(ctx context.Context, owner domain.UserID, pet domain.PetID) ([]*domain.TreatmentRecord, error) {
	iter := s.col().
		Where("owner_id", "==", string(owner)).
		Where("pet_id", "==", string(pet)).
		OrderBy("treated", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []*domain.TreatmentRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListTreatmentsByPet: %w", err)
		}

		var doc treatmentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode treatmentDoc: %w", err)
		}
		out = append(out, &domain.TreatmentRecord{
			ID:        domain.TreatmentID(snap.Ref.ID),
			OwnerID:   domain.UserID(doc.OwnerID),
			PetID:     domain.PetID(doc.PetID),
			Name:      doc.Name,
			Treated:   doc.Treated,
			Note:      doc.Note,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}
