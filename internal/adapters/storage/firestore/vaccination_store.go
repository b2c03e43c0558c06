package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/thebenzza/nonnon/internal/domain"
)

type VaccinationStore struct {
	client *firestore.Client
}

type vaccinationDoc struct {
	OwnerID      string    `firestore:"owner_id"`
	PetID        string    `firestore:"pet_id"`
	Vaccine      string    `firestore:"vaccine"`
	Administered time.Time `firestore:"administered"`
	NextDue      time.Time `firestore:"next_due"`
	CycleDays    int       `firestore:"cycle_days"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func (s *VaccinationStore) col() *firestore.CollectionRef {
	return s.client.Collection(colVaccinations)
}

// CreateWithReminders writes the record and its reminder triplet in one
// transaction, so a crash can never leave a record with a partial triplet.
func (s *VaccinationStore) CreateWithReminders(ctx context.Context, rec *domain.VaccinationRecord, reminders []*domain.Reminder) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(s.col().Doc(string(rec.ID)), toVaccinationDoc(rec)); err != nil {
			return err
		}
		remCol := s.client.Collection(colReminders)
		for _, rem := range reminders {
			if err := tx.Create(remCol.Doc(string(rem.ID)), toReminderDoc(rem)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("firestore CreateVaccination: %w", err)
	}
	return nil
}

func (s *VaccinationStore) ListByPet(ctx context.Context, owner domain.UserID, pet domain.PetID) ([]*domain.VaccinationRecord, error) {
	iter := s.col().
		Where("owner_id", "==", string(owner)).
		Where("pet_id", "==", string(pet)).
		OrderBy("next_due", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []*domain.VaccinationRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListVaccinationsByPet: %w", err)
		}
		rec, err := fromVaccinationSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListAll walks the whole collection; only the reconcile scan uses it.
func (s *VaccinationStore) ListAll(ctx context.Context) ([]*domain.VaccinationRecord, error) {
	iter := s.col().OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*domain.VaccinationRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListAllVaccinations: %w", err)
		}
		rec, err := fromVaccinationSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func toVaccinationDoc(rec *domain.VaccinationRecord) vaccinationDoc {
	return vaccinationDoc{
		OwnerID:      string(rec.OwnerID),
		PetID:        string(rec.PetID),
		Vaccine:      rec.Vaccine,
		Administered: rec.Administered,
		NextDue:      rec.NextDue,
		CycleDays:    rec.CycleDays,
		CreatedAt:    rec.CreatedAt,
	}
}

func fromVaccinationSnap(snap *firestore.DocumentSnapshot) (*domain.VaccinationRecord, error) {
	var doc vaccinationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode vaccinationDoc: %w", err)
	}
	return &domain.VaccinationRecord{
		ID:           domain.VaccinationID(snap.Ref.ID),
		OwnerID:      domain.UserID(doc.OwnerID),
		PetID:        domain.PetID(doc.PetID),
		Vaccine:      doc.Vaccine,
		Administered: doc.Administered,
		NextDue:      doc.NextDue,
		CycleDays:    doc.CycleDays,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
