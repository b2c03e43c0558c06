package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/thebenzza/nonnon/internal/domain"
)

type ReminderStore struct {
	client *firestore.Client
}

type reminderDoc struct {
	VaccinationID string    `firestore:"vaccination_id"`
	OwnerID       string    `firestore:"owner_id"`
	PetID         string    `firestore:"pet_id"`
	Type          string    `firestore:"type"`
	ScheduledAt   time.Time `firestore:"scheduled_at"`
	Sent          bool      `firestore:"sent"`
	CreatedAt     time.Time `firestore:"created_at"`
}

func (s *ReminderStore) col() *firestore.CollectionRef {
	return s.client.Collection(colReminders)
}

func (s *ReminderStore) CreateBatch(ctx context.Context, reminders []*domain.Reminder) error {
	bw := s.client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(reminders))
	for _, rem := range reminders {
		job, err := bw.Create(s.col().Doc(string(rem.ID)), toReminderDoc(rem))
		if err != nil {
			return fmt.Errorf("firestore CreateReminders: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("firestore CreateReminders: %w", err)
		}
	}
	return nil
}

func (s *ReminderStore) ListByVaccination(ctx context.Context, rec domain.VaccinationID) ([]*domain.Reminder, error) {
	iter := s.col().
		Where("vaccination_id", "==", string(rec)).
		OrderBy("scheduled_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	return collectReminders(iter)
}

func (s *ReminderStore) ListDue(ctx context.Context, until time.Time) ([]*domain.Reminder, error) {
	iter := s.col().
		Where("sent", "==", false).
		Where("scheduled_at", "<=", until).
		OrderBy("scheduled_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	return collectReminders(iter)
}

func (s *ReminderStore) MarkSent(ctx context.Context, id domain.ReminderID) error {
	_, err := s.col().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "sent", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrReminderNotFound
		}
		return fmt.Errorf("firestore MarkReminderSent: %w", err)
	}
	return nil
}

func collectReminders(iter *firestore.DocumentIterator) ([]*domain.Reminder, error) {
	var out []*domain.Reminder
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListReminders: %w", err)
		}

		var doc reminderDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode reminderDoc: %w", err)
		}
		out = append(out, &domain.Reminder{
			ID:            domain.ReminderID(snap.Ref.ID),
			VaccinationID: domain.VaccinationID(doc.VaccinationID),
			OwnerID:       domain.UserID(doc.OwnerID),
			PetID:         domain.PetID(doc.PetID),
			Type:          domain.ReminderType(doc.Type),
			ScheduledAt:   doc.ScheduledAt,
			Sent:          doc.Sent,
			CreatedAt:     doc.CreatedAt,
		})
	}
	return out, nil
}

func toReminderDoc(rem *domain.Reminder) reminderDoc {
	return reminderDoc{
		VaccinationID: string(rem.VaccinationID),
		OwnerID:       string(rem.OwnerID),
		PetID:         string(rem.PetID),
		Type:          string(rem.Type),
		ScheduledAt:   rem.ScheduledAt,
		Sent:          rem.Sent,
		CreatedAt:     rem.CreatedAt,
	}
}
