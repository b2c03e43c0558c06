package domain

import (
	"context"
	"time"
)

// SessionStore persists per-user conversational state. One document per
// user, read-modify-write with merge semantics and an optimistic version
// check on save.
type SessionStore interface {
	// Get returns ErrSessionNotFound when the user has no session yet.
	Get(ctx context.Context, userID UserID) (*Session, error)
	// Save upserts the session and bumps its version. It returns
	// ErrSessionConflict when the stored version differs from
	// session.Version at write time.
	Save(ctx context.Context, session *Session) error
}

// PetStore persists pet profiles.
type PetStore interface {
	Create(ctx context.Context, pet *Pet) error
	Update(ctx context.Context, pet *Pet) error
	// FindByName matches within one owner's pets; ErrPetNotFound when absent.
	FindByName(ctx context.Context, owner UserID, name string) (*Pet, error)
	// ListByOwner returns pets ordered by UpdatedAt descending, so index 0
	// is the most-recently-touched pet.
	ListByOwner(ctx context.Context, owner UserID) ([]*Pet, error)
}

// VaccinationStore persists immutable vaccination records.
type VaccinationStore interface {
	// CreateWithReminders writes the record and its reminder triplet in
	// one atomic operation. Partial triplets must not be observable.
	CreateWithReminders(ctx context.Context, rec *VaccinationRecord, reminders []*Reminder) error
	// ListByPet returns records ordered by NextDue ascending.
	ListByPet(ctx context.Context, owner UserID, pet PetID) ([]*VaccinationRecord, error)
	// ListAll walks every record; used by the reconcile scan only.
	ListAll(ctx context.Context) ([]*VaccinationRecord, error)
}

// TreatmentStore persists treatment records.
type TreatmentStore interface {
	Create(ctx context.Context, rec *TreatmentRecord) error
	// ListByPet returns records ordered by Treated ascending.
	ListByPet(ctx context.Context, owner UserID, pet PetID) ([]*TreatmentRecord, error)
}

// ReminderStore persists the reminder triplets. Beyond creation, the only
// mutation is the monotonic sent flag; delivery itself is someone else's
// loop consuming ListDue/MarkSent.
type ReminderStore interface {
	CreateBatch(ctx context.Context, reminders []*Reminder) error
	ListByVaccination(ctx context.Context, rec VaccinationID) ([]*Reminder, error)
	// ListDue returns unsent reminders scheduled at or before until,
	// ordered by ScheduledAt ascending.
	ListDue(ctx context.Context, until time.Time) ([]*Reminder, error)
	MarkSent(ctx context.Context, id ReminderID) error
}

// SessionContext is the size-bounded view of a session handed to the
// interpreter so it can resolve references like "her second shot".
type SessionContext struct {
	UserID   UserID
	Pending  PendingAction
	Expect   ExpectKind
	Field    string
	Partial  map[string]string
	PetNames []string
}

// PlanInterpreter turns free text plus context into a Plan under a strict
// output contract. Implementations must absorb transport failures and
// malformed output, returning ErrInterpreterUnavailable instead of
// propagating them; they must not retry internally.
type PlanInterpreter interface {
	Interpret(ctx context.Context, text string, sctx SessionContext) (*Plan, error)
}

// Advisor produces a free-form reply for the chat and health routes.
type Advisor interface {
	Advise(ctx context.Context, text string, sctx SessionContext, health bool) (string, error)
}
