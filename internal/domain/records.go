package domain

// VaccinationRecord is one administered shot. Records are immutable:
// a repeat shot creates a new record, history is never overwritten.
type VaccinationRecord struct {
	ID      VaccinationID
	OwnerID UserID
	PetID   PetID

	Vaccine      string
	Administered Timestamp // civil date, midnight in the assistant's zone
	NextDue      Timestamp // Administered + CycleDays
	CycleDays    int

	CreatedAt Timestamp
}

// TreatmentRecord is one non-vaccine care event (deworming, tick drops,
// grooming medication and so on).
type TreatmentRecord struct {
	ID      TreatmentID
	OwnerID UserID
	PetID   PetID

	Name    string
	Treated Timestamp
	Note    string

	CreatedAt Timestamp
}

// Reminder is one leg of the triplet generated when a vaccination record
// is created. Sent only ever flips false→true; the schedule itself is
// never regenerated.
type Reminder struct {
	ID            ReminderID
	VaccinationID VaccinationID
	OwnerID       UserID
	PetID         PetID

	Type        ReminderType
	ScheduledAt Timestamp
	Sent        bool

	CreatedAt Timestamp
}
