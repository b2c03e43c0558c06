package domain

import "time"

type UserID string
type PetID string
type VaccinationID string
type TreatmentID string
type ReminderID string

// Species of a pet profile. Breed stays free text on the profile.
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesOther   Species = "other"
	SpeciesUnknown Species = ""
)

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = ""
)

// ReminderType tags one leg of the fixed triplet derived from a
// vaccination's next-due date.
type ReminderType string

const (
	ReminderD7 ReminderType = "D-7" // seven days before next due
	ReminderD1 ReminderType = "D-1" // the day before
	ReminderD0 ReminderType = "D0"  // due day
)

// ReminderTriplet lists the three offsets every vaccination record gets,
// in generation order.
var ReminderTriplet = []ReminderType{ReminderD7, ReminderD1, ReminderD0}

type Timestamp = time.Time
