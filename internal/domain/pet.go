package domain

// Pet is one animal owned by one user. Identity within the domain is the
// (owner, name) pair; the storage layer does not enforce that uniqueness,
// the executor's find-or-create path does.
type Pet struct {
	ID      PetID
	OwnerID UserID

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate *Timestamp
	Neutered  *bool
	Markings  string
	PhotoRef  string

	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// Merge folds non-empty fields of in over p. Later mentions of a pet may
// add details ("she's a poodle") without repeating the rest.
func (p *Pet) Merge(in Pet) {
	if in.Species != SpeciesUnknown {
		p.Species = in.Species
	}
	if in.Breed != "" {
		p.Breed = in.Breed
	}
	if in.Sex != SexUnknown {
		p.Sex = in.Sex
	}
	if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}
	if in.Neutered != nil {
		p.Neutered = in.Neutered
	}
	if in.Markings != "" {
		p.Markings = in.Markings
	}
	if in.PhotoRef != "" {
		p.PhotoRef = in.PhotoRef
	}
}

// ParseSpecies maps loose user words (Thai or English) onto the enum.
func ParseSpecies(s string) Species {
	switch normalizeToken(s) {
	case "dog", "หมา", "สุนัข":
		return SpeciesDog
	case "cat", "แมว":
		return SpeciesCat
	case "":
		return SpeciesUnknown
	default:
		return SpeciesOther
	}
}

// ParseSex maps loose user words onto the enum.
func ParseSex(s string) Sex {
	switch normalizeToken(s) {
	case "male", "m", "ผู้", "ตัวผู้":
		return SexMale
	case "female", "f", "เมีย", "ตัวเมีย":
		return SexFemale
	default:
		return SexUnknown
	}
}
