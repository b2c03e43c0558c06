package domain

import (
	"sort"
	"strings"
)

// ActionKind is the closed set of instructions the interpreter may emit.
// Anything else is folded into KindNoop during normalization.
type ActionKind string

const (
	KindAddPet        ActionKind = "add_pet"
	KindAddVaccine    ActionKind = "add_vaccine"
	KindAddTreatment  ActionKind = "add_treatment"
	KindListVaccine   ActionKind = "list_vaccine"
	KindListTreatment ActionKind = "list_treatment"
	KindConfirm       ActionKind = "confirm"
	KindNoop          ActionKind = "noop"
)

// ParseActionKind maps loose interpreter output onto the closed enum.
func ParseActionKind(s string) ActionKind {
	switch ActionKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAddPet:
		return KindAddPet
	case KindAddVaccine:
		return KindAddVaccine
	case KindAddTreatment:
		return KindAddTreatment
	case KindListVaccine:
		return KindListVaccine
	case KindListTreatment:
		return KindListTreatment
	case KindConfirm:
		return KindConfirm
	default:
		return KindNoop
	}
}

// Canonical param/field names shared by the interpreter contract, the
// session partial map and the executor.
const (
	FieldPetName       = "pet_name"
	FieldVaccineName   = "vaccine_name"
	FieldTreatmentName = "treatment_name"
	FieldDate          = "date"
	FieldCycleDays     = "cycle_days"
	FieldName          = "name"
	FieldSpecies       = "species"
	FieldBreed         = "breed"
	FieldSex           = "sex"
	FieldBirthDate     = "birth_date"
	FieldNeutered      = "neutered"
	FieldMarkings      = "markings"
	FieldNote          = "note"
)

// requiredFields lists what each kind must have before it may execute;
// kinds with no entry run with whatever params they carry.
// pet_name is required-but-resolvable: the planner skips asking for it
// whenever the executor's resolution order (explicit name → session →
// most-recently-updated pet on file) would produce a pet anyway.
var requiredFields = map[ActionKind][]string{
	KindAddPet:       {FieldName},
	KindAddVaccine:   {FieldVaccineName, FieldPetName, FieldDate},
	KindAddTreatment: {FieldTreatmentName, FieldPetName, FieldDate},
}

// askPriority fixes the order in which missing fields are asked for.
// The order is part of the conversational contract: name of the thing
// being recorded first, then which pet, then when.
var askPriority = []string{FieldVaccineName, FieldTreatmentName, FieldPetName, FieldDate, FieldName}

// MissingFields returns the required fields of kind that params does not
// satisfy, ordered by askPriority so the planner always asks the same
// question first for the same gap.
func MissingFields(kind ActionKind, params map[string]string) []string {
	var missing []string
	for _, f := range requiredFields[kind] {
		if strings.TrimSpace(params[f]) == "" {
			missing = append(missing, f)
		}
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return priorityIndex(missing[i]) < priorityIndex(missing[j])
	})
	return missing
}

func priorityIndex(field string) int {
	for i, f := range askPriority {
		if f == field {
			return i
		}
	}
	return len(askPriority)
}

// ActionRequest is one typed instruction against the record stores.
// Params are loosely typed on the wire and validated per kind before
// any handler runs.
type ActionRequest struct {
	Kind   ActionKind
	Params map[string]string
}

// Param returns a trimmed param value.
func (a ActionRequest) Param(name string) string {
	return strings.TrimSpace(a.Params[name])
}

// WithPartial returns a copy of the request with session partial values
// filled into params the request itself does not carry.
func (a ActionRequest) WithPartial(partial map[string]string) ActionRequest {
	merged := make(map[string]string, len(a.Params)+len(partial))
	for k, v := range partial {
		merged[k] = v
	}
	for k, v := range a.Params {
		if strings.TrimSpace(v) != "" {
			merged[k] = v
		}
	}
	return ActionRequest{Kind: a.Kind, Params: merged}
}

// Plan is the interpreter's structured read of one user turn. It lives for
// that turn only; whatever must survive is folded into Session.Partial.
type Plan struct {
	Confidence float64
	ReplyHint  string
	Followup   string
	Actions    []ActionRequest
}

// HasActionable reports whether the plan carries at least one action that
// is not a noop.
func (p *Plan) HasActionable() bool {
	if p == nil {
		return false
	}
	for _, a := range p.Actions {
		if a.Kind != KindNoop {
			return true
		}
	}
	return false
}

// FirstActionable returns the first non-noop action, preserving the
// plan's order.
func (p *Plan) FirstActionable() (ActionRequest, bool) {
	if p == nil {
		return ActionRequest{}, false
	}
	for _, a := range p.Actions {
		if a.Kind != KindNoop {
			return a, true
		}
	}
	return ActionRequest{}, false
}
