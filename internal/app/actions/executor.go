package actions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thebenzza/nonnon/internal/app/reminders"
	"github.com/thebenzza/nonnon/internal/domain"
	"github.com/thebenzza/nonnon/internal/observability"
)

// Result is what one action contributes to the turn's reply.
type Result struct {
	Reply string
	// ClearSession marks the turn's flow as finished; the planner zeroes
	// the session after the action list completes.
	ClearSession bool
}

type handlerFunc func(ctx context.Context, owner domain.UserID, sess *domain.Session, req domain.ActionRequest) (Result, error)

// Executor dispatches validated action requests against the record stores.
// Handlers are idempotent where the data model allows it: pets upsert by
// (owner, name), list queries are read-only. Vaccinations and treatments
// append immutable records, so replays append again; re-delivery of those
// is tolerated, not absorbed.
type Executor struct {
	pets         domain.PetStore
	vaccinations domain.VaccinationStore
	treatments   domain.TreatmentStore

	defaultCycleDays int
	now              func() time.Time

	handlers map[domain.ActionKind]handlerFunc
}

func NewExecutor(
	pets domain.PetStore,
	vaccinations domain.VaccinationStore,
	treatments domain.TreatmentStore,
	defaultCycleDays int,
) *Executor {
	e := &Executor{
		pets:             pets,
		vaccinations:     vaccinations,
		treatments:       treatments,
		defaultCycleDays: defaultCycleDays,
		now:              time.Now,
	}
	e.handlers = map[domain.ActionKind]handlerFunc{
		domain.KindAddPet:        e.addPet,
		domain.KindAddVaccine:    e.addVaccine,
		domain.KindAddTreatment:  e.addTreatment,
		domain.KindListVaccine:   e.listVaccine,
		domain.KindListTreatment: e.listTreatment,
		domain.KindConfirm:       e.confirm,
		domain.KindNoop:          e.noop,
	}
	return e
}

// Execute runs one action. Errors come back typed: MissingFieldError,
// ErrNoResolvablePet or ErrStorageUnavailable; the planner converts them
// into questions or apologies, they never reach the transport.
func (e *Executor) Execute(ctx context.Context, owner domain.UserID, sess *domain.Session, req domain.ActionRequest) (Result, error) {
	h, ok := e.handlers[req.Kind]
	if !ok {
		h = e.noop
	}

	log := observability.LoggerFromContext(ctx).With("user_id", owner, "action", req.Kind)
	res, err := h(ctx, owner, sess, req)
	if err != nil {
		log.Warn("action did not execute", "error", err)
		return Result{}, err
	}
	log.Info("action executed")
	return res, nil
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (e *Executor) addPet(ctx context.Context, owner domain.UserID, _ *domain.Session, req domain.ActionRequest) (Result, error) {
	name := req.Param(domain.FieldName)
	if name == "" {
		return Result{}, &domain.MissingFieldError{Field: domain.FieldName}
	}

	incoming := e.petFromParams(req)
	now := e.now()

	existing, err := e.pets.FindByName(ctx, owner, name)
	switch {
	case err == nil:
		existing.Merge(incoming)
		existing.UpdatedAt = now
		if err := e.pets.Update(ctx, existing); err != nil {
			return Result{}, storageErr("updating pet", err)
		}
		return Result{Reply: replyPetUpdated(existing.Name), ClearSession: true}, nil

	case errors.Is(err, domain.ErrPetNotFound):
		pet := &domain.Pet{
			ID:        domain.PetID(uuid.NewString()),
			OwnerID:   owner,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		pet.Merge(incoming)
		if err := e.pets.Create(ctx, pet); err != nil {
			return Result{}, storageErr("creating pet", err)
		}
		return Result{Reply: replyPetCreated(pet.Name), ClearSession: true}, nil

	default:
		return Result{}, storageErr("finding pet", err)
	}
}

func (e *Executor) addVaccine(ctx context.Context, owner domain.UserID, sess *domain.Session, req domain.ActionRequest) (Result, error) {
	vaccine := req.Param(domain.FieldVaccineName)
	if vaccine == "" {
		return Result{}, &domain.MissingFieldError{Field: domain.FieldVaccineName}
	}

	// The vaccine flow carries enough context to safely find-or-create
	// the pet, unlike the list queries below.
	pet, err := e.resolvePet(ctx, owner, req.Param(domain.FieldPetName), sess, true)
	if err != nil {
		return Result{}, err
	}

	now := e.now()
	administered, err := e.requireDate(req, domain.FieldDate, now)
	if err != nil {
		return Result{}, err
	}

	cycle := e.defaultCycleDays
	if raw := req.Param(domain.FieldCycleDays); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Result{}, &domain.MissingFieldError{Field: domain.FieldCycleDays}
		}
		cycle = n
	}

	rec := &domain.VaccinationRecord{
		ID:           domain.VaccinationID(uuid.NewString()),
		OwnerID:      owner,
		PetID:        pet.ID,
		Vaccine:      vaccine,
		Administered: administered,
		NextDue:      administered.AddDate(0, 0, cycle),
		CycleDays:    cycle,
		CreatedAt:    now,
	}

	triplet := reminders.Triplet(rec, now)
	if err := e.vaccinations.CreateWithReminders(ctx, rec, triplet); err != nil {
		return Result{}, storageErr("creating vaccination record", err)
	}

	return Result{Reply: replyVaccineRecorded(vaccine, pet.Name, rec.NextDue), ClearSession: true}, nil
}

func (e *Executor) addTreatment(ctx context.Context, owner domain.UserID, sess *domain.Session, req domain.ActionRequest) (Result, error) {
	name := req.Param(domain.FieldTreatmentName)
	if name == "" {
		return Result{}, &domain.MissingFieldError{Field: domain.FieldTreatmentName}
	}

	pet, err := e.resolvePet(ctx, owner, req.Param(domain.FieldPetName), sess, true)
	if err != nil {
		return Result{}, err
	}

	now := e.now()
	treated, err := e.requireDate(req, domain.FieldDate, now)
	if err != nil {
		return Result{}, err
	}

	rec := &domain.TreatmentRecord{
		ID:        domain.TreatmentID(uuid.NewString()),
		OwnerID:   owner,
		PetID:     pet.ID,
		Name:      name,
		Treated:   treated,
		Note:      req.Param(domain.FieldNote),
		CreatedAt: now,
	}
	if err := e.treatments.Create(ctx, rec); err != nil {
		return Result{}, storageErr("creating treatment record", err)
	}

	return Result{Reply: replyTreatmentRecorded(name, pet.Name), ClearSession: true}, nil
}

func (e *Executor) listVaccine(ctx context.Context, owner domain.UserID, sess *domain.Session, req domain.ActionRequest) (Result, error) {
	pet, err := e.resolvePet(ctx, owner, req.Param(domain.FieldPetName), sess, false)
	if errors.Is(err, domain.ErrPetNotFound) {
		// An explicitly named pet that is not on file is an answer,
		// not an error.
		return Result{Reply: replyPetUnknown(req.Param(domain.FieldPetName)), ClearSession: true}, nil
	}
	if err != nil {
		return Result{}, err
	}

	recs, err := e.vaccinations.ListByPet(ctx, owner, pet.ID)
	if err != nil {
		return Result{}, storageErr("listing vaccinations", err)
	}
	if len(recs) == 0 {
		return Result{Reply: replyNoVaccines(pet.Name), ClearSession: true}, nil
	}
	return Result{Reply: replyVaccineList(pet.Name, recs), ClearSession: true}, nil
}

func (e *Executor) listTreatment(ctx context.Context, owner domain.UserID, sess *domain.Session, req domain.ActionRequest) (Result, error) {
	pet, err := e.resolvePet(ctx, owner, req.Param(domain.FieldPetName), sess, false)
	if errors.Is(err, domain.ErrPetNotFound) {
		return Result{Reply: replyPetUnknown(req.Param(domain.FieldPetName)), ClearSession: true}, nil
	}
	if err != nil {
		return Result{}, err
	}

	recs, err := e.treatments.ListByPet(ctx, owner, pet.ID)
	if err != nil {
		return Result{}, storageErr("listing treatments", err)
	}
	if len(recs) == 0 {
		return Result{Reply: replyNoTreatments(pet.Name), ClearSession: true}, nil
	}
	return Result{Reply: replyTreatmentList(pet.Name, recs), ClearSession: true}, nil
}

func (e *Executor) confirm(context.Context, domain.UserID, *domain.Session, domain.ActionRequest) (Result, error) {
	return Result{Reply: ReplyAcknowledged, ClearSession: true}, nil
}

func (e *Executor) noop(context.Context, domain.UserID, *domain.Session, domain.ActionRequest) (Result, error) {
	return Result{}, nil
}

// AttachPhoto stores an uploaded image reference on the pet the session
// was primed for. Not part of the interpreter's action enum: the photo
// flow is driven by the chat service.
func (e *Executor) AttachPhoto(ctx context.Context, owner domain.UserID, sess *domain.Session, imageRef string) (Result, error) {
	pet, err := e.resolvePet(ctx, owner, "", sess, false)
	if err != nil {
		return Result{}, err
	}

	pet.PhotoRef = imageRef
	pet.UpdatedAt = e.now()
	if err := e.pets.Update(ctx, pet); err != nil {
		return Result{}, storageErr("saving pet photo", err)
	}
	return Result{Reply: replyPhotoSaved(pet.Name), ClearSession: true}, nil
}

// ─────────────────────────────────────────────
// Resolution and parsing helpers
// ─────────────────────────────────────────────

// CanResolvePet reports whether an action needing a pet reference could
// resolve one right now: a name already collected in the session, or any
// pet on file. The planner consults it before asking "which pet?", so that
// question is only asked when resolution would genuinely fail. Storage
// trouble counts as resolvable; execution then surfaces the real error
// instead of a misleading question.
func (e *Executor) CanResolvePet(ctx context.Context, owner domain.UserID, sess *domain.Session) bool {
	if sess != nil && strings.TrimSpace(sess.Partial[domain.FieldPetName]) != "" {
		return true
	}
	pets, err := e.pets.ListByOwner(ctx, owner)
	if err != nil {
		return true
	}
	return len(pets) > 0
}

// resolvePet applies the fixed resolution order: explicit name, then the
// session's accumulated pet_name, then the owner's most-recently-updated
// pet. createIfNamed allows find-or-create when a name was given; no
// handler ever creates a pet it cannot name.
func (e *Executor) resolvePet(ctx context.Context, owner domain.UserID, explicit string, sess *domain.Session, createIfNamed bool) (*domain.Pet, error) {
	name := explicit
	if name == "" && sess != nil {
		name = sess.Partial[domain.FieldPetName]
	}

	if name != "" {
		pet, err := e.pets.FindByName(ctx, owner, name)
		switch {
		case err == nil:
			return pet, nil
		case errors.Is(err, domain.ErrPetNotFound):
			if !createIfNamed {
				return nil, domain.ErrPetNotFound
			}
			now := e.now()
			pet := &domain.Pet{
				ID:        domain.PetID(uuid.NewString()),
				OwnerID:   owner,
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := e.pets.Create(ctx, pet); err != nil {
				return nil, storageErr("creating pet", err)
			}
			return pet, nil
		default:
			return nil, storageErr("finding pet", err)
		}
	}

	pets, err := e.pets.ListByOwner(ctx, owner)
	if err != nil {
		return nil, storageErr("listing pets", err)
	}
	if len(pets) == 0 {
		return nil, domain.ErrNoResolvablePet
	}
	return pets[0], nil
}

func (e *Executor) requireDate(req domain.ActionRequest, field string, now time.Time) (time.Time, error) {
	raw := req.Param(field)
	if raw == "" {
		return time.Time{}, &domain.MissingFieldError{Field: field}
	}
	// Relative words resolve here, at execution time, so a flow that
	// waited overnight still records the user's "today" correctly.
	t, err := domain.ParseCivilDate(raw, now)
	if err != nil {
		return time.Time{}, &domain.MissingFieldError{Field: field}
	}
	return t, nil
}

func (e *Executor) petFromParams(req domain.ActionRequest) domain.Pet {
	p := domain.Pet{
		Species:  domain.ParseSpecies(req.Param(domain.FieldSpecies)),
		Breed:    req.Param(domain.FieldBreed),
		Sex:      domain.ParseSex(req.Param(domain.FieldSex)),
		Markings: req.Param(domain.FieldMarkings),
	}
	if raw := req.Param(domain.FieldBirthDate); raw != "" {
		if t, err := domain.ParseCivilDate(raw, e.now()); err == nil {
			p.BirthDate = &t
		}
	}
	if raw := req.Param(domain.FieldNeutered); raw != "" {
		if v, ok := parseBoolToken(raw); ok {
			p.Neutered = &v
		}
	}
	return p
}

func parseBoolToken(s string) (bool, bool) {
	switch s {
	case "true", "1", "ใช่", "ทำหมันแล้ว":
		return true, true
	case "false", "0", "ไม่", "ยังไม่ทำหมัน":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}

func storageErr(op string, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}
