package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/thebenzza/nonnon/internal/app/chat"
	"github.com/thebenzza/nonnon/internal/domain"
)

type Server struct {
	svc          *chat.Service
	pets         domain.PetStore
	vaccinations domain.VaccinationStore
	reminders    domain.ReminderStore
}

func NewServer(
	svc *chat.Service,
	pets domain.PetStore,
	vaccinations domain.VaccinationStore,
	reminders domain.ReminderStore,
) http.Handler {
	s := &Server{
		svc:          svc,
		pets:         pets,
		vaccinations: vaccinations,
		reminders:    reminders,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(withRequestContext)
	r.Use(withRequestLogging)

	r.Get("/healthz", s.handleHealthz)

	// Chat entry point: whatever transport fronts the assistant posts
	// its message events here.
	r.Post("/webhook/events", s.handleWebhookEvents)

	// Ops surface for record inspection and the reminder delivery loop.
	r.Get("/owners/{ownerID}/pets", s.handleListPets)
	r.Get("/owners/{ownerID}/pets/{petName}/vaccinations", s.handleListVaccinations)
	r.Get("/reminders/due", s.handleDueReminders)
	r.Post("/reminders/{reminderID}/sent", s.handleMarkReminderSent)

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type webhookEvent struct {
	UserID  string `json:"user_id"`
	Text    string `json:"text,omitempty"`
	ImageID string `json:"image_id,omitempty"`
}

type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

type webhookReply struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type webhookResponse struct {
	Replies []webhookReply `json:"replies"`
}

type petResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Species   string     `json:"species,omitempty"`
	Breed     string     `json:"breed,omitempty"`
	Sex       string     `json:"sex,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Neutered  *bool      `json:"neutered,omitempty"`
	Markings  string     `json:"markings,omitempty"`
	PhotoRef  string     `json:"photo_ref,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type listPetsResponse struct {
	Pets []petResponse `json:"pets"`
}

type vaccinationResponse struct {
	ID           string    `json:"id"`
	PetID        string    `json:"pet_id"`
	Vaccine      string    `json:"vaccine"`
	Administered string    `json:"administered"`
	NextDue      string    `json:"next_due"`
	CycleDays    int       `json:"cycle_days"`
	CreatedAt    time.Time `json:"created_at"`
}

type listVaccinationsResponse struct {
	PetID        string                `json:"pet_id"`
	PetName      string                `json:"pet_name"`
	Vaccinations []vaccinationResponse `json:"vaccinations"`
}

type reminderResponse struct {
	ID            string    `json:"id"`
	VaccinationID string    `json:"vaccination_id"`
	OwnerID       string    `json:"owner_id"`
	PetID         string    `json:"pet_id"`
	Type          string    `json:"type"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Sent          bool      `json:"sent"`
}

type dueRemindersResponse struct {
	Reminders []reminderResponse `json:"reminders"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhookEvents answers a batch of message events. Events fan out
// concurrently (the chat service serializes per user internally) and the
// replies come back in request order.
func (s *Server) handleWebhookEvents(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Events) == 0 {
		badRequest(w, "events is required")
		return
	}
	for _, ev := range req.Events {
		if ev.UserID == "" {
			badRequest(w, "user_id is required on every event")
			return
		}
	}

	replies := make([]webhookReply, len(req.Events))
	g, ctx := errgroup.WithContext(r.Context())
	for i, ev := range req.Events {
		g.Go(func() error {
			text := s.svc.HandleMessage(ctx, chat.HandleMessageInput{
				UserID:  domain.UserID(ev.UserID),
				Text:    ev.Text,
				ImageID: ev.ImageID,
			})
			replies[i] = webhookReply{UserID: ev.UserID, Text: text}
			return nil
		})
	}
	// HandleMessage never fails; Wait is only the join point.
	_ = g.Wait()

	writeJSON(w, http.StatusOK, webhookResponse{Replies: replies})
}

func (s *Server) handleListPets(w http.ResponseWriter, r *http.Request) {
	owner := domain.UserID(chi.URLParam(r, "ownerID"))
	if owner == "" {
		badRequest(w, "ownerID is required")
		return
	}

	pets, err := s.pets.ListByOwner(r.Context(), owner)
	if err != nil {
		internalError(w, err)
		return
	}

	resp := listPetsResponse{Pets: make([]petResponse, 0, len(pets))}
	for _, p := range pets {
		resp.Pets = append(resp.Pets, toPetResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVaccinations(w http.ResponseWriter, r *http.Request) {
	owner := domain.UserID(chi.URLParam(r, "ownerID"))
	petName := chi.URLParam(r, "petName")
	if owner == "" || petName == "" {
		badRequest(w, "ownerID and petName are required")
		return
	}

	pet, err := s.pets.FindByName(r.Context(), owner, petName)
	if errors.Is(err, domain.ErrPetNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	recs, err := s.vaccinations.ListByPet(r.Context(), owner, pet.ID)
	if err != nil {
		internalError(w, err)
		return
	}

	resp := listVaccinationsResponse{
		PetID:        string(pet.ID),
		PetName:      pet.Name,
		Vaccinations: make([]vaccinationResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		resp.Vaccinations = append(resp.Vaccinations, toVaccinationResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDueReminders(w http.ResponseWriter, r *http.Request) {
	until := time.Now()
	if raw := r.URL.Query().Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(w, "until must be RFC3339")
			return
		}
		until = t
	}

	due, err := s.reminders.ListDue(r.Context(), until)
	if err != nil {
		internalError(w, err)
		return
	}

	resp := dueRemindersResponse{Reminders: make([]reminderResponse, 0, len(due))}
	for _, rem := range due {
		resp.Reminders = append(resp.Reminders, toReminderResponse(rem))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkReminderSent(w http.ResponseWriter, r *http.Request) {
	id := domain.ReminderID(chi.URLParam(r, "reminderID"))
	if id == "" {
		badRequest(w, "reminderID is required")
		return
	}

	if err := s.reminders.MarkSent(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// ─────────────────────────────────────────────
// Response helpers
// ─────────────────────────────────────────────

func toPetResponse(p *domain.Pet) petResponse {
	return petResponse{
		ID:        string(p.ID),
		Name:      p.Name,
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

func toVaccinationResponse(rec *domain.VaccinationRecord) vaccinationResponse {
	return vaccinationResponse{
		ID:           string(rec.ID),
		PetID:        string(rec.PetID),
		Vaccine:      rec.Vaccine,
		Administered: domain.FormatCivilDate(rec.Administered),
		NextDue:      domain.FormatCivilDate(rec.NextDue),
		CycleDays:    rec.CycleDays,
		CreatedAt:    rec.CreatedAt,
	}
}

func toReminderResponse(rem *domain.Reminder) reminderResponse {
	return reminderResponse{
		ID:            string(rem.ID),
		VaccinationID: string(rem.VaccinationID),
		OwnerID:       string(rem.OwnerID),
		PetID:         string(rem.PetID),
		Type:          string(rem.Type),
		ScheduledAt:   rem.ScheduledAt,
		Sent:          rem.Sent,
	}
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, _ error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
