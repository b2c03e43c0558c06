package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/thebenzza/nonnon/internal/adapters/http"
	"github.com/thebenzza/nonnon/internal/adapters/llm"
	memstore "github.com/thebenzza/nonnon/internal/adapters/storage/memory"
	"github.com/thebenzza/nonnon/internal/app/actions"
	"github.com/thebenzza/nonnon/internal/app/chat"
	"github.com/thebenzza/nonnon/internal/app/planner"
	"github.com/thebenzza/nonnon/internal/domain"
)

type testEnv struct {
	handler http.Handler
	mock    *llm.Mock
	pets    *memstore.PetStore
	vaccs   *memstore.VaccinationStore
	rems    *memstore.ReminderStore
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	mock := llm.NewMock()
	sessions := memstore.NewSessionStore()
	pets := memstore.NewPetStore()
	rems := memstore.NewReminderStore()
	vaccs := memstore.NewVaccinationStore(rems)

	exec := actions.NewExecutor(pets, vaccs, memstore.NewTreatmentStore(), 365)
	svc := chat.NewService(sessions, pets, mock, mock, exec,
		planner.New(exec, sessions, mock, 0.6))

	return &testEnv{
		handler: httpadapter.NewServer(svc, pets, vaccs, rems),
		mock:    mock,
		pets:    pets,
		vaccs:   vaccs,
		rems:    rems,
	}
}

func (e *testEnv) do(method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %s: %v", w.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestServer(t)

	w := env.do(http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	decodeBody(t, w, &body)
	if body["status"] != "ok" {
		t.Fatalf("status = %q, want ok", body["status"])
	}
}

func TestWebhookRepliesInRequestOrder(t *testing.T) {
	env := newTestServer(t)
	env.mock.AdviseFunc = func(_ context.Context, text string, _ domain.SessionContext, _ bool) (string, error) {
		return "echo: " + text, nil
	}

	body := []byte(`{"events":[
		{"user_id":"u1","text":"น้องป่วยนิดหน่อย"},
		{"user_id":"u2","text":"น้องป่วยเยอะเลย"}
	]}`)
	w := env.do(http.MethodPost, "/webhook/events", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Replies []struct {
			UserID string `json:"user_id"`
			Text   string `json:"text"`
		} `json:"replies"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Replies) != 2 {
		t.Fatalf("replies = %d, want 2", len(resp.Replies))
	}
	if resp.Replies[0].UserID != "u1" || resp.Replies[1].UserID != "u2" {
		t.Fatalf("replies out of request order: %+v", resp.Replies)
	}
	if resp.Replies[0].Text != "echo: น้องป่วยนิดหน่อย" {
		t.Fatalf("reply[0] = %q, want the echo for u1's message", resp.Replies[0].Text)
	}
}

func TestWebhookRejectsBadRequests(t *testing.T) {
	env := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"events":`},
		{"no events", `{"events":[]}`},
		{"missing user_id", `{"events":[{"text":"สวัสดี"}]}`},
	}
	for _, tc := range cases {
		w := env.do(http.MethodPost, "/webhook/events", []byte(tc.body))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d, body=%s", tc.name, w.Code, w.Body.String())
		}
	}
}

// One event through the whole stack: webhook, chat service, planner,
// executor, store.
func TestWebhookDrivesChatTurn(t *testing.T) {
	env := newTestServer(t)
	env.mock.InterpretFunc = func(context.Context, string, domain.SessionContext) (*domain.Plan, error) {
		return &domain.Plan{
			Confidence: 0.9,
			Actions: []domain.ActionRequest{{
				Kind:   domain.KindAddPet,
				Params: map[string]string{domain.FieldName: "โมจิ"},
			}},
		}, nil
	}

	body := []byte(`{"events":[{"user_id":"u1","text":"เพิ่มสัตว์เลี้ยงชื่อ โมจิ"}]}`)
	w := env.do(http.MethodPost, "/webhook/events", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "โมจิ") {
		t.Fatalf("reply does not mention the pet: %s", w.Body.String())
	}

	if _, err := env.pets.FindByName(context.Background(), "u1", "โมจิ"); err != nil {
		t.Fatalf("pet not persisted through the webhook turn: %v", err)
	}
}

func TestListPetsOrdersByRecency(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()
	base := time.Now()

	seed := []struct {
		owner domain.UserID
		name  string
		age   time.Duration
	}{
		{"u1", "มะลิ", 48 * time.Hour},
		{"u1", "โมจิ", time.Hour},
		{"u2", "บัตเตอร์", time.Hour},
	}
	for i, p := range seed {
		err := env.pets.Create(ctx, &domain.Pet{
			ID:        domain.PetID(fmt.Sprintf("pet-%d", i)),
			OwnerID:   p.owner,
			Name:      p.name,
			UpdatedAt: base.Add(-p.age),
		})
		if err != nil {
			t.Fatalf("seed pet %s: %v", p.name, err)
		}
	}

	w := env.do(http.MethodGet, "/owners/u1/pets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Pets []struct {
			Name string `json:"name"`
		} `json:"pets"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Pets) != 2 {
		t.Fatalf("pets = %d, want only u1's two", len(resp.Pets))
	}
	if resp.Pets[0].Name != "โมจิ" || resp.Pets[1].Name != "มะลิ" {
		t.Fatalf("pets out of recency order: %+v", resp.Pets)
	}
}

func TestListVaccinationsForPet(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	pet := &domain.Pet{ID: "pet-1", OwnerID: "u1", Name: "โมจิ", UpdatedAt: time.Now()}
	if err := env.pets.Create(ctx, pet); err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	day := func(s string) time.Time {
		d, err := domain.ParseCivilDate(s, time.Now())
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return d
	}
	recs := []*domain.VaccinationRecord{
		{ID: "vac-1", OwnerID: "u1", PetID: pet.ID, Vaccine: "Rabies",
			Administered: day("2025-03-01"), NextDue: day("2026-03-01"), CycleDays: 365},
		{ID: "vac-2", OwnerID: "u1", PetID: pet.ID, Vaccine: "รวม 5 โรค",
			Administered: day("2025-01-15"), NextDue: day("2026-01-15"), CycleDays: 365},
	}
	for _, rec := range recs {
		if err := env.vaccs.CreateWithReminders(ctx, rec, nil); err != nil {
			t.Fatalf("seed record %s: %v", rec.ID, err)
		}
	}

	w := env.do(http.MethodGet, "/owners/u1/pets/โมจิ/vaccinations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		PetName      string `json:"pet_name"`
		Vaccinations []struct {
			Vaccine      string `json:"vaccine"`
			Administered string `json:"administered"`
			NextDue      string `json:"next_due"`
		} `json:"vaccinations"`
	}
	decodeBody(t, w, &resp)
	if resp.PetName != "โมจิ" {
		t.Fatalf("pet_name = %q", resp.PetName)
	}
	if len(resp.Vaccinations) != 2 {
		t.Fatalf("vaccinations = %d, want 2", len(resp.Vaccinations))
	}
	// Ordered by next due, nearest first, with civil-date strings.
	if resp.Vaccinations[0].NextDue != "2026-01-15" || resp.Vaccinations[1].NextDue != "2026-03-01" {
		t.Fatalf("vaccinations out of next-due order: %+v", resp.Vaccinations)
	}
	if resp.Vaccinations[0].Administered != "2025-01-15" {
		t.Fatalf("administered = %q, want 2025-01-15", resp.Vaccinations[0].Administered)
	}
}

func TestListVaccinationsUnknownPet(t *testing.T) {
	env := newTestServer(t)

	w := env.do(http.MethodGet, "/owners/u1/pets/ผี/vaccinations", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

// The delivery loop's whole surface: list what is due, mark one sent,
// see it drop out of the next listing.
func TestDueRemindersAndMarkSent(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()
	now := time.Now()

	seed := []*domain.Reminder{
		{ID: "rem-1", VaccinationID: "vac-1", OwnerID: "u1", PetID: "pet-1",
			Type: domain.ReminderD7, ScheduledAt: now.Add(-48 * time.Hour)},
		{ID: "rem-2", VaccinationID: "vac-1", OwnerID: "u1", PetID: "pet-1",
			Type: domain.ReminderD1, ScheduledAt: now.Add(-24 * time.Hour)},
		{ID: "rem-3", VaccinationID: "vac-1", OwnerID: "u1", PetID: "pet-1",
			Type: domain.ReminderD0, ScheduledAt: now.Add(-time.Hour)},
		{ID: "rem-4", VaccinationID: "vac-2", OwnerID: "u1", PetID: "pet-1",
			Type: domain.ReminderD7, ScheduledAt: now.Add(24 * time.Hour)},
	}
	if err := env.rems.CreateBatch(ctx, seed); err != nil {
		t.Fatalf("seed reminders: %v", err)
	}

	until := now.UTC().Format(time.RFC3339)
	w := env.do(http.MethodGet, "/reminders/due?until="+until, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Reminders []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			Sent bool   `json:"sent"`
		} `json:"reminders"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Reminders) != 3 {
		t.Fatalf("due = %d, want the three past legs", len(resp.Reminders))
	}
	if resp.Reminders[0].ID != "rem-1" || resp.Reminders[2].ID != "rem-3" {
		t.Fatalf("due reminders out of schedule order: %+v", resp.Reminders)
	}

	w = env.do(http.MethodPost, "/reminders/rem-2/sent", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mark sent: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/reminders/due?until="+until, nil)
	resp.Reminders = nil
	decodeBody(t, w, &resp)
	if len(resp.Reminders) != 2 {
		t.Fatalf("due after mark = %d, want 2", len(resp.Reminders))
	}
	for _, rem := range resp.Reminders {
		if rem.ID == "rem-2" {
			t.Fatalf("sent reminder still listed as due")
		}
	}
}

func TestMarkSentUnknownReminder(t *testing.T) {
	env := newTestServer(t)

	w := env.do(http.MethodPost, "/reminders/ghost/sent", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestDueRemindersRejectsBadUntil(t *testing.T) {
	env := newTestServer(t)

	w := env.do(http.MethodGet, "/reminders/due?until=tomorrow-ish", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", w.Code, w.Body.String())
	}
}
