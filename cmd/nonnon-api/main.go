package main

import (
	"context"
	"log"
	"net/http"
	"time"

	httpadapter "github.com/thebenzza/nonnon/internal/adapters/http"
	"github.com/thebenzza/nonnon/internal/adapters/llm"
	firestorestore "github.com/thebenzza/nonnon/internal/adapters/storage/firestore"
	memstore "github.com/thebenzza/nonnon/internal/adapters/storage/memory"
	"github.com/thebenzza/nonnon/internal/app/actions"
	"github.com/thebenzza/nonnon/internal/app/chat"
	"github.com/thebenzza/nonnon/internal/app/planner"
	"github.com/thebenzza/nonnon/internal/config"
	"github.com/thebenzza/nonnon/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Interpreter/advisor: scripted mock for dev, Gemini on Vertex otherwise.
	var (
		interp  domain.PlanInterpreter
		advisor domain.Advisor
	)
	if cfg.UseMockLLM {
		log.Println("[LLM] using mock interpreter")
		m := llm.NewMock()
		interp, advisor = m, m
	} else {
		log.Printf("[LLM] using Gemini (model=%s location=%s)", cfg.ModelName, cfg.GCPLocation)
		gem, err := llm.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			log.Fatalf("error initializing Gemini client: %v", err)
		}
		interp, advisor = gem, gem
	}

	// Storage: Firestore or in-memory.
	var (
		sessions      domain.SessionStore
		pets          domain.PetStore
		vaccinations  domain.VaccinationStore
		treatments    domain.TreatmentStore
		reminderStore domain.ReminderStore
	)
	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] using Firestore (project=%s)", cfg.GCPProjectID)
		client, err := firestorestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore: %v", err)
		}
		defer client.Close()

		sessions = client.Sessions()
		pets = client.Pets()
		vaccinations = client.Vaccinations()
		treatments = client.Treatments()
		reminderStore = client.Reminders()

	default:
		log.Println("[STORE] using in-memory storage")
		rems := memstore.NewReminderStore()
		sessions = memstore.NewSessionStore()
		pets = memstore.NewPetStore()
		vaccinations = memstore.NewVaccinationStore(rems)
		treatments = memstore.NewTreatmentStore()
		reminderStore = rems
	}

	exec := actions.NewExecutor(pets, vaccinations, treatments, cfg.DefaultCycleDays)
	plan := planner.New(exec, sessions, interp, cfg.ConfidenceThreshold)
	svc := chat.NewService(sessions, pets, interp, advisor, exec, plan)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpadapter.NewServer(svc, pets, vaccinations, reminderStore),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Println("nonnon API listening on port:", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
