package memory_test

import (
	"context"
	"errors"
	"testing"

	memstore "github.com/thebenzza/nonnon/internal/adapters/storage/memory"
	"github.com/thebenzza/nonnon/internal/domain"
)

func TestSessionStoreGetMissing(t *testing.T) {
	store := memstore.NewSessionStore()

	_, err := store.Get(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreSaveBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewSessionStore()

	sess := domain.NewSession("u1")
	sess.SetPartial(domain.FieldPetName, "โมจิ")
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if sess.Version != 1 {
		t.Fatalf("Version after first save = %d, want 1", sess.Version)
	}

	loaded, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if loaded.Partial[domain.FieldPetName] != "โมจิ" {
		t.Fatalf("partial lost on round trip: %+v", loaded.Partial)
	}
	if err := store.Save(ctx, loaded); err != nil {
		t.Fatalf("second Save error: %v", err)
	}
	if loaded.Version != 2 {
		t.Fatalf("Version after second save = %d, want 2", loaded.Version)
	}
}

// Two turns that read the same session must not both write: the slower one
// gets a conflict instead of silently overwriting the faster one.
func TestSessionStoreSaveConflict(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewSessionStore()

	if err := store.Save(ctx, domain.NewSession("u1")); err != nil {
		t.Fatalf("seed Save error: %v", err)
	}

	first, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	second, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	first.SetPartial(domain.FieldVaccineName, "Rabies")
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("winning Save error: %v", err)
	}

	second.SetPartial(domain.FieldVaccineName, "รวม 5 โรค")
	if err := store.Save(ctx, second); !errors.Is(err, domain.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}

	// The winner's write is intact.
	loaded, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if loaded.Partial[domain.FieldVaccineName] != "Rabies" {
		t.Fatalf("loser overwrote the winner: %+v", loaded.Partial)
	}
}

func TestSessionStoreCopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewSessionStore()

	sess := domain.NewSession("u1")
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Mutating the caller's copy after save must not leak into the store.
	sess.SetPartial(domain.FieldPetName, "โมจิ")

	loaded, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if _, ok := loaded.Partial[domain.FieldPetName]; ok {
		t.Fatalf("store shares memory with caller")
	}
}
