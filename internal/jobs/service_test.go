package jobs

import (
	"context"
	"errors"
	"testing"
)

func newTestService() *Service {
	return &Service{Repo: NewMemoryRepo(), DefaultLanguage: "en"}
}

func TestServiceCreateValidates(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Create(context.Background(), "", "Title", "", "", "en"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing user, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-1", "   ", "", "", "en"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}
}

func TestServiceCreateFallsBackLanguage(t *testing.T) {
	svc := newTestService()

	job, err := svc.Create(context.Background(), "user-1", "Engineer", "Acme", "desc", "klingon")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Language != "en" {
		t.Fatalf("expected fallback language en, got %q", job.Language)
	}
	if job.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestServiceCRUDRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", "Engineer", "Acme", "desc", "de")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Language != "de" {
		t.Fatalf("unexpected language %q", got.Language)
	}

	got.Title = "Senior Engineer"
	updated, err := svc.Update(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Senior Engineer" {
		t.Fatalf("unexpected title %q", updated.Title)
	}

	if err := svc.Delete(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "user-1", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestServiceIsolatesUsers(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", "Engineer", "", "", "en")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, "user-2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}
