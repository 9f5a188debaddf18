package wizard

import "testing"

func TestProgressStoreDefaults(t *testing.T) {
	store := NewProgressStore()

	state := store.Get("job-1")
	if state.HasGeneratedCompetences || state.HasReviewedCompetences || state.HasGeneratedCV || state.HasReviewedCV {
		t.Fatal("fresh state should have all flags false")
	}
	if state.Notes == nil || len(state.Notes) != 0 {
		t.Fatalf("fresh state should have empty notes, got %v", state.Notes)
	}
}

func TestProgressStoreCompleteStepMonotonic(t *testing.T) {
	store := NewProgressStore()

	store.CompleteStep("job-1", StepGenerateCompetences)
	store.CompleteStep("job-1", StepGenerateCompetences)

	state := store.Get("job-1")
	if !state.HasGeneratedCompetences {
		t.Fatal("expected HasGeneratedCompetences true")
	}
	if state.HasReviewedCompetences || state.HasGeneratedCV || state.HasReviewedCV {
		t.Fatal("other flags must stay false")
	}

	// Steps without a phase flag are no-ops.
	store.CompleteStep("job-1", StepParameters)
	store.CompleteStep("job-1", StepExport)
	after := store.Get("job-1")
	if after.HasReviewedCompetences || after.HasGeneratedCV || after.HasReviewedCV {
		t.Fatal("parameters/export completion must not flip phase flags")
	}
}

func TestProgressStoreNotesMerge(t *testing.T) {
	store := NewProgressStore()

	store.UpdateNotes("job-1", StepGenerateCompetences, "emphasize Go")
	store.UpdateNotes("job-1", StepGenerateCV, "shorter summary")
	store.UpdateNotes("job-1", StepGenerateCompetences, "emphasize Go and SQL")

	state := store.Get("job-1")
	if state.Notes[StepGenerateCompetences] != "emphasize Go and SQL" {
		t.Fatalf("unexpected notes: %q", state.Notes[StepGenerateCompetences])
	}
	if state.Notes[StepGenerateCV] != "shorter summary" {
		t.Fatal("notes for other steps must be preserved")
	}

	// Invalid steps are ignored.
	store.UpdateNotes("job-1", StepUnknown, "nope")
	if _, ok := store.Get("job-1").Notes[StepUnknown]; ok {
		t.Fatal("notes for unknown step should not be stored")
	}
}

func TestProgressStoreKeysAreIndependent(t *testing.T) {
	store := NewProgressStore()

	store.CompleteStep("job-1", StepGenerateCompetences)

	if store.Get("job-2").HasGeneratedCompetences {
		t.Fatal("job-2 must not see job-1 progress")
	}
}

func TestProgressStoreReset(t *testing.T) {
	store := NewProgressStore()

	store.CompleteStep("job-1", StepGenerateCompetences)
	store.UpdateNotes("job-1", StepGenerateCompetences, "notes")
	store.Reset("job-1")

	state := store.Get("job-1")
	if state.HasGeneratedCompetences || len(state.Notes) != 0 {
		t.Fatal("reset should restore defaults")
	}
}

func TestProgressStoreSnapshotStaleness(t *testing.T) {
	store := NewProgressStore()

	_, gen := store.Snapshot("job-1")
	if store.Stale("job-1", gen) {
		t.Fatal("snapshot should be fresh before any write")
	}

	store.CompleteStep("job-1", StepGenerateCompetences)
	if !store.Stale("job-1", gen) {
		t.Fatal("snapshot taken before a write must be stale")
	}

	_, gen2 := store.Snapshot("job-1")
	if store.Stale("job-1", gen2) {
		t.Fatal("fresh snapshot should not be stale")
	}
}

func TestProgressStoreSnapshotIsCopy(t *testing.T) {
	store := NewProgressStore()
	store.UpdateNotes("job-1", StepGenerateCV, "original")

	state := store.Get("job-1")
	state.Notes[StepGenerateCV] = "mutated"

	if store.Get("job-1").Notes[StepGenerateCV] != "original" {
		t.Fatal("mutating a returned snapshot must not affect the store")
	}
}
