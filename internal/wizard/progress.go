package wizard

import "sync"

// ProgressStore is an injectable, keyed record of wizard progress, one
// StepState per job id. State lives in session memory only; a process
// restart loses it by design.
//
// Every mutation bumps the key's generation before writing, so a slow read
// snapshotted under an older generation can be detected and discarded
// instead of clobbering the newer write.
type ProgressStore struct {
	mu      sync.Mutex
	entries map[string]*progressEntry
}

type progressEntry struct {
	state StepState
	gen   uint64
}

// NewProgressStore constructs an empty ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{entries: make(map[string]*progressEntry)}
}

// Get returns the StepState for a job, defaulting to all-false/empty for
// unseen ids. The returned value is a copy; mutations go through the store.
func (s *ProgressStore) Get(jobID string) StepState {
	state, _ := s.Snapshot(jobID)
	return state
}

// Snapshot returns the StepState together with the key's current
// generation. Callers holding the state across suspension points compare
// the generation via Stale before acting on it.
func (s *ProgressStore) Snapshot(jobID string) (StepState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[jobID]
	if !ok {
		return newStepState(), 0
	}
	return cloneState(entry.state), entry.gen
}

// Stale reports whether a snapshot taken at gen has been superseded by a
// later write to the same key.
func (s *ProgressStore) Stale(jobID string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[jobID]
	if !ok {
		return gen != 0
	}
	return entry.gen != gen
}

// CompleteStep marks the phase belonging to step as done. Completing an
// already-complete step is a no-op; flags never move backward here.
func (s *ProgressStore) CompleteStep(jobID string, step Step) {
	s.mutate(jobID, func(state *StepState) {
		switch step {
		case StepGenerateCompetences:
			state.HasGeneratedCompetences = true
		case StepEditCompetences:
			state.HasReviewedCompetences = true
		case StepGenerateCV:
			state.HasGeneratedCV = true
		case StepEditCV:
			state.HasReviewedCV = true
		}
	})
}

// UpdateNotes merges free-text notes for one step, leaving other steps'
// notes untouched.
func (s *ProgressStore) UpdateNotes(jobID string, step Step, text string) {
	if !step.Valid() {
		return
	}
	s.mutate(jobID, func(state *StepState) {
		state.Notes[step] = text
	})
}

// Reset restores the job's wizard state to defaults.
func (s *ProgressStore) Reset(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[jobID]
	if !ok {
		return
	}
	entry.gen++
	entry.state = newStepState()
}

func (s *ProgressStore) mutate(jobID string, apply func(*StepState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[jobID]
	if !ok {
		entry = &progressEntry{state: newStepState()}
		s.entries[jobID] = entry
	}
	// Bump first: any read snapshotted before this write is now stale.
	entry.gen++
	apply(&entry.state)
}

func cloneState(state StepState) StepState {
	out := state
	out.Notes = make(map[Step]string, len(state.Notes))
	for step, text := range state.Notes {
		out.Notes[step] = text
	}
	return out
}
