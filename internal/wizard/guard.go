package wizard

// stepGates is the declarative dependency table: a step is reachable iff
// its gate passes against the job's StepState.
var stepGates = map[Step]func(StepState) bool{
	StepParameters:          func(StepState) bool { return true },
	StepGenerateCompetences: func(StepState) bool { return true },
	StepEditCompetences:     func(s StepState) bool { return s.HasGeneratedCompetences },
	StepGenerateCV:          func(s StepState) bool { return s.HasReviewedCompetences },
	StepEditCV:              func(s StepState) bool { return s.HasGeneratedCV },
	StepExport:              func(s StepState) bool { return s.HasReviewedCV },
}

// IsStepAllowed reports whether the target step is reachable given the
// current state. Unrecognized steps fail open: navigation is never blocked
// on a malformed identifier.
func IsStepAllowed(target Step, state StepState) bool {
	gate, ok := stepGates[target]
	if !ok {
		return true
	}
	return gate(state)
}

// RedirectStep resolves where a disallowed navigation should land: the
// earliest unmet prerequisite in the dependency chain, found by walking
// the step order backwards from the target to the first reachable step.
// Allowed targets are returned unchanged.
func RedirectStep(target Step, state StepState) Step {
	if IsStepAllowed(target, state) {
		return target
	}

	idx := len(Steps) - 1
	for i, step := range Steps {
		if step == target {
			idx = i
			break
		}
	}
	for i := idx - 1; i > 0; i-- {
		if IsStepAllowed(Steps[i], state) {
			return Steps[i]
		}
	}
	return StepParameters
}
