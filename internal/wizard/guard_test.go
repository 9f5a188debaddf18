package wizard

import "testing"

func TestIsStepAllowed(t *testing.T) {
	cases := []struct {
		name   string
		state  StepState
		target Step
		want   bool
	}{
		{"parameters always", StepState{}, StepParameters, true},
		{"generate competences always", StepState{}, StepGenerateCompetences, true},
		{"edit competences blocked fresh", StepState{}, StepEditCompetences, false},
		{"edit competences after generation", StepState{HasGeneratedCompetences: true}, StepEditCompetences, true},
		{"generate cv blocked without review", StepState{HasGeneratedCompetences: true}, StepGenerateCV, false},
		{"generate cv after review", StepState{HasReviewedCompetences: true}, StepGenerateCV, true},
		{"edit cv needs generated cv", StepState{HasReviewedCompetences: true}, StepEditCV, false},
		{"edit cv after generation", StepState{HasGeneratedCV: true}, StepEditCV, true},
		{"export needs reviewed cv", StepState{HasGeneratedCV: true}, StepExport, false},
		{"export after review", StepState{HasReviewedCV: true}, StepExport, true},
		{"unknown fails open", StepState{}, StepUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsStepAllowed(tc.target, tc.state); got != tc.want {
				t.Fatalf("IsStepAllowed(%v) = %v, want %v", tc.target, got, tc.want)
			}
		})
	}
}

func TestRedirectStep(t *testing.T) {
	cases := []struct {
		name   string
		state  StepState
		target Step
		want   Step
	}{
		{"allowed target unchanged", StepState{HasGeneratedCompetences: true}, StepEditCompetences, StepEditCompetences},
		{"export fresh lands on generate competences", StepState{}, StepExport, StepGenerateCompetences},
		{"edit cv without generation", StepState{HasReviewedCompetences: true}, StepEditCV, StepGenerateCV},
		{"export mid flow", StepState{HasGeneratedCompetences: true, HasReviewedCompetences: true}, StepExport, StepGenerateCV},
		{"edit competences fresh", StepState{}, StepEditCompetences, StepGenerateCompetences},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RedirectStep(tc.target, tc.state); got != tc.want {
				t.Fatalf("RedirectStep(%v) = %v, want %v", tc.target, got, tc.want)
			}
		})
	}
}
