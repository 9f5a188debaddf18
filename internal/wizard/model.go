package wizard

import "time"

// StepState tracks per-job wizard progress. Flags only move forward within
// one pass; Reset is the single way back.
type StepState struct {
	HasGeneratedCompetences bool
	HasReviewedCompetences  bool
	HasGeneratedCV          bool
	HasReviewedCV           bool
	Notes                   map[Step]string
}

func newStepState() StepState {
	return StepState{Notes: map[Step]string{}}
}

// CoreCompetence is one AI-suggested skill phrase pending human approval.
type CoreCompetence struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsApproved bool   `json:"isApproved"`
}

// Document is the CV artifact under construction.
type Document struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
