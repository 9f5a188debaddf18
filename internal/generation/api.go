package generation

import (
	"context"
	"time"
)

// Document status values reported by the generation backend.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// IsTerminal reports whether a document status is final.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// DocumentDTO is the generation backend's view of a CV document.
type DocumentDTO struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PersonalInfo carries the applicant details included in a generated CV.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
}

// GenerateCompetencesInput captures the inputs for competence generation.
type GenerateCompetencesInput struct {
	CVText         string `json:"cvText"`
	JobDescription string `json:"jobDescription"`
	Notes          string `json:"notes,omitempty"`
}

// CompetencesResult is the raw competence generation response.
type CompetencesResult struct {
	CoreCompetences []string `json:"coreCompetences"`
}

// GenerateDocumentInput captures the inputs for full CV generation.
type GenerateDocumentInput struct {
	CVText              string       `json:"cvText"`
	JobDescription      string       `json:"jobDescription"`
	ApprovedCompetences []string     `json:"approvedCompetences"`
	PersonalInfo        PersonalInfo `json:"personalInfo"`
	Notes               string       `json:"notes,omitempty"`
}

// DocumentUpdate is a partial update applied to an existing document.
type DocumentUpdate struct {
	Content *string `json:"content,omitempty"`
}

// API abstracts the asynchronous document-generation backend.
type API interface {
	GenerateCompetences(ctx context.Context, input GenerateCompetencesInput) (CompetencesResult, error)
	GenerateDocument(ctx context.Context, input GenerateDocumentInput) (DocumentDTO, error)
	GetDocumentStatus(ctx context.Context, documentID string) (DocumentDTO, error)
	UpdateDocument(ctx context.Context, documentID string, update DocumentUpdate) (DocumentDTO, error)
	DeleteDocument(ctx context.Context, documentID string) error
}
