package wizard

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"cvwizard-backend/internal/generation"
	"cvwizard-backend/internal/jobs"
	"cvwizard-backend/internal/language"
	"cvwizard-backend/internal/profiles"
	"cvwizard-backend/internal/shared/server/middleware"
	"cvwizard-backend/internal/shared/server/respond"
)

// Handler exposes the wizard orchestrator over HTTP. Step identifiers
// arriving in URLs are canonicalized at this boundary only; everything
// below works on the Step enum.
type Handler struct {
	sessions *SessionRegistry
	progress *ProgressStore
	poller   *StatusPoller
	jobs     *jobs.Service
	profiles *profiles.Service

	mu      sync.Mutex
	watched map[string]string // document id -> job id
}

// NewHandler builds the wizard handler together with its status poller.
func NewHandler(api generation.API, cache *DocumentCache, progress *ProgressStore, jobsSvc *jobs.Service, profilesSvc *profiles.Service, defaultLanguage string, pollerOpts ...PollerOption) *Handler {
	h := &Handler{
		sessions: NewSessionRegistry(api, cache, defaultLanguage),
		progress: progress,
		jobs:     jobsSvc,
		profiles: profilesSvc,
		watched:  make(map[string]string),
	}
	h.poller = NewStatusPoller(api, h.onDocumentSettled, nil, pollerOpts...)
	return h
}

// RegisterRoutes attaches wizard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/:id/wizard", h.getState)
	rg.GET("/jobs/:id/wizard/steps/:step", h.checkStep)
	rg.POST("/jobs/:id/wizard/steps/:step/complete", h.completeStep)
	rg.PUT("/jobs/:id/wizard/steps/:step/notes", h.updateNotes)
	rg.POST("/jobs/:id/wizard/reset", h.reset)
	rg.PUT("/jobs/:id/wizard/language", h.setLanguage)
	rg.POST("/jobs/:id/wizard/competences", h.generateCompetences)
	rg.PUT("/jobs/:id/wizard/competences/:competenceId", h.approveCompetence)
	rg.POST("/jobs/:id/wizard/cv", h.generateCV)
	rg.PUT("/jobs/:id/wizard/cv", h.updateCV)
	rg.DELETE("/jobs/:id/wizard/cv", h.deleteCV)
	rg.GET("/jobs/:id/wizard/cv/status", h.cvStatus)
}

// onDocumentSettled is the poller's completion callback: it folds the
// terminal document into the owning session and, on success, marks the
// generation step complete.
func (h *Handler) onDocumentSettled(doc generation.DocumentDTO) {
	h.mu.Lock()
	jobID, ok := h.watched[doc.ID]
	h.mu.Unlock()
	if !ok {
		return
	}

	session := h.sessions.Get(jobID)
	session.Flow.ApplyStatus(doc)
	if doc.Status == generation.StatusCompleted {
		h.progress.CompleteStep(jobID, StepGenerateCV)
	}
}

type stateResponse struct {
	JobID         string            `json:"jobId"`
	Steps         stepFlags         `json:"steps"`
	Notes         map[string]string `json:"notes"`
	Language      string            `json:"language"`
	Competences   []CoreCompetence  `json:"competences"`
	CompetencesOp OpState           `json:"competencesOp"`
	Document      *Document         `json:"document"`
	DocumentOp    OpState           `json:"documentOp"`
}

type stepFlags struct {
	HasGeneratedCompetences bool `json:"hasGeneratedCompetences"`
	HasReviewedCompetences  bool `json:"hasReviewedCompetences"`
	HasGeneratedCV          bool `json:"hasGeneratedCV"`
	HasReviewedCV           bool `json:"hasReviewedCV"`
}

func (h *Handler) stateFor(jobID string) stateResponse {
	state := h.progress.Get(jobID)
	session := h.sessions.Get(jobID)

	notes := make(map[string]string, len(state.Notes))
	for step, text := range state.Notes {
		notes[step.String()] = text
	}

	resp := stateResponse{
		JobID: jobID,
		Steps: stepFlags{
			HasGeneratedCompetences: state.HasGeneratedCompetences,
			HasReviewedCompetences:  state.HasReviewedCompetences,
			HasGeneratedCV:          state.HasGeneratedCV,
			HasReviewedCV:           state.HasReviewedCV,
		},
		Notes:         notes,
		Language:      session.Language.Value(),
		Competences:   session.Flow.Competences(),
		CompetencesOp: session.Flow.CompetencesState(),
		DocumentOp:    session.Flow.DocumentState(),
	}
	if doc, ok := session.Flow.Document(); ok {
		resp.Document = &doc
	}
	return resp
}

// requireJob loads the job, writing the error response itself on failure.
func (h *Handler) requireJob(c *gin.Context) (jobs.Job, bool) {
	userID := middleware.UserIDFromContext(c)
	job, err := h.jobs.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, jobs.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "job id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch job", nil)
		}
		return jobs.Job{}, false
	}
	return job, true
}

func (h *Handler) getState(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}
	respond.OK(c, h.stateFor(job.ID))
}

func (h *Handler) checkStep(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	state := h.progress.Get(job.ID)
	step, known := ParseStep(c.Param("step"))
	if !known {
		// Malformed identifiers fail open.
		respond.OK(c, gin.H{"step": c.Param("step"), "allowed": true, "redirectTo": nil})
		return
	}

	allowed := IsStepAllowed(step, state)
	var redirect any
	if !allowed {
		redirect = RedirectStep(step, state).String()
	}
	respond.OK(c, gin.H{"step": step.String(), "allowed": allowed, "redirectTo": redirect})
}

func (h *Handler) completeStep(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	step, known := ParseStep(c.Param("step"))
	if !known {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown step", nil)
		return
	}

	h.progress.CompleteStep(job.ID, step)
	respond.OK(c, h.stateFor(job.ID))
}

func (h *Handler) updateNotes(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	step, known := ParseStep(c.Param("step"))
	if !known {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown step", nil)
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	h.progress.UpdateNotes(job.ID, step, req.Notes)
	respond.OK(c, h.stateFor(job.ID))
}

func (h *Handler) reset(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	h.progress.Reset(job.ID)
	h.sessions.Reset(job.ID)
	respond.OK(c, h.stateFor(job.ID))
}

// setLanguage updates the flow's language preference and persists it on
// the job record. Concurrent updates resolve most-recent-request-wins;
// a superseded request reports applied=false.
func (h *Handler) setLanguage(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	session := h.sessions.Get(job.ID)
	applied, err := session.Language.Set(c.Request.Context(), req.Language, func(ctx context.Context, code string) (string, error) {
		normalized, err := language.FromExternal(code)
		if err != nil {
			return "", err
		}
		job.Language = normalized
		if _, err := h.jobs.Update(ctx, job); err != nil {
			return "", err
		}
		return normalized, nil
	})
	if err != nil {
		var invalid *language.InvalidLocaleError
		if errors.As(err, &invalid) {
			respond.Error(c, http.StatusBadRequest, "validation_error", invalid.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update language", nil)
		return
	}

	respond.OK(c, gin.H{"language": session.Language.Value(), "applied": applied})
}

func (h *Handler) generateCompetences(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(c)

	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	profile, err := h.profiles.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "a profile with cv text is required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		return
	}

	if req.Notes != "" {
		h.progress.UpdateNotes(job.ID, StepGenerateCompetences, req.Notes)
	}

	session := h.sessions.Get(job.ID)
	competences, err := session.Flow.GenerateCompetences(c.Request.Context(), generation.GenerateCompetencesInput{
		CVText:         profile.CVText,
		JobDescription: job.Description,
		Notes:          req.Notes,
	})
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "generation_failed", err.Error(), nil)
		return
	}

	h.progress.CompleteStep(job.ID, StepGenerateCompetences)
	respond.OK(c, gin.H{"competences": competences})
}

func (h *Handler) approveCompetence(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	session := h.sessions.Get(job.ID)
	if err := session.Flow.ApproveCompetence(c.Param("competenceId"), req.Approved); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "competence not found", nil)
		return
	}

	respond.OK(c, gin.H{"competences": session.Flow.Competences()})
}

func (h *Handler) generateCV(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(c)

	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	profile, err := h.profiles.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "a profile with cv text is required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		return
	}

	session := h.sessions.Get(job.ID)
	doc, err := session.Flow.GenerateDocument(c.Request.Context(), generation.GenerateDocumentInput{
		CVText:              profile.CVText,
		JobDescription:      job.Description,
		ApprovedCompetences: session.Flow.ApprovedCompetences(),
		PersonalInfo: generation.PersonalInfo{
			FullName: profile.FullName,
			Email:    profile.Email,
			Phone:    profile.Phone,
			City:     profile.City,
		},
		Notes: req.Notes,
	})
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "generation_failed", err.Error(), nil)
		return
	}

	h.watch(job.ID, doc)
	respond.Accepted(c, gin.H{"document": doc})
}

// watch starts background polling for a non-terminal document and records
// which job owns it so the completion callback can route the result.
func (h *Handler) watch(jobID string, doc Document) {
	if generation.IsTerminal(doc.Status) {
		if doc.Status == generation.StatusCompleted {
			h.progress.CompleteStep(jobID, StepGenerateCV)
		}
		return
	}
	h.mu.Lock()
	h.watched[doc.ID] = jobID
	h.mu.Unlock()
	h.poller.Watch(context.Background(), doc.ID)
}

func (h *Handler) updateCV(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	var req struct {
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "content is required", nil)
		return
	}

	session := h.sessions.Get(job.ID)
	doc, err := session.Flow.UpdateDocument(c.Request.Context(), generation.DocumentUpdate{Content: req.Content})
	if err != nil {
		if errors.Is(err, ErrNoDocument) {
			respond.Error(c, http.StatusNotFound, "not_found", "no document to update", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "generation_failed", err.Error(), nil)
		return
	}

	h.progress.CompleteStep(job.ID, StepEditCV)
	respond.OK(c, gin.H{"document": doc})
}

func (h *Handler) deleteCV(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	session := h.sessions.Get(job.ID)
	if err := session.Flow.DeleteDocument(c.Request.Context()); err != nil {
		if errors.Is(err, ErrNoDocument) {
			respond.Error(c, http.StatusNotFound, "not_found", "no document to delete", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "generation_failed", "failed to delete document", nil)
		return
	}

	respond.NoContent(c)
}

func (h *Handler) cvStatus(c *gin.Context) {
	job, ok := h.requireJob(c)
	if !ok {
		return
	}

	session := h.sessions.Get(job.ID)
	doc, exists := session.Flow.Document()
	if !exists {
		respond.Error(c, http.StatusNotFound, "not_found", "no document for this job", nil)
		return
	}

	if !generation.IsTerminal(doc.Status) {
		h.mu.Lock()
		h.watched[doc.ID] = job.ID
		h.mu.Unlock()
		h.poller.Watch(context.Background(), doc.ID)
	}

	respond.OK(c, gin.H{
		"document":  doc,
		"pollState": h.poller.StateOf(doc.ID),
	})
}
