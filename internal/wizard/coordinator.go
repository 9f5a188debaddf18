package wizard

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cvwizard-backend/internal/generation"
	"cvwizard-backend/internal/shared/metrics"
	"cvwizard-backend/internal/shared/telemetry"
)

// OpState is the observable pending/error snapshot of one operation kind.
type OpState struct {
	Pending bool   `json:"pending"`
	Message string `json:"message,omitempty"`
}

// Coordinator drives one wizard flow's generation requests: it issues
// backend calls, tracks per-operation pending/error/result state, and maps
// raw responses into domain objects.
//
// Superseded requests of the same kind are not cancelled; whichever call
// settles last determines the visible state. This is a known limitation,
// accepted because the transport offers no true cancellation.
type Coordinator struct {
	api   generation.API
	cache *DocumentCache

	mu            sync.Mutex
	competences   []CoreCompetence
	competencesOp OpState
	document      *Document
	documentOp    OpState
	genStartedMs  float64
}

// NewCoordinator constructs a Coordinator bound to a backend and cache.
func NewCoordinator(api generation.API, cache *DocumentCache) *Coordinator {
	return &Coordinator{api: api, cache: cache}
}

// GenerateCompetences requests competence suggestions and maps each phrase
// to a fresh unapproved CoreCompetence with a unique id. Any failure is
// collapsed to one fixed message; the raw error is only logged.
func (c *Coordinator) GenerateCompetences(ctx context.Context, input generation.GenerateCompetencesInput) ([]CoreCompetence, error) {
	c.mu.Lock()
	c.competencesOp = OpState{Pending: true}
	c.mu.Unlock()

	result, err := c.api.GenerateCompetences(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		telemetry.Error("competences.generate.failed", map[string]any{
			"error": err.Error(),
		})
		c.competencesOp = OpState{Message: ErrGenerateCompetencesFailed.Error()}
		return nil, ErrGenerateCompetencesFailed
	}

	competences := make([]CoreCompetence, 0, len(result.CoreCompetences))
	for _, text := range result.CoreCompetences {
		competences = append(competences, CoreCompetence{
			ID:   uuid.NewString(),
			Text: text,
		})
	}
	c.competences = competences
	c.competencesOp = OpState{}
	return cloneCompetences(competences), nil
}

// ApproveCompetence flips the approval flag on exactly one competence,
// leaving every other entry untouched.
func (c *Coordinator) ApproveCompetence(id string, approved bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.competences {
		if c.competences[i].ID == id {
			c.competences[i].IsApproved = approved
			return nil
		}
	}
	return ErrCompetenceNotFound
}

// Competences returns a snapshot of the current competence set.
func (c *Coordinator) Competences() []CoreCompetence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneCompetences(c.competences)
}

// ApprovedCompetences returns the approved phrases, in order.
func (c *Coordinator) ApprovedCompetences() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, comp := range c.competences {
		if comp.IsApproved {
			out = append(out, comp.Text)
		}
	}
	return out
}

// GenerateDocument starts CV generation and records the resulting document.
func (c *Coordinator) GenerateDocument(ctx context.Context, input generation.GenerateDocumentInput) (Document, error) {
	metrics.IncGenerationStarted()
	c.mu.Lock()
	c.documentOp = OpState{Pending: true}
	c.genStartedMs = metrics.NowMillis()
	c.mu.Unlock()

	dto, err := c.api.GenerateDocument(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		telemetry.Error("cv.generate.failed", map[string]any{
			"error": err.Error(),
		})
		metrics.IncGenerationFailed()
		c.documentOp = OpState{Message: ErrGenerateCVFailed.Error()}
		return Document{}, ErrGenerateCVFailed
	}

	doc := fromDTO(dto)
	c.document = &doc
	c.documentOp = OpState{}
	c.observeTerminalLocked(doc.Status)
	c.cache.PutDocument(doc)
	c.cache.InvalidateList()
	return doc, nil
}

// UpdateDocument applies a content update to the current document. On
// success the local state is replaced and both the single-document cache
// entry and the list cache are invalidated.
func (c *Coordinator) UpdateDocument(ctx context.Context, update generation.DocumentUpdate) (Document, error) {
	c.mu.Lock()
	if c.document == nil {
		c.mu.Unlock()
		return Document{}, ErrNoDocument
	}
	documentID := c.document.ID
	c.documentOp = OpState{Pending: true}
	c.mu.Unlock()

	dto, err := c.api.UpdateDocument(ctx, documentID, update)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		telemetry.Error("cv.update.failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		c.documentOp = OpState{Message: ErrGenerateCVFailed.Error()}
		return Document{}, ErrGenerateCVFailed
	}

	doc := fromDTO(dto)
	c.document = &doc
	c.documentOp = OpState{}
	c.cache.InvalidateDocument(doc.ID)
	c.cache.InvalidateList()
	return doc, nil
}

// DeleteDocument removes the current document locally and on the backend.
func (c *Coordinator) DeleteDocument(ctx context.Context) error {
	c.mu.Lock()
	if c.document == nil {
		c.mu.Unlock()
		return ErrNoDocument
	}
	documentID := c.document.ID
	c.mu.Unlock()

	if err := c.api.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	c.mu.Lock()
	c.document = nil
	c.mu.Unlock()
	c.cache.InvalidateDocument(documentID)
	c.cache.InvalidateList()
	return nil
}

// ApplyStatus folds a status observation (typically from the poller) into
// the coordinator's exposed document state and refreshes the cache.
func (c *Coordinator) ApplyStatus(dto generation.DocumentDTO) {
	doc := fromDTO(dto)

	c.mu.Lock()
	if c.document == nil || c.document.ID == doc.ID {
		c.document = &doc
		c.observeTerminalLocked(doc.Status)
	}
	c.mu.Unlock()

	c.cache.PutDocument(doc)
	c.cache.InvalidateList()
}

// Document returns the current document, if one exists.
func (c *Coordinator) Document() (Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.document == nil {
		return Document{}, false
	}
	return *c.document, true
}

// CompetencesState returns the pending/error snapshot for competence generation.
func (c *Coordinator) CompetencesState() OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.competencesOp
}

// DocumentState returns the pending/error snapshot for document operations.
func (c *Coordinator) DocumentState() OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.documentOp
}

// Reset discards in-flight competences and document state for a new pass.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.competences = nil
	c.competencesOp = OpState{}
	c.document = nil
	c.documentOp = OpState{}
}

// observeTerminalLocked records generation outcome metrics once a status
// turns terminal. Callers hold c.mu.
func (c *Coordinator) observeTerminalLocked(status string) {
	if !generation.IsTerminal(status) {
		return
	}
	switch status {
	case generation.StatusCompleted:
		metrics.IncGenerationCompleted()
	case generation.StatusFailed:
		metrics.IncGenerationFailed()
	}
	if c.genStartedMs > 0 {
		metrics.ObserveGenerationDurationMs(metrics.NowMillis() - c.genStartedMs)
		c.genStartedMs = 0
	}
}

func fromDTO(dto generation.DocumentDTO) Document {
	return Document{
		ID:        dto.ID,
		Status:    dto.Status,
		Content:   dto.Content,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
}

func cloneCompetences(in []CoreCompetence) []CoreCompetence {
	out := make([]CoreCompetence, len(in))
	copy(out, in)
	return out
}
