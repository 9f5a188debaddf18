package wizard

import (
	"context"
	"sync"
	"time"

	"cvwizard-backend/internal/generation"
	"cvwizard-backend/internal/shared/telemetry"
)

// Poll states per document id.
const (
	PollStateIdle     = "idle"
	PollStatePolling  = "polling"
	PollStateTerminal = "terminal"
)

const (
	defaultPollInterval = 2 * time.Second
	pollRetryBaseDelay  = 500 * time.Millisecond
	pollMaxRetries      = 3
)

// StatusPoller watches in-flight documents until they reach a terminal
// status. For any document id there is at most one active poll, and never
// two outstanding status fetches at once: the next fetch is scheduled a
// fixed interval after the previous response settles.
type StatusPoller struct {
	api        generation.API
	interval   time.Duration
	retryDelay time.Duration
	onComplete func(generation.DocumentDTO)
	onError    func(documentID string, err error)

	mu         sync.Mutex
	polling    map[string]bool
	terminal   map[string]string
	lastDocID  string
	lastStatus string
}

// PollerOption customizes a StatusPoller.
type PollerOption func(*StatusPoller)

// WithInterval overrides the fixed delay between settled fetches.
func WithInterval(d time.Duration) PollerOption {
	return func(p *StatusPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithRetryDelay overrides the base backoff delay between retry attempts.
func WithRetryDelay(d time.Duration) PollerOption {
	return func(p *StatusPoller) {
		if d > 0 {
			p.retryDelay = d
		}
	}
}

// NewStatusPoller constructs a poller. onComplete fires exactly once per
// (document id, terminal status) pair; onError fires when a poll gives up
// without observing a terminal status. Either callback may be nil.
func NewStatusPoller(api generation.API, onComplete func(generation.DocumentDTO), onError func(documentID string, err error), opts ...PollerOption) *StatusPoller {
	p := &StatusPoller{
		api:        api,
		interval:   defaultPollInterval,
		retryDelay: pollRetryBaseDelay,
		onComplete: onComplete,
		onError:    onError,
		polling:    make(map[string]bool),
		terminal:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StateOf reports the poll state for a document id.
func (p *StatusPoller) StateOf(documentID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.terminal[documentID]; ok {
		return PollStateTerminal
	}
	if p.polling[documentID] {
		return PollStatePolling
	}
	return PollStateIdle
}

// Watch starts polling the document in a background goroutine. Watching a
// document that is already polled, or whose terminal status was already
// observed, is a no-op.
func (p *StatusPoller) Watch(ctx context.Context, documentID string) {
	if documentID == "" {
		return
	}
	p.mu.Lock()
	if p.polling[documentID] {
		p.mu.Unlock()
		return
	}
	if _, done := p.terminal[documentID]; done {
		p.mu.Unlock()
		return
	}
	p.polling[documentID] = true
	p.mu.Unlock()

	go p.run(ctx, documentID)
}

func (p *StatusPoller) run(ctx context.Context, documentID string) {
	defer func() {
		p.mu.Lock()
		delete(p.polling, documentID)
		p.mu.Unlock()
	}()

	for {
		doc, err := p.fetchWithRetry(ctx, documentID)
		if err != nil {
			p.giveUp(ctx, documentID, err)
			return
		}

		if generation.IsTerminal(doc.Status) {
			p.settle(doc)
			return
		}

		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			return
		}
	}
}

// fetchWithRetry issues one logical status fetch. A missing document is
// final on the first attempt; any other failure gets pollMaxRetries
// additional attempts with doubling backoff.
func (p *StatusPoller) fetchWithRetry(ctx context.Context, documentID string) (generation.DocumentDTO, error) {
	var lastErr error
	delay := p.retryDelay

	for attempt := 0; attempt <= pollMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return generation.DocumentDTO{}, ctx.Err()
			}
			delay *= 2
		}

		doc, err := p.api.GetDocumentStatus(ctx, documentID)
		if err == nil {
			return doc, nil
		}
		if !generation.Retryable(err) {
			return generation.DocumentDTO{}, err
		}
		lastErr = err
		telemetry.Warn("poll.retry", map[string]any{
			"document_id": documentID,
			"attempt":     attempt + 1,
			"error":       err.Error(),
		})
	}

	return generation.DocumentDTO{}, &generation.RetryExhaustedError{Attempts: pollMaxRetries + 1, Last: lastErr}
}

// settle records a terminal observation and fires the completion callback,
// at most once per (document id, status) pair. Redundant observations of a
// status already seen never re-fire.
func (p *StatusPoller) settle(doc generation.DocumentDTO) {
	p.mu.Lock()
	if p.lastDocID == doc.ID && p.lastStatus == doc.Status {
		p.mu.Unlock()
		return
	}
	if seen, ok := p.terminal[doc.ID]; ok && seen == doc.Status {
		p.mu.Unlock()
		return
	}
	p.lastDocID = doc.ID
	p.lastStatus = doc.Status
	p.terminal[doc.ID] = doc.Status
	onComplete := p.onComplete
	p.mu.Unlock()

	telemetry.Info("poll.terminal", map[string]any{
		"document_id": doc.ID,
		"status":      doc.Status,
	})
	if onComplete != nil {
		onComplete(doc)
	}
}

func (p *StatusPoller) giveUp(ctx context.Context, documentID string, err error) {
	if ctx.Err() != nil {
		return
	}
	telemetry.Error("poll.failed", map[string]any{
		"document_id": documentID,
		"error":       err.Error(),
	})
	p.mu.Lock()
	onError := p.onError
	p.mu.Unlock()
	if onError != nil {
		onError(documentID, err)
	}
}
