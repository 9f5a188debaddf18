package wizard

import "errors"

var (
	// ErrCompetenceNotFound is returned when approving an unknown competence id.
	ErrCompetenceNotFound = errors.New("competence not found")

	// ErrNoDocument is returned by operations that need a current document.
	ErrNoDocument = errors.New("no document generated yet")

	// Fixed user-facing failure messages. Raw backend errors stay in the
	// logs; the UI only ever sees these.
	ErrGenerateCompetencesFailed = errors.New("Failed to generate competences")
	ErrGenerateCVFailed          = errors.New("Failed to generate CV")
)
