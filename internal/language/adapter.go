package language

import (
	"context"
	"strings"
	"sync"

	"cvwizard-backend/internal/shared/telemetry"
)

// Supported locale codes, internal (lowercase) form. The set is closed;
// anything else is rejected at the boundary.
var supported = map[string]struct{}{
	"en": {},
	"de": {},
	"fr": {},
	"es": {},
	"it": {},
	"nl": {},
	"pt": {},
	"da": {},
	"sv": {},
	"pl": {},
}

// InvalidLocaleError reports a locale code outside the supported set.
type InvalidLocaleError struct {
	Code string
}

func (e *InvalidLocaleError) Error() string {
	return "unsupported locale code: " + e.Code
}

// ToExternal converts an internal locale code to the backend's uppercase
// form, validating against the supported set.
func ToExternal(code string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if _, ok := supported[normalized]; !ok {
		return "", &InvalidLocaleError{Code: code}
	}
	return strings.ToUpper(normalized), nil
}

// ToExternalOrFallback converts like ToExternal but substitutes fallback
// for invalid input, emitting a diagnostic warning instead of failing.
func ToExternalOrFallback(code, fallback string) string {
	converted, err := ToExternal(code)
	if err != nil {
		telemetry.Warn("language.invalid", map[string]any{
			"code":     code,
			"fallback": fallback,
		})
		return strings.ToUpper(strings.TrimSpace(fallback))
	}
	return converted
}

// FromExternal converts a backend locale code to the internal lowercase
// form, validating against the supported set.
func FromExternal(code string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if _, ok := supported[normalized]; !ok {
		return "", &InvalidLocaleError{Code: code}
	}
	return normalized, nil
}

// FromExternalOrFallback converts like FromExternal but substitutes
// fallback for invalid input, emitting a diagnostic warning.
func FromExternalOrFallback(code, fallback string) string {
	converted, err := FromExternal(code)
	if err != nil {
		telemetry.Warn("language.invalid", map[string]any{
			"code":     code,
			"fallback": fallback,
		})
		return strings.ToLower(strings.TrimSpace(fallback))
	}
	return converted
}

// Setter applies locale changes race-protected: each call mints a new
// token, and a result is applied only if its token is still the latest
// when the call resolves. The most-recently-dispatched request wins, no
// matter in which order responses arrive.
type Setter struct {
	mu        sync.Mutex
	lastToken uint64
	value     string
}

// NewSetter constructs a Setter with the given initial value.
func NewSetter(initial string) *Setter {
	return &Setter{value: initial}
}

// Value returns the currently applied locale.
func (s *Setter) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set dispatches apply for the given code and applies its result only if
// no later Set was dispatched in the meantime. Superseded results are
// discarded silently; the underlying call is never cancelled.
func (s *Setter) Set(ctx context.Context, code string, apply func(ctx context.Context, code string) (string, error)) (bool, error) {
	s.mu.Lock()
	s.lastToken++
	token := s.lastToken
	s.mu.Unlock()

	result, err := apply(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.lastToken {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.value = result
	return true, nil
}
