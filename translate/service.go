// Package translate turns source strings into target-language text with a
// language model, and applies that to whole string catalogs.
package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/minios-linux/xctranslate/langmeta"
)

// Service translates a single string.
//
// An empty text translates to "" without contacting any backend. comment is
// advisory context for the translator; "" means no context. On success the
// result is non-empty.
type Service interface {
	Translate(ctx context.Context, text string, target langmeta.Language, comment string) (string, error)
}

var (
	// ErrNoTranslationReturned means the backend answered without content.
	ErrNoTranslationReturned = errors.New("no translation returned")
	// ErrUnknown is returned when a translation failed without a recorded cause.
	ErrUnknown = errors.New("unknown translation failure")
)

// BackendError wraps a failure of the backend client: transport, timeout,
// authentication, rate limiting or a malformed response.
type BackendError struct {
	// Attempt is the 1-based attempt that produced the error.
	Attempt int
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (attempt %d): %v", e.Attempt, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
