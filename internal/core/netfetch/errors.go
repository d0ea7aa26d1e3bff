package netfetch

import (
	"errors"
	"fmt"

	"github.com/dvsite/interactome/internal/core/resolve"
)

// ErrNoResolvableIdentifiers means every input term came back unresolved or
// ambiguous. Fatal for the call: retrying cannot help, the caller has to fix
// its input.
var ErrNoResolvableIdentifiers = errors.New("no identifiers could be resolved")

// ValidationError rejects bad options before any I/O.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NetworkFetchError wraps a failed remote network call. Retryable; nothing
// was written to the cache.
type NetworkFetchError struct {
	Err error
}

func (e *NetworkFetchError) Error() string { return fmt.Sprintf("network fetch failed: %v", e.Err) }
func (e *NetworkFetchError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may retry the whole call. Resolution
// and fetch failures are transient remote conditions; validation problems
// and an unresolvable input set are not.
func Retryable(err error) bool {
	var fetchErr *NetworkFetchError
	if errors.As(err, &fetchErr) {
		return true
	}
	var resErr *resolve.ResolutionError
	return errors.As(err, &resErr)
}
