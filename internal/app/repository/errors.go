package repository

import (
	"errors"
	"fmt"

	"github.com/fieldside/strikerlog/internal/app/storage"
	"github.com/fieldside/strikerlog/internal/database"
)

var (
	// ErrNotAuthenticated indicates a missing or expired session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrStoreUnavailable indicates a network or backend failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound indicates an update or delete on a missing id.
	ErrNotFound = storage.ErrNotFound
)

// classify maps raw store errors onto the façade taxonomy. Not-found passes
// through; auth rejections from the backend become ErrNotAuthenticated;
// everything else is a store failure with the original message attached.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return err
	}
	var apiErr *database.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
