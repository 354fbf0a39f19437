package service

import "errors"

var (
	// ErrSelfRequest rejects an owner submitting against their own listing.
	ErrSelfRequest = errors.New("cannot request adoption of your own listing")
	// ErrDuplicateRequest signals an active request already exists for the
	// (listing, requester) pair.
	ErrDuplicateRequest = errors.New("adoption request already submitted")
	// ErrRequestNotFound signals there is no active request to act on.
	ErrRequestNotFound = errors.New("adoption request not found")
	// ErrCascadeFailed signals the required request-deletion stage of a
	// listing deletion failed; the listing was not removed.
	ErrCascadeFailed = errors.New("could not remove adoption requests for listing")
	// ErrDeleteFailed signals the final listing-record removal failed after
	// its requests were already cascade-deleted.
	ErrDeleteFailed = errors.New("could not delete listing record")
)

// CleanupWarning records a best-effort blob deletion that failed during a
// listing deletion cascade. Operational only; never shown to end users.
type CleanupWarning struct {
	Resource string // "main_image", "photo", "vaccination_proof"
	URL      string
	Err      error
}

func (w CleanupWarning) String() string {
	return w.Resource + " " + w.URL + ": " + w.Err.Error()
}
