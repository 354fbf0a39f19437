package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"pawhome/internal/domain"
	"pawhome/internal/models"
	"pawhome/internal/repository"

	"gorm.io/gorm"
)

// Store interfaces consumed by the adoption workflow. The gorm repositories
// satisfy them; tests run the engine against in-memory fakes.

type ListingStore interface {
	GetByID(id uint) (*models.Listing, error)
	Delete(id uint) error
}

type RequestStore interface {
	Insert(req *models.AdoptionRequest) error
	FindActive(listingID, requesterID uint) (*models.AdoptionRequest, error)
	FindLatest(listingID, requesterID uint) (*models.AdoptionRequest, error)
	GetByID(id uint) (*models.AdoptionRequest, error)
	Delete(listingID, requesterID uint) error
	DeleteAllForListing(listingID uint) (int64, error)
	Approve(id uint) error
	Reject(id uint) error
}

type MediaStore interface {
	DeleteByURL(ctx context.Context, url string) error
}

type NotificationSink interface {
	Enqueue(userID uint, notifType, message, link string) error
}

// AdoptionService keeps a listing, its adoption requests, dependent media and
// outbound notifications mutually consistent. It holds no locks and opens no
// cross-store transactions; consistency comes from stage ordering and
// idempotent best-effort steps.
type AdoptionService struct {
	listings ListingStore
	requests RequestStore
	media    MediaStore
	notifier NotificationSink
}

func NewAdoptionService(listings ListingStore, requests RequestStore, media MediaStore, notifier NotificationSink) *AdoptionService {
	return &AdoptionService{
		listings: listings,
		requests: requests,
		media:    media,
		notifier: notifier,
	}
}

// SubmitRequest creates a pending adoption request for the listing. Dedup is
// enforced by the store's unique index, not an application-level pre-check,
// so two racing submitters resolve to exactly one winner.
func (s *AdoptionService) SubmitRequest(listingID, requesterID, ownerID uint, listingName string) (*models.AdoptionRequest, error) {
	if requesterID == ownerID {
		return nil, ErrSelfRequest
	}
	req := &models.AdoptionRequest{
		ListingID:   listingID,
		RequesterID: requesterID,
		OwnerID:     ownerID,
		Status:      domain.RequestStatusPending,
	}
	if err := s.requests.Insert(req); err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveRequest) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}
	s.notify(ownerID, domain.NotifTypeAdoptionRequest,
		fmt.Sprintf("Someone wants to adopt %s", listingName),
		listingLink(listingID))
	return req, nil
}

// CancelRequest removes the requester's active request for the listing.
func (s *AdoptionService) CancelRequest(listingID, requesterID uint) error {
	req, err := s.requests.FindActive(listingID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if err := s.requests.Delete(listingID, requesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	s.notify(req.OwnerID, domain.NotifTypeAdoptionCancelled,
		"An adoption request was cancelled",
		listingLink(listingID))
	return nil
}

// ApproveRequest marks the request approved on behalf of the listing owner
// and notifies the requester. Only structural checks happen here; who may
// approve is the caller's policy.
func (s *AdoptionService) ApproveRequest(requestID, ownerID uint) (*models.AdoptionRequest, error) {
	req, err := s.requests.GetByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.OwnerID != ownerID {
		return nil, ErrRequestNotFound
	}
	if err := s.requests.Approve(requestID); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatusApproved
	s.notify(req.RequesterID, domain.NotifTypeAdoptionApproved,
		"Your adoption request was approved. You may contact the owner.",
		listingLink(req.ListingID))
	return req, nil
}

// RejectRequest marks the request rejected and notifies the requester. The
// rejected row is retained for history but no longer blocks resubmission.
func (s *AdoptionService) RejectRequest(requestID, ownerID uint) (*models.AdoptionRequest, error) {
	req, err := s.requests.GetByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.OwnerID != ownerID {
		return nil, ErrRequestNotFound
	}
	if err := s.requests.Reject(requestID); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatusRejected
	s.notify(req.RequesterID, domain.NotifTypeAdoptionRejected,
		"Your adoption request was declined.",
		listingLink(req.ListingID))
	return req, nil
}

// RequestStatusFor derives the viewer's relation to the listing on demand:
// none, pending, approved or rejected. Cancelled requests are deleted, so
// they surface as none.
func (s *AdoptionService) RequestStatusFor(listingID, viewerID uint) (string, error) {
	req, err := s.requests.FindLatest(listingID, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RequestStatusNone, nil
		}
		return "", err
	}
	return req.Status, nil
}

// DeleteListing runs the deletion cascade:
//
//  1. delete every adoption request referencing the listing — required;
//     failure aborts with ErrCascadeFailed so a listing never disappears
//     while requests still point at it;
//  2. delete the main image, each additional photo, and any vaccination-proof
//     blob embedded in the health info — best-effort, unordered, concurrent;
//     failures come back as CleanupWarnings;
//  3. delete the listing record — failure surfaces ErrDeleteFailed (the
//     record is by then unreferenced, so retrying the whole delete is safe).
func (s *AdoptionService) DeleteListing(ctx context.Context, listing *models.Listing) ([]CleanupWarning, error) {
	count, err := s.requests.DeleteAllForListing(listing.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCascadeFailed, err)
	}
	if count > 0 {
		log.Printf("[workflow] listing %d: cascade-deleted %d adoption requests", listing.ID, count)
	}

	var (
		mu       sync.Mutex
		warnings []CleanupWarning
		wg       sync.WaitGroup
	)
	deleteBlob := func(resource, url string) {
		if url == "" {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.media.DeleteByURL(ctx, url); err != nil {
				log.Printf("[workflow] listing %d: %s cleanup failed for %s: %v", listing.ID, resource, url, err)
				mu.Lock()
				warnings = append(warnings, CleanupWarning{Resource: resource, URL: url, Err: err})
				mu.Unlock()
			}
		}()
	}

	deleteBlob("main_image", listing.MainImageURL)
	for _, url := range listing.PhotoURLs() {
		deleteBlob("photo", url)
	}
	deleteBlob("vaccination_proof", ExtractVaccinationProofURL(listing.HealthInfo))
	wg.Wait()

	if err := s.listings.Delete(listing.ID); err != nil {
		// Requests are already gone: the record is orphaned but unreferenced.
		// Surfaced to operators here rather than silently retried.
		log.Printf("[workflow] listing %d: record removal failed, listing orphaned: %v", listing.ID, err)
		return warnings, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return warnings, nil
}

// notify is best-effort by design: failures are logged and never propagated
// to the primary operation.
func (s *AdoptionService) notify(userID uint, notifType, message, link string) {
	if err := s.notifier.Enqueue(userID, notifType, message, link); err != nil {
		log.Printf("[workflow] notification %s to user %d failed: %v", notifType, userID, err)
	}
}

func listingLink(listingID uint) string {
	return fmt.Sprintf("/listings/%d", listingID)
}
