package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pawhome/internal/domain"
	"pawhome/internal/models"
	"pawhome/internal/repository"
)

// In-memory store fakes. The request fake enforces the same uniqueness the
// database index does, under a mutex, so the race tests are meaningful.

type fakeListingStore struct {
	mu       sync.Mutex
	listings map[uint]*models.Listing
	failDel  error
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[uint]*models.Listing)}
}

func (s *fakeListingStore) add(l *models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

func (s *fakeListingStore) GetByID(id uint) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (s *fakeListingStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel != nil {
		return s.failDel
	}
	if _, ok := s.listings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.listings, id)
	return nil
}

type fakeRequestStore struct {
	mu      sync.Mutex
	nextID  uint
	rows    map[uint]*models.AdoptionRequest
	failAll error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{nextID: 1, rows: make(map[uint]*models.AdoptionRequest)}
}

func (s *fakeRequestStore) Insert(req *models.AdoptionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ListingID == req.ListingID && r.RequesterID == req.RequesterID && r.Active != nil {
			return repository.ErrDuplicateActiveRequest
		}
	}
	active := true
	req.Active = &active
	req.ID = s.nextID
	req.CreatedAt = time.Now()
	s.nextID++
	cp := *req
	s.rows[req.ID] = &cp
	return nil
}

func (s *fakeRequestStore) FindActive(listingID, requesterID uint) (*models.AdoptionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ListingID == listingID && r.RequesterID == requesterID && r.Active != nil {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeRequestStore) FindLatest(listingID, requesterID uint) (*models.AdoptionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.AdoptionRequest
	for _, r := range s.rows {
		if r.ListingID != listingID || r.RequesterID != requesterID {
			continue
		}
		if latest == nil || r.ID > latest.ID {
			latest = r
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *fakeRequestStore) GetByID(id uint) (*models.AdoptionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRequestStore) Delete(listingID, requesterID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rows {
		if r.ListingID == listingID && r.RequesterID == requesterID && r.Active != nil {
			delete(s.rows, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeRequestStore) DeleteAllForListing(listingID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return 0, s.failAll
	}
	var n int64
	for id, r := range s.rows {
		if r.ListingID == listingID {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeRequestStore) Approve(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = domain.RequestStatusApproved
	return nil
}

func (s *fakeRequestStore) Reject(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = domain.RequestStatusRejected
	r.Active = nil
	return nil
}

func (s *fakeRequestStore) countForListing(listingID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.ListingID == listingID {
			n++
		}
	}
	return n
}

type fakeMediaStore struct {
	mu      sync.Mutex
	deleted []string
	failURL string
}

func (s *fakeMediaStore) DeleteByURL(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url == s.failURL && url != "" {
		return errors.New("blob service unavailable")
	}
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *fakeMediaStore) deletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

type queuedNotification struct {
	UserID uint
	Type   string
}

type fakeNotifier struct {
	mu     sync.Mutex
	queued []queuedNotification
	fail   bool
}

func (s *fakeNotifier) Enqueue(userID uint, notifType, message, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("outbox down")
	}
	s.queued = append(s.queued, queuedNotification{UserID: userID, Type: notifType})
	return nil
}

func (s *fakeNotifier) all() []queuedNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]queuedNotification(nil), s.queued...)
}

type fixture struct {
	listings *fakeListingStore
	requests *fakeRequestStore
	media    *fakeMediaStore
	notifier *fakeNotifier
	svc      *AdoptionService
}

func newFixture() *fixture {
	f := &fixture{
		listings: newFakeListingStore(),
		requests: newFakeRequestStore(),
		media:    &fakeMediaStore{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewAdoptionService(f.listings, f.requests, f.media, f.notifier)
	return f
}

const (
	aliceID uint = 1
	bobID   uint = 2
)

func TestSubmitRequest_Success(t *testing.T) {
	f := newFixture()

	req, err := f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusPending, req.Status)

	status, err := f.svc.RequestStatusFor(42, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusPending, status)

	queued := f.notifier.all()
	require.Len(t, queued, 1)
	require.Equal(t, aliceID, queued[0].UserID)
	require.Equal(t, domain.NotifTypeAdoptionRequest, queued[0].Type)
}

func TestSubmitRequest_SelfRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SubmitRequest(42, aliceID, aliceID, "Rex")
	require.ErrorIs(t, err, ErrSelfRequest)
	require.Empty(t, f.notifier.all())
}

func TestSubmitRequest_Duplicate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)

	_, err = f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.ErrorIs(t, err, ErrDuplicateRequest)
	require.Equal(t, 1, f.requests.countForListing(42))
}

func TestSubmitRequest_NotificationFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.notifier.fail = true

	req, err := f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)
	require.NotNil(t, req)

	status, err := f.svc.RequestStatusFor(42, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusPending, status)
}

func TestSubmitRequest_ConcurrentRace(t *testing.T) {
	f := newFixture()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateRequest):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, dup)
	require.Equal(t, 1, f.requests.countForListing(42))
}

func TestCancelRequest_Roundtrip(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelRequest(42, bobID))

	status, err := f.svc.RequestStatusFor(42, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusNone, status)

	queued := f.notifier.all()
	require.Len(t, queued, 2)
	require.Equal(t, domain.NotifTypeAdoptionCancelled, queued[1].Type)
	require.Equal(t, aliceID, queued[1].UserID)

	// The slot is free again.
	_, err = f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)
}

func TestCancelRequest_NotFound(t *testing.T) {
	f := newFixture()

	err := f.svc.CancelRequest(42, bobID)
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestApproveRequest(t *testing.T) {
	f := newFixture()

	req, err := f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)

	approved, err := f.svc.ApproveRequest(req.ID, aliceID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusApproved, approved.Status)

	status, err := f.svc.RequestStatusFor(42, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusApproved, status)

	queued := f.notifier.all()
	require.Equal(t, domain.NotifTypeAdoptionApproved, queued[len(queued)-1].Type)
	require.Equal(t, bobID, queued[len(queued)-1].UserID)

	// An approved request still occupies the dedup slot.
	_, err = f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestApproveRequest_WrongOwner(t *testing.T) {
	f := newFixture()

	req, err := f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)

	_, err = f.svc.ApproveRequest(req.ID, bobID)
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRejectRequest_AllowsResubmission(t *testing.T) {
	f := newFixture()

	req, err := f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)

	rejected, err := f.svc.RejectRequest(req.ID, aliceID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusRejected, rejected.Status)

	status, err := f.svc.RequestStatusFor(42, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusRejected, status)

	queued := f.notifier.all()
	require.Equal(t, domain.NotifTypeAdoptionRejected, queued[len(queued)-1].Type)

	// Rejection clears the active marker: bob may try again.
	_, err = f.svc.SubmitRequest(42, bobID, aliceID, "Rex")
	require.NoError(t, err)

	status, err = f.svc.RequestStatusFor(42, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusPending, status)
}

func deletableListing(id uint) *models.Listing {
	return &models.Listing{
		ID:           id,
		OwnerID:      aliceID,
		Name:         "Rex",
		MainImageURL: "https://res.cloudinary.com/demo/image/upload/v1/pets/main.jpg",
		HealthInfo:   "Healthy. Vaccination proof: https://res.cloudinary.com/demo/image/upload/v1/pets/vax.pdf",
		Photos: []models.ListingPhoto{
			{URL: "https://res.cloudinary.com/demo/image/upload/v1/pets/p1.jpg", SortOrder: 0},
			{URL: "https://res.cloudinary.com/demo/image/upload/v1/pets/p2.jpg", SortOrder: 1},
		},
	}
}

func TestDeleteListing_FullCascade(t *testing.T) {
	f := newFixture()
	l := deletableListing(7)
	f.listings.add(l)
	for i := uint(10); i < 13; i++ {
		_, err := f.svc.SubmitRequest(7, i, aliceID, "Rex")
		require.NoError(t, err)
	}

	warnings, err := f.svc.DeleteListing(context.Background(), l)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, 0, f.requests.countForListing(7))

	_, err = f.listings.GetByID(7)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	deleted := f.media.deletedURLs()
	require.Len(t, deleted, 4) // main + 2 photos + vaccination proof
	require.Contains(t, deleted, l.MainImageURL)
	require.Contains(t, deleted, "https://res.cloudinary.com/demo/image/upload/v1/pets/vax.pdf")
}

func TestDeleteListing_PartialBlobFailureStillDeletes(t *testing.T) {
	f := newFixture()
	l := deletableListing(7)
	f.listings.add(l)
	f.media.failURL = l.Photos[1].URL
	for i := uint(10); i < 13; i++ {
		_, err := f.svc.SubmitRequest(7, i, aliceID, "Rex")
		require.NoError(t, err)
	}

	warnings, err := f.svc.DeleteListing(context.Background(), l)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Equal(t, "photo", warnings[0].Resource)
	require.Equal(t, l.Photos[1].URL, warnings[0].URL)

	require.Equal(t, 0, f.requests.countForListing(7))
	_, err = f.listings.GetByID(7)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteListing_RequestCascadeFailureAborts(t *testing.T) {
	f := newFixture()
	l := deletableListing(7)
	f.listings.add(l)
	f.requests.failAll = fmt.Errorf("deadlock")

	_, err := f.svc.DeleteListing(context.Background(), l)
	require.ErrorIs(t, err, ErrCascadeFailed)

	// Nothing past stage one ran: listing and blobs untouched.
	_, err = f.listings.GetByID(7)
	require.NoError(t, err)
	require.Empty(t, f.media.deletedURLs())
}

func TestDeleteListing_FinalDeleteFailure(t *testing.T) {
	f := newFixture()
	l := deletableListing(7)
	f.listings.add(l)
	f.listings.failDel = fmt.Errorf("connection reset")
	_, err := f.svc.SubmitRequest(7, bobID, aliceID, "Rex")
	require.NoError(t, err)

	_, err = f.svc.DeleteListing(context.Background(), l)
	require.ErrorIs(t, err, ErrDeleteFailed)

	// Requests are gone even though the record survived (orphaned listing);
	// retrying the whole delete is safe.
	require.Equal(t, 0, f.requests.countForListing(7))

	f.listings.failDel = nil
	_, err = f.svc.DeleteListing(context.Background(), l)
	require.NoError(t, err)
}

func TestDeleteListing_SkipsEmptyBlobKeys(t *testing.T) {
	f := newFixture()
	l := &models.Listing{ID: 8, OwnerID: aliceID, Name: "Mia", HealthInfo: "no marker here"}
	f.listings.add(l)

	warnings, err := f.svc.DeleteListing(context.Background(), l)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Empty(t, f.media.deletedURLs())
}

func TestRequestStatusFor_NoRequest(t *testing.T) {
	f := newFixture()

	status, err := f.svc.RequestStatusFor(42, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusNone, status)
}
