package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pawhome/internal/middleware"
	"pawhome/internal/repository"
	"pawhome/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RequestHandler struct {
	requestRepo *repository.RequestRepository
	listingRepo *repository.ListingRepository
	adoptionSvc *service.AdoptionService
}

func NewRequestHandler(requestRepo *repository.RequestRepository, listingRepo *repository.ListingRepository, adoptionSvc *service.AdoptionService) *RequestHandler {
	return &RequestHandler{requestRepo: requestRepo, listingRepo: listingRepo, adoptionSvc: adoptionSvc}
}

func (h *RequestHandler) Submit(c *gin.Context) {
	requesterID := middleware.GetUserID(c)
	listingID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	l, err := h.listingRepo.GetByID(uint(listingID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	req, err := h.adoptionSvc.SubmitRequest(l.ID, requesterID, l.OwnerID, l.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateRequest):
			c.JSON(http.StatusConflict, gin.H{"error": "you already have a request for this pet"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "submit failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	requesterID := middleware.GetUserID(c)
	listingID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.adoptionSvc.CancelRequest(uint(listingID), requesterID); err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no request to cancel"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ListForListing lets the owner see requests against their listing.
func (h *RequestHandler) ListForListing(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	l, err := h.listingRepo.GetByID(uint(listingID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if l.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.requestRepo.ListByListingID(l.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *RequestHandler) ListMine(c *gin.Context) {
	requesterID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.requestRepo.ListByRequesterID(requesterID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *RequestHandler) Approve(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	requestID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	req, err := h.adoptionSvc.ApproveRequest(uint(requestID), ownerID)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "approve failed"})
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) Reject(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	requestID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	req, err := h.adoptionSvc.RejectRequest(uint(requestID), ownerID)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reject failed"})
		return
	}
	c.JSON(http.StatusOK, req)
}
