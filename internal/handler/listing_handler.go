package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pawhome/internal/domain"
	"pawhome/internal/middleware"
	"pawhome/internal/models"
	"pawhome/internal/repository"
	"pawhome/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ListingHandler struct {
	listingRepo *repository.ListingRepository
	adoptionSvc *service.AdoptionService
}

func NewListingHandler(listingRepo *repository.ListingRepository, adoptionSvc *service.AdoptionService) *ListingHandler {
	return &ListingHandler{listingRepo: listingRepo, adoptionSvc: adoptionSvc}
}

func (h *ListingHandler) Create(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var req struct {
		Name         string   `json:"name" binding:"required,max=100"`
		Species      string   `json:"species" binding:"required,max=50"`
		Breed        string   `json:"breed" binding:"max=100"`
		Description  string   `json:"description"`
		MainImageURL string   `json:"main_image_url"`
		HealthInfo   string   `json:"health_info"`
		PhotoURLs    []string `json:"photo_urls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l := &models.Listing{
		OwnerID:      ownerID,
		Name:         req.Name,
		Species:      req.Species,
		Breed:        req.Breed,
		Description:  req.Description,
		Status:       domain.ListingStatusAvailable,
		MainImageURL: req.MainImageURL,
		HealthInfo:   req.HealthInfo,
	}
	for i, url := range req.PhotoURLs {
		if url == "" {
			continue
		}
		l.Photos = append(l.Photos, models.ListingPhoto{URL: url, SortOrder: i})
	}
	if err := h.listingRepo.Create(l); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, l)
}

// Get returns the listing together with the viewer's derived request status,
// so the client never has to cache the relation.
func (h *ListingHandler) Get(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	l, err := h.listingRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	status, err := h.adoptionSvc.RequestStatusFor(l.ID, viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": l, "request_status": status})
}

func (h *ListingHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.listingRepo.List(c.Query("species"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": list})
}

func (h *ListingHandler) ListMine(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.listingRepo.ListByOwnerID(ownerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": list})
}

func (h *ListingHandler) Update(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	l, err := h.listingRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if l.OwnerID != ownerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}
	var req struct {
		Name         *string `json:"name"`
		Breed        *string `json:"breed"`
		Description  *string `json:"description"`
		Status       *string `json:"status" binding:"omitempty,oneof=available pending approved rejected adopted"`
		MainImageURL *string `json:"main_image_url"`
		HealthInfo   *string `json:"health_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Breed != nil {
		fields["breed"] = *req.Breed
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.MainImageURL != nil {
		fields["main_image_url"] = *req.MainImageURL
	}
	if req.HealthInfo != nil {
		fields["health_info"] = *req.HealthInfo
	}
	if len(fields) > 0 {
		if err := h.listingRepo.UpdateFields(l.ID, fields); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
	}
	updated, err := h.listingRepo.GetByID(l.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete runs the deletion cascade. Cleanup warnings are logged inside the
// service and never surfaced to the end user.
func (h *ListingHandler) Delete(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	l, err := h.listingRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if l.OwnerID != ownerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}
	warnings, err := h.adoptionSvc.DeleteListing(c.Request.Context(), l)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete, please retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "cleanup_warnings": len(warnings)})
}
