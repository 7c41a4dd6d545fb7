package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/SanderWeide/sneaker-engine-v3/internal/api/middleware"
	"github.com/SanderWeide/sneaker-engine-v3/internal/config"
	"github.com/SanderWeide/sneaker-engine-v3/internal/lifecycle"
	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
	"github.com/SanderWeide/sneaker-engine-v3/internal/services"
	"github.com/SanderWeide/sneaker-engine-v3/internal/storage"
	"github.com/SanderWeide/sneaker-engine-v3/internal/tasks"
	"github.com/SanderWeide/sneaker-engine-v3/internal/utils"
)

// TaskEnqueuer is the slice of asynq.Client the sneaker handler needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SneakerHandler handles REST requests for sneaker listings.
type SneakerHandler struct {
	sneakerService services.ISneakerService
	storageService storage.IS3Storage
	taskClient     TaskEnqueuer
	cfg            *config.Config
}

// NewSneakerHandler creates a new SneakerHandler. storageService and
// taskClient may be nil when the image pipeline is not configured; the image
// routes then answer 503.
func NewSneakerHandler(sneakerService services.ISneakerService, storageService storage.IS3Storage, taskClient TaskEnqueuer, cfg *config.Config) *SneakerHandler {
	return &SneakerHandler{
		sneakerService: sneakerService,
		storageService: storageService,
		taskClient:     taskClient,
		cfg:            cfg,
	}
}

// CreateSneakerRequest is the body for POST /api/sneakers.
type CreateSneakerRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Brand       string                  `json:"brand" binding:"required"`
	Size        string                  `json:"size" binding:"required"`
	Condition   models.SneakerCondition `json:"condition" binding:"required"`
	Price       float64                 `json:"price" binding:"required,gt=0"`
	Description string                  `json:"description"`
	ImageURL    string                  `json:"image_url"`
}

// UpdateSneakerRequest is the body for PATCH /api/sneakers/:id. Absent fields
// are left untouched.
type UpdateSneakerRequest struct {
	Name        *string                  `json:"name"`
	Brand       *string                  `json:"brand"`
	Size        *string                  `json:"size"`
	Condition   *models.SneakerCondition `json:"condition"`
	Price       *float64                 `json:"price"`
	Description *string                  `json:"description"`
	ImageURL    *string                  `json:"image_url"`
}

// ListSneakers handles GET /api/sneakers.
func (h *SneakerHandler) ListSneakers(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	skip, limit = utils.Window(skip, limit, h.cfg.DefaultPageLimit, h.cfg.MaxPageLimit)

	sneakers, err := h.sneakerService.ListSneakers(c.Request.Context(), skip, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sneakers"})
		return
	}

	c.JSON(http.StatusOK, sneakers)
}

// GetSneaker handles GET /api/sneakers/:id.
func (h *SneakerHandler) GetSneaker(c *gin.Context) {
	sneaker, err := h.sneakerService.FindSneakerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sneaker not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sneaker"})
		return
	}

	c.JSON(http.StatusOK, sneaker)
}

// CreateSneaker handles POST /api/sneakers.
func (h *SneakerHandler) CreateSneaker(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreateSneakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Condition.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sneaker condition"})
		return
	}

	sneaker, err := h.sneakerService.CreateSneaker(c.Request.Context(), actorID, services.SneakerAttrs{
		Name:        req.Name,
		Brand:       req.Brand,
		Size:        req.Size,
		Condition:   req.Condition,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sneaker"})
		return
	}

	c.JSON(http.StatusCreated, sneaker)
}

// UpdateSneaker handles PATCH /api/sneakers/:id. Only the owner may update,
// and only the fields present in the body are changed.
func (h *SneakerHandler) UpdateSneaker(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdateSneakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}
	if req.Condition != nil {
		if !req.Condition.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sneaker condition"})
			return
		}
		updates["condition"] = *req.Condition
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
			return
		}
		updates["price"] = *req.Price
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	sneaker, err := h.sneakerService.UpdateSneaker(c.Request.Context(), c.Param("id"), actorID, updates)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sneaker not found"})
		case errors.Is(err, lifecycle.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this sneaker"})
		case errors.Is(err, lifecycle.ErrConflict):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sneaker"})
		}
		return
	}

	c.JSON(http.StatusOK, sneaker)
}

// DeleteSneaker handles DELETE /api/sneakers/:id. Every proposition
// targeting the sneaker goes with it.
func (h *SneakerHandler) DeleteSneaker(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.sneakerService.DeleteSneaker(c.Request.Context(), c.Param("id"), actorID); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sneaker not found"})
		case errors.Is(err, lifecycle.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this sneaker"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sneaker"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ImageUploadRequest is the body for POST /api/sneakers/:id/image-upload.
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageCompleteRequest is the body for POST /api/sneakers/:id/image-complete.
type ImageCompleteRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
}

// requireOwnedSneaker loads a sneaker and checks the actor owns it.
func (h *SneakerHandler) requireOwnedSneaker(c *gin.Context, actorID string) (*models.SneakerDetail, bool) {
	sneaker, err := h.sneakerService.FindSneakerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sneaker not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sneaker"})
		}
		return nil, false
	}
	if sneaker.OwnerID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to manage this sneaker's images"})
		return nil, false
	}
	return sneaker, true
}

// ImageUpload handles POST /api/sneakers/:id/image-upload. It returns a
// pre-signed PUT URL the client uploads the raw image to.
func (h *SneakerHandler) ImageUpload(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	if h.storageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sneaker, ok := h.requireOwnedSneaker(c, actorID)
	if !ok {
		return
	}

	uploadURL, objectKey, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), actorID, sneaker.ID, req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": uploadURL,
		"object_key": objectKey,
	})
}

// ImageComplete handles POST /api/sneakers/:id/image-complete. The client
// calls it after PUTting the image; processing happens asynchronously.
func (h *SneakerHandler) ImageComplete(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	if h.taskClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image processing is not configured"})
		return
	}

	var req ImageCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sneaker, ok := h.requireOwnedSneaker(c, actorID)
	if !ok {
		return
	}

	task, err := tasks.NewImageProcessTask(sneaker.ID, req.ObjectKey)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build processing task"})
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue processing task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "processing"})
}
