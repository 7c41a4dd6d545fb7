package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SanderWeide/sneaker-engine-v3/internal/api/middleware"
	"github.com/SanderWeide/sneaker-engine-v3/internal/config"
	"github.com/SanderWeide/sneaker-engine-v3/internal/lifecycle"
	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
	"github.com/SanderWeide/sneaker-engine-v3/internal/services"
	"github.com/SanderWeide/sneaker-engine-v3/internal/utils"
)

// PropositionHandler handles REST requests for propositions.
type PropositionHandler struct {
	propositionService services.IPropositionService
	cfg                *config.Config
}

// NewPropositionHandler creates a new PropositionHandler.
func NewPropositionHandler(propositionService services.IPropositionService, cfg *config.Config) *PropositionHandler {
	return &PropositionHandler{
		propositionService: propositionService,
		cfg:                cfg,
	}
}

// CreatePropositionRequest is the body for POST /api/propositions.
type CreatePropositionRequest struct {
	SneakerID      string           `json:"sneaker_id" binding:"required"`
	OfferType      models.OfferType `json:"offer_type" binding:"required"`
	OfferPrice     *float64         `json:"offer_price"`
	OfferSneakerID string           `json:"offer_sneaker_id"`
	Message        string           `json:"message"`
}

// CreateProposition handles POST /api/propositions.
func (h *PropositionHandler) CreateProposition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreatePropositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.OfferType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer type"})
		return
	}
	if req.OfferPrice != nil && *req.OfferPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Offer price cannot be negative"})
		return
	}

	prop, err := h.propositionService.CreateProposition(c.Request.Context(), actorID, services.PropositionAttrs{
		SneakerID:      req.SneakerID,
		OfferType:      req.OfferType,
		OfferPrice:     req.OfferPrice,
		OfferSneakerID: req.OfferSneakerID,
		Message:        req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sneaker not found"})
		case errors.Is(err, lifecycle.ErrConflict):
			// Proposing on your own sneaker is a malformed request, not a
			// state conflict.
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot make a proposition on your own sneaker"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create proposition"})
		}
		return
	}

	c.JSON(http.StatusCreated, prop)
}

// ListPropositions handles GET /api/propositions. It returns propositions
// the actor made plus propositions against the actor's sneakers.
func (h *PropositionHandler) ListPropositions(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	skip, limit = utils.Window(skip, limit, h.cfg.DefaultPageLimit, h.cfg.MaxPageLimit)

	props, err := h.propositionService.ListPropositions(c.Request.Context(), actorID, skip, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list propositions"})
		return
	}

	c.JSON(http.StatusOK, props)
}

// GetProposition handles GET /api/propositions/:id.
func (h *PropositionHandler) GetProposition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	prop, err := h.propositionService.GetProposition(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Proposition not found"})
		case errors.Is(err, lifecycle.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this proposition"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve proposition"})
		}
		return
	}

	c.JSON(http.StatusOK, prop)
}

// decide maps a status transition to an HTTP response; accept and reject
// share everything but the service call.
func (h *PropositionHandler) decide(c *gin.Context, verb string, fn func(ctx *gin.Context, actorID, propositionID string) (*models.PropositionDetail, error)) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	prop, err := fn(c, actorID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Proposition not found"})
		case errors.Is(err, lifecycle.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the sneaker owner can " + verb + " a proposition"})
		case errors.Is(err, lifecycle.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Proposition is no longer pending"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + verb + " proposition"})
		}
		return
	}

	c.JSON(http.StatusOK, prop)
}

// AcceptProposition handles POST /api/propositions/:id/accept.
func (h *PropositionHandler) AcceptProposition(c *gin.Context) {
	h.decide(c, "accept", func(ctx *gin.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
		return h.propositionService.AcceptProposition(ctx.Request.Context(), actorID, propositionID)
	})
}

// RejectProposition handles POST /api/propositions/:id/reject.
func (h *PropositionHandler) RejectProposition(c *gin.Context) {
	h.decide(c, "reject", func(ctx *gin.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
		return h.propositionService.RejectProposition(ctx.Request.Context(), actorID, propositionID)
	})
}

// CancelProposition handles DELETE /api/propositions/:id. Cancellation
// removes the proposition outright.
func (h *PropositionHandler) CancelProposition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.propositionService.CancelProposition(c.Request.Context(), actorID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Proposition not found"})
		case errors.Is(err, lifecycle.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the proposer can cancel a proposition"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel proposition"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
