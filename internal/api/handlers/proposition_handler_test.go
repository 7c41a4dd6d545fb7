package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SanderWeide/sneaker-engine-v3/internal/api/handlers"
	"github.com/SanderWeide/sneaker-engine-v3/internal/lifecycle"
	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
	"github.com/SanderWeide/sneaker-engine-v3/internal/services"
)

func propositionDetail(id, sneakerID, proposerID string, status models.PropositionStatus) *models.PropositionDetail {
	return &models.PropositionDetail{
		Proposition: models.Proposition{
			ID:         id,
			SneakerID:  sneakerID,
			ProposerID: proposerID,
			OfferType:  models.OfferBuy,
			Status:     status,
		},
		Proposer: &models.UserInfo{ID: proposerID, Username: "proposer"},
		Sneaker:  &models.SneakerInfo{ID: sneakerID, Name: "Air Max 90", Brand: "Nike", Size: "EU 43", Price: 120},
	}
}

func newPropositionRouter(mockSvc *MockPropositionService, actorID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewPropositionHandler(mockSvc, testConfig())

	r := gin.New()
	grp := r.Group("/api", asActor(actorID))
	grp.GET("/propositions", handler.ListPropositions)
	grp.GET("/propositions/:id", handler.GetProposition)
	grp.POST("/propositions", handler.CreateProposition)
	grp.POST("/propositions/:id/accept", handler.AcceptProposition)
	grp.POST("/propositions/:id/reject", handler.RejectProposition)
	grp.DELETE("/propositions/:id", handler.CancelProposition)
	return r
}

func TestPropositionHandler_Create(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "u1")

	price := 90.0
	attrs := services.PropositionAttrs{
		SneakerID:  "s1",
		OfferType:  models.OfferBuy,
		OfferPrice: &price,
		Message:    "would love these",
	}
	mockSvc.On("CreateProposition", mock.Anything, "u1", attrs).
		Return(propositionDetail("p1", "s1", "u1", models.StatusPending), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/propositions", jsonBody(t, handlers.CreatePropositionRequest{
		SneakerID:  "s1",
		OfferType:  models.OfferBuy,
		OfferPrice: &price,
		Message:    "would love these",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "pending")
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Create_OwnSneaker(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "u1")

	mockSvc.On("CreateProposition", mock.Anything, "u1", mock.Anything).
		Return(nil, fmt.Errorf("own sneaker: %w", lifecycle.ErrConflict))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/propositions", jsonBody(t, handlers.CreatePropositionRequest{
		SneakerID: "s1",
		OfferType: models.OfferBuy,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// Self-proposals come back as a bad request, not a conflict.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Create_MissingSneaker(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "u1")

	mockSvc.On("CreateProposition", mock.Anything, "u1", mock.Anything).
		Return(nil, fmt.Errorf("sneaker s1: %w", lifecycle.ErrNotFound))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/propositions", jsonBody(t, handlers.CreatePropositionRequest{
		SneakerID: "s1",
		OfferType: models.OfferTrade,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Create_InvalidOfferType(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "u1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/propositions", jsonBody(t, handlers.CreatePropositionRequest{
		SneakerID: "s1",
		OfferType: "steal",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "CreateProposition")
}

func TestPropositionHandler_List(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "u1")

	mockSvc.On("ListPropositions", mock.Anything, "u1", 0, 100).
		Return([]models.PropositionDetail{*propositionDetail("p1", "s1", "u1", models.StatusPending)}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/propositions", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "p1")
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Get_Forbidden(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "stranger")

	mockSvc.On("GetProposition", mock.Anything, "stranger", "p1").
		Return(nil, fmt.Errorf("not a party: %w", lifecycle.ErrForbidden))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/propositions/p1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Accept(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "owner")

	mockSvc.On("AcceptProposition", mock.Anything, "owner", "p1").
		Return(propositionDetail("p1", "s1", "u1", models.StatusAccepted), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/propositions/p1/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accepted")
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Accept_NotOwner(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "u1")

	mockSvc.On("AcceptProposition", mock.Anything, "u1", "p1").
		Return(nil, fmt.Errorf("not the owner: %w", lifecycle.ErrForbidden))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/propositions/p1/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Reject_AlreadyDecided(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "owner")

	mockSvc.On("RejectProposition", mock.Anything, "owner", "p1").
		Return(nil, fmt.Errorf("no longer pending: %w", lifecycle.ErrConflict))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/propositions/p1/reject", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Cancel(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "u1")

	mockSvc.On("CancelProposition", mock.Anything, "u1", "p1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/propositions/p1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestPropositionHandler_Cancel_NotProposer(t *testing.T) {
	mockSvc := new(MockPropositionService)
	r := newPropositionRouter(mockSvc, "owner")

	mockSvc.On("CancelProposition", mock.Anything, "owner", "p1").
		Return(fmt.Errorf("not the proposer: %w", lifecycle.ErrForbidden))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/propositions/p1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertExpectations(t)
}
