package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
	"github.com/SanderWeide/sneaker-engine-v3/internal/services"
)

// --- Mocks ---

// MockUserService implements services.IUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	args := m.Called(ctx, email, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockSneakerService implements services.ISneakerService
type MockSneakerService struct {
	mock.Mock
}

func (m *MockSneakerService) CreateSneaker(ctx context.Context, ownerID string, attrs services.SneakerAttrs) (*models.SneakerDetail, error) {
	args := m.Called(ctx, ownerID, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SneakerDetail), args.Error(1)
}

func (m *MockSneakerService) FindSneakerByID(ctx context.Context, sneakerID string) (*models.SneakerDetail, error) {
	args := m.Called(ctx, sneakerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SneakerDetail), args.Error(1)
}

func (m *MockSneakerService) ListSneakers(ctx context.Context, skip, limit int) ([]models.SneakerDetail, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SneakerDetail), args.Error(1)
}

func (m *MockSneakerService) UpdateSneaker(ctx context.Context, sneakerID, actorID string, updates map[string]interface{}) (*models.SneakerDetail, error) {
	args := m.Called(ctx, sneakerID, actorID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SneakerDetail), args.Error(1)
}

func (m *MockSneakerService) DeleteSneaker(ctx context.Context, sneakerID, actorID string) error {
	args := m.Called(ctx, sneakerID, actorID)
	return args.Error(0)
}

func (m *MockSneakerService) SetImageURL(ctx context.Context, sneakerID, imageURL string) error {
	args := m.Called(ctx, sneakerID, imageURL)
	return args.Error(0)
}

// MockPropositionService implements services.IPropositionService
type MockPropositionService struct {
	mock.Mock
}

func (m *MockPropositionService) CreateProposition(ctx context.Context, actorID string, attrs services.PropositionAttrs) (*models.PropositionDetail, error) {
	args := m.Called(ctx, actorID, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropositionDetail), args.Error(1)
}

func (m *MockPropositionService) GetProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
	args := m.Called(ctx, actorID, propositionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropositionDetail), args.Error(1)
}

func (m *MockPropositionService) ListPropositions(ctx context.Context, actorID string, skip, limit int) ([]models.PropositionDetail, error) {
	args := m.Called(ctx, actorID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PropositionDetail), args.Error(1)
}

func (m *MockPropositionService) AcceptProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
	args := m.Called(ctx, actorID, propositionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropositionDetail), args.Error(1)
}

func (m *MockPropositionService) RejectProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
	args := m.Called(ctx, actorID, propositionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropositionDetail), args.Error(1)
}

func (m *MockPropositionService) CancelProposition(ctx context.Context, actorID, propositionID string) error {
	args := m.Called(ctx, actorID, propositionID)
	return args.Error(0)
}

// MockS3Storage implements storage.IS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, ownerID, sneakerID, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, ownerID, sneakerID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

// MockTaskEnqueuer implements handlers.TaskEnqueuer
type MockTaskEnqueuer struct {
	mock.Mock
}

func (m *MockTaskEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
