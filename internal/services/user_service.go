package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SanderWeide/sneaker-engine-v3/internal/auth"
	"github.com/SanderWeide/sneaker-engine-v3/internal/cache"
	"github.com/SanderWeide/sneaker-engine-v3/internal/db"
	"github.com/SanderWeide/sneaker-engine-v3/internal/lifecycle"
	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
)

// ErrInvalidCredentials is returned by Authenticate when the email is unknown
// or the password does not match. The two cases are deliberately not
// distinguishable by the caller.
var ErrInvalidCredentials = errors.New("invalid email or password")

// IUserService defines the interface for user account operations.
type IUserService interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// userService implements IUserService.
type userService struct {
	db  *mongo.Database
	rdb *redis.Client
}

// NewUserService creates a new UserService. rdb may be nil; it is only used
// to drop cached sneaker entries when an account cascade removes them.
func NewUserService(database *mongo.Database, rdb *redis.Client) IUserService {
	return &userService{db: database, rdb: rdb}
}

// Register creates a new account with a bcrypt-hashed password. Email and
// username uniqueness is enforced by the unique indexes; a duplicate-key
// write surfaces as a conflict.
func (s *userService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.Collection(db.UsersCollection).InsertOne(ctx, user)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, fmt.Errorf("email or username already registered: %w", lifecycle.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// Authenticate verifies an email/password pair and returns the account.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID finds a user by their ID.
func (s *userService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(db.UsersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", userID, lifecycle.ErrNotFound)
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID, err)
	}
	return &user, nil
}

// FindByEmail finds a user by their email address.
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(db.UsersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with email %s: %w", email, lifecycle.ErrNotFound)
		}
		return nil, fmt.Errorf("error finding user by email %s: %w", email, err)
	}
	return &user, nil
}

// DeleteUser removes a user and everything hanging off the account: the
// propositions they authored, the propositions targeting their sneakers, and
// the sneakers themselves. The deletes run children-first inside one
// transaction so a failure partway leaves nothing half-removed.
func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.FindByID(ctx, userID); err != nil {
		return err
	}

	var removedSneakerIDs []string
	err := db.InTransaction(ctx, s.db.Client(), func(txCtx context.Context) error {
		sneakers := s.db.Collection(db.SneakersCollection)
		propositions := s.db.Collection(db.PropositionsCollection)
		users := s.db.Collection(db.UsersCollection)

		cursor, err := sneakers.Find(txCtx, bson.M{"owner_id": userID})
		if err != nil {
			return fmt.Errorf("failed to list sneakers of user %s: %w", userID, err)
		}
		var owned []models.Sneaker
		if err := cursor.All(txCtx, &owned); err != nil {
			return fmt.Errorf("failed to decode sneakers of user %s: %w", userID, err)
		}
		ownedIDs := make([]string, 0, len(owned))
		for _, sn := range owned {
			ownedIDs = append(ownedIDs, sn.ID)
		}
		removedSneakerIDs = ownedIDs

		propFilter := bson.M{"$or": []bson.M{
			{"proposer_id": userID},
			{"sneaker_id": bson.M{"$in": ownedIDs}},
		}}
		if _, err := propositions.DeleteMany(txCtx, propFilter); err != nil {
			return fmt.Errorf("failed to delete propositions of user %s: %w", userID, err)
		}

		if _, err := sneakers.DeleteMany(txCtx, bson.M{"owner_id": userID}); err != nil {
			return fmt.Errorf("failed to delete sneakers of user %s: %w", userID, err)
		}

		result, err := users.DeleteOne(txCtx, bson.M{"_id": userID})
		if err != nil {
			return fmt.Errorf("failed to delete user %s: %w", userID, err)
		}
		if result.DeletedCount == 0 {
			return fmt.Errorf("user %s: %w", userID, lifecycle.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, sneakerID := range removedSneakerIDs {
		cache.Invalidate(ctx, s.rdb, cache.SneakerKey(sneakerID))
	}
	return nil
}
