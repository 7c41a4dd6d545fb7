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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SanderWeide/sneaker-engine-v3/internal/cache"
	"github.com/SanderWeide/sneaker-engine-v3/internal/config"
	"github.com/SanderWeide/sneaker-engine-v3/internal/db"
	"github.com/SanderWeide/sneaker-engine-v3/internal/lifecycle"
	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
)

// SneakerAttrs carries the caller-supplied attributes of a sneaker. Owner is
// never part of it; ownership is always forced to the acting user.
type SneakerAttrs struct {
	Name        string
	Brand       string
	Size        string
	Condition   models.SneakerCondition
	Price       float64
	Description string
	ImageURL    string
}

// ISneakerService defines the interface for sneaker listing operations.
type ISneakerService interface {
	CreateSneaker(ctx context.Context, ownerID string, attrs SneakerAttrs) (*models.SneakerDetail, error)
	FindSneakerByID(ctx context.Context, sneakerID string) (*models.SneakerDetail, error)
	ListSneakers(ctx context.Context, skip, limit int) ([]models.SneakerDetail, error)
	UpdateSneaker(ctx context.Context, sneakerID, actorID string, updates map[string]interface{}) (*models.SneakerDetail, error)
	DeleteSneaker(ctx context.Context, sneakerID, actorID string) error
	SetImageURL(ctx context.Context, sneakerID, imageURL string) error
}

// sneakerService implements ISneakerService.
type sneakerService struct {
	db  *mongo.Database
	cfg *config.Config
	rdb *redis.Client
}

// NewSneakerService creates a new SneakerService. rdb may be nil to disable
// the read cache.
func NewSneakerService(database *mongo.Database, cfg *config.Config, rdb *redis.Client) ISneakerService {
	return &sneakerService{db: database, cfg: cfg, rdb: rdb}
}

// CreateSneaker inserts a new sneaker owned by ownerID.
func (s *sneakerService) CreateSneaker(ctx context.Context, ownerID string, attrs SneakerAttrs) (*models.SneakerDetail, error) {
	now := time.Now().UTC()
	sneaker := &models.Sneaker{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        attrs.Name,
		Brand:       attrs.Brand,
		Size:        attrs.Size,
		Condition:   attrs.Condition,
		Price:       attrs.Price,
		Description: attrs.Description,
		ImageURL:    attrs.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.db.Collection(db.SneakersCollection).InsertOne(ctx, sneaker); err != nil {
		return nil, fmt.Errorf("failed to insert sneaker for user %s: %w", ownerID, err)
	}

	return s.attachOwner(ctx, sneaker)
}

// FindSneakerByID returns a sneaker with its owner summary. Results are
// cached briefly; any mutation drops the entry.
func (s *sneakerService) FindSneakerByID(ctx context.Context, sneakerID string) (*models.SneakerDetail, error) {
	cacheKey := cache.SneakerKey(sneakerID)
	var cached models.SneakerDetail
	if cache.GetJSON(ctx, s.rdb, cacheKey, &cached) {
		return &cached, nil
	}

	sneaker, err := s.findRaw(ctx, sneakerID)
	if err != nil {
		return nil, err
	}

	detail, err := s.attachOwner(ctx, sneaker)
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.rdb, cacheKey, detail, s.cfg.GetCacheTTL)
	return detail, nil
}

// ListSneakers returns a window of all sneakers with owner summaries, in
// store order.
func (s *sneakerService) ListSneakers(ctx context.Context, skip, limit int) ([]models.SneakerDetail, error) {
	opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := s.db.Collection(db.SneakersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sneakers: %w", err)
	}

	var sneakers []models.Sneaker
	if err := cursor.All(ctx, &sneakers); err != nil {
		return nil, fmt.Errorf("failed to decode sneakers: %w", err)
	}

	ownerIDs := make([]string, 0, len(sneakers))
	for _, sn := range sneakers {
		ownerIDs = append(ownerIDs, sn.OwnerID)
	}
	owners, err := s.lookupUsers(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.SneakerDetail, 0, len(sneakers))
	for _, sn := range sneakers {
		details = append(details, models.SneakerDetail{Sneaker: sn, Owner: owners[sn.OwnerID]})
	}
	return details, nil
}

// UpdateSneaker applies a sparse update to a sneaker owned by actorID.
// Fields absent from updates are left untouched. Ownership and identity of
// the record are never updatable.
func (s *sneakerService) UpdateSneaker(ctx context.Context, sneakerID, actorID string, updates map[string]interface{}) (*models.SneakerDetail, error) {
	sneaker, err := s.findRaw(ctx, sneakerID)
	if err != nil {
		return nil, err
	}
	if sneaker.OwnerID != actorID {
		return nil, fmt.Errorf("not authorized to update sneaker %s: %w", sneakerID, lifecycle.ErrForbidden)
	}

	allowedUpdates := bson.M{}
	for key, value := range updates {
		switch key {
		case "name", "brand", "size", "condition", "price", "description", "image_url":
			allowedUpdates[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated: %w", key, lifecycle.ErrConflict)
		}
	}
	if len(allowedUpdates) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update: %w", lifecycle.ErrConflict)
	}
	allowedUpdates["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Sneaker
	err = s.db.Collection(db.SneakersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": sneakerID, "owner_id": actorID},
		bson.M{"$set": allowedUpdates},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Deleted between the ownership check and the write.
			return nil, fmt.Errorf("sneaker %s: %w", sneakerID, lifecycle.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update sneaker %s: %w", sneakerID, err)
	}

	cache.Invalidate(ctx, s.rdb, cache.SneakerKey(sneakerID))
	return s.attachOwner(ctx, &updated)
}

// DeleteSneaker removes a sneaker owned by actorID together with every
// proposition targeting it, children first inside one transaction.
func (s *sneakerService) DeleteSneaker(ctx context.Context, sneakerID, actorID string) error {
	sneaker, err := s.findRaw(ctx, sneakerID)
	if err != nil {
		return err
	}
	if sneaker.OwnerID != actorID {
		return fmt.Errorf("not authorized to delete sneaker %s: %w", sneakerID, lifecycle.ErrForbidden)
	}

	err = db.InTransaction(ctx, s.db.Client(), func(txCtx context.Context) error {
		if _, err := s.db.Collection(db.PropositionsCollection).DeleteMany(txCtx, bson.M{"sneaker_id": sneakerID}); err != nil {
			return fmt.Errorf("failed to delete propositions targeting sneaker %s: %w", sneakerID, err)
		}
		result, err := s.db.Collection(db.SneakersCollection).DeleteOne(txCtx, bson.M{"_id": sneakerID})
		if err != nil {
			return fmt.Errorf("failed to delete sneaker %s: %w", sneakerID, err)
		}
		if result.DeletedCount == 0 {
			return fmt.Errorf("sneaker %s: %w", sneakerID, lifecycle.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.Invalidate(ctx, s.rdb, cache.SneakerKey(sneakerID))
	return nil
}

// SetImageURL records the processed image location on a sneaker. Called by
// the image worker after normalization; the upload itself was owner-gated.
func (s *sneakerService) SetImageURL(ctx context.Context, sneakerID, imageURL string) error {
	result, err := s.db.Collection(db.SneakersCollection).UpdateOne(
		ctx,
		bson.M{"_id": sneakerID},
		bson.M{"$set": bson.M{"image_url": imageURL, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set image URL on sneaker %s: %w", sneakerID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("sneaker %s: %w", sneakerID, lifecycle.ErrNotFound)
	}

	cache.Invalidate(ctx, s.rdb, cache.SneakerKey(sneakerID))
	return nil
}

// findRaw fetches a sneaker without enrichment or caching.
func (s *sneakerService) findRaw(ctx context.Context, sneakerID string) (*models.Sneaker, error) {
	var sneaker models.Sneaker
	err := s.db.Collection(db.SneakersCollection).FindOne(ctx, bson.M{"_id": sneakerID}).Decode(&sneaker)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("sneaker %s: %w", sneakerID, lifecycle.ErrNotFound)
		}
		return nil, fmt.Errorf("error finding sneaker by ID %s: %w", sneakerID, err)
	}
	return &sneaker, nil
}

// attachOwner decorates a sneaker with its owner summary.
func (s *sneakerService) attachOwner(ctx context.Context, sneaker *models.Sneaker) (*models.SneakerDetail, error) {
	owners, err := s.lookupUsers(ctx, []string{sneaker.OwnerID})
	if err != nil {
		return nil, err
	}
	return &models.SneakerDetail{Sneaker: *sneaker, Owner: owners[sneaker.OwnerID]}, nil
}

// lookupUsers fetches user summaries for a set of IDs.
func (s *sneakerService) lookupUsers(ctx context.Context, userIDs []string) (map[string]*models.UserInfo, error) {
	return lookupUserInfos(ctx, s.db, userIDs)
}

// lookupUserInfos batch-fetches user summaries keyed by ID. Shared by the
// sneaker and proposition services for response enrichment.
func lookupUserInfos(ctx context.Context, database *mongo.Database, userIDs []string) (map[string]*models.UserInfo, error) {
	result := make(map[string]*models.UserInfo)
	if len(userIDs) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1, "username": 1})
	cursor, err := database.Collection(db.UsersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}

	var infos []models.UserInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("failed to decode user summaries: %w", err)
	}
	for i := range infos {
		result[infos[i].ID] = &infos[i]
	}
	return result, nil
}
