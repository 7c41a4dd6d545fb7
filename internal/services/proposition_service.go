package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SanderWeide/sneaker-engine-v3/internal/db"
	"github.com/SanderWeide/sneaker-engine-v3/internal/lifecycle"
	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
)

// PropositionAttrs carries the caller-supplied fields of a new proposition.
type PropositionAttrs struct {
	SneakerID      string
	OfferType      models.OfferType
	OfferPrice     *float64
	OfferSneakerID string
	Message        string
}

// IPropositionService defines the interface for proposition operations. All
// authorization decisions are delegated to the lifecycle package; this
// service fetches the records a decision needs and commits the outcome.
type IPropositionService interface {
	CreateProposition(ctx context.Context, actorID string, attrs PropositionAttrs) (*models.PropositionDetail, error)
	GetProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error)
	ListPropositions(ctx context.Context, actorID string, skip, limit int) ([]models.PropositionDetail, error)
	AcceptProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error)
	RejectProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error)
	CancelProposition(ctx context.Context, actorID, propositionID string) error
}

// propositionService implements IPropositionService.
type propositionService struct {
	db *mongo.Database
}

// NewPropositionService creates a new PropositionService.
func NewPropositionService(database *mongo.Database) IPropositionService {
	return &propositionService{db: database}
}

// CreateProposition opens a pending proposition against someone else's
// sneaker. The target must exist and must not belong to the actor; a
// supplied counter-offer sneaker must exist too. Offer fields beyond that
// are stored verbatim.
func (s *propositionService) CreateProposition(ctx context.Context, actorID string, attrs PropositionAttrs) (*models.PropositionDetail, error) {
	target, err := s.findSneaker(ctx, attrs.SneakerID)
	if err != nil && !errors.Is(err, lifecycle.ErrNotFound) {
		return nil, err
	}

	if err := lifecycle.AuthorizeCreate(actorID, target); err != nil {
		return nil, err
	}

	if attrs.OfferSneakerID != "" {
		if _, err := s.findSneaker(ctx, attrs.OfferSneakerID); err != nil {
			return nil, err
		}
	}

	proposition := lifecycle.NewProposition(
		actorID, attrs.SneakerID, attrs.OfferType, attrs.OfferPrice, attrs.OfferSneakerID, attrs.Message)

	if _, err := s.db.Collection(db.PropositionsCollection).InsertOne(ctx, &proposition); err != nil {
		return nil, fmt.Errorf("failed to insert proposition on sneaker %s: %w", attrs.SneakerID, err)
	}

	return s.enrichOne(ctx, &proposition)
}

// GetProposition returns a proposition visible to the actor, with record
// summaries attached.
func (s *propositionService) GetProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
	proposition, target, err := s.loadForDecision(ctx, propositionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(actorID, proposition, target, lifecycle.ActionView); err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, proposition)
}

// ListPropositions returns the actor's sent and received propositions in
// store order, windowed by skip/limit.
func (s *propositionService) ListPropositions(ctx context.Context, actorID string, skip, limit int) ([]models.PropositionDetail, error) {
	ownedIDs, err := s.ownedSneakerIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"$or": []bson.M{
		{"proposer_id": actorID},
		{"sneaker_id": bson.M{"$in": ownedIDs}},
	}}
	opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := s.db.Collection(db.PropositionsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list propositions for user %s: %w", actorID, err)
	}

	var propositions []models.Proposition
	if err := cursor.All(ctx, &propositions); err != nil {
		return nil, fmt.Errorf("failed to decode propositions: %w", err)
	}

	return s.enrichMany(ctx, propositions)
}

// AcceptProposition transitions a pending proposition to accepted. Only the
// target sneaker's owner may do this.
func (s *propositionService) AcceptProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
	return s.transition(ctx, actorID, propositionID, lifecycle.ActionAccept)
}

// RejectProposition transitions a pending proposition to rejected. Only the
// target sneaker's owner may do this.
func (s *propositionService) RejectProposition(ctx context.Context, actorID, propositionID string) (*models.PropositionDetail, error) {
	return s.transition(ctx, actorID, propositionID, lifecycle.ActionReject)
}

// transition authorizes and commits a one-shot status change. The write is
// conditional on the document still being pending, so two owners racing (or
// an accept racing a cancel) cannot both win: the loser sees a conflict.
func (s *propositionService) transition(ctx context.Context, actorID, propositionID string, action lifecycle.Action) (*models.PropositionDetail, error) {
	proposition, target, err := s.loadForDecision(ctx, propositionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(actorID, proposition, target, action); err != nil {
		return nil, err
	}

	nextStatus, ok := lifecycle.NextStatus(action)
	if !ok {
		return nil, fmt.Errorf("action %s does not set a status: %w", action, lifecycle.ErrConflict)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Proposition
	err = s.db.Collection(db.PropositionsCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": propositionID, "status": models.StatusPending},
		bson.M{"$set": bson.M{"status": nextStatus, "updated_at": time.Now().UTC()}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Lost a race: transitioned or cancelled since the authorization read.
			return nil, fmt.Errorf("proposition %s is no longer pending: %w", propositionID, lifecycle.ErrConflict)
		}
		return nil, fmt.Errorf("failed to %s proposition %s: %w", action, propositionID, err)
	}

	return s.enrichOne(ctx, &updated)
}

// CancelProposition removes a proposition outright. Only the proposer may do
// this, in any status; there is no soft cancelled state on disk.
func (s *propositionService) CancelProposition(ctx context.Context, actorID, propositionID string) error {
	proposition, target, err := s.loadForDecision(ctx, propositionID)
	if err != nil {
		return err
	}
	if err := lifecycle.Authorize(actorID, proposition, target, lifecycle.ActionCancel); err != nil {
		return err
	}

	result, err := s.db.Collection(db.PropositionsCollection).DeleteOne(ctx, bson.M{"_id": propositionID})
	if err != nil {
		return fmt.Errorf("failed to cancel proposition %s: %w", propositionID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("proposition %s: %w", propositionID, lifecycle.ErrNotFound)
	}
	return nil
}

// loadForDecision fetches the proposition and its target sneaker, the two
// records every lifecycle decision is made against. A missing proposition is
// NotFound; a missing target (unreachable while cascades hold) is too.
func (s *propositionService) loadForDecision(ctx context.Context, propositionID string) (*models.Proposition, *models.Sneaker, error) {
	var proposition models.Proposition
	err := s.db.Collection(db.PropositionsCollection).FindOne(ctx, bson.M{"_id": propositionID}).Decode(&proposition)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, fmt.Errorf("proposition %s: %w", propositionID, lifecycle.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("error finding proposition %s: %w", propositionID, err)
	}

	target, err := s.findSneaker(ctx, proposition.SneakerID)
	if err != nil {
		return nil, nil, err
	}
	return &proposition, target, nil
}

// findSneaker fetches a sneaker document directly.
func (s *propositionService) findSneaker(ctx context.Context, sneakerID string) (*models.Sneaker, error) {
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

// ownedSneakerIDs returns the IDs of every sneaker the user owns.
func (s *propositionService) ownedSneakerIDs(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.db.Collection(db.SneakersCollection).Find(ctx, bson.M{"owner_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sneakers of user %s: %w", userID, err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sneaker IDs: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// enrichOne attaches proposer and sneaker summaries to a single proposition.
func (s *propositionService) enrichOne(ctx context.Context, proposition *models.Proposition) (*models.PropositionDetail, error) {
	details, err := s.enrichMany(ctx, []models.Proposition{*proposition})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// enrichMany batch-fetches the users and sneakers referenced by a set of
// propositions and assembles response details. A counter-offer sneaker that
// no longer exists simply comes back nil; its reference is not cascaded.
func (s *propositionService) enrichMany(ctx context.Context, propositions []models.Proposition) ([]models.PropositionDetail, error) {
	userIDSet := make(map[string]struct{})
	sneakerIDSet := make(map[string]struct{})
	for _, p := range propositions {
		userIDSet[p.ProposerID] = struct{}{}
		sneakerIDSet[p.SneakerID] = struct{}{}
		if p.OfferSneakerID != "" {
			sneakerIDSet[p.OfferSneakerID] = struct{}{}
		}
	}

	userIDs := make([]string, 0, len(userIDSet))
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}
	sneakerIDs := make([]string, 0, len(sneakerIDSet))
	for id := range sneakerIDSet {
		sneakerIDs = append(sneakerIDs, id)
	}

	users, err := lookupUserInfos(ctx, s.db, userIDs)
	if err != nil {
		return nil, err
	}
	sneakers, err := s.lookupSneakerInfos(ctx, sneakerIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.PropositionDetail, 0, len(propositions))
	for _, p := range propositions {
		detail := models.PropositionDetail{
			Proposition: p,
			Proposer:    users[p.ProposerID],
			Sneaker:     sneakers[p.SneakerID],
		}
		if p.OfferSneakerID != "" {
			detail.OfferSneaker = sneakers[p.OfferSneakerID]
		}
		details = append(details, detail)
	}
	return details, nil
}

// lookupSneakerInfos batch-fetches sneaker summaries keyed by ID.
func (s *propositionService) lookupSneakerInfos(ctx context.Context, sneakerIDs []string) (map[string]*models.SneakerInfo, error) {
	result := make(map[string]*models.SneakerInfo)
	if len(sneakerIDs) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "brand": 1, "size": 1, "price": 1})
	cursor, err := s.db.Collection(db.SneakersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": sneakerIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sneakers: %w", err)
	}

	var infos []models.SneakerInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("failed to decode sneaker summaries: %w", err)
	}
	for i := range infos {
		result[infos[i].ID] = &infos[i]
	}
	return result, nil
}
