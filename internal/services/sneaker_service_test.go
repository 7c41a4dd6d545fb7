package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SanderWeide/sneaker-engine-v3/internal/config"
	"github.com/SanderWeide/sneaker-engine-v3/internal/db"
	"github.com/SanderWeide/sneaker-engine-v3/internal/lifecycle"
	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
	"github.com/SanderWeide/sneaker-engine-v3/internal/utils"
)

func setupTestDBSneakers(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, db.UsersCollection, db.SneakersCollection, db.PropositionsCollection)
}

func newSneakerService(database *mongo.Database) ISneakerService {
	cfg := &config.Config{GetCacheTTL: time.Minute}
	return NewSneakerService(database, cfg, nil)
}

func TestSneakerService_CreateAndFind(t *testing.T) {
	database := setupTestDBSneakers(t, "testdb_sneaker_service_crud")
	svc := newSneakerService(database)
	ctx := context.Background()

	owner := seedUser(t, database, "sncrud")

	created, err := svc.CreateSneaker(ctx, owner.ID, SneakerAttrs{
		Name:      "Air Max 90",
		Brand:     "Nike",
		Size:      "10.5",
		Condition: models.ConditionLikeNew,
		Price:     150,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, owner.ID, created.OwnerID)
	require.NotNil(t, created.Owner)
	assert.Equal(t, owner.Username, created.Owner.Username)

	found, err := svc.FindSneakerByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, models.ConditionLikeNew, found.Condition)

	_, err = svc.FindSneakerByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestSneakerService_List(t *testing.T) {
	database := setupTestDBSneakers(t, "testdb_sneaker_service_list")
	svc := newSneakerService(database)
	ctx := context.Background()

	owner := seedUser(t, database, "snlist")
	for i := 0; i < 5; i++ {
		seedSneaker(t, database, owner.ID, "Shoe")
	}

	all, err := svc.ListSneakers(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	for _, sn := range all {
		require.NotNil(t, sn.Owner)
		assert.Equal(t, owner.Username, sn.Owner.Username)
	}

	window, err := svc.ListSneakers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, window, 2)
}

func TestSneakerService_Update(t *testing.T) {
	database := setupTestDBSneakers(t, "testdb_sneaker_service_update")
	svc := newSneakerService(database)
	ctx := context.Background()

	owner := seedUser(t, database, "snupd")
	other := seedUser(t, database, "snupd2")
	sneaker := seedSneaker(t, database, owner.ID, "Blazer Mid")

	// Sparse update: untouched fields keep their values.
	updated, err := svc.UpdateSneaker(ctx, sneaker.ID, owner.ID, map[string]interface{}{
		"price":     120.0,
		"condition": models.ConditionFair,
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, models.ConditionFair, updated.Condition)
	assert.Equal(t, "Blazer Mid", updated.Name)
	assert.Equal(t, owner.ID, updated.OwnerID)

	// Non-owner is forbidden, and nothing changes.
	_, err = svc.UpdateSneaker(ctx, sneaker.ID, other.ID, map[string]interface{}{"price": 1.0})
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)
	after, err := svc.FindSneakerByID(ctx, sneaker.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, after.Price)

	// Unknown sneaker.
	_, err = svc.UpdateSneaker(ctx, uuid.NewString(), owner.ID, map[string]interface{}{"price": 1.0})
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)

	// Disallowed field.
	_, err = svc.UpdateSneaker(ctx, sneaker.ID, owner.ID, map[string]interface{}{"owner_id": other.ID})
	assert.ErrorIs(t, err, lifecycle.ErrConflict)
}

func TestSneakerService_Delete_CascadesPropositions(t *testing.T) {
	database := setupTestDBSneakers(t, "testdb_sneaker_service_delete")
	svc := newSneakerService(database)
	ctx := context.Background()

	owner := seedUser(t, database, "sndel")
	buyer := seedUser(t, database, "sndel2")
	target := seedSneaker(t, database, owner.ID, "To Delete")
	unrelated := seedSneaker(t, database, owner.ID, "To Keep")

	pOnTarget := seedProposition(t, database, buyer.ID, target.ID)
	pOnUnrelated := seedProposition(t, database, buyer.ID, unrelated.ID)

	// Non-owner cannot delete.
	assert.ErrorIs(t, svc.DeleteSneaker(ctx, target.ID, buyer.ID), lifecycle.ErrForbidden)
	assert.EqualValues(t, 1, countDocs(t, database, db.PropositionsCollection, bson.M{"_id": pOnTarget.ID}))

	require.NoError(t, svc.DeleteSneaker(ctx, target.ID, owner.ID))

	// The sneaker and every proposition targeting it are gone; the sibling
	// sneaker and its proposition are untouched.
	assert.EqualValues(t, 0, countDocs(t, database, db.SneakersCollection, bson.M{"_id": target.ID}))
	assert.EqualValues(t, 0, countDocs(t, database, db.PropositionsCollection, bson.M{"_id": pOnTarget.ID}))
	assert.EqualValues(t, 1, countDocs(t, database, db.SneakersCollection, bson.M{"_id": unrelated.ID}))
	assert.EqualValues(t, 1, countDocs(t, database, db.PropositionsCollection, bson.M{"_id": pOnUnrelated.ID}))

	assert.ErrorIs(t, svc.DeleteSneaker(ctx, target.ID, owner.ID), lifecycle.ErrNotFound)
}

func TestSneakerService_SetImageURL(t *testing.T) {
	database := setupTestDBSneakers(t, "testdb_sneaker_service_image")
	svc := newSneakerService(database)
	ctx := context.Background()

	owner := seedUser(t, database, "snimg")
	sneaker := seedSneaker(t, database, owner.ID, "With Image")

	require.NoError(t, svc.SetImageURL(ctx, sneaker.ID, "https://img.example.com/abc.jpg"))

	found, err := svc.FindSneakerByID(ctx, sneaker.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/abc.jpg", found.ImageURL)

	assert.ErrorIs(t, svc.SetImageURL(ctx, uuid.NewString(), "x"), lifecycle.ErrNotFound)
}
