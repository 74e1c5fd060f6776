package sites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

func TestSiteSearchFilter(t *testing.T) {
	t.Run("no optional filters", func(t *testing.T) {
		filter := siteSearchFilter(types.SiteSearch{})
		clauses := filter["$and"].([]bson.M)
		require.Len(t, clauses, 1)
		assert.Contains(t, clauses[0], "embedding")
	})

	t.Run("city, ceiling and age", func(t *testing.T) {
		filter := siteSearchFilter(types.SiteSearch{City: "Luxor", MaxCost: 300, Age: ptr(9)})
		clauses := filter["$and"].([]bson.M)
		require.Len(t, clauses, 4)
		assert.Equal(t, bson.M{"city": bson.M{"$regex": "^Luxor$", "$options": "i"}}, clauses[1])
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"budget_egp": nil},
			{"budget_egp": bson.M{"$lte": 300.0}},
		}}, clauses[2])
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"min_age": nil},
			{"min_age": bson.M{"$lte": 9}},
		}}, clauses[3])
	})
}

func TestNamePatternFilter(t *testing.T) {
	filter := namePatternFilter([]string{"egyptian museum", "st. catherine"})
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"name": primitive.Regex{Pattern: "egyptian museum", Options: "i"}},
		{"name": primitive.Regex{Pattern: `st\. catherine`, Options: "i"}},
	}}, filter)
}

func TestRestaurantFilter(t *testing.T) {
	filter := restaurantFilter(types.RestaurantQuery{City: "Aswan", MaxCost: 120})
	assert.Equal(t, bson.M{"$ne": nil}, filter["latitude"])
	assert.Equal(t, bson.M{"$ne": nil}, filter["longitude"])
	assert.Equal(t, bson.M{"$regex": "^Aswan$", "$options": "i"}, filter["city"])
	assert.Equal(t, bson.M{"$lte": 120.0}, filter["average_budget_egp"])

	filter = restaurantFilter(types.RestaurantQuery{})
	assert.NotContains(t, filter, "city")
	assert.NotContains(t, filter, "average_budget_egp")
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find site by pattern", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.sites", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Pyramids of Giza"},
			{Key: "city", Value: "Giza"},
			{Key: "latitude", Value: 29.9792},
			{Key: "longitude", Value: 31.1342},
		}))
		repo := NewMongoRepository(mt.DB, testLogger())

		rec, err := repo.FindSiteByNamePattern(context.Background(), "pyramid", "giza")
		require.NoError(mt, err)
		require.NotNil(mt, rec)
		assert.Equal(mt, id.Hex(), rec.ID)
		assert.Equal(mt, "Pyramids of Giza", rec.Name)
		require.NotNil(mt, rec.Location())
		assert.Equal(mt, 29.9792, rec.Location().Latitude)
	})

	mt.Run("no site matches", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.sites", mtest.FirstBatch))
		repo := NewMongoRepository(mt.DB, testLogger())

		rec, err := repo.FindSiteByNamePattern(context.Background(), "museum")
		require.NoError(mt, err)
		assert.Nil(mt, rec)
	})

	mt.Run("search ranks in process", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.sites", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: "Luxor Temple"},
				{Key: "city", Value: "Luxor"},
				{Key: "embedding", Value: bson.A{0.0, 1.0}},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: "Karnak Temple"},
				{Key: "city", Value: "Luxor"},
				{Key: "embedding", Value: bson.A{1.0, 0.0}},
			},
		))
		repo := NewMongoRepository(mt.DB, testLogger())

		got, err := repo.SearchTopSites(context.Background(), types.SiteSearch{Vector: []float32{1, 0}, City: "Luxor", Limit: 1})
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "Karnak Temple", got[0].Name)
		assert.InDelta(mt, 1.0, got[0].SimilarityScore, 1e-9)
	})
}
