package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongo.Connect does not dial eagerly, so no server is needed here.
func TestCollectionHelpers(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	db := &MongoDB{Client: client, Database: client.Database("salesor_test")}

	assert.Equal(t, "users", db.Users().Name())
	assert.Equal(t, "leads", db.Leads().Name())
	assert.Equal(t, "customers", db.Customers().Name())
}
