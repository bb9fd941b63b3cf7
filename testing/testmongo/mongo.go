// Package testmongo provides a MongoDB container for repository tests.
package testmongo

import (
	"context"
	"fmt"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/internal/config"
	"github.com/akkm9120/sctp02-crud-mongo/internal/mongodb"
	"github.com/akkm9120/sctp02-crud-mongo/testing/testenv"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	mongomodule "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var shared = testenv.NewShared(startMongo)

type MongoContainer struct {
	Container *mongomodule.MongoDBContainer
	Client    *mongo.Client
	DB        *mongo.Database
	URI       string
}

// SetupSharedMongo returns the package's MongoDB container, starting it
// on first use. Tests using it cannot run in parallel.
func SetupSharedMongo(t *testing.T) *MongoContainer {
	t.Helper()
	return shared.Get(t)
}

func startMongo(ctx context.Context) (*MongoContainer, error) {
	container, err := mongomodule.Run(ctx, "mongo:7")
	if err != nil {
		return nil, fmt.Errorf("start mongo: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("mongo uri: %w", err)
	}

	client, database, err := mongodb.Connect(ctx, config.DatabaseConfig{
		Driver: config.DriverMongo,
		URI:    uri,
		Name:   "fake_school",
	})
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}

	return &MongoContainer{Container: container, Client: client, DB: database, URI: uri}, nil
}

func (mc *MongoContainer) Cleanup(t *testing.T) {
	t.Helper()

	if err := mongodb.Disconnect(context.Background(), mc.Client); err != nil {
		t.Logf("failed to disconnect mongo: %s", err)
	}
	testenv.Terminate(t, mc.Container)
}

// CleanupCollections removes every document from the given collections.
func CleanupCollections(t *testing.T, database *mongo.Database, collections ...string) {
	t.Helper()

	ctx := context.Background()
	for _, name := range collections {
		_, err := database.Collection(name).DeleteMany(ctx, bson.M{})
		require.NoError(t, err, "failed to clean collection %s", name)
	}
}
