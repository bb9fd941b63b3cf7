package auth_test

import (
	"context"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/internal/auth"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/mongodb"
	"github.com/akkm9120/sctp02-crud-mongo/testing/testdb"
	"github.com/akkm9120/sctp02-crud-mongo/testing/testmongo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRepositoryContract(t *testing.T, repo auth.UserRepository, reset func(t *testing.T)) {
	ctx := context.Background()

	t.Run("InsertAndFindByEmail", func(t *testing.T) {
		reset(t)

		result, err := repo.Insert(ctx, &auth.User{Email: "ann@example.com", PasswordHash: "hash"})
		require.NoError(t, err)
		assert.True(t, result.Acknowledged)

		user, err := repo.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, result.InsertedID, user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("FindByEmailIsExact", func(t *testing.T) {
		reset(t)

		_, err := repo.Insert(ctx, &auth.User{Email: "ann@example.com", PasswordHash: "hash"})
		require.NoError(t, err)

		_, err = repo.FindByEmail(ctx, "ANN@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)

		_, err = repo.FindByEmail(ctx, "")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}

func TestUserRepository_Postgres(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, (*auth.User)(nil))

	repo := auth.NewRepository(pgContainer.DB, metrics.NewMock())
	userRepositoryContract(t, repo, func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "users")
	})
}

func TestUserRepository_Mongo(t *testing.T) {
	mongoContainer := testmongo.SetupSharedMongo(t)
	defer mongoContainer.Cleanup(t)

	repo := auth.NewMongoRepository(mongoContainer.DB, metrics.NewMock())
	userRepositoryContract(t, repo, func(t *testing.T) {
		testmongo.CleanupCollections(t, mongoContainer.DB, mongodb.UsersCollection)
	})
}
