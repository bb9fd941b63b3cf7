package auth_test

import (
	"testing"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestTokenManager(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret)

	t.Run("IssueAndVerify", func(t *testing.T) {
		before := time.Now().Add(-time.Second)

		token, err := tokens.Issue("user-1", "ann@example.com")
		require.NoError(t, err)

		claims, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "ann@example.com", claims.Email)

		require.NotNil(t, claims.IssuedAt)
		require.NotNil(t, claims.ExpiresAt)
		assert.True(t, claims.IssuedAt.Time.After(before))
		assert.Equal(t, auth.TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	})

	t.Run("DifferentSecret", func(t *testing.T) {
		token, err := auth.NewTokenManager("another-secret").Issue("user-1", "ann@example.com")
		require.NoError(t, err)

		_, err = tokens.Verify(token)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
		assert.NotErrorIs(t, err, auth.ErrTokenMalformed)
	})

	t.Run("Expired", func(t *testing.T) {
		issued := time.Now().Add(-73 * time.Hour)
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
			UserID: "user-1",
			Email:  "ann@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(issued),
				ExpiresAt: jwt.NewNumericDate(issued.Add(auth.TokenTTL)),
			},
		})
		token, err := expired.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tokens.Verify(token)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("WrongAlgorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.Verify(token)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, token := range []string{"", "not-a-token", "a.b", "abc.def.ghi"} {
			_, err := tokens.Verify(token)
			assert.ErrorIs(t, err, auth.ErrTokenMalformed, token)
		}
	})
}
