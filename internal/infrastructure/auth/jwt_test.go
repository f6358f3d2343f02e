package auth

import (
	"testing"
	"time"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-validation",
		TokenExpiration: time.Hour,
		Issuer:          "assetflow-backend",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	userID := uuid.New()
	branchID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(GenerateTokenInput{
		UserID:   userID,
		BranchID: branchID,
		Username: "nurbek",
		Role:     org.RoleBranchManager,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, branchID.String(), claims.BranchID)
	assert.Equal(t, "nurbek", claims.Username)
	assert.Equal(t, org.RoleBranchManager, claims.GetRole())

	parsedUser, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsedUser)

	parsedBranch, err := claims.GetBranchUUID()
	require.NoError(t, err)
	assert.Equal(t, branchID, parsedBranch)
}

func TestJWTService_ValidateToken_Errors(t *testing.T) {
	svc := newTestJWTService()

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:          "a-different-secret-entirely",
			TokenExpiration: time.Hour,
			Issuer:          "assetflow-backend",
		})
		token, _, err := other.GenerateToken(GenerateTokenInput{
			UserID:   uuid.New(),
			BranchID: uuid.New(),
			Role:     org.RoleBranchStaff,
		})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:          "test-secret-key-for-jwt-validation",
			TokenExpiration: -time.Minute,
			Issuer:          "assetflow-backend",
		})
		token, _, err := expired.GenerateToken(GenerateTokenInput{
			UserID:   uuid.New(),
			BranchID: uuid.New(),
			Role:     org.RoleBranchStaff,
		})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects missing role", func(t *testing.T) {
		token := signTestToken(t, &Claims{
			RegisteredClaims: freshRegisteredClaims(),
			UserID:           uuid.New().String(),
			BranchID:         uuid.New().String(),
		})
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrMissingRole)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		token := signTestToken(t, &Claims{
			RegisteredClaims: freshRegisteredClaims(),
			UserID:           uuid.New().String(),
			BranchID:         uuid.New().String(),
			Role:             "SUPERVISOR",
		})
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrMissingRole)
	})

	t.Run("rejects missing branch", func(t *testing.T) {
		token := signTestToken(t, &Claims{
			RegisteredClaims: freshRegisteredClaims(),
			UserID:           uuid.New().String(),
			Role:             string(org.RoleBranchStaff),
		})
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrMissingBranchID)
	})
}

func freshRegisteredClaims() jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func signTestToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-jwt-validation"))
	require.NoError(t, err)
	return signed
}
