package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestHashPassword(t *testing.T) {
	t.Run("Successfully hash password", func(t *testing.T) {
		hashed, err := HashPassword("mySecurePassword123")

		assert.NoError(t, err)
		assert.NotEmpty(t, hashed)
		assert.NotEqual(t, "mySecurePassword123", hashed)
	})

	t.Run("Different hashes for same password", func(t *testing.T) {
		hash1, _ := HashPassword("samePassword")
		hash2, _ := HashPassword("samePassword")

		// Bcrypt генерирует разные хеши для одного пароля (из-за соли)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestCheckPassword(t *testing.T) {
	hashed, _ := HashPassword("correctPassword")

	assert.True(t, CheckPassword(hashed, "correctPassword"))
	assert.False(t, CheckPassword(hashed, "wrongPassword"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleMember, RoleTrainer, RoleAdmin} {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole("user"))
	assert.False(t, ValidRole(""))
}

func TestGenerateAccessToken(t *testing.T) {
	t.Run("Token contains correct claims", func(t *testing.T) {
		token, err := GenerateAccessToken(42, "trainer@example.com", RoleTrainer, testSecret)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)

		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, "trainer@example.com", claims.Email)
		assert.Equal(t, RoleTrainer, claims.Role)
		assert.Equal(t, tokenTypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Fail with empty secret", func(t *testing.T) {
		token, err := GenerateAccessToken(1, "member@example.com", RoleMember, "")

		assert.Equal(t, ErrEmptyJWTSecret, err)
		assert.Empty(t, token)
	})

	t.Run("Fail with unknown role", func(t *testing.T) {
		token, err := GenerateAccessToken(1, "member@example.com", "moderator", testSecret)

		assert.ErrorIs(t, err, ErrUnknownRole)
		assert.Empty(t, token)
	})

	t.Run("Every token gets its own id", func(t *testing.T) {
		t1, _ := GenerateAccessToken(1, "member@example.com", RoleMember, testSecret)
		t2, _ := GenerateAccessToken(1, "member@example.com", RoleMember, testSecret)

		c1, err := ValidateToken(t1, testSecret)
		require.NoError(t, err)
		c2, err := ValidateToken(t2, testSecret)
		require.NoError(t, err)

		assert.NotEqual(t, c1.ID, c2.ID)
	})
}

func TestGenerateTokens(t *testing.T) {
	t.Run("Successfully generate both tokens", func(t *testing.T) {
		access, refresh, err := GenerateTokens(1, "member@example.com", RoleMember, "access-secret", "refresh-secret")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)
	})

	t.Run("Fail with empty refresh secret", func(t *testing.T) {
		access, refresh, err := GenerateTokens(1, "member@example.com", RoleMember, "access-secret", "")

		assert.Error(t, err)
		assert.Empty(t, access)
		assert.Empty(t, refresh)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("Fail with wrong secret", func(t *testing.T) {
		token, _ := GenerateAccessToken(100, "admin@example.com", RoleAdmin, testSecret)

		claims, err := ValidateToken(token, "wrong-secret")

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with invalid token format", func(t *testing.T) {
		claims, err := ValidateToken("invalid.token.format", testSecret)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with expired token", func(t *testing.T) {
		// Создаем токен с истекшим сроком
		past := time.Now().Add(-time.Hour)
		claims := &JWTClaims{
			UserID:    100,
			Email:     "admin@example.com",
			Role:      RoleAdmin,
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(past),
				IssuedAt:  jwt.NewNumericDate(past.Add(-15 * time.Minute)),
			},
		}
		tokenString, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

		validated, err := ValidateToken(tokenString, testSecret)

		assert.Equal(t, ErrTokenExpired, err)
		assert.Nil(t, validated)
	})

	t.Run("Token has correct issuer and audience", func(t *testing.T) {
		token, _ := GenerateAccessToken(100, "admin@example.com", RoleAdmin, testSecret)

		claims, err := ValidateToken(token, testSecret)

		require.NoError(t, err)
		assert.Equal(t, jwtIssuer, claims.Issuer)
		assert.Contains(t, claims.Audience, jwtAudience)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	accessSecret := "access-secret"
	refreshSecret := "refresh-secret"

	t.Run("New access token keeps the principal", func(t *testing.T) {
		refreshToken, _ := GenerateRefreshToken(7, "member@example.com", RoleMember, refreshSecret)

		accessToken, claims, err := RefreshAccessToken(refreshToken, refreshSecret, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, 7, claims.UserID)

		accessClaims, err := ValidateToken(accessToken, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, 7, accessClaims.UserID)
		assert.Equal(t, RoleMember, accessClaims.Role)
		assert.Equal(t, tokenTypeAccess, accessClaims.TokenType)
	})

	t.Run("Fail with access token instead of refresh token", func(t *testing.T) {
		accessToken, _ := GenerateAccessToken(7, "member@example.com", RoleMember, accessSecret)

		newToken, claims, err := RefreshAccessToken(accessToken, accessSecret, accessSecret)

		assert.Equal(t, ErrInvalidTokenType, err)
		assert.Empty(t, newToken)
		assert.Nil(t, claims)
	})
}

func TestTokenExpiration(t *testing.T) {
	for name, tc := range map[string]struct {
		generate func(int, string, string, string) (string, error)
		ttl      time.Duration
	}{
		"access":  {GenerateAccessToken, AccessTokenTTL},
		"refresh": {GenerateRefreshToken, RefreshTokenTTL},
	} {
		t.Run(name, func(t *testing.T) {
			token, err := tc.generate(1, "member@example.com", RoleMember, testSecret)
			require.NoError(t, err)

			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err)

			diff := claims.ExpiresAt.Time.Sub(time.Now().Add(tc.ttl)).Abs()
			assert.Less(t, diff, 2*time.Second) // допуск 2 секунды
		})
	}
}
