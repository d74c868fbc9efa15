package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t *testing.T, ttl time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(ttl, "test-issuer", "test-audience", false, "", "", testSecret, NewMemoryStateStore(0))
	require.NoError(t, err)
	return svc
}

func testSubject() TokenSubject {
	return TokenSubject{Role: "RESEARCHER", ProfileID: uuid.New(), Name: "Maria Souza"}
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		store       StateStore
		expectError bool
	}{
		{name: "valid symmetric key configuration", secretKey: testSecret, store: NewMemoryStateStore(0)},
		{name: "missing secret key", store: NewMemoryStateStore(0), expectError: true},
		{name: "missing revocation store", secretKey: testSecret, expectError: true},
		{name: "rsa without keys", useRSAKeys: true, store: NewMemoryStateStore(0), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(time.Hour, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey, tt.store)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := createTestTokenService(t, 15*time.Minute)
	subject := testSubject()

	token, issued, err := svc.GenerateToken(subject)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, subject.Role, claims.Role)
	assert.Equal(t, subject.ProfileID, claims.ProfileID)
	assert.Equal(t, subject.Name, claims.Name)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestGenerateTokenRejectsEmptySubject(t *testing.T) {
	svc := createTestTokenService(t, time.Minute)

	_, _, err := svc.GenerateToken(TokenSubject{Role: "ADMIN"})
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = svc.GenerateToken(TokenSubject{ProfileID: uuid.New()})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenFailures(t *testing.T) {
	svc := createTestTokenService(t, time.Minute)
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService(time.Minute, "iss", "aud", false, "", "", "another-secret", NewMemoryStateStore(0))
		require.NoError(t, err)
		token, _, err := other.GenerateToken(testSubject())
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"role":       "ADMIN",
			"profile_id": uuid.New().String(),
			"jti":        "abc",
			"iat":        time.Now().Add(-2 * time.Hour).Unix(),
			"exp":        time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, signed)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("missing role", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"profile_id": uuid.New().String(),
			"jti":        "abc",
			"iat":        time.Now().Unix(),
			"exp":        time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, signed)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestRevokeToken(t *testing.T) {
	svc := createTestTokenService(t, 15*time.Minute)
	ctx := context.Background()

	token, _, err := svc.GenerateToken(testSubject())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(ctx, claims))

	revoked, err := svc.IsTokenRevoked(ctx, claims.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.ErrorIs(t, svc.RevokeToken(ctx, nil), ErrTokenInvalid)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	svc := createTestTokenService(t, time.Minute)

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, claims, err := svc.GenerateToken(testSubject())
			if assert.NoError(t, err) {
				ids <- claims.TokenID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate token id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func BenchmarkValidateToken(b *testing.B) {
	svc, err := NewTokenService(time.Hour, "iss", "aud", false, "", "", testSecret, NewMemoryStateStore(0))
	if err != nil {
		b.Fatal(err)
	}
	token, _, err := svc.GenerateToken(testSubject())
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.ValidateToken(ctx, token); err != nil {
			b.Fatal(err)
		}
	}
}
