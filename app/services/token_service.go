package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

const revokedKeyPrefix = "revoked:"

// TokenSubject is the identity a token is issued for
type TokenSubject struct {
	Role      string
	ProfileID uuid.UUID
	Name      string
}

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	Role      string    `json:"role"`
	ProfileID uuid.UUID `json:"profile_id"`
	Name      string    `json:"name"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService handles JWT generation, validation and revocation
type TokenService interface {
	GenerateToken(subject TokenSubject) (token string, claims *TokenClaims, err error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	// RevokeToken blacklists the token id until the token would have expired
	RevokeToken(ctx context.Context, claims *TokenClaims) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenServiceImpl implements TokenService
type TokenServiceImpl struct {
	accessTokenTTL time.Duration
	signingMethod  jwt.SigningMethod
	privateKey     *rsa.PrivateKey
	publicKey      *rsa.PublicKey
	secretKey      []byte
	useRSAKeys     bool
	issuer         string
	audience       string
	revoked        StateStore
}

// NewTokenService creates a new token service
func NewTokenService(accessTokenTTL time.Duration, issuer, audience string, useRSAKeys bool, privateKeyPEM, publicKeyPEM, secretKey string, revoked StateStore) (TokenService, error) {
	var privateKey *rsa.PrivateKey
	var publicKey *rsa.PublicKey
	var secretKeyBytes []byte
	var signingMethod jwt.SigningMethod

	if revoked == nil {
		return nil, fmt.Errorf("revocation store is required")
	}

	if useRSAKeys {
		var err error
		privateKey, publicKey, err = parseRSAKeys(privateKeyPEM, publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA keys: %w", err)
		}
		signingMethod = jwt.SigningMethodRS256
	} else {
		if secretKey == "" {
			return nil, fmt.Errorf("secret key is required when not using RSA keys")
		}
		secretKeyBytes = []byte(secretKey)
		signingMethod = jwt.SigningMethodHS256
	}

	return &TokenServiceImpl{
		accessTokenTTL: accessTokenTTL,
		signingMethod:  signingMethod,
		privateKey:     privateKey,
		publicKey:      publicKey,
		secretKey:      secretKeyBytes,
		useRSAKeys:     useRSAKeys,
		issuer:         issuer,
		audience:       audience,
		revoked:        revoked,
	}, nil
}

// parseRSAKeys parses RSA private and public keys from PEM format
func parseRSAKeys(privateKeyPEM, publicKeyPEM string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if privateKeyPEM == "" || publicKeyPEM == "" {
		return nil, nil, fmt.Errorf("both private and public keys are required")
	}

	privateKeyBlock, _ := pem.Decode([]byte(privateKeyPEM))
	if privateKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode private key")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(privateKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKeyBlock, _ := pem.Decode([]byte(publicKeyPEM))
	if publicKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode public key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(publicKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("public key is not RSA")
	}

	return privateKey, rsaPublicKey, nil
}

// GenerateToken issues an access token for the subject
func (s *TokenServiceImpl) GenerateToken(subject TokenSubject) (string, *TokenClaims, error) {
	if subject.Role == "" || subject.ProfileID == uuid.Nil {
		return "", nil, ErrTokenInvalid
	}

	now := utils.UTCNow()
	tokenID, err := generateTokenID()
	if err != nil {
		return "", nil, err
	}

	claims := &TokenClaims{
		Role:      subject.Role,
		ProfileID: subject.ProfileID,
		Name:      subject.Name,
		TokenID:   tokenID,
		IssuedAt:  time.Unix(now.Unix(), 0).UTC(),
		ExpiresAt: time.Unix(now.Add(s.accessTokenTTL).Unix(), 0).UTC(),
	}

	token := jwt.NewWithClaims(s.signingMethod, jwt.MapClaims{
		"role":       claims.Role,
		"profile_id": claims.ProfileID.String(),
		"name":       claims.Name,
		"jti":        claims.TokenID,
		"iat":        claims.IssuedAt.Unix(),
		"exp":        claims.ExpiresAt.Unix(),
		"iss":        s.issuer,
		"aud":        s.audience,
	})

	var signed string
	if s.useRSAKeys {
		signed, err = token.SignedString(s.privateKey)
	} else {
		signed, err = token.SignedString(s.secretKey)
	}
	if err != nil {
		return "", nil, err
	}

	return signed, claims, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *TokenServiceImpl) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if s.useRSAKeys {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}

	mc, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	role, ok := mc["role"].(string)
	if !ok || role == "" {
		return nil, ErrTokenInvalid
	}
	rawProfileID, ok := mc["profile_id"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	profileID, err := uuid.Parse(rawProfileID)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	name, _ := mc["name"].(string)
	tokenID, ok := mc["jti"].(string)
	if !ok || tokenID == "" {
		return nil, ErrTokenInvalid
	}
	issuedAt, ok := mc["iat"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	expiresAt, ok := mc["exp"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}

	if utils.UTCNow().After(time.Unix(int64(expiresAt), 0)) {
		return nil, ErrTokenExpired
	}

	revoked, err := s.IsTokenRevoked(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &TokenClaims{
		Role:      role,
		ProfileID: profileID,
		Name:      name,
		TokenID:   tokenID,
		IssuedAt:  time.Unix(int64(issuedAt), 0).UTC(),
		ExpiresAt: time.Unix(int64(expiresAt), 0).UTC(),
	}, nil
}

// RevokeToken marks a token id as revoked until its expiry
func (s *TokenServiceImpl) RevokeToken(ctx context.Context, claims *TokenClaims) error {
	if claims == nil || claims.TokenID == "" {
		return ErrTokenInvalid
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Set(ctx, revokedKeyPrefix+claims.TokenID, []byte("1"), ttl)
}

// IsTokenRevoked checks the revocation list
func (s *TokenServiceImpl) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, found, err := s.revoked.Get(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return found, nil
}

// generateTokenID generates a unique token ID
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
