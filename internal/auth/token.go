package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid session token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Claims carried by the session cookie. Subject holds the cook ID and
// SessionKey the key of the server-side session.
type Claims struct {
	SessionKey string `json:"sid"`
	jwt.RegisteredClaims
}

// CookID returns the cook ID held in the subject claim
func (c Claims) CookID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, c.Subject)
	}
	return uint(id), nil
}

// TokenSigner signs and verifies session tokens with an HMAC key
type TokenSigner struct {
	SignedKey    []byte
	SignedMethod jwt.SigningMethod
}

// NewTokenSigner creates a signer using HS256
func NewTokenSigner(key []byte) *TokenSigner {
	return &TokenSigner{
		SignedKey:    key,
		SignedMethod: jwt.SigningMethodHS256,
	}
}

// Sign issues a token for the session that expires with it
func (g *TokenSigner) Sign(cookID uint, sessionKey string, issuedAt, expiresAt time.Time) (string, error) {
	if cookID == 0 || sessionKey == "" {
		return "", fmt.Errorf("cannot sign token: missing cook or session")
	}
	claims := Claims{
		SessionKey: sessionKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(cookID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(g.SignedMethod, claims).SignedString(g.SignedKey)
}

// Parse verifies the signature and the time based claims of tokenString
func (g *TokenSigner) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC keys are accepted
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.SignedKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuedAt())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionKey == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
