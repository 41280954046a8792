package middleware

import (
	"errors"
	"testing"
	"time"

	"JasaKita/pkg/config"
	tokenstore "JasaKita/pkg/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(config.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestResolveToken(t *testing.T) {
	config.JWTSecret = "test-secret"

	jti := uuid.NewString()
	tokenStr := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": jti,
	})

	userID, gotJTI, err := ResolveToken(tokenStr)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != 42 || gotJTI != jti {
		t.Fatalf("expected user 42 with jti %s, got %d %s", jti, userID, gotJTI)
	}
}

func TestResolveTokenNumericSubject(t *testing.T) {
	config.JWTSecret = "test-secret"

	tokenStr := signToken(t, jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	userID, _, err := ResolveToken(tokenStr)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != 7 {
		t.Fatalf("expected user 7, got %d", userID)
	}
}

func TestResolveTokenRejectsBadInput(t *testing.T) {
	config.JWTSecret = "test-secret"

	if _, _, err := ResolveToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	expired := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if _, _, err := ResolveToken(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired, got %v", err)
	}

	config.JWTSecret = "other-secret"
	valid := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	config.JWTSecret = "test-secret"
	if _, _, err := ResolveToken(valid); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong signature, got %v", err)
	}
}

func TestResolveTokenRevoked(t *testing.T) {
	config.JWTSecret = "test-secret"

	jti := uuid.NewString()
	tokenStr := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": jti,
	})
	tokenstore.RevokeToken(jti)

	if _, _, err := ResolveToken(tokenStr); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}
