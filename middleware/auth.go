package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"JasaKita/pkg/config"
	tokenstore "JasaKita/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserIDKey = "current_user_id"
	ContextJTIKey    = "current_jti"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// ResolveToken validates a bearer JWT and returns the user id and jti.
// Shared by the HTTP middleware and the websocket upgrade path so both
// entry points apply identical checks.
func ResolveToken(tokenStr string) (userID uint, jti string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	jti, _ = claims["jti"].(string)
	if tokenstore.IsRevoked(jti) {
		return 0, "", ErrTokenRevoked
	}

	// jwt lib may parse numeric subjects as float64
	var sub uint64
	switch v := claims["sub"].(type) {
	case string:
		sub, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, "", ErrInvalidToken
		}
	case float64:
		sub = uint64(v)
	default:
		return 0, "", ErrInvalidToken
	}
	if sub == 0 {
		return 0, "", ErrInvalidToken
	}
	return uint(sub), jti, nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization header"})
			return
		}

		userID, jti, err := ResolveToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrTokenRevoked) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token has been revoked (logout)"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextJTIKey, jti)
		c.Next()
	}
}

// CurrentUserID reads the authenticated user id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get(ContextUserIDKey)
	id, _ := v.(uint)
	return id
}
