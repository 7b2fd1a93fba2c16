package httpinterface

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const (
	// RoleOperator is the token role granting access to the operator routes.
	RoleOperator = "operator"

	// UidHeader identifies the caller when the daemon runs without auth.
	UidHeader = "X-Swapd-Uid"
	// RoleHeader sets the caller role when the daemon runs without auth.
	RoleHeader = "X-Swapd-Role"

	uidKey  = "uid"
	roleKey = "role"
)

// Claims are the claims of the tokens accepted by the daemon. The subject is
// the uid of the caller.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.StandardClaims
}

// NewToken returns a HS256 token for the given uid and role. A non positive
// ttl makes the token never expire.
func NewToken(secret, uid, role string, ttl time.Duration) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("missing uid")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Subject:  uid,
			IssuedAt: now.Unix(),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(secret))
}

// authenticate binds the caller identity to the request context. The token
// is read from the Authorization header or, for clients that cannot set
// headers on websocket upgrades, from the token query param.
func authenticate(secret []byte, noAuth bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if noAuth {
			c.Set(uidKey, c.GetHeader(UidHeader))
			c.Set(roleKey, c.GetHeader(RoleHeader))
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, "missing auth token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(
			tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			},
		)
		if err != nil || !token.Valid {
			abortWithError(c, http.StatusUnauthorized, "invalid auth token")
			return
		}

		c.Set(uidKey, claims.Subject)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// requireParty rejects requests without a caller uid.
func requireParty(c *gin.Context) {
	if c.GetString(uidKey) == "" {
		abortWithError(c, http.StatusUnauthorized, "missing caller identity")
		return
	}
	c.Next()
}

func requireOperator(c *gin.Context) {
	if !isOperator(c) {
		abortWithError(c, http.StatusForbidden, "operator role required")
		return
	}
	c.Next()
}

func isOperator(c *gin.Context) bool {
	return c.GetString(roleKey) == RoleOperator
}

func callerUid(c *gin.Context) string {
	return c.GetString(uidKey)
}
