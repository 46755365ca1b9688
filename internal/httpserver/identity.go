package httpserver

import (
	"net/http"
	"strings"

	"footware-store/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ownerKey  = "cartOwner"
	roleKey   = "customerRole"
	roleAdmin = "admin"
)

// accessClaims is the token payload: subject carries the customer id, role is
// empty for shoppers and "admin" for back-office tokens.
type accessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// identityMiddleware resolves the request's cart owner: an authenticated
// customer from a bearer JWT, or a guest from the X-Session-Key header.
// Exactly one wins; a missing or invalid identity leaves no owner set and the
// per-route guards decide whether that is an error.
func identityMiddleware(sessions SessionService, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			raw := strings.TrimPrefix(auth, "Bearer ")
			customerID, role, ok := customerFromToken(raw, jwtSecret)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
				return
			}
			c.Set(ownerKey, domain.CartOwner{CustomerID: &customerID})
			c.Set(roleKey, role)
			c.Next()
			return
		}

		if key := c.GetHeader("X-Session-Key"); key != "" {
			if sessions == nil || !sessions.Validate(key) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid session"})
				return
			}
			sessionKey := key
			c.Set(ownerKey, domain.CartOwner{SessionKey: &sessionKey})
		}
		c.Next()
	}
}

func customerFromToken(raw string, secret []byte) (string, string, bool) {
	claims := accessClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", "", false
	}
	return claims.Subject, claims.Role, true
}

func ownerFrom(c *gin.Context) (domain.CartOwner, bool) {
	v, ok := c.Get(ownerKey)
	if !ok {
		return domain.CartOwner{}, false
	}
	owner, ok := v.(domain.CartOwner)
	return owner, ok && owner.Valid()
}

// requireOwner admits any resolved identity, customer or guest.
func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ownerFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication or session key required"})
			return
		}
		c.Next()
	}
}

// requireCustomer admits authenticated customers only.
func requireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerFrom(c)
		if !ok || owner.CustomerID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		c.Next()
	}
}

// requireAdmin admits only tokens carrying the admin role. A plain shopper
// token is authenticated but not authorized, so it gets 403 rather than 401.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerFrom(c)
		if !ok || owner.CustomerID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		role, _ := c.Get(roleKey)
		if s, ok := role.(string); !ok || s != roleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin access required"})
			return
		}
		c.Next()
	}
}

func sessionHandler(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := sessions.Issue()
		c.JSON(http.StatusCreated, gin.H{
			"sessionKey": key,
			"expiresIn":  sessions.TTLSeconds(),
		})
	}
}
