package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Header names used when no token verifier is configured, e.g. behind a
// gateway that has already authenticated the caller.
const (
	HeaderCustomerID   = "X-Auth-Id"
	HeaderCustomerName = "X-Customer-Name"
)

const tenantKey = "tenant"

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Tenant is the caller identity every API operation is scoped by.
type Tenant struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
}

func unauthorized(c *gin.Context, details string) {
	body := gin.H{"error": "Unauthorized"}
	if details != "" {
		body["details"] = details
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}

// TenantMiddleware resolves the caller's tenant. With a verifier, a Bearer
// token is required and the tenant is read from its customer_id claim
// (falling back to sub) and name claim. Without one, the tenant is read from
// the X-Auth-Id and X-Customer-Name headers.
func TenantMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var t Tenant
		if ver == nil {
			t.CustomerID = strings.TrimSpace(c.GetHeader(HeaderCustomerID))
			t.CustomerName = strings.TrimSpace(c.GetHeader(HeaderCustomerName))
		} else {
			auth := c.GetHeader("Authorization")
			if auth == "" {
				unauthorized(c, "missing Authorization header")
				return
			}
			// Expect 'Bearer <token>'
			var token string
			if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
				unauthorized(c, "invalid Authorization header")
				return
			}
			idToken, err := ver.Verify(c.Request.Context(), token)
			if err != nil {
				unauthorized(c, "invalid token")
				return
			}
			var claims map[string]interface{}
			if err := idToken.Claims(&claims); err != nil {
				unauthorized(c, "failed to parse claims")
				return
			}
			c.Set("claims", claims)
			t = tenantFromClaims(claims)
		}
		if t.CustomerID == "" {
			unauthorized(c, "")
			return
		}
		c.Set(tenantKey, t)
		c.Next()
	}
}

func tenantFromClaims(claims map[string]interface{}) Tenant {
	str := func(k string) string {
		s, _ := claims[k].(string)
		return strings.TrimSpace(s)
	}
	t := Tenant{CustomerID: str("customer_id"), CustomerName: str("name")}
	if t.CustomerID == "" {
		t.CustomerID = str("sub")
	}
	return t
}

// TenantFrom returns the tenant stored by TenantMiddleware.
func TenantFrom(c *gin.Context) (Tenant, bool) {
	v, ok := c.Get(tenantKey)
	if !ok {
		return Tenant{}, false
	}
	t, ok := v.(Tenant)
	return t, ok && t.CustomerID != ""
}

// CustomerID returns the caller's customer id, or "" outside TenantMiddleware.
func CustomerID(c *gin.Context) string {
	t, _ := TenantFrom(c)
	return t.CustomerID
}
