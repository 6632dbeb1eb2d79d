package oidc

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docschema/docschema/pkg/middleware"
)

func unsigned(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." + enc.EncodeToString([]byte(payload)) + "."
}

func TestInsecureVerifierClaims(t *testing.T) {
	tok, err := NewInsecureVerifier().Verify(context.Background(), unsigned(`{"sub":"u1","customer_id":"c1"}`))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	assert.Equal(t, "c1", claims["customer_id"])
}

func TestInsecureVerifierRejectsGarbage(t *testing.T) {
	_, err := NewInsecureVerifier().Verify(context.Background(), "nodots")
	assert.Error(t, err)
	_, err = NewInsecureVerifier().Verify(context.Background(), "a.!!!.c")
	assert.Error(t, err)
}

func TestInsecureVerifierWithTenantMiddleware(t *testing.T) {
	g := gin.New()
	g.GET("/", middleware.TenantMiddleware(NewInsecureVerifier()), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CustomerID(c))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+unsigned(`{"sub":"u1","customer_id":"c7","name":"Acme"}`))
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "c7", rw.Body.String())
}
