package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole("admin")(next)

	withClaims := func(claims UserClaims) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), UserContextKey, claims))
	}

	// no claims in context
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong role
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims(UserClaims{UserID: "u1", Role: "viewer"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// matching role passes through
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims(UserClaims{UserID: "u2", Role: "admin"}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
