package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wesleyshe/Claw-Street-Bets/internal/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestWithAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	svc := auth.NewService(nil, "csb", []byte("secret"), 0, nil, nil)
	h := WithAuth(svc)(okHandler)

	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestInternalAuth(t *testing.T) {
	h := InternalAuth("sekrit")(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/risk", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/admin/risk", nil)
	req.Header.Set("X-Internal-Token", "sekrit")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInternalAuthRefusesEmptyConfiguredToken(t *testing.T) {
	h := InternalAuth("")(okHandler)
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/risk", nil)
	req.Header.Set("X-Internal-Token", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
