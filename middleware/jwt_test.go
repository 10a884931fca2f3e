package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMiddleware(t *testing.T) {
	SetSigningKey("test-secret")
	token, err := GenerateToken("user-1", "inspector", "Dana Reyes", "5550100")
	require.NoError(t, err)

	var seen string
	h := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "user-1", seen)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/r1/wizard/submit", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusBadGateway, hook.LastEntry().Data["status"])
	assert.Equal(t, "10.0.0.7", hook.LastEntry().Data["ip"])
}
