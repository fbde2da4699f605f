package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newProtectedRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAPIKeyAuth(keys).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		header     string
		value      string
		wantStatus int
	}{
		{
			name:       "valid X-API-Key",
			keys:       []string{"secret"},
			header:     "X-API-Key",
			value:      "secret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid bearer token",
			keys:       []string{"secret"},
			header:     "Authorization",
			value:      "Bearer secret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong key",
			keys:       []string{"secret"},
			header:     "X-API-Key",
			value:      "guess",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing key",
			keys:       []string{"secret"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no keys configured rejects everything",
			keys:       nil,
			header:     "X-API-Key",
			value:      "anything",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "second configured key accepted",
			keys:       []string{"first", "second"},
			header:     "X-API-Key",
			value:      "second",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProtectedRouter(tt.keys)

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAPIKeyAuth_Enabled(t *testing.T) {
	assert.False(t, NewAPIKeyAuth(nil).Enabled())
	assert.False(t, NewAPIKeyAuth([]string{""}).Enabled())
	assert.True(t, NewAPIKeyAuth([]string{"k"}).Enabled())
}
