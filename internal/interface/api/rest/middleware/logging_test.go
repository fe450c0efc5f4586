package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		path     string
		body     string
		wantBody string
	}{
		{name: "json body logged", path: "/api/v1/files/x/name", body: `{"name":"a"}`, wantBody: `{"name":"a"}`},
		{name: "credentials omitted", path: "/api/v1/auth/verify", body: `{"secret":"123456"}`, wantBody: "<credentials omitted>"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			r := gin.New()
			r.Use(RequestLogGin(zap.New(core), nil))

			var seen string
			r.POST(tt.path, func(c *gin.Context) {
				b, _ := io.ReadAll(c.Request.Body)
				seen = string(b)
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.body, seen)

			entries := logs.FilterMessage("HTTP request").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, tt.wantBody, fields["body"])
			assert.Equal(t, int64(http.StatusNoContent), fields["status"])
		})
	}
}
