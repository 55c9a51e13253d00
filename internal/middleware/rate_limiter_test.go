package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	e.POST("/graphql", handler, RateLimiter(0.001, 3))

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("allows requests within the burst", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, post("192.0.2.1:1234"))
		}
	})

	t.Run("blocks requests exceeding the burst", func(t *testing.T) {
		assert.Equal(t, http.StatusTooManyRequests, post("192.0.2.1:1234"))
	})

	t.Run("tracks clients separately", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post("192.0.2.2:1234"))
	})

	t.Run("never limits websocket upgrades", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set(echo.HeaderUpgrade, "websocket")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
