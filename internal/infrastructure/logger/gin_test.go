package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newObservedEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	engine := gin.New()
	engine.Use(Recovery(log))
	engine.Use(GinMiddleware(log))
	return engine, logs
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs the matched route with status and latency", func(t *testing.T) {
		engine, logs := newObservedEngine(t)
		engine.GET("/api/v1/invoices/:id", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/invoices/abc?page=2", nil))

		entries := logs.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/v1/invoices/abc", fields["path"])
		assert.Equal(t, "/api/v1/invoices/:id", fields["route"])
		assert.Equal(t, "page=2", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("client errors log at warn and server errors at error", func(t *testing.T) {
		engine, logs := newObservedEngine(t)
		engine.GET("/api/v1/receipts", func(c *gin.Context) {
			c.Status(http.StatusConflict)
		})
		engine.GET("/api/v1/customers", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/receipts", nil))
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/customers", nil))

		entries := logs.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 2)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	})

	t.Run("health endpoint is not logged", func(t *testing.T) {
		engine, logs := newObservedEngine(t)
		engine.GET("/health", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, logs.Len())
	})
}

func TestRecovery(t *testing.T) {
	engine, logs := newObservedEngine(t)
	engine.GET("/api/v1/boom", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/boom", entries[0].ContextMap()["path"])
}
