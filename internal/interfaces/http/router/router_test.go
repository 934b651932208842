package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.public)
	assert.Empty(t, r.protected)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.RegisterPublic(RegistrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
	}))
	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/secret", func(c *gin.Context) {
			c.String(http.StatusOK, "secret")
		})
	}))

	authCalled := false
	r.Setup(func(c *gin.Context) {
		authCalled = true
		c.Next()
	})

	t.Run("public route skips auth middleware", func(t *testing.T) {
		authCalled = false
		req := httptest.NewRequest("GET", "/api/v1/ping", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
		assert.False(t, authCalled)
	})

	t.Run("protected route runs auth middleware", func(t *testing.T) {
		authCalled = false
		req := httptest.NewRequest("GET", "/api/v1/secret", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, authCalled)
	})
}

func TestRouterMultipleRegistrars(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	customers := RegistrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/customers", func(c *gin.Context) {
			c.String(http.StatusOK, "customers")
		})
	})
	invoices := RegistrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/invoices", func(c *gin.Context) {
			c.String(http.StatusOK, "invoices")
		})
	})

	r.Register(customers, invoices).Setup()

	for _, path := range []string{"/api/v1/customers", "/api/v1/invoices"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "Route %s should be registered", path)
	}
}
