package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newActorRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Actor())
	r.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor_id": GetActorID(c)})
	})
	r.POST("/guarded", RequireActor(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestActor(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		expected int
		body     string
	}{
		{"anonymous read", http.MethodGet, "/open", "", http.StatusOK, `{"actor_id":0}`},
		{"identified read", http.MethodGet, "/open", "42", http.StatusOK, `{"actor_id":42}`},
		{"malformed header", http.MethodGet, "/open", "abc", http.StatusBadRequest, ""},
		{"zero actor", http.MethodGet, "/open", "0", http.StatusBadRequest, ""},
		{"anonymous write", http.MethodPost, "/guarded", "", http.StatusUnauthorized, ""},
		{"identified write", http.MethodPost, "/guarded", "7", http.StatusNoContent, ""},
	}

	router := newActorRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(ActorHeader, tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed string
	}{
		{"wildcard", []string{"*"}, "https://any.example", "*"},
		{"listed origin", []string{"https://app.example"}, "https://app.example", "https://app.example"},
		{"unlisted origin", []string{"https://app.example"}, "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.allowed, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
