package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ccchat/internal/models"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := TokenResolverFunc(func(_ context.Context, token string) (*models.User, error) {
		switch token {
		case "good":
			return &models.User{ID: 7, Username: "alice"}, nil
		case "broken":
			return nil, errors.New("db down")
		}
		return nil, ErrInvalidToken
	})

	r := gin.New()
	r.Use(LoadUser(resolver))
	r.GET("/whoami", func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/private", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func do(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoadUser(t *testing.T) {
	r := newTestRouter()
	cases := map[string]string{
		"":              "anonymous",
		"Bearer good":   "alice",
		"bearer good":   "alice",
		"Bearer bad":    "anonymous",
		"Bearer broken": "anonymous",
		"Basic good":    "anonymous",
	}
	for auth, want := range cases {
		if got := do(r, "/whoami", auth).Body.String(); got != want {
			t.Errorf("Authorization %q: expected %q, got %q", auth, want, got)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter()
	if w := do(r, "/private", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := do(r, "/private", "Bearer good"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
