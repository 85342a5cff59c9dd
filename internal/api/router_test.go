package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"astra/internal/dialog"
	"astra/internal/llm"
)

func TestRouterHealthAndAuthGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	leads, orders := setupStores(t)
	base := setupBase(t)
	cfg := testConfig()

	engine := dialog.NewEngine(leads, orders, base, &stubCompleter{reply: "{}"}, stubSQL{})
	r := SetupRouter(Deps{
		Cfg:    cfg,
		RDB:    unreachableRedis(),
		Leads:  leads,
		Orders: orders,
		Base:   base,
		LLM:    llm.NewClient("http://localhost:1", "m", ""),
		Engine: engine,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("health: %d: %s", w.Code, w.Body.String())
	}

	// Protected routes reject requests without a bearer token.
	for _, route := range []struct{ method, path string }{
		{"GET", "/lead"},
		{"GET", "/order"},
		{"GET", "/base/document"},
		{"POST", "/dialog/request"},
		{"GET", "/auth/users"},
		{"POST", "/base/rebuild"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, w.Code)
		}
	}
}
