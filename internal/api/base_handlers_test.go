package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"astra/internal/knowledge"
	"astra/internal/llm"
)

func setupBase(t *testing.T) *knowledge.Base {
	t.Helper()
	dir := t.TempDir()
	docPath := filepath.Join(dir, "document.md")
	if err := os.WriteFile(docPath, []byte("# Доставка\n\nПо городу бесплатно."), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return knowledge.NewBase(nil, nil, "test-base", docPath, filepath.Join(dir, "faq.md"))
}

func TestDocumentHandler(t *testing.T) {
	r := testRouter(1, false)
	r.GET("/base/document", DocumentHandler(setupBase(t)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/base/document", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Доставка") {
		t.Errorf("document text missing: %s", w.Body.String())
	}
}

func TestChunksHandlerNoIndex(t *testing.T) {
	r := testRouter(1, false)
	r.POST("/base/chunks", ChunksHandler(setupBase(t)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/base/chunks", bytes.NewReader([]byte(`{"query": "доставка"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 before first rebuild, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChunksHandlerMissingQuery(t *testing.T) {
	r := testRouter(1, false)
	r.POST("/base/chunks", ChunksHandler(setupBase(t)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/base/chunks", bytes.NewReader([]byte(`{"query": "  "}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFAQHandlers(t *testing.T) {
	base := setupBase(t)
	r := testRouter(1, true)
	r.GET("/base/faq", GetFAQHandler(base))
	r.PUT("/base/faq", PutFAQHandler(base))

	// Missing FAQ file reads as empty text.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/base/faq", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/base/faq", bytes.NewReader([]byte(`{"text": "В: Как оплатить?\nО: Картой."}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/base/faq", nil))
	if !strings.Contains(w.Body.String(), "Как оплатить?") {
		t.Errorf("saved FAQ missing: %s", w.Body.String())
	}
}

func TestAskHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Доставка бесплатная."}}]}`))
	}))
	defer srv.Close()

	r := testRouter(1, false)
	r.POST("/base/ask", AskHandler(setupBase(t), llm.NewClient(srv.URL, "test-model", "")))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/base/ask", bytes.NewReader([]byte(`{"query": "Сколько стоит доставка?"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Доставка бесплатная.") {
		t.Errorf("answer missing: %s", w.Body.String())
	}
}

func TestAskHandlerMissingQuery(t *testing.T) {
	r := testRouter(1, false)
	r.POST("/base/ask", AskHandler(setupBase(t), llm.NewClient("http://localhost:1", "m", "")))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/base/ask", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
