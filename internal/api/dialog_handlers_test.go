package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"astra/internal/dialog"
	"astra/internal/llm"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, []llm.Message) (string, error) {
	return s.reply, s.err
}

type stubSQL struct{}

func (stubSQL) Execute(context.Context, string) bool { return true }

func setupEngine(t *testing.T, completer dialog.Completer) *dialog.Engine {
	t.Helper()
	leads, orders := setupStores(t)
	return dialog.NewEngine(leads, orders, setupBase(t), completer, stubSQL{})
}

func TestDialogRequestHandler(t *testing.T) {
	completer := &stubCompleter{reply: `{"model_answer": "Здравствуйте!", "sql": null}`}
	engine := setupEngine(t, completer)

	r := testRouter(1, false)
	r.POST("/dialog/request", DialogRequestHandler(engine))

	body, _ := json.Marshal(DialogRequest{ClientID: 5, UserInput: "привет"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/dialog/request", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Response string        `json:"response"`
		History  []dialog.Turn `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Response != "Здравствуйте!" {
		t.Errorf("response = %q", resp.Response)
	}
	if len(resp.History) != 2 {
		t.Errorf("history length = %d, want 2", len(resp.History))
	}
}

func TestDialogRequestHandlerEmptyInput(t *testing.T) {
	engine := setupEngine(t, &stubCompleter{reply: "{}"})

	r := testRouter(1, false)
	r.POST("/dialog/request", DialogRequestHandler(engine))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/dialog/request",
		bytes.NewReader([]byte(`{"client_id": 5, "user_input": "   "}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDialogRequestHandlerUpstreamFailure(t *testing.T) {
	engine := setupEngine(t, &stubCompleter{err: fmt.Errorf("llm: status 502")})

	r := testRouter(1, false)
	r.POST("/dialog/request", DialogRequestHandler(engine))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/dialog/request",
		bytes.NewReader([]byte(`{"client_id": 5, "user_input": "привет"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDialogClearAndHistoryHandlers(t *testing.T) {
	completer := &stubCompleter{reply: `{"model_answer": "ок", "sql": null}`}
	engine := setupEngine(t, completer)

	r := testRouter(1, false)
	r.POST("/dialog/request", DialogRequestHandler(engine))
	r.POST("/dialog/clear", DialogClearHandler(engine))
	r.GET("/dialog/history/:client_id", DialogHistoryHandler(engine))

	// Unknown client history is a 404.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/dialog/history/77", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("history before contact: expected 404, got %d", w.Code)
	}

	body := []byte(`{"client_id": 77, "user_input": "привет"}`)
	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/dialog/request", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("turn failed: %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/dialog/history/77", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "привет") {
		t.Fatalf("history: %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/dialog/clear", bytes.NewReader([]byte(`{"client_id": 77}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("clear: %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/dialog/history/77", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("history after clear: %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"history":[]`) {
		t.Errorf("history should be empty after clear: %s", w.Body.String())
	}
}
