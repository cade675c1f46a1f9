package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agenticrag/backend/config"
	"github.com/agenticrag/backend/internal/handler"
	"github.com/agenticrag/backend/internal/service/crew"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	result *crew.Result
	err    error
}

func (s *stubRunner) Run(ctx context.Context, query string) (*crew.Result, error) {
	return s.result, s.err
}

func newTestEngine(t *testing.T, uiEnabled bool, runner handler.Runner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.UI.Enabled = uiEnabled
	return Setup(cfg, handler.NewPredictHandler(runner))
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetup_APIRoutes(t *testing.T) {
	r := newTestEngine(t, true, &stubRunner{result: &crew.Result{Raw: "answer"}})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(`{"query":"What is X?"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"output":{"raw":"answer"}}`, w.Body.String())
}

func TestSetup_HealthIgnoresBackend(t *testing.T) {
	r := newTestEngine(t, false, &stubRunner{err: errors.New("ollama down")})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestSetup_CORS(t *testing.T) {
	r := newTestEngine(t, false, &stubRunner{result: &crew.Result{Raw: "x"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	w := serve(r, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetup_EmbeddedUI(t *testing.T) {
	r := newTestEngine(t, true, &stubRunner{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Agentic RAG System")
	assert.Contains(t, w.Body.String(), "Explain machine learning in simple terms")
	assert.Contains(t, w.Body.String(), "What is the difference between Python and JavaScript?")
	assert.Contains(t, w.Body.String(), "View Raw Response")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/predict")
	assert.Contains(t, w.Body.String(), "errorMessage(resp.status, text)", "非 2xx 响应在解析 JSON 之前处理")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetup_UIDisabled(t *testing.T) {
	r := newTestEngine(t, false, &stubRunner{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}
