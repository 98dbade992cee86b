package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandpulse/brandpulse-demo/util/logger"
	"github.com/brandpulse/brandpulse-demo/web"
	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	log := logger.DiscardLogger("middleware_test")
	handler := web.LoggingMiddleware(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, recorder.Code)
}

func TestLoggingMiddlewareRecovers(t *testing.T) {
	log := logger.DiscardLogger("middleware_test")
	handler := web.LoggingMiddleware(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	recorder := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
