package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invoflow/internal/handler"
	"invoflow/mocks"
)

type stubDB struct {
	err error
}

func (s *stubDB) PingContext(context.Context) error { return s.err }

func getReadyz(db handler.DBPinger, cache *mocks.MockDocumentCache) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := handler.NewHealthHandler(db, cache)
	r := gin.New()
	r.GET("/readyz", h.Readiness)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return w
}

func TestHealthHandler_Readiness_OK(t *testing.T) {
	cache := new(mocks.MockDocumentCache)
	cache.On("Ping", mock.Anything).Return(nil)

	w := getReadyz(&stubDB{}, cache)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_Readiness_DatabaseDown(t *testing.T) {
	cache := new(mocks.MockDocumentCache)

	w := getReadyz(&stubDB{err: errors.New("connection refused")}, cache)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	cache.AssertNotCalled(t, "Ping")
}

func TestHealthHandler_Readiness_CacheDown(t *testing.T) {
	cache := new(mocks.MockDocumentCache)
	cache.On("Ping", mock.Anything).Return(errors.New("redis unreachable"))

	w := getReadyz(&stubDB{}, cache)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "document cache")
}
