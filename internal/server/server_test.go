package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/coinchat/query-service/internal/query"
	"github.com/coinchat/query-service/pkg/models"
)

type stubStore struct {
	coin *models.CoinSnapshot
}

func (s stubStore) GetCoin(ctx context.Context, identifier string) (*models.CoinSnapshot, error) {
	return s.coin, nil
}

func (s stubStore) GetHistory(ctx context.Context, coinID string, since time.Time, limit int) ([]models.HistoryPoint, error) {
	return nil, nil
}

func (s stubStore) GetTopCoins(ctx context.Context, limit int) ([]models.CoinSnapshot, error) {
	return nil, nil
}

type stubRemote struct{}

func (stubRemote) SearchCoin(ctx context.Context, q string) *models.CoinSnapshot { return nil }

type stubCache struct{}

func (stubCache) Get(ctx context.Context, key string, dest interface{}) bool { return false }
func (stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
}

func newTestServer() *Server {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	store := stubStore{coin: &models.CoinSnapshot{
		CoinID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 45000.50,
	}}
	resolver := query.NewResolver(store, stubRemote{}, stubCache{}, logger)
	service := query.NewService(query.NewClassifier(), resolver, query.NewFormatter(), logger)

	return New(service, logger)
}

func TestServer_HandleChat(t *testing.T) {
	t.Parallel()

	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"What is the price of Bitcoin?"}`))
	rec := httptest.NewRecorder()

	server.handleChat(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response query.Response
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "The current price of Bitcoin (BTC) is $45,000.50", response.Answer)
}

func TestServer_HandleChat_EmptyMessage(t *testing.T) {
	t.Parallel()

	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	rec := httptest.NewRecorder()

	server.handleChat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_HandleChat_InvalidBody(t *testing.T) {
	t.Parallel()

	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()

	server.handleChat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_HandleChat_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()

	server.handleChat(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
