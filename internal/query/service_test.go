package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/coinchat/query-service/internal/coingecko"
	"github.com/coinchat/query-service/pkg/models"
)

func newTestService(store *MockStore, remote *MockRemote) *Service {
	logger := newTestLogger()
	resolver := NewResolver(store, remote, noopCache{}, logger)
	return NewService(NewClassifier(), resolver, NewFormatter(), logger)
}

func TestService_AnswerQuery_PriceScenario(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	store.On("GetCoin", mock.Anything, "bitcoin").Return(&models.CoinSnapshot{
		CoinID:       "bitcoin",
		Symbol:       "btc",
		Name:         "Bitcoin",
		CurrentPrice: 45000.50,
	}, nil)

	response := service.AnswerQuery(context.Background(), "What is the price of Bitcoin?")

	assert.Equal(t, "The current price of Bitcoin (BTC) is $45,000.50", response.Answer)
	remote.AssertNotCalled(t, "SearchCoin", mock.Anything, mock.Anything)
}

func TestService_AnswerQuery_TopThreeScenario(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	// Store ranking already descends by market cap; repository truncates.
	store.On("GetTopCoins", mock.Anything, 3).Return([]models.CoinSnapshot{
		{Name: "Bitcoin", Symbol: "btc", CurrentPrice: 45000.50, MarketCap: 880000000000},
		{Name: "Ethereum", Symbol: "eth", CurrentPrice: 2400, MarketCap: 425000000000},
		{Name: "Solana", Symbol: "sol", CurrentPrice: 98.75, MarketCap: 42000000000},
	}, nil)

	response := service.AnswerQuery(context.Background(), "Show me top 3 coins")

	lines := strings.Split(response.Answer, "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "1. Bitcoin"))
	assert.True(t, strings.HasPrefix(lines[2], "2. Ethereum"))
	assert.True(t, strings.HasPrefix(lines[3], "3. Solana"))
}

func TestService_AnswerQuery_UnknownIntentGetsHelp(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	response := service.AnswerQuery(context.Background(), "banana")

	assert.Contains(t, response.Answer, "Try asking me things like")
	store.AssertNotCalled(t, "GetCoin", mock.Anything, mock.Anything)
	remote.AssertNotCalled(t, "SearchCoin", mock.Anything, mock.Anything)
}

func TestService_AnswerQuery_CoinNotFound(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	store.On("GetCoin", mock.Anything, "bananacoin").Return(nil, nil)
	remote.On("SearchCoin", mock.Anything, "bananacoin").Return(nil)

	response := service.AnswerQuery(context.Background(), "What is the price of bananacoin?")

	assert.Contains(t, response.Answer, "Sorry, I couldn't find information about bananacoin")
	assert.Nil(t, response.Data)
}

func TestService_AnswerQuery_HistoryUnavailable(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	store.On("GetCoin", mock.Anything, "obscurecoin").Return(nil, nil)
	remote.On("SearchCoin", mock.Anything, "obscurecoin").Return(&models.CoinSnapshot{
		CoinID: "obscurecoin",
		Symbol: "obs",
		Name:   "ObscureCoin",
	})

	response := service.AnswerQuery(context.Background(), "Show me the trend of obscurecoin")

	assert.Contains(t, response.Answer, "I found ObscureCoin")
	assert.Contains(t, response.Answer, "price history")
}

func TestService_AnswerQuery_TrendScenario(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	now := time.Now().UTC()
	store.On("GetCoin", mock.Anything, "bitcoin").Return(&models.CoinSnapshot{
		CoinID: "bitcoin", Symbol: "btc", Name: "Bitcoin",
	}, nil)
	store.On("GetHistory", mock.Anything, "bitcoin", mock.Anything, 100).Return([]models.HistoryPoint{
		{Timestamp: now, Price: 105},
		{Timestamp: now.Add(-24 * time.Hour), Price: 110},
		{Timestamp: now.Add(-48 * time.Hour), Price: 100},
	}, nil)

	response := service.AnswerQuery(context.Background(), "Show me the trend of Bitcoin over the last 7 days")

	assert.Equal(t, "Bitcoin (BTC) is up +5.00% over the last 7 days", response.Answer)
}

func TestService_AnswerQuery_RateLimitedGetsApology(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	store.On("GetCoin", mock.Anything, "bitcoin").
		Return(nil, fmt.Errorf("store refresh: %w", coingecko.ErrRateLimited))

	response := service.AnswerQuery(context.Background(), "What is the price of Bitcoin?")

	assert.Contains(t, response.Answer, "busy right now")
}

func TestService_AnswerQuery_NeverPanicsOnFailure(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	remote := new(MockRemote)
	service := newTestService(store, remote)

	store.On("GetCoin", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	store.On("GetTopCoins", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	for _, text := range []string{
		"What is the price of Bitcoin?",
		"trend of ethereum",
		"top 5 coins",
		"volume of solana",
	} {
		response := service.AnswerQuery(context.Background(), text)
		assert.NotEmpty(t, response.Answer)
	}
}
