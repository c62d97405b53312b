package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/internal/coingecko"
	"github.com/coinchat/query-service/pkg/models"
)

// Service runs the full pipeline: classify, resolve, format. AnswerQuery
// never returns an error; every failure becomes a specific answer
// sentence because mistyped coin names and provider hiccups are routine.
type Service struct {
	classifier *Classifier
	resolver   *Resolver
	formatter  *Formatter
	logger     *logrus.Logger
}

func NewService(classifier *Classifier, resolver *Resolver, formatter *Formatter, logger *logrus.Logger) *Service {
	return &Service{
		classifier: classifier,
		resolver:   resolver,
		formatter:  formatter,
		logger:     logger,
	}
}

func (s *Service) AnswerQuery(ctx context.Context, text string) Response {
	intent := s.classifier.Classify(text)

	s.logger.WithFields(logrus.Fields{
		"intent": intent.Kind.String(),
		"coin":   intent.Coin,
	}).Debug("Classified query")

	switch intent.Kind {
	case IntentPrice, IntentVolume, IntentChange, IntentMarketCap:
		coin, err := s.resolver.ResolveCoin(ctx, intent.Coin)
		if err != nil {
			return s.recoverError(intent, err)
		}
		return s.formatSnapshot(intent.Kind, *coin)

	case IntentTrend:
		trend, err := s.resolver.ResolveTrend(ctx, intent.Coin, intent.Days)
		if err != nil {
			return s.recoverError(intent, err)
		}
		return s.formatter.Trend(*trend)

	case IntentTopList:
		coins, err := s.resolver.ResolveTop(ctx, intent.Limit)
		if err != nil {
			return s.recoverError(intent, err)
		}
		return s.formatter.TopList(coins)

	default:
		return s.formatter.Help()
	}
}

func (s *Service) formatSnapshot(kind IntentKind, coin models.CoinSnapshot) Response {
	switch kind {
	case IntentVolume:
		return s.formatter.Volume(coin)
	case IntentChange:
		return s.formatter.Change(coin)
	case IntentMarketCap:
		return s.formatter.MarketCap(coin)
	default:
		return s.formatter.Price(coin)
	}
}

func (s *Service) recoverError(intent Intent, err error) Response {
	var notFound *CoinNotFoundError
	var noHistory *HistoryUnavailableError

	switch {
	case errors.As(err, &notFound):
		return Response{Answer: fmt.Sprintf(
			"Sorry, I couldn't find information about %s. Try the coin's full name or its symbol.",
			notFound.Name)}

	case errors.As(err, &noHistory):
		return Response{Answer: fmt.Sprintf(
			"I found %s, but I don't have enough price history for it yet. Please try again later.",
			noHistory.Name)}

	case errors.Is(err, coingecko.ErrRateLimited):
		return Response{Answer: "The market data provider is busy right now. Please try again in a few minutes."}

	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"intent": intent.Kind.String(),
			"coin":   intent.Coin,
		}).Error("Query resolution failed")
		return Response{Answer: "Something went wrong while looking up market data. Please try again."}
	}
}
