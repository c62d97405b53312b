package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/coinchat/query-service/pkg/models"
)

// Response is the answer handed back to the chat layer: one sentence,
// plus the structured record it was rendered from when one exists.
type Response struct {
	Answer string      `json:"answer"`
	Data   interface{} `json:"data,omitempty"`
}

// TrendData is the structured payload of a trend answer. Points are
// re-sorted chronologically so the chat UI can chart them directly.
type TrendData struct {
	Coin      models.CoinSnapshot   `json:"coin"`
	Days      int                   `json:"days"`
	ChangePct float64               `json:"change_pct"`
	Points    []models.HistoryPoint `json:"points"`
}

// Formatter renders resolved records into locale-formatted sentences.
// Currency values carry thousands separators and two decimals; percent
// values carry an explicit sign and two decimals.
type Formatter struct {
	printer *message.Printer
}

func NewFormatter() *Formatter {
	return &Formatter{
		printer: message.NewPrinter(language.English),
	}
}

func (f *Formatter) Price(coin models.CoinSnapshot) Response {
	return Response{
		Answer: fmt.Sprintf("The current price of %s (%s) is %s",
			coin.Name, strings.ToUpper(coin.Symbol), f.currency(coin.CurrentPrice)),
		Data: coin,
	}
}

func (f *Formatter) Volume(coin models.CoinSnapshot) Response {
	return Response{
		Answer: fmt.Sprintf("The 24-hour trading volume of %s (%s) is %s",
			coin.Name, strings.ToUpper(coin.Symbol), f.currency(coin.Volume24h)),
		Data: coin,
	}
}

func (f *Formatter) Change(coin models.CoinSnapshot) Response {
	return Response{
		Answer: fmt.Sprintf("%s (%s) has changed %s in the last 24 hours",
			coin.Name, strings.ToUpper(coin.Symbol), percent(coin.Change24h)),
		Data: coin,
	}
}

func (f *Formatter) MarketCap(coin models.CoinSnapshot) Response {
	return Response{
		Answer: fmt.Sprintf("The market cap of %s (%s) is %s",
			coin.Name, strings.ToUpper(coin.Symbol), f.currency(coin.MarketCap)),
		Data: coin,
	}
}

func (f *Formatter) Trend(trend TrendResult) Response {
	direction := "up"
	if trend.ChangePct < 0 {
		direction = "down"
	}

	chronological := make([]models.HistoryPoint, len(trend.Points))
	copy(chronological, trend.Points)
	sort.Slice(chronological, func(i, j int) bool {
		return chronological[i].Timestamp.Before(chronological[j].Timestamp)
	})

	return Response{
		Answer: fmt.Sprintf("%s (%s) is %s %s over the last %d days",
			trend.Coin.Name, strings.ToUpper(trend.Coin.Symbol), direction,
			percent(trend.ChangePct), trend.Days),
		Data: TrendData{
			Coin:      trend.Coin,
			Days:      trend.Days,
			ChangePct: trend.ChangePct,
			Points:    chronological,
		},
	}
}

func (f *Formatter) TopList(coins []models.CoinSnapshot) Response {
	if len(coins) == 0 {
		return Response{
			Answer: "I don't have any market data yet. Please try again in a few minutes.",
		}
	}

	lines := make([]string, 0, len(coins)+1)
	lines = append(lines, fmt.Sprintf("Top %d coins by market cap:", len(coins)))
	for i, coin := range coins {
		lines = append(lines, fmt.Sprintf("%d. %s (%s): %s",
			i+1, coin.Name, strings.ToUpper(coin.Symbol), f.currency(coin.CurrentPrice)))
	}

	return Response{
		Answer: strings.Join(lines, "\n"),
		Data:   coins,
	}
}

func (f *Formatter) Help() Response {
	return Response{
		Answer: "I'm not sure how to answer that. Try asking me things like:\n" +
			"- What is the price of Bitcoin?\n" +
			"- Show me the trend of Ethereum over the last 7 days\n" +
			"- What is the volume of Solana?\n" +
			"- How much has Dogecoin changed?\n" +
			"- Show me top 10 coins",
	}
}

func (f *Formatter) currency(value float64) string {
	return f.printer.Sprintf("$%.2f", value)
}

func percent(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}
