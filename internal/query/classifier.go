package query

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 90
	defaultTopLimit  = 10
	maxTopLimit      = 50
)

// rule is one (pattern, intent tag) entry of the classifier table.
// Patterns use named groups (coin, days, limit) read by a shared
// extractor.
type rule struct {
	pattern *regexp.Regexp
	kind    IntentKind
}

// Classifier matches normalized query text against an ordered rule
// table. Order is the tie-break policy: question phrasings overlap, and
// the first matching rule wins.
type Classifier struct {
	rules []rule
}

func NewClassifier() *Classifier {
	return &Classifier{
		rules: []rule{
			{regexp.MustCompile(`^(?:current\s+)?price\s+(?:of|for)\s+(?P<coin>.+)$`), IntentPrice},
			{regexp.MustCompile(`^how\s+much\s+(?:is|does)\s+(?P<coin>.+?)(?:\s+cost|\s+worth)?$`), IntentPrice},
			{regexp.MustCompile(`^(?:price\s+)?trend\s+(?:of|for)\s+(?P<coin>.+?)(?:\s+(?:over|in|for)\s+(?:the\s+)?(?:last\s+|past\s+)?(?P<days>\d+)\s+days?)?$`), IntentTrend},
			{regexp.MustCompile(`^how\s+has\s+(?P<coin>.+?)\s+(?:been\s+)?(?:trending|performing)(?:\s+(?:over|in)\s+(?:the\s+)?(?:last\s+|past\s+)?(?P<days>\d+)\s+days?)?$`), IntentTrend},
			{regexp.MustCompile(`^(?:trading\s+|24h?\s+|24-hour\s+)?volume\s+(?:of|for)\s+(?P<coin>.+)$`), IntentVolume},
			{regexp.MustCompile(`^market\s*cap(?:italization)?\s+(?:of|for)\s+(?P<coin>.+)$`), IntentMarketCap},
			{regexp.MustCompile(`^(?:price\s+)?change\s+(?:of|for|in)\s+(?P<coin>.+)$`), IntentChange},
			{regexp.MustCompile(`^how\s+(?:much\s+)?has\s+(?P<coin>.+?)\s+changed(?:\s+today)?$`), IntentChange},
			{regexp.MustCompile(`^top\s+(?P<limit>\d+)\s+(?:coins?|cryptos?|cryptocurrencies)$`), IntentTopList},
			{regexp.MustCompile(`^top\s+(?:coins?|cryptos?|cryptocurrencies)$`), IntentTopList},
		},
	}
}

// Classify maps raw query text to an Intent. Pure function of the input
// and the fixed rule table; no rule matching returns IntentUnknown.
func (c *Classifier) Classify(text string) Intent {
	normalized := normalizeQuery(text)

	for _, r := range c.rules {
		match := r.pattern.FindStringSubmatch(normalized)
		if match == nil {
			continue
		}
		return buildIntent(r, match)
	}

	return Intent{Kind: IntentUnknown}
}

// courtesy phrases tolerated at the start of a question.
var courtesyPrefixes = []string{
	"what is the ",
	"what's the ",
	"show me the ",
	"show me ",
	"tell me the ",
	"tell me ",
	"what is ",
	"what's ",
}

func normalizeQuery(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, "?!. ")
	normalized = strings.Join(strings.Fields(normalized), " ")

	for _, prefix := range courtesyPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			normalized = strings.TrimPrefix(normalized, prefix)
			break
		}
	}

	return normalized
}

func buildIntent(r rule, match []string) Intent {
	intent := Intent{
		Kind:  r.kind,
		Days:  defaultTrendDays,
		Limit: defaultTopLimit,
	}

	for i, name := range r.pattern.SubexpNames() {
		if i == 0 || i >= len(match) || match[i] == "" {
			continue
		}
		switch name {
		case "coin":
			intent.Coin = strings.TrimSpace(match[i])
		case "days":
			if days, err := strconv.Atoi(match[i]); err == nil {
				intent.Days = clamp(days, 1, maxTrendDays)
			}
		case "limit":
			if limit, err := strconv.Atoi(match[i]); err == nil {
				intent.Limit = clamp(limit, 1, maxTopLimit)
			}
		}
	}

	return intent
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
