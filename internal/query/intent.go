package query

// IntentKind tags the classified purpose of a user query.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentPrice
	IntentTrend
	IntentVolume
	IntentChange
	IntentMarketCap
	IntentTopList
)

func (k IntentKind) String() string {
	switch k {
	case IntentPrice:
		return "price"
	case IntentTrend:
		return "trend"
	case IntentVolume:
		return "volume"
	case IntentChange:
		return "change"
	case IntentMarketCap:
		return "market_cap"
	case IntentTopList:
		return "top_list"
	default:
		return "unknown"
	}
}

// Intent is the classified query plus the parameters its pattern
// captured. Coin is lower-cased and trimmed but not validated; that is
// the resolver's job.
type Intent struct {
	Kind  IntentKind
	Coin  string
	Days  int
	Limit int
}
