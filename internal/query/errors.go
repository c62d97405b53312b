package query

import "fmt"

// CoinNotFoundError means neither the local store nor the remote index
// knows the coin. Expected outcome of fuzzy user input, not a fault.
type CoinNotFoundError struct {
	Name string
}

func (e *CoinNotFoundError) Error() string {
	return fmt.Sprintf("coin not found: %s", e.Name)
}

// HistoryUnavailableError means the coin resolved but has no usable
// historical series. Carries the display name for messaging.
type HistoryUnavailableError struct {
	Name string
}

func (e *HistoryUnavailableError) Error() string {
	return fmt.Sprintf("no price history for: %s", e.Name)
}
