package model

// TickerInfo is a symbol suggestion returned by the search endpoints.
type TickerInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
