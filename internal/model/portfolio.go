package model

// Asset is one ticker/allocation pair inside a portfolio request.
// Allocation is a raw weight; it is not required to sum to 1 across a portfolio.
type Asset struct {
	Ticker     string  `json:"ticker"`
	Allocation float64 `json:"allocation"`
}

// Portfolio represents a named list of assets submitted for backtesting
type Portfolio struct {
	Name   string  `json:"name"`
	Assets []Asset `json:"assets"`
}

// IsEmpty reports whether every allocation is exactly zero.
// A portfolio without assets is empty as well.
func (p Portfolio) IsEmpty() bool {
	for _, a := range p.Assets {
		if a.Allocation != 0.0 {
			return false
		}
	}
	return true
}
