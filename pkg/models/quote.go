package models

// NoPrice marks a quote that has not been refreshed yet.
const NoPrice = -1

// Quote is the latest daily bar summary for one symbol.
type Quote struct {
	ID            string  `json:"id"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// HasData reports whether the quote carries a real price.
func (q Quote) HasData() bool {
	return q.Price > 0
}
