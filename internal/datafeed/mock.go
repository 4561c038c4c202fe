package datafeed

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SnapshotsPath is the route the mock feed answers on.
const SnapshotsPath = "/v2/stocks/snapshots"

type dailyBar struct {
	Open  float64 `json:"o"`
	Close float64 `json:"c"`
}

type snapshot struct {
	DailyBar dailyBar `json:"dailyBar"`
}

// MockDataFeed serves the snapshot endpoint with simulated prices. Each
// request moves every requested symbol by a random walk step, with the
// session open fixed at the first price seen.
type MockDataFeed struct {
	mu     sync.RWMutex
	open   map[string]float64
	last   map[string]float64
	status int
	logger *zap.Logger
}

// NewMockDataFeed creates a feed seeded with realistic starting prices.
func NewMockDataFeed(logger *zap.Logger) *MockDataFeed {
	initialPrices := map[string]float64{
		"AAPL": 228.50,
		"MSFT": 415.20,
		"GOOG": 165.80,
		"AMZN": 186.40,
		"NVDA": 118.90,
		"TSLA": 251.30,
		"META": 572.10,
		"SPY":  571.60,
	}

	f := &MockDataFeed{
		open:   make(map[string]float64),
		last:   make(map[string]float64),
		status: http.StatusOK,
		logger: logger,
	}
	for symbol, price := range initialPrices {
		f.open[symbol] = price
		f.last[symbol] = price
	}
	return f
}

// SetStatus makes the feed answer every request with code, without a
// snapshot body unless code is 200.
func (f *MockDataFeed) SetStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = code
}

// GetCurrentPrice returns the last simulated price for a symbol.
func (f *MockDataFeed) GetCurrentPrice(symbol string) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	price, exists := f.last[symbol]
	return price, exists
}

func (f *MockDataFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != SnapshotsPath {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("Apca-Api-Key-Id") == "" || r.Header.Get("Apca-Api-Secret-Key") == "" {
		http.Error(w, `{"message":"forbidden."}`, http.StatusForbidden)
		return
	}

	f.mu.RLock()
	status := f.status
	f.mu.RUnlock()
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}

	symbols := strings.Split(r.URL.Query().Get("symbols"), ",")
	out := make(map[string]snapshot, len(symbols))
	for _, symbol := range symbols {
		if symbol == "" {
			continue
		}
		open, last := f.step(symbol)
		out[symbol] = snapshot{DailyBar: dailyBar{Open: open, Close: last}}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		f.logger.Error("failed to encode snapshots", zap.Error(err))
	}
}

// step advances symbol by one random walk move and returns its open and
// latest price.
func (f *MockDataFeed) step(symbol string) (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, exists := f.last[symbol]
	if !exists {
		// Random price between $1-100 for unknown symbols
		current = 1.00 + rand.Float64()*99.00
		f.open[symbol] = current
	}

	// Price can move up or down by 0.05% to 1% of current price
	maxChange := current * 0.01
	minChange := current * 0.0005

	change := minChange + rand.Float64()*(maxChange-minChange)
	if rand.Float64() < 0.5 {
		change = -change
	}

	next := current + change
	if next < 0.01 {
		next = 0.01
	}
	f.last[symbol] = next
	return f.open[symbol], next
}
