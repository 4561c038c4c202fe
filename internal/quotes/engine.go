// Package quotes polls the Alpaca Markets snapshot endpoint on a fixed period
// and keeps a bounded registry of the configured symbols, the outcome of the
// last refresh and the ticker text generated from it.
package quotes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock-ticker/internal/clock"
	"stock-ticker/pkg/models"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Alpaca Markets data API.
	DefaultBaseURL = "https://data.alpaca.markets"
	// DefaultFeed is the free-tier feed.
	DefaultFeed = "iex"
	// DefaultRequestPeriod is the time between refreshes.
	DefaultRequestPeriod = 60 * time.Second

	snapshotsPath = "/v2/stocks/snapshots"
	// maxLoggedBody bounds how much of an error response is logged.
	maxLoggedBody = 4 << 10
)

// Settings configures the engine.
type Settings struct {
	APIKeyID      string
	APISecretKey  string
	Symbols       string // comma-separated
	Feed          string
	RequestPeriod time.Duration
	MaxIDLen      int
	MaxSymbols    int
}

type dailyBar struct {
	Open  float64 `json:"o"`
	Close float64 `json:"c"`
}

type snapshot struct {
	DailyBar *dailyBar `json:"dailyBar"`
}

// Engine is driven by repeated Update calls from a single loop. It starts
// no goroutines and holds no locks.
type Engine struct {
	network Network
	clock   clock.Clock
	baseURL string
	logger  *zap.Logger

	settings    Settings
	configured  bool
	registry    *Registry
	status      Status
	display     string
	nextRequest clock.Tick
}

func NewEngine(network Network, c clock.Clock, baseURL string, logger *zap.Logger) *Engine {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Engine{
		network:  network,
		clock:    c,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		registry: NewRegistry(0, 0),
	}
}

// Configure builds the registry from the comma-separated symbol list and
// schedules a refresh on the next Update. Symbols that are too long, or that
// arrive after the registry is full, are dropped.
func (e *Engine) Configure(s Settings) {
	if s.Feed == "" {
		s.Feed = DefaultFeed
	}
	if s.RequestPeriod <= 0 {
		s.RequestPeriod = DefaultRequestPeriod
	}
	if s.MaxIDLen <= 0 {
		s.MaxIDLen = DefaultMaxIDLen
	}
	if s.MaxSymbols <= 0 {
		s.MaxSymbols = DefaultMaxSymbols
	}
	e.settings = s
	e.registry = NewRegistry(s.MaxSymbols, s.MaxIDLen)

	for _, token := range strings.Split(s.Symbols, ",") {
		if token == "" {
			continue
		}
		if !e.registry.Add(token) {
			e.logger.Warn("symbol skipped", zap.String("symbol", token))
			continue
		}
		e.logger.Info("symbol initialized",
			zap.String("symbol", token),
			zap.Int("index", e.registry.Len()-1))
	}

	e.status = StatusOK
	e.display = formatDisplay(e.registry.Quotes())
	e.nextRequest = e.clock.Now()
	e.configured = true
}

// Update performs a refresh if one is due. Exactly one reschedule happens per
// due call whatever the outcome; failures are only reported through Status.
func (e *Engine) Update(ctx context.Context) {
	if !e.configured || !clock.Due(e.clock.Now(), e.nextRequest) {
		return
	}
	defer e.reschedule()

	e.logger.Debug("requesting snapshots")
	if !e.network.IsConnected() {
		e.logger.Warn("no network link, cannot update quotes")
		e.status = StatusNoWiFi
		return
	}

	resp, err := e.network.Get(ctx, e.requestURL(), e.requestHeader())
	if err != nil {
		e.status = statusFromTransport(err)
		e.logger.Error("snapshot request failed",
			zap.Stringer("status", e.status),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.status = statusFromHTTP(resp.StatusCode)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		e.logger.Error("bad snapshot response",
			zap.Int("code", resp.StatusCode),
			zap.Stringer("status", e.status),
			zap.ByteString("body", body))
		return
	}

	var payload map[string]*snapshot
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		e.status = StatusBadJSONResponse
		e.logger.Error("failed to parse snapshots", zap.Error(err))
		return
	}

	for symbol, snap := range payload {
		if snap == nil || snap.DailyBar == nil {
			e.logger.Debug("snapshot without daily bar", zap.String("symbol", symbol))
			continue
		}
		e.fold(symbol, snap.DailyBar)
	}
	e.display = formatDisplay(e.registry.Quotes())
	e.status = StatusOK
	e.logger.Debug("display string updated", zap.String("display", e.display))
}

func (e *Engine) fold(symbol string, bar *dailyBar) {
	q := e.registry.Lookup(symbol)
	if q == nil {
		e.logger.Debug("symbol not in registry", zap.String("symbol", symbol))
		return
	}
	q.Price = bar.Close
	q.Change, q.ChangePercent = changeOf(bar.Open, bar.Close)
	e.logger.Debug("quote updated",
		zap.String("symbol", q.ID),
		zap.Float64("price", q.Price),
		zap.Float64("change", q.Change),
		zap.Float64("change_percent", q.ChangePercent))
}

func (e *Engine) reschedule() {
	e.nextRequest = clock.After(e.clock.Now(), e.settings.RequestPeriod)
	e.logger.Debug("next request scheduled", zap.Duration("in", e.settings.RequestPeriod))
}

func (e *Engine) requestURL() string {
	q := url.Values{}
	q.Set("symbols", strings.Join(e.registry.IDs(), ","))
	q.Set("feed", e.settings.Feed)
	return e.baseURL + snapshotsPath + "?" + q.Encode()
}

func (e *Engine) requestHeader() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Apca-Api-Key-Id", e.settings.APIKeyID)
	h.Set("Apca-Api-Secret-Key", e.settings.APISecretKey)
	return h
}

// RefreshOnNextUpdate makes the next Update call refresh regardless of the
// schedule.
func (e *Engine) RefreshOnNextUpdate() {
	e.nextRequest = e.clock.Now()
}

// DisplayString is the ticker text generated by the last successful refresh.
func (e *Engine) DisplayString() string {
	return e.display
}

func (e *Engine) Status() Status {
	return e.status
}

// Quotes returns a copy of the registry in configuration order.
func (e *Engine) Quotes() []models.Quote {
	return e.registry.Quotes()
}

// NextRequest is the tick at which the next refresh becomes due.
func (e *Engine) NextRequest() clock.Tick {
	return e.nextRequest
}
