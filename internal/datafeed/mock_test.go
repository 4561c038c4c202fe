package datafeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-ticker/internal/clock"
	"stock-ticker/internal/quotes"

	"go.uber.org/zap"
)

func newEngine(t *testing.T, baseURL, keyID string) *quotes.Engine {
	t.Helper()
	network := quotes.NewHTTPNetwork(time.Second, func() bool { return true })
	e := quotes.NewEngine(network, clock.NewFake(0), baseURL, zap.NewNop())
	e.Configure(quotes.Settings{
		APIKeyID:      keyID,
		APISecretKey:  "secret",
		Symbols:       "AAPL,MSFT,NEWCO",
		RequestPeriod: time.Minute,
	})
	return e
}

func TestMockDataFeed_ServesSnapshots(t *testing.T) {
	feed := NewMockDataFeed(zap.NewNop())
	srv := httptest.NewServer(feed)
	defer srv.Close()

	e := newEngine(t, srv.URL, "key-id")
	e.Update(context.Background())

	if e.Status() != quotes.StatusOK {
		t.Fatalf("expected OK, got %s", e.Status())
	}
	for _, q := range e.Quotes() {
		if !q.HasData() {
			t.Errorf("expected %s to have a price, got %+v", q.ID, q)
		}
		price, ok := feed.GetCurrentPrice(q.ID)
		if !ok || price != q.Price {
			t.Errorf("expected %s price %f from the feed, got %f", q.ID, price, q.Price)
		}
	}
}

func TestMockDataFeed_RequiresKeys(t *testing.T) {
	srv := httptest.NewServer(NewMockDataFeed(zap.NewNop()))
	defer srv.Close()

	e := newEngine(t, srv.URL, "")
	e.Update(context.Background())

	if e.Status() != quotes.StatusForbidden {
		t.Errorf("expected FORBIDDEN without keys, got %s", e.Status())
	}
}

func TestMockDataFeed_SetStatus(t *testing.T) {
	feed := NewMockDataFeed(zap.NewNop())
	feed.SetStatus(http.StatusInternalServerError)
	srv := httptest.NewServer(feed)
	defer srv.Close()

	e := newEngine(t, srv.URL, "key-id")
	e.Update(context.Background())

	if e.Status() != quotes.StatusInternalServerError {
		t.Errorf("expected INTERNAL_SERVER_ERROR, got %s", e.Status())
	}
}

func TestMockDataFeed_RandomWalkStaysPositive(t *testing.T) {
	feed := NewMockDataFeed(zap.NewNop())
	for i := 0; i < 1000; i++ {
		open, last := feed.step("PENNY")
		if open <= 0 || last < 0.01 {
			t.Fatalf("step %d: unexpected prices open=%f last=%f", i, open, last)
		}
	}
}
