package grpc

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"stock-ticker/internal/pubsub"
	"stock-ticker/pkg/models"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeRefresher struct {
	reject atomic.Bool
	calls  atomic.Int32
}

func (f *fakeRefresher) RequestRefresh() bool {
	f.calls.Add(1)
	return !f.reject.Load()
}

func newTestClient(t *testing.T) (*Client, *pubsub.Broker, *fakeRefresher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	broker := pubsub.NewBroker()
	if err := broker.Start(ctx); err != nil {
		t.Fatalf("failed to start broker: %v", err)
	}

	refresher := &fakeRefresher{}
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterTickerServiceServer(srv, NewTickerServer(broker, refresher, zap.NewNop()))
	go srv.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
		broker.Stop()
		cancel()
	})

	return NewClient(conn), broker, refresher
}

func testUpdate(status string) *models.Update {
	return models.NewUpdate(status, "AAPL: $105.00 +5.00% (+$5.00)    ", "AAPL: $105.00 +5.00% (+$5.00)    ",
		[]models.Quote{{ID: "AAPL", Price: 105, Change: 5, ChangePercent: 5}})
}

func TestGetStatus_NothingPublished(t *testing.T) {
	client, _, _ := newTestClient(t)

	_, err := client.GetStatus(context.Background())
	if status.Code(err) != codes.Unavailable {
		t.Errorf("expected Unavailable, got %v", err)
	}
}

func TestGetStatus_ReturnsLatest(t *testing.T) {
	client, broker, _ := newTestClient(t)
	published := testUpdate("OK")
	broker.Publish(published)

	got, err := client.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}

	if got.ID != published.ID || got.Status != "OK" || got.Text != published.Text || got.Display != published.Display {
		t.Errorf("unexpected update %+v", got)
	}
	if !got.Timestamp.Equal(published.Timestamp) {
		t.Errorf("timestamp %v, expected %v", got.Timestamp, published.Timestamp)
	}
	if len(got.Quotes) != 1 || got.Quotes[0] != published.Quotes[0] {
		t.Errorf("unexpected quotes %+v", got.Quotes)
	}
}

func TestRefresh(t *testing.T) {
	client, _, refresher := newTestClient(t)

	if err := client.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if n := refresher.calls.Load(); n != 1 {
		t.Errorf("expected 1 refresh request, got %d", n)
	}

	refresher.reject.Store(true)
	err := client.Refresh(context.Background())
	if status.Code(err) != codes.ResourceExhausted {
		t.Errorf("expected ResourceExhausted, got %v", err)
	}
}

func TestWatchUpdates(t *testing.T) {
	client, broker, _ := newTestClient(t)
	first := testUpdate("OK")
	broker.Publish(first)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.WatchUpdates(ctx)
	if err != nil {
		t.Fatalf("WatchUpdates() error = %v", err)
	}

	got, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected latest update first, got %+v", got)
	}

	second := testUpdate("TOO_MANY_REQUESTS")
	broker.Publish(second)

	for {
		got, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		if got.ID == first.ID {
			continue
		}
		if got.ID != second.ID || got.Status != "TOO_MANY_REQUESTS" {
			t.Errorf("unexpected update %+v", got)
		}
		break
	}
}
