package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-ticker/internal/pubsub"
	"stock-ticker/pkg/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func startBroker(t *testing.T) *pubsub.Broker {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	broker := pubsub.NewBroker()
	if err := broker.Start(ctx); err != nil {
		t.Fatalf("failed to start broker: %v", err)
	}
	t.Cleanup(func() {
		broker.Stop()
		cancel()
	})
	return broker
}

func connectWS(t *testing.T, serverURL string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	wsConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to websocket: %v", err)
	}
	return wsConn
}

func readUpdate(t *testing.T, conn *websocket.Conn) models.Update {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var update models.Update
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return update
}

func TestWebsocket_StreamsUpdates(t *testing.T) {
	broker := startBroker(t)
	server := httptest.NewServer(NewMux(broker, zap.NewNop()))
	defer server.Close()

	first := models.NewUpdate("OK", "AAPL: No data yet...    ", "AAPL: No data yet...    ", nil)
	broker.Publish(first)

	conn := connectWS(t, server.URL)
	defer conn.Close()

	if got := readUpdate(t, conn); got.ID != first.ID || got.Text != first.Text {
		t.Fatalf("expected latest update on connect, got %+v", got)
	}

	second := models.NewUpdate("FORBIDDEN", "Forbidden", "", nil)
	broker.Publish(second)

	for {
		got := readUpdate(t, conn)
		if got.ID == first.ID {
			continue
		}
		if got.ID != second.ID || got.Status != "FORBIDDEN" {
			t.Errorf("unexpected update %+v", got)
		}
		break
	}
}

func TestStatusEndpoint(t *testing.T) {
	broker := startBroker(t)
	server := httptest.NewServer(NewMux(broker, zap.NewNop()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before first update, got %d", resp.StatusCode)
	}

	published := models.NewUpdate("OK", "x", "x", []models.Quote{{ID: "AAPL", Price: 1}})
	broker.Publish(published)

	resp, err = http.Get(server.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status error = %v", err)
	}
	defer resp.Body.Close()

	var got models.Update
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if got.ID != published.ID || len(got.Quotes) != 1 {
		t.Errorf("unexpected status %+v", got)
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, UpdatesChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe error = %v", err)
	}

	update := models.NewUpdate("OK", "MSFT: $190.00 -5.00% (-$10.00)    ", "", nil)
	publisher := NewRedisPublisher(rdb, zap.NewNop())
	if err := publisher.Publish(ctx, update); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got models.Update
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("unmarshal error = %v", err)
		}
		if got.ID != update.ID {
			t.Errorf("expected update %s, got %s", update.ID, got.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}

	saved, err := mr.Get(LatestKey)
	if err != nil {
		t.Fatalf("latest key missing: %v", err)
	}
	if !strings.Contains(saved, update.ID) {
		t.Errorf("latest key holds %s", saved)
	}
}

func TestRedisPublisher_RunMirrorsBroker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	broker := startBroker(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRedisPublisher(rdb, zap.NewNop()).Run(ctx, broker)
		close(done)
	}()

	// Wait for the mirror to subscribe before publishing.
	for i := 0; i < 50 && broker.GetSubscriberCount() == 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}

	update := models.NewUpdate("OK", "x", "x", nil)
	broker.Publish(update)

	success := false
	for i := 0; i < 50; i++ {
		if saved, err := mr.Get(LatestKey); err == nil && strings.Contains(saved, update.ID) {
			success = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !success {
		t.Fatal("mirror did not write the latest update to redis")
	}

	cancel()
	<-done
}
