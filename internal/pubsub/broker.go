// Package pubsub fans ticker updates out from the control loop to any number
// of readers (gRPC streams, websocket clients, the Redis mirror) without ever
// blocking the loop.
package pubsub

import (
	"context"
	"sync"

	"stock-ticker/pkg/models"

	"github.com/google/uuid"
)

type Subscriber struct {
	ID      string
	Updates chan *models.Update
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewSubscriber(id string, bufferSize int) *Subscriber {
	ctx, cancel := context.WithCancel(context.Background())

	return &Subscriber{
		ID:      id,
		Updates: make(chan *models.Update, bufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Subscriber) Close() {
	s.cancel()
	close(s.Updates)
}

// Broker keeps the latest update and distributes every published update to
// all subscribers. Slow subscribers miss updates rather than stall others.
type Broker struct {
	subscribers map[string]*Subscriber
	mu          sync.RWMutex
	updateChan  chan *models.Update
	stopChan    chan struct{}
	running     bool
	latest      *models.Update
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string]*Subscriber),
		updateChan:  make(chan *models.Update, 256),
		stopChan:    make(chan struct{}),
	}
}

func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = true
	b.mu.Unlock()

	go b.distributeUpdates(ctx)
	return nil
}

func (b *Broker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}

	b.running = false
	close(b.stopChan)

	for id, subscriber := range b.subscribers {
		subscriber.Close()
		delete(b.subscribers, id)
	}
}

// Subscribe registers a subscriber. An empty id gets a generated one. The
// latest update, if any, is queued immediately so readers start from the
// current state.
func (b *Broker) Subscribe(subscriberID string, bufferSize int) *Subscriber {
	if subscriberID == "" {
		subscriberID = uuid.New().String()
	}
	if bufferSize < 1 {
		bufferSize = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, exists := b.subscribers[subscriberID]; exists {
		existing.Close()
	}

	subscriber := NewSubscriber(subscriberID, bufferSize)
	if b.latest != nil {
		subscriber.Updates <- b.latest
	}
	b.subscribers[subscriberID] = subscriber

	return subscriber
}

func (b *Broker) Unsubscribe(subscriberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscriber, exists := b.subscribers[subscriberID]; exists {
		subscriber.Close()
		delete(b.subscribers, subscriberID)
	}
}

// Publish records update as the latest state and queues it for
// distribution. It never blocks.
func (b *Broker) Publish(update *models.Update) {
	b.mu.Lock()
	b.latest = update
	b.mu.Unlock()

	select {
	case b.updateChan <- update:
	default:
	}
}

// Latest returns the most recently published update, or nil.
func (b *Broker) Latest() *models.Update {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}

func (b *Broker) GetSubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broker) distributeUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stopChan:
			return
		case update := <-b.updateChan:
			b.fanOut(update)
		}
	}
}

func (b *Broker) fanOut(update *models.Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, subscriber := range b.subscribers {
		select {
		case subscriber.Updates <- update:
		case <-subscriber.ctx.Done():
		default:
		}
	}
}
