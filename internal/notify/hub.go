// Package notify fans view events out to the subscribers of a topic.
package notify

import (
	"errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	EventState        = "state"
	EventNotification = "notification"

	queueSize = 16
)

var ErrStopped = errors.New("hub stopped")

type Event struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

type Handler func(event Event) error

type subscriber struct {
	id      uint64
	topic   string
	queue   chan Event
	handler Handler
	closer  func() error
	once    sync.Once
	err     error
}

func (s *subscriber) close() error {
	s.once.Do(func() {
		close(s.queue)
		if s.closer != nil {
			s.err = s.closer()
		}
	})
	return s.err
}

// Hub delivers events in publish order to every subscriber of the topic.
// Each subscriber is served by its own goroutine so a slow one never holds
// up the publisher or the others.
type Hub struct {
	log     *zap.Logger
	mu      sync.Mutex
	nextID  uint64
	topics  map[string]map[uint64]*subscriber
	stopped bool
	wg      *sync.WaitGroup
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		log:    logger,
		topics: make(map[string]map[uint64]*subscriber),
		wg:     &sync.WaitGroup{},
	}
}

// Subscribe registers handler for topic. closer, if not nil, is called once
// the subscription ends. The returned func unsubscribes.
func (h *Hub) Subscribe(topic string, handler Handler, closer func() error) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil, ErrStopped
	}

	h.nextID++
	sub := &subscriber{
		id:      h.nextID,
		topic:   topic,
		queue:   make(chan Event, queueSize),
		handler: handler,
		closer:  closer,
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[uint64]*subscriber)
	}
	h.topics[topic][sub.id] = sub

	h.wg.Add(1)
	go h.serve(sub)

	return func() { h.unsubscribe(sub) }, nil
}

func (h *Hub) serve(sub *subscriber) {
	defer h.wg.Done()

	for event := range sub.queue {
		if err := sub.handler(event); err != nil {
			h.log.Warn("failed to deliver the event, dropping the subscriber",
				zap.String("topic", sub.topic), zap.String("event", event.Type), zap.Error(err))
			go h.unsubscribe(sub)
			// drain so the hub never blocks on this subscriber
			for range sub.queue {
			}
			return
		}
	}
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	subs, ok := h.topics[sub.topic]
	if ok {
		if _, found := subs[sub.id]; !found {
			ok = false
		}
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(h.topics, sub.topic)
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	if err := sub.close(); err != nil {
		h.log.Warn("failed to close the subscriber", zap.String("topic", sub.topic), zap.Error(err))
	}
}

// Publish queues event for the subscribers of its topic. A subscriber whose
// queue is full misses the event.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.topics[event.Topic] {
		select {
		case sub.queue <- event:
		default:
			h.log.Warn("subscriber queue full, event dropped",
				zap.String("topic", event.Topic), zap.String("event", event.Type))
		}
	}
}

// Subscribers returns the number of subscribers of topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// CloseTopic ends every subscription of topic.
func (h *Hub) CloseTopic(topic string) {
	h.mu.Lock()
	subs := h.topics[topic]
	delete(h.topics, topic)
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.close(); err != nil {
			h.log.Warn("failed to close the subscriber", zap.String("topic", topic), zap.Error(err))
		}
	}
}

// Stop ends all subscriptions and waits for the pending deliveries.
func (h *Hub) Stop() error {
	h.mu.Lock()
	h.stopped = true
	topics := h.topics
	h.topics = make(map[string]map[uint64]*subscriber)
	h.mu.Unlock()

	var allErr error
	for _, subs := range topics {
		for _, sub := range subs {
			if err := sub.close(); err != nil {
				allErr = multierr.Append(allErr, err)
			}
		}
	}

	h.log.Info("waiting for all the event subscribers to finish...")
	h.wg.Wait()
	h.log.Info("event subscribers finished")

	return allErr
}
