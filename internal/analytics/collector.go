package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
)

// Tracker records analytics events without blocking the caller.
type Tracker interface {
	Track(event Event)
}

// Collector buffers events in a channel and publishes them one by one from
// a background goroutine. When the buffer is full events are dropped.
type Collector struct {
	producer kafka.Publisher
	eventCh  chan Event
	logger   *slog.Logger
	done     chan struct{}

	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewCollector(producer kafka.Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan Event, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

func (c *Collector) Track(event Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)", "type", event.EventType())
	}
}

// Close stops accepting events, publishes what is buffered, and waits for
// the background goroutine.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.eventCh)
	started := c.started
	c.mu.Unlock()
	if started {
		<-c.done
	}
}

func (c *Collector) publish(ctx context.Context, event Event) {
	if err := c.producer.Publish(ctx, kafka.Event{
		Key:   string(event.EventType()),
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish analytics event", "type", event.EventType(), "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

// Discard is a Tracker that drops every event.
type Discard struct{}

func (Discard) Track(Event) {}
