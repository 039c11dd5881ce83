// Package analyticstest provides an in-memory kafka.Publisher for tests.
package analyticstest

import (
	"context"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
)

// Publisher records published events and can be told to fail.
type Publisher struct {
	mu      sync.Mutex
	events  []kafka.Event
	batches int
	err     error
}

func (p *Publisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *Publisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	p.batches++
	return nil
}

func (p *Publisher) SetErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Events returns a copy of everything published so far.
func (p *Publisher) Events() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Event(nil), p.events...)
}

func (p *Publisher) Batches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batches
}
