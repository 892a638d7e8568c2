package engine

import (
	"sync"

	"github.com/Veraticus/spends/internal/model"
)

// statusPublisher holds the latest progress snapshot and fans it out to
// subscribers. Slow subscribers only ever see the newest snapshot.
type statusPublisher struct {
	subs    map[int]chan model.ProcessingStatus
	current model.ProcessingStatus
	nextID  int
	mu      sync.RWMutex
}

func newStatusPublisher() *statusPublisher {
	return &statusPublisher{subs: make(map[int]chan model.ProcessingStatus)}
}

func (p *statusPublisher) publish(status model.ProcessingStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = status
	for _, ch := range p.subs {
		// Replace whatever the subscriber has not read yet.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- status:
		default:
		}
	}
}

func (p *statusPublisher) snapshot() model.ProcessingStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *statusPublisher) subscribe() (<-chan model.ProcessingStatus, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan model.ProcessingStatus, 1)
	ch <- p.current
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}
