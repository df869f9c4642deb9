package config

import "sync"

// Observer is called with the new configuration after a reload.
type Observer func(cfg Config)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
		s.notifier = nil
	}
}

// Notifier fans configuration reloads out to subscribers.
type Notifier struct {
	mu        sync.RWMutex
	nextID    uint64
	observers map[uint64]Observer
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[uint64]Observer)}
}

// Subscribe registers an observer for future reloads.
func (n *Notifier) Subscribe(obs Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.observers[id] = obs
	return &Subscription{id: id, notifier: n}
}

// Notify delivers cfg to every subscriber on the calling goroutine.
func (n *Notifier) Notify(cfg Config) {
	n.mu.RLock()
	obs := make([]Observer, 0, len(n.observers))
	for _, o := range n.observers {
		obs = append(obs, o)
	}
	n.mu.RUnlock()
	for _, o := range obs {
		o(cfg)
	}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}
