package service

import (
	"sync"

	"air_purifier/internal/models"
)

// StateListener receives every published snapshot. Listeners run on the
// publishing goroutine and must not block.
type StateListener func(models.PurifierState)

// Notifier fans snapshots out to listeners in the order they were taken.
type Notifier struct {
	deliver   sync.Mutex // held for a whole publish so listeners see ordered snapshots
	mu        sync.Mutex
	listeners []subscriber
	nextID    uint64
	last      models.PurifierState
	lastSeq   uint64
}

type subscriber struct {
	id uint64
	fn StateListener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers l for all future snapshots. The returned func
// removes it again and may be called more than once, but not from inside
// a listener. Once it returns, l is not called again.
func (n *Notifier) Subscribe(l StateListener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, subscriber{id: id, fn: l})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier) remove(id uint64) {
	// wait out a delivery in progress
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.listeners {
		if s.id == id {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Last returns the most recently published snapshot.
func (n *Notifier) Last() (models.PurifierState, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last, n.lastSeq > 0
}

// publish delivers st unless a newer snapshot was already delivered.
func (n *Notifier) publish(seq uint64, st models.PurifierState) bool {
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	if seq <= n.lastSeq {
		n.mu.Unlock()
		return false
	}
	n.lastSeq = seq
	n.last = st
	ls := make([]subscriber, len(n.listeners))
	copy(ls, n.listeners)
	n.mu.Unlock()

	for _, l := range ls {
		l.fn(st)
	}
	return true
}
