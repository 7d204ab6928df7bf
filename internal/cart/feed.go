package cart

import "sync"

// Feed is a replay-last-value broadcast: a new subscriber immediately receives
// the current value, then every subsequent published value in publish order.
// There is no coalescing. Subscribers are invoked synchronously, so delivery
// order matches mutation order as long as publishes happen under the owning
// store's lock.
type Feed[T any] struct {
	mu      sync.Mutex
	current T
	nextID  int
	subs    map[int]func(T)
}

// NewFeed creates a feed seeded with the given initial value.
func NewFeed[T any](initial T) *Feed[T] {
	return &Feed[T]{
		current: initial,
		subs:    make(map[int]func(T)),
	}
}

// Subscribe registers fn and immediately delivers the current value, so a
// late-attaching observer never sees a stale zero default. The returned
// cancel func removes the subscription.
func (f *Feed[T]) Subscribe(fn func(T)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	current := f.current
	f.mu.Unlock()

	fn(current)

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Publish records v as the current value and delivers it to all subscribers.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	f.current = v
	fns := make([]func(T), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Current returns the last published value.
func (f *Feed[T]) Current() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}
