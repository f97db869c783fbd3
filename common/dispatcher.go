package common

import (
	"context"
	"sync"
)

// Handler receives events synchronously on the session goroutine.
type Handler func(Event)

type HandlerID uint64

type handlerEntry struct {
	id      HandlerID
	handler Handler
	once    bool
	name    string
}

// Dispatcher fans events out to handlers in registration order. Handlers may register,
// unregister and send from inside a callback.
type Dispatcher struct {
	mu      sync.Mutex
	nextID  HandlerID
	entries []handlerEntry
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) add(e handlerEntry) HandlerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	e.id = d.nextID
	d.entries = append(d.entries, e)
	return e.id
}

// RegisterHandler adds a handler that sees every event until unregistered.
func (d *Dispatcher) RegisterHandler(h Handler) HandlerID {
	return d.add(handlerEntry{handler: h})
}

// RegisterOneTimeEventHandler adds a handler for the next event named name. It is
// removed before it runs.
func (d *Dispatcher) RegisterOneTimeEventHandler(h Handler, name string) HandlerID {
	return d.add(handlerEntry{handler: h, once: true, name: name})
}

// Await blocks until the next event named name, or until ctx is done.
func (d *Dispatcher) Await(ctx context.Context, name string) (Event, error) {
	ch := make(chan Event, 1)
	id := d.RegisterOneTimeEventHandler(func(ev Event) { ch <- ev }, name)
	select {
	case ev := <-ch:
		return ev, nil
	case <-ctx.Done():
		d.Unregister(id)
		select {
		case ev := <-ch:
			return ev, nil
		default:
		}
		return nil, ctx.Err()
	}
}

// Unregister removes a handler and reports whether it was still registered.
func (d *Dispatcher) Unregister(id HandlerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.entries {
		if e.id == id {
			d.entries = append(d.entries[:i:i], d.entries[i+1:]...)
			return true
		}
	}
	return false
}

// ClearOneTime drops every pending one-time handler.
func (d *Dispatcher) ClearOneTime() {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.entries[:0:0]
	for _, e := range d.entries {
		if !e.once {
			kept = append(kept, e)
		}
	}
	d.entries = kept
}

// Len returns the number of registered handlers.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Dispatch runs the matching handlers outside the lock.
func (d *Dispatcher) Dispatch(ev Event) {
	d.DispatchWhile(ev, nil)
}

// DispatchWhile is Dispatch with alive checked before each handler; a false result
// drops the rest of the event. A nil alive always holds.
func (d *Dispatcher) DispatchWhile(ev Event, alive func() bool) {
	name := ev.EventName()
	d.mu.Lock()
	run := make([]Handler, 0, len(d.entries))
	kept := d.entries[:0:0]
	for _, e := range d.entries {
		switch {
		case !e.once:
			run = append(run, e.handler)
			kept = append(kept, e)
		case e.name == name:
			run = append(run, e.handler)
		default:
			kept = append(kept, e)
		}
	}
	d.entries = kept
	d.mu.Unlock()

	for _, h := range run {
		if alive != nil && !alive() {
			return
		}
		h(ev)
	}
}
