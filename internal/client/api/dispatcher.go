package api

import "sync"

// dispatcher fans auth-change notifications out to listeners from a single
// goroutine, so every listener observes events in emission order.
type dispatcher struct {
	mu        sync.Mutex
	listeners map[int]AuthChangeListener
	nextID    int
	events    chan authEventMsg
	done      chan struct{}
	closeOnce sync.Once
}

type authEventMsg struct {
	event   AuthEvent
	session *Session
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		listeners: make(map[int]AuthChangeListener),
		events:    make(chan authEventMsg, 64),
		done:      make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *dispatcher) loop() {
	for {
		select {
		case msg := <-d.events:
			for _, l := range d.snapshot() {
				l(msg.event, msg.session)
			}
		case <-d.done:
			return
		}
	}
}

func (d *dispatcher) snapshot() []AuthChangeListener {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]AuthChangeListener, 0, len(d.listeners))
	for id := 0; id < d.nextID; id++ {
		if l, ok := d.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (d *dispatcher) subscribe(l AuthChangeListener) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = l
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

func (d *dispatcher) emit(event AuthEvent, session *Session) {
	select {
	case d.events <- authEventMsg{event: event, session: session}:
	case <-d.done:
	}
}

func (d *dispatcher) close() {
	d.closeOnce.Do(func() { close(d.done) })
}
