// Package sse streams vault change notifications to HTTP clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Event is a single SSE frame: an event name plus a JSON-encoded payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type notePayload struct {
	Vault string `json:"vault"`
	Path  string `json:"path"`
}

// Broker fans events out to subscribed SSE connections. A single goroutine
// owns the subscriber set and the per-vault activity throttle; public
// methods hand it closures over a command channel instead of sharing state
// under a mutex.
type Broker struct {
	throttle time.Duration

	commands chan func(*brokerState)
	stopCh   chan struct{}
	done     chan struct{}
	closed   atomic.Bool
}

type brokerState struct {
	subscribers  map[chan []byte]struct{}
	lastActivity map[string]time.Time
}

// NewBroker starts the broker loop. throttle bounds how often the aggregate
// vault.activity event fires per vault; non-positive values get a default.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle: throttle,
		commands: make(chan func(*brokerState), 256),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	st := &brokerState{
		subscribers:  make(map[chan []byte]struct{}),
		lastActivity: make(map[string]time.Time),
	}
	for {
		select {
		case <-b.stopCh:
			for ch := range st.subscribers {
				close(ch)
			}
			return
		case cmd := <-b.commands:
			cmd(st)
		}
	}
}

func (st *brokerState) broadcast(ev Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	frame := make([]byte, 0, len(ev.Type)+len(payload)+16)
	frame = append(frame, "event: "...)
	frame = append(frame, ev.Type...)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, payload...)
	frame = append(frame, "\n\n"...)

	for ch := range st.subscribers {
		select {
		case ch <- frame:
		default:
			// Subscriber buffer full; drop rather than stall the loop.
		}
	}
}

// send hands a command to the loop, or drops it when the broker is closed.
func (b *Broker) send(cmd func(*brokerState)) {
	if b.closed.Load() {
		return
	}
	select {
	case b.commands <- cmd:
	case <-b.done:
	}
}

// Subscribe registers a new SSE connection and returns its frame channel.
// The channel is closed by Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.commands <- func(st *brokerState) { st.subscribers[ch] = struct{}{} }:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe drops a connection and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.send(func(st *brokerState) {
		if _, ok := st.subscribers[ch]; ok {
			delete(st.subscribers, ch)
			close(ch)
		}
	})
}

// ClientCount reports the current number of subscribers.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.commands <- func(st *brokerState) { resp <- len(st.subscribers) }:
	case <-b.done:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// Publish broadcasts an arbitrary event to every subscriber.
func (b *Broker) Publish(ev Event) {
	b.send(func(st *brokerState) { st.broadcast(ev) })
}

// PublishNoteEvent broadcasts a note change (kind is created, updated, or
// deleted) and, at most once per throttle window per vault, an aggregate
// vault.activity event.
func (b *Broker) PublishNoteEvent(kind, vaultName, path string) {
	b.send(func(st *brokerState) {
		switch kind {
		case "created", "updated", "deleted":
		default:
			return
		}
		st.broadcast(Event{Type: "note." + kind, Data: notePayload{Vault: vaultName, Path: path}})

		now := time.Now()
		if now.Sub(st.lastActivity[vaultName]) >= b.throttle {
			st.lastActivity[vaultName] = now
			st.broadcast(Event{Type: "vault.activity", Data: map[string]string{"vault": vaultName}})
		}
	})
}

// Close stops the loop and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.done
}

// ServeHTTP streams broker events to one client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
