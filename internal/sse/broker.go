// Package sse implements a Server-Sent Events broker that pushes note change
// notifications to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

const keepAliveInterval = 15 * time.Second

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// noteEventTypes maps service event kinds to SSE event names.
var noteEventTypes = map[string]string{
	"created": "note.created",
	"updated": "note.updated",
	"deleted": "note.deleted",
	"cleared": "notes.cleared",
}

// hub is the broker state. Only the loop goroutine touches it.
type hub struct {
	clients    map[chan []byte]struct{}
	seq        uint64
	lastResync time.Time
}

// broadcast frames event with the next sequence number and offers it to
// every subscriber. Slow subscribers miss the frame rather than stall the loop.
func (h *hub) broadcast(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	h.seq++
	frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, event.Type, payload))
	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Broker fans events out to SSE subscribers. Every state change runs as an
// op on one loop goroutine, so the hub needs no locking.
type Broker struct {
	resyncEvery time.Duration
	keepAlive   time.Duration

	ops     chan func(*hub)
	quit    chan struct{}
	done    chan struct{}
	closing atomic.Bool
}

// NewBroker creates a new SSE broker. resyncThrottle bounds how often the
// notes.resync hint is sent.
func NewBroker(resyncThrottle time.Duration) *Broker {
	if resyncThrottle <= 0 {
		resyncThrottle = 2 * time.Second
	}
	b := &Broker{
		resyncEvery: resyncThrottle,
		keepAlive:   keepAliveInterval,
		ops:         make(chan func(*hub), 256),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.quit:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// enqueue hands op to the loop without waiting for it to run.
func (b *Broker) enqueue(op func(*hub)) bool {
	if b.closing.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.done:
		return false
	}
}

// call runs op on the loop and waits for it. It reports false when the
// broker shut down before op ran.
func (b *Broker) call(op func(*hub)) bool {
	ran := make(chan struct{})
	if !b.enqueue(func(h *hub) { op(h); close(ran) }) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-b.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closing.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close, and comes back already closed after Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if !b.call(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.call(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	var n int
	if !b.call(func(h *hub) { n = len(h.clients) }) {
		return 0
	}
	return n
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.enqueue(func(h *hub) { h.broadcast(event) })
}

// PublishNoteEvent publishes a note change followed, at most once per
// throttle interval, by a notes.resync hint. Unknown kinds are ignored.
func (b *Broker) PublishNoteEvent(kind string, id int64) {
	typ, ok := noteEventTypes[kind]
	if !ok {
		return
	}
	var data any = map[string]int64{"id": id}
	if kind == "cleared" {
		data = map[string]string{}
	}
	b.enqueue(func(h *hub) {
		h.broadcast(Event{Type: typ, Data: data})
		if now := time.Now(); now.Sub(h.lastResync) >= b.resyncEvery {
			h.lastResync = now
			h.broadcast(Event{Type: "notes.resync", Data: map[string]string{}})
		}
	})
}

// ServeHTTP streams events to one client (GET /api/events). A comment line
// is written on idle connections so proxies keep them open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
