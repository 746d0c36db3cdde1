// Package sse streams catalog changes to preview clients as Server-Sent Events.
//
// The serve command wires the catalog watcher to PublishSongEvent and the
// search rebuild to PublishSearchRebuilt. A browser tab keeps one
// connection on /api/events and refreshes its song list, tag cloud or
// search data when the matching event arrives.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	TypeSongCreated   = "song.created"
	TypeSongUpdated   = "song.updated"
	TypeSongDeleted   = "song.deleted"
	TypeTagsUpdated   = "tags.updated"
	TypeSearchRebuilt = "search.rebuilt"
)

// Clients reconnect after this many milliseconds when the stream drops.
const retryMillis = 3000

// Event is one message on the stream.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// songEventTypes maps catalog.EventCallback kinds to event types.
var songEventTypes = map[string]string{
	"created": TypeSongCreated,
	"updated": TypeSongUpdated,
	"deleted": TypeSongDeleted,
}

type client chan []byte

// Broker fans events out to connected clients.
//
// One goroutine owns the client set, the message sequence, the last
// search.rebuilt message and the tags.updated throttle; public methods talk
// to it over channels.
type Broker struct {
	tagsEvery time.Duration

	joinCh  chan client
	leaveCh chan client
	eventCh chan Event
	countCh chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. Song changes inside one tagsEvery window
// produce a single tags.updated, sent at the start of the window and once
// more at its end if further changes arrived.
func NewBroker(tagsEvery time.Duration) *Broker {
	if tagsEvery <= 0 {
		tagsEvery = 2 * time.Second
	}
	b := &Broker{
		tagsEvery: tagsEvery,
		joinCh:    make(chan client),
		leaveCh:   make(chan client),
		eventCh:   make(chan Event, 256),
		countCh:   make(chan chan int),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[client]struct{})
	var (
		seq         uint64
		lastRebuilt []byte
		tagsSentAt  time.Time
		tagsPending bool
		tagsTimer   *time.Timer
		tagsC       <-chan time.Time
	)

	encode := func(ev Event) []byte {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return nil
		}
		seq++
		return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, payload)
	}
	send := func(msg []byte) {
		for c := range clients {
			select {
			case c <- msg:
			default:
				// Slow client; it will resync on the next event.
			}
		}
	}
	sendTags := func() {
		tagsSentAt = time.Now()
		tagsPending = false
		send(encode(Event{Type: TypeTagsUpdated, Data: struct{}{}}))
	}

	for {
		select {
		case <-b.stopCh:
			if tagsTimer != nil {
				tagsTimer.Stop()
			}
			for c := range clients {
				close(c)
			}
			return

		case c := <-b.joinCh:
			clients[c] = struct{}{}
			if lastRebuilt != nil {
				c <- lastRebuilt
			}

		case c := <-b.leaveCh:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c)
			}

		case ev := <-b.eventCh:
			msg := encode(ev)
			if msg == nil {
				continue
			}
			send(msg)
			switch ev.Type {
			case TypeSearchRebuilt:
				lastRebuilt = msg
			case TypeSongCreated, TypeSongUpdated, TypeSongDeleted:
				if wait := b.tagsEvery - time.Since(tagsSentAt); wait <= 0 {
					sendTags()
				} else if !tagsPending {
					tagsPending = true
					tagsTimer = time.NewTimer(wait)
					tagsC = tagsTimer.C
				}
			}

		case <-tagsC:
			tagsC = nil
			if tagsPending {
				sendTags()
			}

		case reply := <-b.countCh:
			reply <- len(clients)
		}
	}
}

// Close stops the broker and ends every client stream.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. A client joining after a search rebuild
// first receives the latest search.rebuilt message.
func (b *Broker) Subscribe() chan []byte {
	c := make(client, 64)
	if b.closed.Load() {
		close(c)
		return c
	}
	select {
	case b.joinCh <- c:
	case <-b.stopped:
		close(c)
	}
	return c
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(c chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leaveCh <- c:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	reply := make(chan int, 1)
	select {
	case b.countCh <- reply:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.eventCh <- ev:
	case <-b.stopped:
	}
}

// PublishSongEvent announces a catalog change for path. It has the
// catalog.EventCallback signature; unknown kinds are ignored.
func (b *Broker) PublishSongEvent(kind, path string) {
	typ, ok := songEventTypes[kind]
	if !ok {
		return
	}
	b.Publish(Event{Type: typ, Data: map[string]string{"path": path}})
}

// PublishSearchRebuilt announces a freshly written search index.
func (b *Broker) PublishSearchRebuilt(records int) {
	b.Publish(Event{Type: TypeSearchRebuilt, Data: map[string]int{"records": records}})
}

// ServeHTTP streams events to one client (GET /api/events).
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
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	c := b.Subscribe()
	defer b.Unsubscribe(c)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
