// Package broadcast fans domain events out to registered sinks. Each
// sink gets its own bounded channel and its own goroutine; a slow sink
// never blocks the matching engine's critical section (spec.md §5)
// and never stalls any other sink (spec.md §4.4).
//
// Grounded on two teacher-adjacent shapes: the teacher's
// Server.ReportTrade/ReportError (one dispatch call per event kind)
// and 0xtitan6-polymarket-mm's internal/api/stream.go Hub (bounded
// per-client channel, non-blocking send, drop policy on overflow).
package broadcast

import (
	"sync"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const defaultSinkQueueSize = 64

// Sink receives every event kind. Implementations should return
// quickly; slow work belongs on the sink's own goroutine, not inline
// in these callbacks, since they run on the broadcaster's delivery
// loop for that sink.
type Sink interface {
	OnTradeExecuted(Event)
	OnBookUpdated(Event)
	OnCustomerPurchased(Event)
	OnError(Event)
}

type registeredSink struct {
	name string
	sink Sink
	ch   chan Event
}

// Broadcaster owns the sink registry and the per-sink delivery
// goroutines. Zero value is not usable; construct with New.
type Broadcaster struct {
	mu    sync.RWMutex
	sinks []*registeredSink
	t     tomb.Tomb
}

func New() *Broadcaster {
	return &Broadcaster{}
}

// Register adds a sink under name (used only for log messages about
// dropped events) and starts its delivery goroutine under the shared
// tomb.
func (b *Broadcaster) Register(name string, sink Sink) {
	rs := &registeredSink{
		name: name,
		sink: sink,
		ch:   make(chan Event, defaultSinkQueueSize),
	}

	b.mu.Lock()
	b.sinks = append(b.sinks, rs)
	b.mu.Unlock()

	b.t.Go(func() error {
		return b.pump(rs)
	})
}

func (b *Broadcaster) pump(rs *registeredSink) error {
	for {
		select {
		case <-b.t.Dying():
			return nil
		case ev := <-rs.ch:
			dispatch(rs.sink, ev)
		}
	}
}

func dispatch(sink Sink, ev Event) {
	switch ev.Kind {
	case TradeExecuted:
		sink.OnTradeExecuted(ev)
	case BookUpdated:
		sink.OnBookUpdated(ev)
	case CustomerPurchased:
		sink.OnCustomerPurchased(ev)
	case ErrorEvent:
		sink.OnError(ev)
	}
}

// Emit copies ev to every registered sink's queue without blocking the
// caller. A full queue drops its oldest entry to make room for ev
// (spec.md §4.4's "drop-oldest on overflow") and logs the drop; it does
// not recursively re-emit an Error event for the drop (that could
// itself overflow and loop), it only logs.
func (b *Broadcaster) Emit(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, rs := range b.sinks {
		select {
		case rs.ch <- ev:
		default:
			// Queue full: drop the oldest queued event, then enqueue ev.
			select {
			case <-rs.ch:
			default:
			}
			select {
			case rs.ch <- ev:
			default:
			}
			log.Warn().Str("sink", rs.name).Int("kind", int(ev.Kind)).
				Msg("sink queue full, dropped oldest event")
		}
	}
}

// Shutdown stops every sink's delivery goroutine and waits for them to
// exit.
func (b *Broadcaster) Shutdown() {
	b.t.Kill(nil)
	_ = b.t.Wait()
}
