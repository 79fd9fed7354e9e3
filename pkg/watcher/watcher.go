// Package watcher fans out Operation updates to subscribed clients. It is
// adapted from the teacher repo's pkg/events Broker, rescoped from a
// single global topic-keyed broker to one bounded queue per Operation
// name, matching the original BuildGrid server's per-Job
// _operation_update_queues (spec §4.8).
package watcher

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/buildgrid/buildgrid-go/pkg/log"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// QueueSize bounds each subscriber's pending-update buffer. A subscriber
// that falls behind this far is dropped rather than allowed to stall the
// job's SetStage caller (spec §4.8 non-blocking fan-out requirement).
const QueueSize = 8

// Watcher is a registry of per-Operation subscriber channels.
type Watcher struct {
	mu   sync.Mutex
	subs map[string]map[chan *pb.Operation]struct{}
	log  zerolog.Logger
}

// New returns an empty Watcher.
func New() *Watcher {
	return &Watcher{
		subs: make(map[string]map[chan *pb.Operation]struct{}),
		log:  log.WithComponent("watcher"),
	}
}

// Subscribe registers and returns a new buffered channel for operationName.
// The caller is responsible for eventually calling Unsubscribe with the
// same channel.
func (w *Watcher) Subscribe(operationName string) chan *pb.Operation {
	ch := make(chan *pb.Operation, QueueSize)
	w.mu.Lock()
	defer w.mu.Unlock()
	set, ok := w.subs[operationName]
	if !ok {
		set = make(map[chan *pb.Operation]struct{})
		w.subs[operationName] = set
	}
	set[ch] = struct{}{}
	return ch
}

// Unsubscribe removes ch from operationName's subscriber set, if present,
// and closes it. Unlike the original server (which raised on a missing
// key), removing an already-removed or never-registered channel is a
// silent no-op — the documented fix for the original's
// unregister_client KeyError (spec §9(a)).
func (w *Watcher) Unsubscribe(operationName string, ch chan *pb.Operation) {
	w.mu.Lock()
	defer w.mu.Unlock()
	set, ok := w.subs[operationName]
	if !ok {
		return
	}
	if _, present := set[ch]; !present {
		return
	}
	delete(set, ch)
	close(ch)
	if len(set) == 0 {
		delete(w.subs, operationName)
	}
}

// Publish fans op out to every subscriber of op.Name. Sends are
// non-blocking: a subscriber whose queue is full is dropped (its channel
// closed and removed) rather than stalling the publisher, matching spec
// §4.8's RESOURCE_EXHAUSTED drop semantics — a slow watcher loses its
// stream and must re-subscribe (e.g. via WaitExecution's retry), it never
// backpressures the Job mutation that triggered the update.
func (w *Watcher) Publish(op *pb.Operation) {
	w.mu.Lock()
	set, ok := w.subs[op.Name]
	if !ok {
		w.mu.Unlock()
		return
	}
	var dropped []chan *pb.Operation
	for ch := range set {
		select {
		case ch <- op:
		default:
			dropped = append(dropped, ch)
		}
	}
	for _, ch := range dropped {
		delete(set, ch)
		close(ch)
	}
	if len(set) == 0 {
		delete(w.subs, op.Name)
	}
	w.mu.Unlock()

	if len(dropped) > 0 {
		w.log.Warn().Str("operation", op.Name).Int("dropped", len(dropped)).
			Msg("watcher subscriber queue exhausted, dropping slow client")
	}
}

// SubscriberCount reports how many subscribers are registered for
// operationName, for tests and diagnostics.
func (w *Watcher) SubscriberCount(operationName string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs[operationName])
}
