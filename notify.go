package liveset

import (
	"fmt"

	"github.com/google/uuid"
)

// Listener receives one change notification: the collection it was
// registered on, plus the flattened index delta for the cycle.
type Listener func(r *Results, changes ChangeSet)

// ListenerToken identifies a registered listener for removal.
type ListenerToken string

// FaultHandler receives errors raised by listeners during delivery.
// The default handler re-raises each fault on an independent goroutine so
// it surfaces as an unhandled fault, decoupled from the delivery stack.
type FaultHandler func(token ListenerToken, recovered any)

// defaultFaultHandler re-raises the listener's fault on its own goroutine.
// Propagating through the delivery call stack is never an option: that
// stack unwinds back into the native engine's mutation path.
func defaultFaultHandler(token ListenerToken, recovered any) {
	go func() {
		panic(fmt.Sprintf("liveset: listener %s failed during change delivery: %v", token, recovered))
	}()
}

// listenerEntry is one registered listener. removed is flipped when the
// listener is dropped mid-cycle, so an in-flight delivery skips it.
type listenerEntry struct {
	token   ListenerToken
	fn      Listener
	removed bool
}

// subscriptions manages listener lifecycle for one facade instance.
//
// The native subscription is established lazily on the first registration
// and torn down when the last listener is removed or the facade is closed.
// Listeners are invoked synchronously, in registration order, within a
// single delivery cycle.
type subscriptions struct {
	owner       *Results
	entries     []*listenerEntry
	byToken     map[ListenerToken]*listenerEntry
	unsubscribe func()
	onFault     FaultHandler
}

func newSubscriptions(owner *Results, onFault FaultHandler) *subscriptions {
	if onFault == nil {
		onFault = defaultFaultHandler
	}
	return &subscriptions{
		owner:   owner,
		byToken: make(map[ListenerToken]*listenerEntry),
		onFault: onFault,
	}
}

// add registers a listener and returns its removal token. The first
// registration establishes the native subscription.
func (s *subscriptions) add(fn Listener) (ListenerToken, error) {
	if fn == nil {
		return "", fmt.Errorf("listener must not be nil")
	}
	if len(s.entries) == 0 {
		unsub, err := s.owner.backing.Subscribe(s.deliver)
		if err != nil {
			return "", fmt.Errorf("subscribe to backing collection: %w", err)
		}
		s.unsubscribe = unsub
	}

	token := ListenerToken(uuid.Must(uuid.NewV7()).String())
	entry := &listenerEntry{token: token, fn: fn}
	s.entries = append(s.entries, entry)
	s.byToken[token] = entry
	return token, nil
}

// remove drops a listener. It will not be invoked again, including later
// in a delivery cycle that is already in progress for other listeners.
func (s *subscriptions) remove(token ListenerToken) {
	entry, ok := s.byToken[token]
	if !ok {
		return
	}
	entry.removed = true
	delete(s.byToken, token)
	for i, e := range s.entries {
		if e == entry {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.teardownIfEmpty()
}

// removeAll drops every listener and tears down the native subscription.
func (s *subscriptions) removeAll() {
	for _, e := range s.entries {
		e.removed = true
		delete(s.byToken, e.token)
	}
	s.entries = nil
	s.teardownIfEmpty()
}

func (s *subscriptions) teardownIfEmpty() {
	if len(s.entries) == 0 && s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// deliver translates one raw notification and dispatches it to every
// currently-registered listener, in registration order.
//
// A listener fault never propagates through this call stack: each
// invocation runs inside its own fault boundary, and captured faults are
// handed to the fault handler after the invocation returns. Delivery
// continues to the remaining listeners regardless.
func (s *subscriptions) deliver(raw RangeChanges) {
	changes := raw.Expand()

	// Snapshot the cycle order; registrations during delivery join the
	// next cycle, removals are honored via the removed flag.
	cycle := make([]*listenerEntry, len(s.entries))
	copy(cycle, s.entries)

	for _, entry := range cycle {
		if entry.removed {
			continue
		}
		s.invoke(entry, changes)
	}
}

// invoke runs one listener inside its own fault boundary.
func (s *subscriptions) invoke(entry *listenerEntry, changes ChangeSet) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.onFault(entry.token, recovered)
		}
	}()
	entry.fn(s.owner, changes)
}
