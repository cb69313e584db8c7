package dashboard

import (
	"sync"

	"telicommunity-go/internal/client/apiclient"
)

// PendingView is the authoritative pending list from the last fetch plus
// tentative removals that have not been confirmed by a re-fetch yet.
type PendingView struct {
	mu      sync.RWMutex
	items   []apiclient.Booking
	removed map[string]string
}

func NewPendingView() *PendingView {
	return &PendingView{removed: make(map[string]string)}
}

// Items returns the authoritative list minus tentatively removed ids.
func (v *PendingView) Items() []apiclient.Booking {
	v.mu.RLock()
	defer v.mu.RUnlock()

	hidden := make(map[string]struct{}, len(v.removed))
	for _, id := range v.removed {
		hidden[id] = struct{}{}
	}
	out := make([]apiclient.Booking, 0, len(v.items))
	for _, item := range v.items {
		if _, ok := hidden[item.ID]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (v *PendingView) ApplyRemoval(op, id string) {
	v.mu.Lock()
	v.removed[op] = id
	v.mu.Unlock()
}

// Discard rolls back one tentative removal.
func (v *PendingView) Discard(op string) {
	v.mu.Lock()
	delete(v.removed, op)
	v.mu.Unlock()
}

// Reconcile drops the patch for op and installs a freshly fetched list.
func (v *PendingView) Reconcile(op string, items []apiclient.Booking) {
	v.mu.Lock()
	delete(v.removed, op)
	v.items = append([]apiclient.Booking(nil), items...)
	v.mu.Unlock()
}

// Replace installs a fresh list and keeps outstanding patches.
func (v *PendingView) Replace(items []apiclient.Booking) {
	v.mu.Lock()
	v.items = append([]apiclient.Booking(nil), items...)
	v.mu.Unlock()
}

func (v *PendingView) Pending() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.removed)
}
