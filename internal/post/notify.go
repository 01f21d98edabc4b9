// SPDX-License-Identifier: MIT

package post

import (
	"sync"

	"github.com/vidstash/vidstash/internal/metrics"
	"github.com/vidstash/vidstash/internal/post/model"
)

// notifier fans change notifications out to subscribers scoped by user.
// Callbacks are invoked synchronously; subscribers re-fetch state rather
// than receiving deltas.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	userID string
	fn     func()
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]subscription)}
}

// subscribe registers fn for changes in the given user's partition and
// returns an unsubscribe function.
func (n *notifier) subscribe(userID string, fn func()) func() {
	normalized := model.NormalizeUserID(userID)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = subscription{userID: normalized, fn: fn}
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// notifyUser delivers to subscribers of exactly this user.
func (n *notifier) notifyUser(userID string) {
	n.deliver(func(sub subscription) bool { return sub.userID == userID })
}

// notifyAll delivers to every subscriber. Used for storage-level change
// events, whose writing user is unknown.
func (n *notifier) notifyAll() {
	n.deliver(func(subscription) bool { return true })
}

func (n *notifier) deliver(match func(subscription) bool) {
	n.mu.Lock()
	targets := make([]func(), 0, len(n.subs))
	for _, sub := range n.subs {
		if match(sub) {
			targets = append(targets, sub.fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range targets {
		metrics.RecordNotification()
		fn()
	}
}
