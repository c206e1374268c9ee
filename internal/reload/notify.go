// Package reload delivers filtering rules reload requests.
package reload

import "go.uber.org/zap"

// Notifier fans reload requests from the management API and from
// SIGUSR2 into a single channel.
type Notifier struct {
	log *zap.Logger
	C   chan struct{}
}

// Notify requests a rules reload. A request arriving while another
// one is still pending is coalesced with it.
func (n *Notifier) Notify() {
	n.log.Info("rules reload requested")
	select {
	case n.C <- struct{}{}:
	default:
		n.log.Debug("reload already pending")
	}
}

// NewNotifier initializes and returns new notifier.
func NewNotifier(l *zap.Logger) *Notifier {
	n := &Notifier{log: l, C: make(chan struct{}, 1)}
	n.subscribe()
	return n
}
