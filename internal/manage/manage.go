// Package manage implements the http management API of ipsetd.
package manage

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Notifier wraps notify method.
type Notifier interface {
	Notify()
}

// Manager handles management endpoints.
//
// GET /reload asks the server to re-read its filtering rules and
// GET /healthz reports liveness.
type Manager struct {
	notifier Notifier
	l        *zap.Logger
}

// ServeHTTP implements http.Handler.
func (m Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/reload":
		m.l.Info("rules reload requested")
		w.WriteHeader(http.StatusOK)
		m.notifier.Notify()
		if _, err := fmt.Fprintln(w, "filtering rules will be reloaded soon"); err != nil {
			m.l.Warn("failed to write", zap.Error(err))
		}
	case "/healthz":
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprintln(w, "ok"); err != nil {
			m.l.Warn("failed to write", zap.Error(err))
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		if _, err := fmt.Fprintln(w, "management endpoint not found"); err != nil {
			m.l.Warn("failed to write", zap.Error(err))
		}
	}
}

// NewManager initializes and returns Manager.
func NewManager(l *zap.Logger, n Notifier) Manager {
	return Manager{
		l:        l,
		notifier: n,
	}
}
