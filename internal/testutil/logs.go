// Package testutil contains helpers for testing against observed logs.
package testutil

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// EnsureNoErrors calls t.Error for each ErrorLevel entry in logs,
// consuming all observed entries.
func EnsureNoErrors(t *testing.T, logs *observer.ObservedLogs) {
	t.Helper()
	for _, e := range logs.TakeAll() {
		if e.Level == zapcore.ErrorLevel {
			t.Error(e.Message)
		}
	}
}

// EnsureMessage calls t.Error if msg was not logged. Observed entries
// are left in place.
func EnsureMessage(t *testing.T, logs *observer.ObservedLogs, msg string) {
	t.Helper()
	for _, e := range logs.All() {
		if e.Message == msg {
			return
		}
	}
	t.Errorf("message %q was not logged", msg)
}
