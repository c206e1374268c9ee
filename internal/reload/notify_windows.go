//go:build windows
// +build windows

package reload

// No SIGUSR2 on windows, rules reload is possible only via the
// management API.
func (n *Notifier) subscribe() {}
